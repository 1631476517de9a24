// Package skills loads the user-supplied skill vocabulary.
package skills

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the ordered list of skills to look for.
type Vocabulary []string

// Load reads a vocabulary file. .yaml/.yml files hold either a list or a
// category -> list mapping; anything else is one skill per line.
func Load(path string) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open skills file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f)
	default:
		return Parse(f)
	}
}

// Parse reads one skill per line.
func Parse(r io.Reader) (Vocabulary, error) {
	var raw []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw = append(raw, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	return normalize(raw), nil
}

func ParseYAML(r io.Reader) (Vocabulary, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if err == io.EOF {
			return Vocabulary{}, nil
		}
		return nil, fmt.Errorf("decode skills yaml: %w", err)
	}
	if node.Kind != yaml.DocumentNode || len(node.Content) == 0 {
		return Vocabulary{}, nil
	}

	root := node.Content[0]
	var raw []string
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode skills list: %w", err)
		}
	case yaml.MappingNode:
		// Content alternates key, value; walk it to keep file order.
		for i := 1; i < len(root.Content); i += 2 {
			var group []string
			if err := root.Content[i].Decode(&group); err != nil {
				return nil, fmt.Errorf("decode skills category %q: %w", root.Content[i-1].Value, err)
			}
			raw = append(raw, group...)
		}
	default:
		return nil, fmt.Errorf("skills yaml must be a list or a mapping of lists")
	}
	return normalize(raw), nil
}

// normalize trims entries and drops blanks and exact duplicates.
func normalize(raw []string) Vocabulary {
	seen := make(map[string]struct{}, len(raw))
	out := make(Vocabulary, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Source yields the vocabulary for one parse. FileSource re-reads the file
// every time so edits apply without a restart.
type Source func() (Vocabulary, error)

func FileSource(path string) Source {
	return func() (Vocabulary, error) { return Load(path) }
}

func StaticSource(v Vocabulary) Source {
	return func() (Vocabulary, error) { return v, nil }
}
