package cv

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"resume-parser/internal/ner"
	"resume-parser/internal/skills"
	"resume-parser/internal/types"
)

// Word characters are Unicode letters, numbers and underscore.
var (
	emailPattern = regexp.MustCompile(`[\p{L}\p{N}_]+@[\p{L}\p{N}_]+\.[\p{L}\p{N}_]+`)
	phonePattern = regexp.MustCompile(`\p{Nd}{10}`)
)

type Extractor struct {
	recognizer     ner.EntityRecognizer
	falsePositives map[string]struct{}
	settings       string
	log            zerolog.Logger
}

func NewExtractor(recognizer ner.EntityRecognizer, falsePositives []string, log zerolog.Logger) *Extractor {
	fp := make(map[string]struct{}, len(falsePositives))
	for _, s := range falsePositives {
		fp[strings.Join(strings.Fields(s), " ")] = struct{}{}
	}
	return &Extractor{
		recognizer:     recognizer,
		falsePositives: fp,
		settings:       settingsFingerprint(recognizer, fp),
		log:            log,
	}
}

// Settings identifies the recognizer and false-positive list. Results
// produced under different settings must not be reused for each other.
func (e *Extractor) Settings() string {
	return e.settings
}

func settingsFingerprint(recognizer ner.EntityRecognizer, fp map[string]struct{}) string {
	name := fmt.Sprintf("%T", recognizer)
	if n, ok := recognizer.(ner.Named); ok {
		name = n.Name()
	}
	list := make([]string, 0, len(fp))
	for s := range fp {
		list = append(list, s)
	}
	sort.Strings(list)
	return name + "|" + strings.Join(list, "\x00")
}

// Extract runs every field extractor over text.
func (e *Extractor) Extract(ctx context.Context, text string, vocab skills.Vocabulary) (*types.Fields, error) {
	name, err := e.ExtractName(ctx, text)
	if err != nil {
		return nil, err
	}

	f := &types.Fields{
		Name:   name,
		Email:  ExtractEmail(text),
		Phone:  ExtractPhone(text),
		Skills: ExtractSkills(text, vocab),
	}

	e.log.Debug().
		Bool("name", f.Name != nil).
		Bool("email", f.Email != nil).
		Bool("phone", f.Phone != nil).
		Int("skills", len(f.Skills)).
		Msg("fields extracted")

	return f, nil
}

// ExtractName returns the first PERSON entity of two or three words that is
// not a known false positive and consists only of letters.
func (e *Extractor) ExtractName(ctx context.Context, text string) (*string, error) {
	ents, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecognizerFailed, err)
	}

	for _, ent := range ents {
		if ent.Label != ner.LabelPerson {
			continue
		}
		words := strings.Fields(ent.Text)
		if len(words) <= 1 || len(words) > 3 {
			continue
		}
		candidate := strings.Join(words, " ")
		if _, ok := e.falsePositives[candidate]; ok {
			e.log.Debug().Str("candidate", candidate).Msg("skipping false positive")
			continue
		}
		if allAlpha(words) {
			return &candidate, nil
		}
	}
	return nil, nil
}

func allAlpha(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// ExtractEmail returns the first email-like token.
func ExtractEmail(text string) *string {
	return firstMatch(emailPattern, text)
}

// ExtractPhone returns the first run of ten digits.
func ExtractPhone(text string) *string {
	return firstMatch(phonePattern, text)
}

func firstMatch(re *regexp.Regexp, text string) *string {
	loc := re.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	m := text[loc[0]:loc[1]]
	return &m
}

// ExtractSkills returns the vocabulary entries that occur in text as whole
// words, case-insensitively, in vocabulary order. The result is never nil.
func ExtractSkills(text string, vocab skills.Vocabulary) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	seen := make(map[string]struct{}, len(vocab))
	for _, skill := range vocab {
		if strings.TrimSpace(skill) == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		if containsWord(lower, strings.ToLower(skill)) {
			seen[skill] = struct{}{}
			found = append(found, skill)
		}
	}
	return found
}

// containsWord reports whether needle occurs in s with a word boundary on
// both ends. A boundary sits between a word and a non-word character, or at
// either end of s next to a word character.
func containsWord(s, needle string) bool {
	if needle == "" {
		return false
	}
	for off := 0; off <= len(s)-len(needle); {
		k := strings.Index(s[off:], needle)
		if k < 0 {
			return false
		}
		start := off + k
		end := start + len(needle)
		if wordBoundary(s, start) && wordBoundary(s, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		off = start + size
	}
	return false
}

func wordBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
