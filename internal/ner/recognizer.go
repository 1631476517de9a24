// Package ner wraps named-entity recognition backends behind one interface.
package ner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

// LabelPerson is the entity label the name extractor looks for.
const LabelPerson = "PERSON"

type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// EntityRecognizer returns the entities of text in document order.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Named is implemented by recognizers whose output depends on more than
// their type, such as a remote model name.
type Named interface {
	Name() string
}

// ProseRecognizer uses the pretrained English model bundled with prose.
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (p *ProseRecognizer) Name() string {
	return "prose"
}

func (p *ProseRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}
	ents := doc.Entities()
	out := make([]Entity, 0, len(ents))
	for _, e := range ents {
		out = append(out, Entity{Text: e.Text, Label: e.Label})
	}
	return splitAtLineBreaks(text, out), nil
}

// splitAtLineBreaks locates each entity in text and splits it wherever the
// source spans more than one line. prose joins tokens across newlines, so a
// header like "John Smith\nSoftware Engineer" comes back as one entity.
// Entities that cannot be located are kept unchanged.
func splitAtLineBreaks(text string, ents []Entity) []Entity {
	out := make([]Entity, 0, len(ents))
	cursor := 0
	for _, e := range ents {
		re := entityPattern(e.Text)
		if re == nil {
			out = append(out, e)
			continue
		}
		start := cursor
		loc := re.FindStringIndex(text[cursor:])
		if loc == nil {
			start = 0
			loc = re.FindStringIndex(text)
		}
		if loc == nil {
			out = append(out, e)
			continue
		}
		span := text[start+loc[0] : start+loc[1]]
		cursor = start + loc[1]

		for _, line := range strings.Split(span, "\n") {
			if words := strings.Fields(line); len(words) > 0 {
				out = append(out, Entity{Text: strings.Join(words, " "), Label: e.Label})
			}
		}
	}
	return out
}

// entityPattern matches the tokens of an entity with any whitespace, or
// none, between them.
func entityPattern(entity string) *regexp.Regexp {
	tokens := strings.Fields(entity)
	if len(tokens) == 0 {
		return nil
	}
	for i, t := range tokens {
		tokens[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(strings.Join(tokens, `\s*`))
}

// Static always returns the same entities. Useful offline and in tests.
type Static []Entity

func (s Static) Recognize(ctx context.Context, _ string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Entity(nil), s...), nil
}
