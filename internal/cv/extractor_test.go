package cv

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/ner"
	"resume-parser/internal/skills"
	"resume-parser/internal/types"
)

type failingRecognizer struct{}

func (failingRecognizer) Recognize(context.Context, string) ([]ner.Entity, error) {
	return nil, errors.New("model not loaded")
}

func person(text string) ner.Entity {
	return ner.Entity{Text: text, Label: ner.LabelPerson}
}

func newTestExtractor(ents ...ner.Entity) *Extractor {
	return NewExtractor(ner.Static(ents), []string{"Problem Solving", "Stellarium"}, zerolog.Nop())
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		name     string
		entities []ner.Entity
		want     *string
	}{
		{
			name:     "first valid candidate wins",
			entities: []ner.Entity{person("Jane Doe"), person("John Smith")},
			want:     ptr("Jane Doe"),
		},
		{
			name:     "single word rejected",
			entities: []ner.Entity{person("Jane"), person("Mary Ann Lee")},
			want:     ptr("Mary Ann Lee"),
		},
		{
			name:     "four words rejected",
			entities: []ner.Entity{person("Juan Carlos De Silva")},
			want:     nil,
		},
		{
			name:     "false positive skipped after whitespace normalization",
			entities: []ner.Entity{person("  Problem\n Solving "), person("Alan Turing")},
			want:     ptr("Alan Turing"),
		},
		{
			name:     "non-alphabetic word rejected",
			entities: []ner.Entity{person("R2 D2"), person("O'Brien Kelly"), person("Grace Hopper")},
			want:     ptr("Grace Hopper"),
		},
		{
			name:     "other labels ignored",
			entities: []ner.Entity{{Text: "New York", Label: "GPE"}},
			want:     nil,
		},
		{
			name:     "unicode letters accepted",
			entities: []ner.Entity{person("José Müller")},
			want:     ptr("José Müller"),
		},
		{
			name:     "internal whitespace collapsed",
			entities: []ner.Entity{person("Ada\t\tLovelace")},
			want:     ptr("Ada Lovelace"),
		},
		{
			name: "no entities",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestExtractor(tt.entities...).ExtractName(context.Background(), "ignored")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNameRecognizerError(t *testing.T) {
	e := NewExtractor(failingRecognizer{}, nil, zerolog.Nop())
	_, err := e.ExtractName(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRecognizerFailed)
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, ptr("jane_doe@example.com"), ExtractEmail("Contact: jane_doe@example.com, or a@b.c"))
	assert.Equal(t, ptr("doe@mail.example"), ExtractEmail("jane.doe@mail.example.com"))
	assert.Nil(t, ExtractEmail("no address here @ all"))
}

func TestExtractEmailUnicode(t *testing.T) {
	assert.Equal(t, ptr("josé@correo.es"), ExtractEmail("Email: josé@correo.es"))
	assert.Equal(t, ptr("müller@web.de"), ExtractEmail("müller@web.de / +49"))
	assert.Equal(t, ptr("王伟@例子.中国"), ExtractEmail("联系 王伟@例子.中国"))
}

func TestExtractPhone(t *testing.T) {
	assert.Equal(t, ptr("9876543210"), ExtractPhone("Phone: 9876543210"))
	assert.Equal(t, ptr("1234567890"), ExtractPhone("id 123456789012"))
	assert.Nil(t, ExtractPhone("(987) 654-3210"))
}

func TestExtractSkills(t *testing.T) {
	vocab := skills.Vocabulary{"Python", "Go", "Machine Learning", "SQL", "Java", "", "Python"}
	text := "Worked with PYTHON and machine learning; some golang. NoSQL stores."

	got := ExtractSkills(text, vocab)

	assert.Equal(t, []string{"Python", "Machine Learning"}, got)
}

func TestExtractSkillsSpecialCharacters(t *testing.T) {
	vocab := skills.Vocabulary{"Node.js", "C#", "CI/CD"}
	got := ExtractSkills("Built Node.js services with ci/cd pipelines", vocab)
	assert.Equal(t, []string{"Node.js", "CI/CD"}, got)
}

func TestExtractPhoneUnicodeDigits(t *testing.T) {
	assert.Equal(t, ptr("٠١٢٣٤٥٦٧٨٩"), ExtractPhone("هاتف ٠١٢٣٤٥٦٧٨٩"))
}

func TestExtractSkillsUnicodeBoundaries(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "accented letter before", text: "négo", want: []string{}},
		{name: "accented letter after", text: "goé", want: []string{}},
		{name: "digit after", text: "go2 rocks", want: []string{}},
		{name: "punctuation around", text: "(Go), Kubernetes", want: []string{"Go"}},
		{name: "second occurrence matches", text: "négo, then go", want: []string{"Go"}},
		{name: "non-ascii skill", text: "Erfahrung mit Qualitätssicherung", want: []string{"Qualitätssicherung"}},
	}
	vocab := skills.Vocabulary{"Go", "Qualitätssicherung"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSkills(tt.text, vocab))
		})
	}
}

func TestExtractSkillsTrailingSymbolNeedsWordAfter(t *testing.T) {
	// "c++" ends in a non-word character, so the closing boundary needs a
	// word character right after it.
	assert.Empty(t, ExtractSkills("c++ developer", skills.Vocabulary{"C++"}))
	assert.Equal(t, []string{"C++"}, ExtractSkills("c++x", skills.Vocabulary{"C++"}))
}

func TestExtractSkillsNeverNil(t *testing.T) {
	got := ExtractSkills("nothing relevant", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtract(t *testing.T) {
	text := "Jane Doe\njane@example.com | 5551234567\nSkills: Go, Docker"
	e := newTestExtractor(person("Jane Doe"))

	f, err := e.Extract(context.Background(), text, skills.Vocabulary{"Go", "Docker", "Rust"})
	require.NoError(t, err)

	assert.Equal(t, &types.Fields{
		Name:   ptr("Jane Doe"),
		Email:  ptr("jane@example.com"),
		Phone:  ptr("5551234567"),
		Skills: []string{"Go", "Docker"},
	}, f)
}

func TestExtractWithProseRecognizer(t *testing.T) {
	text := "John Smith\n\nSoftware Engineer at Google\nsmith@example.com | 5551234567\nSkills: Go, Docker, SQL\n"
	e := NewExtractor(ner.NewProseRecognizer(), []string{"Problem Solving", "Stellarium"}, zerolog.Nop())

	f, err := e.Extract(context.Background(), text, skills.Vocabulary{"Go", "Docker", "Rust"})
	require.NoError(t, err)

	require.NotNil(t, f.Name)
	assert.Equal(t, "John Smith", *f.Name)
	assert.Equal(t, ptr("smith@example.com"), f.Email)
	assert.Equal(t, ptr("5551234567"), f.Phone)
	assert.Equal(t, []string{"Go", "Docker"}, f.Skills)
}

func ptr(s string) *string { return &s }
