package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/config"
	"resume-parser/internal/llm"
	"resume-parser/internal/ner"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	skillsPath := filepath.Join(dir, "skills.txt")
	require.NoError(t, os.WriteFile(skillsPath, []byte("Go\nSQL\n"), 0o644))
	return &config.Config{
		SkillsFile:     skillsPath,
		OutputDir:      filepath.Join(dir, "out"),
		UploadsDir:     filepath.Join(dir, "uploads"),
		CSVFilename:    "parsed_resume.csv",
		JSONFilename:   "parsed_resume.json",
		NERBackend:     "prose",
		FalsePositives: config.DefaultFalsePositives,
	}
}

func TestBuildDefault(t *testing.T) {
	cfg := testConfig(t)

	a, err := Build(context.Background(), cfg, Options{}, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.NotNil(t, a.Pipeline)

	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("reach me at jane@example.com, SQL expert"), 0o644))

	res, err := a.Pipeline.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", *res.Email)
	assert.Equal(t, []string{"SQL"}, res.Skills)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "parsed_resume.json"))
}

func TestBuildPerFileOutputs(t *testing.T) {
	cfg := testConfig(t)
	a, err := Build(context.Background(), cfg, Options{PerFileOutputs: true}, zerolog.Nop())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "alice.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go"), 0o644))

	res, err := a.Pipeline.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "alice.csv"), res.CSVPath)
}

func TestNewRecognizer(t *testing.T) {
	r, err := NewRecognizer(&config.Config{NERBackend: "prose"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &ner.ProseRecognizer{}, r)

	r, err = NewRecognizer(&config.Config{NERBackend: "llm", LLMProvider: "ollama", LLMModel: "llama3"}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &llm.Service{}, r)

	_, err = NewRecognizer(&config.Config{NERBackend: "llm", LLMProvider: "openai"}, zerolog.Nop())
	assert.ErrorContains(t, err, "API key required")

	_, err = NewRecognizer(&config.Config{NERBackend: "spacy"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown NER backend")
}
