package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser/internal/api"
	"resume-parser/internal/app"
	"resume-parser/internal/config"
	"resume-parser/internal/cv"
	"resume-parser/internal/ner"
	"resume-parser/internal/skills"
)

const sampleResume = "Jane Doe\nProblem Solving\njane@example.com 5551234567\nGo, SQL and Docker\n"

// useStaticApp replaces buildApp with a pipeline whose recognizer is fixed.
func useStaticApp(t *testing.T) string {
	t.Helper()
	outDir := t.TempDir()
	cfg = &config.Config{OutputDir: outDir, CSVFilename: "parsed_resume.csv", JSONFilename: "parsed_resume.json"}
	log = zerolog.Nop()

	buildApp = func(_ context.Context, c *config.Config, opts app.Options, l zerolog.Logger) (*app.App, error) {
		parser := cv.NewCVParser(t.TempDir(), l)
		extractor := cv.NewExtractor(ner.Static{
			{Text: "Problem Solving", Label: ner.LabelPerson},
			{Text: "Jane  Doe", Label: ner.LabelPerson},
		}, config.DefaultFalsePositives, l)
		outputs := cv.FixedOutputs(c.OutputDir, c.CSVFilename, c.JSONFilename)
		if opts.PerFileOutputs {
			outputs = cv.PerFileOutputs(c.OutputDir)
		}
		return &app.App{
			Config:    c,
			Parser:    parser,
			Extractor: extractor,
			Pipeline: cv.NewPipeline(cv.PipelineConfig{
				Parser:     parser,
				Extractor:  extractor,
				Vocabulary: skills.StaticSource(skills.Vocabulary{"Go", "Docker", "Rust"}),
				Outputs:    outputs,
				Logger:     l,
			}),
		}, nil
	}
	t.Cleanup(func() {
		buildApp = app.Build
		perFile = false
	})
	return outDir
}

func writeResume(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(sampleResume), 0o644))
	return path
}

func TestParseCmd(t *testing.T) {
	outDir := useStaticApp(t)
	path := writeResume(t, "jane.txt")

	var stdout bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)

	require.NoError(t, runParse(cmd, []string{path}))

	out := stdout.String()
	assert.Contains(t, out, "📄 Name: Jane Doe")
	assert.Contains(t, out, "✉️ Email: jane@example.com")
	assert.Contains(t, out, "📞 Phone: 5551234567")
	assert.Contains(t, out, "🛠️ Skills: Go, Docker")
	assert.Contains(t, out, "✅ Data saved to")
	assert.FileExists(t, filepath.Join(outDir, "parsed_resume.csv"))
	assert.FileExists(t, filepath.Join(outDir, "parsed_resume.json"))
}

func TestParseCmdPerFile(t *testing.T) {
	outDir := useStaticApp(t)
	perFile = true

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, runParse(cmd, []string{writeResume(t, "a.txt"), writeResume(t, "b.txt")}))

	for _, f := range []string{"a.csv", "a.json", "b.csv", "b.json"} {
		assert.FileExists(t, filepath.Join(outDir, f))
	}
}

func TestParseCmdReportsFailures(t *testing.T) {
	useStaticApp(t)
	good := writeResume(t, "ok.txt")
	bad := filepath.Join(t.TempDir(), "notes.odt")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := runParse(cmd, []string{good, bad})
	require.Error(t, err)
	assert.Equal(t, "1 file failed to parse", err.Error())
	assert.Contains(t, stdout.String(), "== "+good)
	assert.Contains(t, stderr.String(), "unsupported file type")
}

func TestParseCmdURL(t *testing.T) {
	useStaticApp(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResume))
	}))
	defer srv.Close()

	var stdout bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)

	require.NoError(t, runParse(cmd, []string{srv.URL + "/cv/jane.txt"}))
	assert.Contains(t, stdout.String(), "Jane Doe")
}

func TestVersionCmd(t *testing.T) {
	var stdout bytes.Buffer
	versionCmd.SetOut(&stdout)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "resume-parser dev\n", stdout.String())
}

func TestApplyFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&skillsFile, "skills", "", "")
	cmd.Flags().StringVar(&nerBackend, "ner", "", "")
	require.NoError(t, cmd.Flags().Parse([]string{"--skills", "vocab.yaml"}))

	c := &config.Config{SkillsFile: "skills.txt", NERBackend: "prose"}
	applyFlags(cmd, c)

	assert.Equal(t, "vocab.yaml", c.SkillsFile)
	assert.Equal(t, "prose", c.NERBackend)
}

func TestServeRouterHasSwaggerDoc(t *testing.T) {
	router := api.NewRouter(api.NewAPI(api.Options{Logger: zerolog.Nop()}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Resume Parser API")
}
