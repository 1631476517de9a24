package cv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"resume-parser/internal/cache"
	"resume-parser/internal/export"
	"resume-parser/internal/skills"
	"resume-parser/internal/storage"
	"resume-parser/internal/types"
)

// ResultStore persists results. *storage.DB satisfies it.
type ResultStore interface {
	SaveParsedResume(ctx context.Context, r *storage.ParsedResume) error
}

// OutputPaths maps a source file name to its CSV and JSON destinations.
type OutputPaths func(filename string) (csvPath, jsonPath string)

// FixedOutputs writes every result to the same two files.
func FixedOutputs(dir, csvName, jsonName string) OutputPaths {
	return func(string) (string, string) {
		return filepath.Join(dir, csvName), filepath.Join(dir, jsonName)
	}
}

// PerFileOutputs names the outputs after the source document.
func PerFileOutputs(dir string) OutputPaths {
	return func(filename string) (string, string) {
		stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		return filepath.Join(dir, stem+".csv"), filepath.Join(dir, stem+".json")
	}
}

type PipelineConfig struct {
	Parser     *CVParser
	Extractor  *Extractor
	Vocabulary skills.Source
	Cache      cache.Cache // optional
	Store      ResultStore // optional
	Outputs    OutputPaths // nil disables CSV/JSON files
	Logger     zerolog.Logger
}

// Pipeline runs one document through text extraction, field extraction and
// the configured outputs.
type Pipeline struct {
	parser    *CVParser
	extractor *Extractor
	vocab     skills.Source
	cache     cache.Cache
	store     ResultStore
	outputs   OutputPaths
	log       zerolog.Logger

	// guards the output files, which FixedOutputs shares across runs
	writeMu sync.Mutex
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	c := cfg.Cache
	if c == nil {
		c = cache.Nop{}
	}
	vocab := cfg.Vocabulary
	if vocab == nil {
		vocab = skills.StaticSource(nil)
	}
	return &Pipeline{
		parser:    cfg.Parser,
		extractor: cfg.Extractor,
		vocab:     vocab,
		cache:     c,
		store:     cfg.Store,
		outputs:   cfg.Outputs,
		log:       cfg.Logger,
	}
}

// Run processes a document on disk.
func (p *Pipeline) Run(ctx context.Context, path string) (*types.Result, error) {
	parsed, err := p.parser.ParsePath(path)
	if err != nil {
		return nil, newParseError(filepath.Base(path), "extract text", err)
	}
	return p.process(ctx, parsed)
}

// RunUpload stores an uploaded document and processes it.
func (p *Pipeline) RunUpload(ctx context.Context, filename string, r io.Reader) (*types.Result, error) {
	parsed, err := p.parser.ParseFile(filename, r)
	if err != nil {
		return nil, newParseError(filepath.Base(filename), "extract text", err)
	}
	return p.process(ctx, parsed)
}

func (p *Pipeline) process(ctx context.Context, parsed *ParsedCV) (*types.Result, error) {
	start := time.Now()
	log := p.log.With().Str("file", parsed.Filename).Logger()

	vocab, err := p.vocab()
	if err != nil {
		return nil, newParseError(parsed.Filename, "load skills", err)
	}

	key := cacheKey(parsed.Digest, vocab, p.extractor.Settings())
	fields, cached, err := p.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("cache lookup failed")
	}
	if !cached {
		fields, err = p.extractor.Extract(ctx, parsed.FullText, vocab)
		if err != nil {
			return nil, newParseError(parsed.Filename, "extract fields", err)
		}
		if err := p.cache.Set(ctx, key, fields); err != nil {
			log.Warn().Err(err).Msg("cache store failed")
		}
	}

	result := &types.Result{
		ID:       uuid.NewString(),
		Filename: parsed.Filename,
		Digest:   parsed.Digest,
		Fields:   *fields,
		Cached:   cached,
	}

	if p.outputs != nil {
		result.CSVPath, result.JSONPath = p.outputs(parsed.Filename)
		if err := p.writeOutputs(result); err != nil {
			return nil, newParseError(parsed.Filename, "save", err)
		}
	}

	if p.store != nil {
		row := &storage.ParsedResume{
			ID:         result.ID,
			Filename:   parsed.Filename,
			Digest:     parsed.Digest,
			FileType:   parsed.FileType,
			ParsedText: parsed.FullText,
			Fields:     *fields,
		}
		if err := p.store.SaveParsedResume(ctx, row); err != nil {
			log.Error().Err(err).Msg("failed to store parsed resume")
		} else {
			result.ID = row.ID
		}
	}

	log.Info().
		Bool("cached", cached).
		Int("text_length", len(parsed.FullText)).
		Dur("took", time.Since(start)).
		Msg("resume parsed")

	return result, nil
}

func (p *Pipeline) writeOutputs(r *types.Result) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	var errs []error
	if err := export.SaveCSV(r.CSVPath, &r.Fields); err != nil {
		errs = append(errs, err)
	}
	if err := export.SaveJSON(r.JSONPath, &r.Fields); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrExportFailed, errors.Join(errs...))
	}
	return nil
}

// cacheKey ties cached fields to the document, the vocabulary and the
// extractor settings used.
func cacheKey(digest string, vocab skills.Vocabulary, settings string) string {
	h := sha256.New()
	h.Write([]byte(settings))
	h.Write([]byte{0})
	for _, s := range vocab {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return digest + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}
