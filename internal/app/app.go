// Package app wires configuration into a ready-to-use parse pipeline.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"resume-parser/internal/cache"
	"resume-parser/internal/config"
	"resume-parser/internal/cv"
	"resume-parser/internal/llm"
	"resume-parser/internal/ner"
	"resume-parser/internal/skills"
	"resume-parser/internal/storage"
)

type App struct {
	Config    *config.Config
	Parser    *cv.CVParser
	Extractor *cv.Extractor
	Pipeline  *cv.Pipeline
	DB        *storage.DB // nil without DATABASE_URL
	Cache     cache.Cache
}

// Options tweak the pipeline per entry point.
type Options struct {
	PerFileOutputs bool // name outputs after each input instead of the fixed names
	NoOutputs      bool // skip CSV/JSON files
}

func Build(ctx context.Context, cfg *config.Config, opts Options, log zerolog.Logger) (*App, error) {
	recognizer, err := NewRecognizer(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Parser: cv.NewCVParser(cfg.UploadsDir, log.With().Str("component", "parser").Logger()),
		Cache:  cache.Nop{},
	}
	a.Extractor = cv.NewExtractor(recognizer, cfg.FalsePositives, log.With().Str("component", "extractor").Logger())

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		a.Cache = rc
		log.Info().Msg("redis result cache enabled")
	}

	if cfg.DatabaseURL != "" {
		db, err := storage.NewDB(cfg.DatabaseURL, log.With().Str("component", "storage").Logger())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("db open: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			a.Close()
			return nil, err
		}
		a.DB = db
		log.Info().Msg("database connected")
	}

	pcfg := cv.PipelineConfig{
		Parser:     a.Parser,
		Extractor:  a.Extractor,
		Vocabulary: skills.FileSource(cfg.SkillsFile),
		Cache:      a.Cache,
		Logger:     log.With().Str("component", "pipeline").Logger(),
	}
	switch {
	case opts.NoOutputs:
	case opts.PerFileOutputs:
		pcfg.Outputs = cv.PerFileOutputs(cfg.OutputDir)
	default:
		pcfg.Outputs = cv.FixedOutputs(cfg.OutputDir, cfg.CSVFilename, cfg.JSONFilename)
	}
	if a.DB != nil {
		pcfg.Store = a.DB
	}
	a.Pipeline = cv.NewPipeline(pcfg)

	return a, nil
}

// NewRecognizer picks the entity recognition backend.
func NewRecognizer(cfg *config.Config, log zerolog.Logger) (ner.EntityRecognizer, error) {
	switch cfg.NERBackend {
	case "", "prose":
		return ner.NewProseRecognizer(), nil
	case "llm":
		svc, err := llm.NewService(llm.Options{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.LLMAPIKey,
			Model:    cfg.LLMModel,
			BaseURL:  cfg.LLMBaseURL,
			Logger:   log.With().Str("component", "llm").Logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("llm recognizer: %w", err)
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown NER backend %q (want prose or llm)", cfg.NERBackend)
	}
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
