package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"resume-parser/internal/app"
	"resume-parser/internal/config"
	"resume-parser/internal/cv"
	"resume-parser/internal/logger"
	"resume-parser/internal/skills"
	"resume-parser/internal/storage"
	"resume-parser/internal/types"
)

// store is the part of storage.DB the tool needs.
type store interface {
	ListUnnamed(ctx context.Context, limit int, includeTried bool) ([]*storage.ParsedResume, error)
	UpdateFields(ctx context.Context, id string, f *types.Fields) error
	MarkReparsed(ctx context.Context, id string) error
}

type options struct {
	limit  int
	dryRun bool
	retry  bool
}

type stats struct {
	scanned int
	named   int
	updated int
	marked  int
}

func main() {
	var opts options
	flag.BoolVar(&opts.dryRun, "dry-run", true, "If true, do not persist updates; just print changes")
	flag.IntVar(&opts.limit, "limit", 200, "Max number of stored resumes to process in one run")
	flag.BoolVar(&opts.retry, "retry", false, "Also revisit rows that an earlier run could not name")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("connecting to database")
	db, err := storage.NewDB(cfg.DatabaseURL, logger.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer db.Close()

	recognizer, err := app.NewRecognizer(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("recognizer setup failed")
	}
	extractor := cv.NewExtractor(recognizer, cfg.FalsePositives, logger.Component("extractor"))

	vocab, err := skills.Load(cfg.SkillsFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SkillsFile).Msg("failed to load skills")
	}

	st, err := reparse(ctx, db, extractor, vocab, opts, log)
	if err != nil {
		log.Fatal().Err(err).Msg("reparse failed")
	}
	log.Info().
		Int("scanned", st.scanned).
		Int("named", st.named).
		Int("updated", st.updated).
		Int("marked", st.marked).
		Bool("dry_run", opts.dryRun).
		Msg("done")
}

// reparse re-runs field extraction over stored text for rows without a name.
// Rows that still yield no name are marked so later runs move past them.
func reparse(ctx context.Context, db store, ex *cv.Extractor, vocab skills.Vocabulary, opts options, log zerolog.Logger) (stats, error) {
	var st stats

	rows, err := db.ListUnnamed(ctx, opts.limit, opts.retry)
	if err != nil {
		return st, err
	}
	log.Info().Int("count", len(rows)).Int("limit", opts.limit).Msg("found stored resumes without a name")

	for _, r := range rows {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		st.scanned++

		fields, err := extract(ctx, ex, r, vocab)
		if err != nil {
			// left unmarked so a later run retries it
			log.Warn().Err(err).Str("id", r.ID).Msg("extraction failed")
			continue
		}
		if fields == nil || fields.Name == nil {
			if opts.dryRun {
				continue
			}
			if err := db.MarkReparsed(ctx, r.ID); err != nil {
				log.Error().Err(err).Str("id", r.ID).Msg("mark failed")
				continue
			}
			st.marked++
			continue
		}
		st.named++

		if opts.dryRun {
			log.Info().Str("id", r.ID).Str("file", r.Filename).Str("name", *fields.Name).Msg("[dry-run] would update")
			continue
		}
		if err := db.UpdateFields(ctx, r.ID, fields); err != nil {
			log.Error().Err(err).Str("id", r.ID).Msg("update failed")
			continue
		}
		st.updated++
		log.Info().Str("id", r.ID).Str("name", *fields.Name).Msg("updated")
	}
	return st, nil
}

func extract(ctx context.Context, ex *cv.Extractor, r *storage.ParsedResume, vocab skills.Vocabulary) (*types.Fields, error) {
	if r.ParsedText == "" {
		return nil, nil
	}
	return ex.Extract(ctx, r.ParsedText, vocab)
}
