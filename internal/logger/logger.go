package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger. Init replaces it.
var Logger = log.Logger

type Config struct {
	Level        string // debug, info, warn, error
	Format       string // json or pretty
	TimeFormat   string
	ReportCaller bool
}

// Init configures the global logger from cfg. Unknown levels fall back to info.
func Init(cfg Config) zerolog.Logger {
	return InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter is Init with an explicit output, used by tests and the CLI.
func InitWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	output := out
	if cfg.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: cfg.TimeFormat,
		}
	}

	ctxLogger := zerolog.New(output).Level(level).With().Timestamp()
	if cfg.ReportCaller {
		ctxLogger = ctxLogger.Caller()
	}

	Logger = ctxLogger.Logger()
	log.Logger = Logger
	return Logger
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
