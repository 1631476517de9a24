package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"resume-parser/internal/app"
	"resume-parser/internal/config"
	"resume-parser/internal/logger"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	skillsFile string
	outputDir  string
	nerBackend string
	logLevel   string
	logFormat  string
	timeout    time.Duration

	cfg *config.Config
	log zerolog.Logger

	// buildApp is swapped out in tests.
	buildApp = app.Build
)

var rootCmd = &cobra.Command{
	Use:   "resume-parser",
	Short: "Extract name, email, phone and skills from resumes",
	Long: `resume-parser reads PDF, DOCX or plain-text resumes and pulls out the
candidate's name, email address, phone number and the skills listed in a
vocabulary file. Results are written as CSV and JSON.

Settings come from the environment (or a .env file); flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadConfig()
		applyFlags(cmd, cfg)
		log = logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "resume-parser %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&skillsFile, "skills", "", "skill vocabulary file (.txt, .yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "directory for CSV/JSON output")
	rootCmd.PersistentFlags().StringVar(&nerBackend, "ner", "", "entity recognizer: prose or llm")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "pretty or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "overall timeout (0 for none)")

	rootCmd.AddCommand(parseCmd, serveCmd, versionCmd)
}

// applyFlags overrides config values with flags the user actually set.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("skills") {
		c.SkillsFile = skillsFile
	}
	if flags.Changed("output-dir") {
		c.OutputDir = outputDir
	}
	if flags.Changed("ner") {
		c.NERBackend = nerBackend
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = logFormat
	}
}

// commandContext is cancelled on SIGINT/SIGTERM and after --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
