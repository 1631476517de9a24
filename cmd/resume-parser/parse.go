package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"resume-parser/internal/app"
	"resume-parser/internal/export"
	resumehttp "resume-parser/pkg/http"
)

var perFile bool

var parseCmd = &cobra.Command{
	Use:   "parse [file|url]...",
	Short: "Parse one or more resumes and save CSV/JSON",
	Long: `Parses each resume, prints the extracted fields and saves them.

By default every run overwrites parsed_resume.csv and parsed_resume.json in
the output directory. With --per-file each input gets its own <name>.csv and
<name>.json instead.

Remote documents are accepted as http(s) URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&perFile, "per-file", false, "write one CSV/JSON pair per input")
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := buildApp(ctx, cfg, app.Options{PerFileOutputs: perFile}, log)
	if err != nil {
		return err
	}
	defer a.Close()

	downloads, err := os.MkdirTemp("", "resume-parser-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(downloads)
	client := resumehttp.NewClient(60 * time.Second)

	out := cmd.OutOrStdout()
	var failed int
	for _, arg := range args {
		path := arg
		if resumehttp.IsURL(arg) {
			path, err = client.Download(ctx, arg, downloads)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				continue
			}
		}

		res, err := a.Pipeline.Run(ctx, path)
		if err != nil {
			failed++
			log.Error().Err(err).Str("file", arg).Msg("parse failed")
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		if len(args) > 1 {
			fmt.Fprintf(out, "== %s\n", arg)
		}
		fmt.Fprint(out, export.Summary(res))
	}

	if failed > 0 {
		return errors.New(pluralize(failed, "file") + " failed to parse")
	}
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
