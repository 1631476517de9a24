package main

import (
	"github.com/spf13/cobra"

	"resume-parser/internal/api"
	"resume-parser/internal/app"
	"resume-parser/internal/logger"
)

var (
	port    string
	workers int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload form and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}

		a, err := buildApp(ctx, cfg, app.Options{}, log)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := api.Options{Pipeline: a.Pipeline, DB: a.DB, Logger: logger.Component("api")}
		return api.Serve(ctx, opts, ":"+cfg.Port, workers)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default $PORT or 8080)")
	serveCmd.Flags().IntVar(&workers, "workers", 2, "background parse workers")
}
