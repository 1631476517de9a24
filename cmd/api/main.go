package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "resume-parser/docs" // Swagger docs
	"resume-parser/internal/api"
	"resume-parser/internal/app"
	"resume-parser/internal/config"
	"resume-parser/internal/logger"
)

// @title Resume Parser API
// @version 1.0
// @description Extracts name, email, phone and skills from PDF/DOCX resumes

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api

func main() {
	cfg := config.LoadConfig()
	log := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, app.Options{}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	opts := api.Options{Pipeline: a.Pipeline, DB: a.DB, Logger: logger.Component("api")}
	if err := api.Serve(ctx, opts, ":"+cfg.Port, 2); err != nil {
		log.Error().Err(err).Msg("server failed")
	}
}
