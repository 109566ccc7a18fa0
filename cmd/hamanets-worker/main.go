package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hamanets/internal/cli"
	"hamanets/internal/log"
	"hamanets/internal/services"
	"hamanets/internal/sheets"
	gsheet "hamanets/internal/sheets/google"
	mem "hamanets/internal/sheets/memory"
	"hamanets/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting hamanets-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	var mirror sheets.Mirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.OptionsFromConfig(cfg))
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		mirror = mem.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
	}

	pcfg := services.DefaultSyncProcessorConfig()
	pcfg.PollInterval = cfg.SyncInterval
	pcfg.Labels = cli.Labels(cfg)
	processor := services.NewSyncProcessor(res.Repository, mirror, pcfg, logger)

	w := worker.NewSyncWorker(processor, worker.ConsumerFrom(res.AMQP), logger)
	if err := w.Run(ctx); err != nil {
		logger.Error("Sync worker failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
