package main

import (
	"context"
	"errors"
	"os"
	"time"

	"factures/internal/amqp"
	"factures/internal/backend"
	"factures/internal/cache"
	"factures/internal/cli"
	"factures/internal/log"
	"factures/internal/services"
	"factures/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.Default())
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentWorker)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration invalid", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting factures-worker")

	repo := cli.InitSQLite(logger, cfg.DBPath)
	defer repo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid sheets backend", log.FieldError, err)
		os.Exit(1)
	}
	writer, err := backend.OpenRowWriter(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize sheets backend", log.FieldError, err, "backend", backendCfg.Type)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Memory sheets backend selected: exported rows are kept in process only")
	}
	logger.Info("Sheets backend initialized", "backend", backendCfg.Type, "spreadsheet_id", backendCfg.SpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	// Rows are read fresh for every event; the worker never caches reports.
	rows := services.NewReportService(repo, cache.Noop[any]{}, logger)
	exportWorker := worker.NewExportWorker(rows, writer, cfg.GoogleSheetName, logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
	})

	// Catch up on events missed while the worker was down.
	logger.Info("Performing startup sync")
	if err := exportWorker.StartupSync(ctx, time.Now()); err != nil {
		logger.Error("Failed startup sync", log.FieldError, err)
	}

	go func() {
		err := amqpClient.ConsumeInvoiceEvents(ctx, exportWorker.HandleInvoiceEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
