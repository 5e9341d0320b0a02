package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"factures/internal/amqp"
	"factures/internal/cache"
	"factures/internal/cli"
	apphttp "factures/internal/http"
	"factures/internal/log"
	"factures/internal/metrics"
	"factures/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(log.Default())
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(log.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.DBPath)
	defer repo.Close()

	m := metrics.New()

	var reportCache cache.Cache[any] = cache.Noop[any]{}
	if cfg.ReportCacheTTL > 0 {
		lru := cache.NewLRUCache[any](cfg.ReportCacheSize, cfg.ReportCacheTTL)
		m.RegisterCacheStats("reports", lru.Stats)
		cleanupCtx, stopCleanup := context.WithCancel(context.Background())
		defer stopCleanup()
		lru.StartCleanup(cleanupCtx, cfg.ReportCacheTTL)
		reportCache = lru
	} else {
		logger.Info("Report cache disabled")
	}

	// The publisher stays a nil interface when AMQP is off.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		client.OnPublish(m.IncrEvent)
		m.RegisterBreakerState(func() int { return int(client.BreakerState()) })
		amqpClient, publisher = client, client
		logger.Info("Invoice events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Invoice events disabled - no AMQP_URL provided")
	}

	reports := services.NewReportService(repo, reportCache, logger)
	srv := apphttp.NewServer(cfg.Addr(), apphttp.Dependencies{
		Invoices:       services.NewInvoiceService(repo, publisher, reports, logger),
		Clients:        services.NewClientService(repo, reports, logger),
		Reports:        reports,
		Company:        services.NewCompanyService(repo, logger),
		Store:          repo,
		Metrics:        m,
		Logger:         logger,
		WriteRateLimit: cfg.WriteRateLimit,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting factures server", "addr", cfg.Addr(), "db", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "addr", cfg.Addr())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
