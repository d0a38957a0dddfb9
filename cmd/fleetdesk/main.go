package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fleetdesk/fleetdesk/internal/app"
	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/claims"
	"github.com/fleetdesk/fleetdesk/internal/invoice"
	"github.com/fleetdesk/fleetdesk/internal/ledger"
	"github.com/fleetdesk/fleetdesk/internal/observability"
	"github.com/fleetdesk/fleetdesk/internal/platform/cache"
	"github.com/fleetdesk/fleetdesk/internal/platform/db"
	"github.com/fleetdesk/fleetdesk/internal/snapshot"
	"github.com/fleetdesk/fleetdesk/jobs"
	"github.com/fleetdesk/fleetdesk/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Without Redis the API still serves; change notifications and the
	// ledger watcher are skipped.
	var (
		redisClient *redis.Client
		notifier    *snapshot.Notifier
	)
	if redisClient, err = cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	} else {
		notifier = snapshot.NewNotifier(redisClient, cfg.SnapshotChannel)
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	invoiceService := invoice.NewService(invoice.NewRepository(dbpool), invoice.NewCalculator(cfg.VATRate), notifier, logger)
	ledgerService := ledger.NewService(ledger.NewRepository(dbpool), notifier, cfg.LedgerDefaultOwner, logger)
	claimsService := claims.NewService(claims.NewRepository(dbpool), claims.NewPricer(cfg.VATRate), notifier, logger)

	pdfClient := report.NewClient(cfg.GotenbergURL)
	reportService, err := report.NewService(ledgerService, invoiceService, pdfClient, cfg.CurrencySymbol)
	if err != nil {
		logger.Error("init report service", slog.Any("error", err))
		os.Exit(1)
	}

	queueOpt, err := cache.AsynqOpt(cfg.RedisAddr)
	if err != nil {
		logger.Error("job queue config", slog.Any("error", err))
		os.Exit(1)
	}
	inspector := asynq.NewInspector(queueOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(queueOpt)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	if app.StartBackground() && redisClient != nil {
		if err := startLedgerWatcher(ctx, redisClient, cfg, ledgerService, metrics, logger); err != nil {
			logger.Warn("ledger watcher disabled", slog.Any("error", err))
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Metrics:        metrics,
		InvoiceHandler: invoice.NewHandler(logger, invoiceService),
		ChargesHandler: charges.NewHandler(cfg.VATRate),
		LedgerHandler:  ledger.NewHandler(logger, ledgerService),
		ClaimsHandler:  claims.NewHandler(logger, claimsService),
		ReportHandler:  report.NewHandler(reportService, pdfClient, logger),
		JobHandler:     jobs.NewHandler(inspector, jobClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// startLedgerWatcher keeps the per-owner gauges current by reloading every
// transaction whenever the ledger publishes a change.
func startLedgerWatcher(ctx context.Context, client redis.UniversalClient, cfg *app.Config, svc *ledger.Service, metrics *observability.Metrics, logger *slog.Logger) error {
	watcher, err := ledger.NewWatcher(svc.DefaultOwner(), metrics.Registerer(), logger)
	if err != nil {
		return err
	}
	load := func(ctx context.Context) ([]ledger.Transaction, error) {
		return svc.ListTransactions(ctx, ledger.FilterCriteria{})
	}
	feed := snapshot.NewFeed[[]ledger.Transaction](client, cfg.SnapshotChannel, load, logger, ledger.Topic)
	snapshots, err := feed.Start(ctx)
	if err != nil {
		return err
	}
	go watcher.Run(ctx, snapshots)
	return nil
}
