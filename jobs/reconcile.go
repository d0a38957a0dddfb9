package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/fleetdesk/fleetdesk/internal/claims"
	"github.com/fleetdesk/fleetdesk/internal/invoice"
	jobmetrics "github.com/fleetdesk/fleetdesk/internal/jobs"
)

// InvoiceReconciler recomputes stored invoices.
type InvoiceReconciler interface {
	Reconcile(ctx context.Context, repair bool) (invoice.ReconcileReport, error)
}

// ClaimReconciler recomputes stored claims.
type ClaimReconciler interface {
	Reconcile(ctx context.Context, repair bool) (claims.ReconcileReport, error)
}

// ReconcileSummary is the outcome of one run.
type ReconcileSummary struct {
	Invoices invoice.ReconcileReport `json:"invoices"`
	Claims   claims.ReconcileReport  `json:"claims"`
}

// ReconcileJob checks that stored derived figures still match a fresh
// recomputation from their inputs.
type ReconcileJob struct {
	Invoices InvoiceReconciler
	Claims   ClaimReconciler
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewReconcileJob constructs the job handler.
func NewReconcileJob(invoices InvoiceReconciler, claims ClaimReconciler, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReconcileJob {
	return &ReconcileJob{Invoices: invoices, Claims: claims, Logger: logger, Metrics: metrics}
}

// Handle fulfils the asynq.HandlerFunc contract.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reconcile: handler not configured")
	}
	var payload ReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Run(ctx, payload.Repair)
	return err
}

// Run reconciles invoices and claims concurrently.
func (j *ReconcileJob) Run(ctx context.Context, repair bool) (summary ReconcileSummary, err error) {
	tracker := j.Metrics.Track(TaskLedgerReconcile)
	defer func() {
		err = tracker.End(err)
	}()
	start := time.Now()
	logger := j.logger().With(slog.Bool("repair", repair))

	g, gctx := errgroup.WithContext(ctx)
	if j.Invoices != nil {
		g.Go(func() error {
			report, err := j.Invoices.Reconcile(gctx, repair)
			summary.Invoices = report
			return err
		})
	}
	if j.Claims != nil {
		g.Go(func() error {
			report, err := j.Claims.Reconcile(gctx, repair)
			summary.Claims = report
			return err
		})
	}
	if err = g.Wait(); err != nil {
		logger.Error("reconcile failed", slog.Any("error", err))
		return summary, err
	}

	for _, id := range summary.Invoices.Drifted {
		logger.Warn("invoice totals drifted", slog.String("id", id.String()))
	}
	for _, id := range summary.Claims.Drifted {
		logger.Warn("claim totals drifted", slog.String("id", id.String()))
	}
	j.Metrics.AddDrift("invoice", len(summary.Invoices.Drifted), summary.Invoices.Repaired)
	j.Metrics.AddDrift("claim", len(summary.Claims.Drifted), summary.Claims.Repaired)

	logger.Info("reconcile completed",
		slog.Int("invoices_checked", summary.Invoices.Checked),
		slog.Int("invoices_drifted", len(summary.Invoices.Drifted)),
		slog.Int("claims_checked", summary.Claims.Checked),
		slog.Int("claims_drifted", len(summary.Claims.Drifted)),
		slog.Duration("duration", time.Since(start)),
	)
	return summary, nil
}

func (j *ReconcileJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
