// Package invoice prices repair invoices and keeps their stored totals
// consistent with their line items.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// Notifier announces that the invoice collection changed.
type Notifier interface {
	Publish(ctx context.Context, topic string) error
}

// Topic is the change topic published after every invoice write.
const Topic = "invoices"

// Service handles invoice business logic.
type Service struct {
	repo     Repository
	calc     *Calculator
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, calc *Calculator, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, calc: calc, notifier: notifier, logger: logger, now: time.Now}
}

// Calculator exposes the configured calculator.
func (s *Service) Calculator() *Calculator {
	return s.calc
}

// Preview returns display-safe totals without persisting anything.
func (s *Service) Preview(in Input) Totals {
	return s.calc.Preview(in)
}

// CreateInvoice prices and stores a new invoice.
func (s *Service) CreateInvoice(ctx context.Context, input CreateInput) (Invoice, error) {
	totals, err := s.calc.Calculate(input.Input)
	if err != nil {
		return Invoice{}, err
	}
	now := s.now()
	inv := Invoice{
		ID:        uuid.New(),
		Number:    input.Number,
		ClaimID:   input.ClaimID,
		Date:      input.Date,
		Input:     input.Input,
		Totals:    totals,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if inv.Date.IsZero() {
		inv.Date = now
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if inv.Number == "" {
			num, err := tx.GenerateInvoiceNumber(ctx)
			if err != nil {
				return err
			}
			inv.Number = num
		}
		return tx.InsertInvoice(ctx, inv)
	})
	if err != nil {
		return Invoice{}, err
	}
	s.publish(ctx)
	return inv, nil
}

// GetInvoice loads an invoice and recomputes its totals. Drift is reported
// when the stored figures disagree with the recomputation; the response
// always carries the recomputed figures.
func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (Checked, error) {
	stored, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return Checked{}, err
	}
	return s.check(stored)
}

func (s *Service) check(stored Invoice) (Checked, error) {
	fresh, err := s.calc.Recompute(stored)
	if err != nil {
		return Checked{}, fmt.Errorf("invoice %s: recompute: %w", stored.Number, err)
	}
	if SameTotals(stored.Totals, fresh.Totals) {
		return Checked{Invoice: fresh}, nil
	}
	prev := stored.Totals
	return Checked{Invoice: fresh, Drift: true, Stored: &prev}, nil
}

// RecordPayment sets the amount paid so far and stores the recomputed totals.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, paid float64) (Invoice, error) {
	if err := money.Finite("paid_amount", paid); err != nil {
		return Invoice{}, err
	}
	if paid < 0 {
		return Invoice{}, fmt.Errorf("%w: paid_amount must not be negative", ErrInvalidInput)
	}
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	inv.PaidAmount = paid
	inv, err = s.calc.Recompute(inv)
	if err != nil {
		return Invoice{}, err
	}
	inv.UpdatedAt = s.now()
	if err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateInvoice(ctx, inv)
	}); err != nil {
		return Invoice{}, err
	}
	s.publish(ctx)
	return inv, nil
}

// ListInvoices returns stored invoices with recomputed totals.
func (s *Service) ListInvoices(ctx context.Context, req ListRequest) ([]Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		checked, err := s.check(inv)
		if err != nil {
			s.logger.Warn("invoice recompute skipped", slog.String("number", inv.Number), slog.Any("error", err))
			continue
		}
		out = append(out, checked.Invoice)
	}
	return out, nil
}

// Reconcile recomputes every stored invoice. With repair set, drifted
// invoices are rewritten with the recomputed figures.
func (s *Service) Reconcile(ctx context.Context, repair bool) (ReconcileReport, error) {
	invoices, err := s.repo.ListInvoices(ctx, ListRequest{})
	if err != nil {
		return ReconcileReport{}, err
	}
	var report ReconcileReport
	for _, inv := range invoices {
		report.Checked++
		checked, err := s.check(inv)
		if err != nil {
			s.logger.Warn("reconcile invoice", slog.String("id", inv.ID.String()), slog.Any("error", err))
			report.Failed = append(report.Failed, inv.ID)
			continue
		}
		if !checked.Drift {
			continue
		}
		report.Drifted = append(report.Drifted, inv.ID)
		if !repair {
			continue
		}
		fixed := checked.Invoice
		fixed.UpdatedAt = s.now()
		if err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.UpdateInvoice(ctx, fixed)
		}); err != nil {
			return report, err
		}
		report.Repaired++
	}
	if report.Repaired > 0 {
		s.publish(ctx)
	}
	return report, nil
}

func (s *Service) publish(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, Topic); err != nil {
		s.logger.Warn("publish invoice change", slog.Any("error", err))
	}
}
