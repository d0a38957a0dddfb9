package claims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/progress"
)

var (
	ErrClaimNotFound      = errors.New("claim not found")
	ErrDuplicateReference = errors.New("claim reference already exists")
	ErrInvalidClaim       = errors.New("claims: invalid input")
)

// Topic is the change topic published after every claim write.
const Topic = "claims"

// Notifier announces that the claim collection changed.
type Notifier interface {
	Publish(ctx context.Context, topic string) error
}

// Service handles claim business logic.
type Service struct {
	repo     Repository
	pricer   Pricer
	notifier Notifier
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, pricer Pricer, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		pricer:   pricer,
		notifier: notifier,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateClaim prices the initial charges and stores a new claim.
func (s *Service) CreateClaim(ctx context.Context, in CreateInput) (Claim, error) {
	in.Reference = strings.TrimSpace(in.Reference)
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.VehicleReg = strings.ToUpper(strings.TrimSpace(in.VehicleReg))
	if err := s.validate.Struct(in); err != nil {
		return Claim{}, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	priced, totals, err := s.pricer.Price(in.Charges)
	if err != nil {
		return Claim{}, err
	}
	now := s.now()
	c := Claim{
		ID:         uuid.New(),
		Reference:  in.Reference,
		ClientName: in.ClientName,
		VehicleReg: in.VehicleReg,
		Status:     StatusOpen,
		Charges:    priced,
		Totals:     totals,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.InsertClaim(ctx, c)
	}); err != nil {
		return Claim{}, err
	}
	s.publish(ctx)
	return c, nil
}

// GetClaim loads a claim and recomputes its totals, flagging drift.
func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (Checked, error) {
	stored, err := s.repo.GetClaim(ctx, id)
	if err != nil {
		return Checked{}, err
	}
	return s.check(stored)
}

func (s *Service) check(stored Claim) (Checked, error) {
	fresh, err := s.pricer.Recompute(stored)
	if err != nil {
		return Checked{}, fmt.Errorf("claim %s: recompute: %w", stored.Reference, err)
	}
	if SameTotals(stored.Totals, fresh.Totals) {
		return Checked{Claim: fresh}, nil
	}
	prev := stored.Totals
	return Checked{Claim: fresh, Drift: true, Stored: &prev}, nil
}

// UpdateCharges replaces the claim's charges and paid amount and stores the
// fully recomputed totals.
func (s *Service) UpdateCharges(ctx context.Context, id uuid.UUID, in Charges) (Claim, error) {
	priced, totals, err := s.pricer.Price(in)
	if err != nil {
		return Claim{}, err
	}
	var out Claim
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetClaimForUpdate(ctx, id)
		if err != nil {
			return err
		}
		c.Charges = priced
		c.Totals = totals
		c.UpdatedAt = s.now()
		if err := tx.UpdateClaim(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return Claim{}, err
	}
	s.publish(ctx)
	return out, nil
}

// AddProgress appends an entry to the claim's history and moves the claim's
// status to that of its most recent entry.
func (s *Service) AddProgress(ctx context.Context, id uuid.UUID, in ProgressInput) (progress.Entry, error) {
	if err := s.validate.Struct(in); err != nil {
		return progress.Entry{}, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	entry := progress.NewEntry(date, in.Status, in.Note, in.Author)
	if in.ID != uuid.Nil {
		entry.ID = in.ID
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		c, err := tx.GetClaimForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if entry, err = c.Progress.Append(entry); err != nil {
			return err
		}
		if err := tx.AppendProgress(ctx, id, entry); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, id, c.Progress.CurrentStatus(StatusOpen), s.now())
	})
	if err != nil {
		return progress.Entry{}, err
	}
	s.publish(ctx)
	return entry, nil
}

// Progress returns the claim's history in append order.
func (s *Service) Progress(ctx context.Context, id uuid.UUID) (progress.Log, error) {
	entries, err := s.repo.ListProgress(ctx, id)
	if err != nil {
		return progress.Log{}, err
	}
	return progress.FromEntries(entries), nil
}

// Reconcile recomputes every stored claim. With repair set, drifted claims
// are rewritten with the recomputed figures.
func (s *Service) Reconcile(ctx context.Context, repair bool) (ReconcileReport, error) {
	stored, err := s.repo.ListClaims(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}
	var report ReconcileReport
	for _, c := range stored {
		report.Checked++
		checked, err := s.check(c)
		if err != nil {
			s.logger.Warn("reconcile claim", slog.String("id", c.ID.String()), slog.Any("error", err))
			report.Failed = append(report.Failed, c.ID)
			continue
		}
		if !checked.Drift {
			continue
		}
		report.Drifted = append(report.Drifted, c.ID)
		if !repair {
			continue
		}
		fixed := checked.Claim
		fixed.UpdatedAt = s.now()
		if err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.UpdateClaim(ctx, fixed)
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
		s.logger.Warn("publish claim change", slog.Any("error", err))
	}
}
