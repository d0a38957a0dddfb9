package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/money"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("ledger: invalid transaction")
)

// Topic is the change topic published after every transaction write.
const Topic = "transactions"

// Notifier announces that the transaction collection changed.
type Notifier interface {
	Publish(ctx context.Context, topic string) error
}

// Service records transactions and answers summary queries.
type Service struct {
	repo         Repository
	notifier     Notifier
	defaultOwner string
	validate     *validator.Validate
	logger       *slog.Logger
	now          func() time.Time
}

// NewService builds a Service. defaultOwner absorbs transactions that carry
// no owner.
func NewService(repo Repository, notifier Notifier, defaultOwner string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		notifier:     notifier,
		defaultOwner: defaultOwner,
		validate:     validator.New(),
		logger:       logger,
		now:          time.Now,
	}
}

// DefaultOwner returns the configured default owner name.
func (s *Service) DefaultOwner() string {
	return s.defaultOwner
}

// RecordTransaction validates and stores a transaction. An owner name equal
// to the default owner is stored explicitly and flagged as default; an empty
// owner name is stored as no owner and resolved at read time.
func (s *Service) RecordTransaction(ctx context.Context, in CreateInput) (Transaction, error) {
	if err := money.Finite("amount", in.Amount); err != nil {
		return Transaction{}, err
	}
	if err := s.validate.Struct(in); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	tx := Transaction{
		ID:          uuid.New(),
		Type:        in.Type,
		Amount:      money.Round2(in.Amount),
		Date:        in.Date,
		Category:    strings.TrimSpace(in.Category),
		AccountFrom: strings.TrimSpace(in.AccountFrom),
		AccountTo:   strings.TrimSpace(in.AccountTo),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   s.now(),
	}
	if name := strings.TrimSpace(in.OwnerName); name != "" {
		tx.VehicleOwner = &Owner{Name: name, IsDefault: name == s.defaultOwner}
	}
	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return Transaction{}, err
	}
	s.publish(ctx)
	return tx, nil
}

// DeleteTransaction removes a transaction.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx)
	return nil
}

// ListTransactions returns the transactions visible under criteria.
func (s *Service) ListTransactions(ctx context.Context, criteria FilterCriteria) ([]Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return criteria.Apply(txs, s.defaultOwner), nil
}

// Summary loads the full transaction set and recomputes the summary for
// criteria.
func (s *Service) Summary(ctx context.Context, criteria FilterCriteria) (Summary, error) {
	txs, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary := criteria.Summarize(txs, s.defaultOwner)
	if len(summary.Excluded) > 0 {
		s.logger.Warn("ledger transactions excluded", slog.Int("count", len(summary.Excluded)), slog.String("owner", summary.Owner))
	}
	return summary, nil
}

// Statement builds an owner statement for the given period.
func (s *Service) Statement(ctx context.Context, owner string, from, to time.Time) (Statement, error) {
	criteria := FilterCriteria{From: from, To: to, Owner: ParseSelector(owner)}
	txs, err := s.ListTransactions(ctx, criteria)
	if err != nil {
		return Statement{}, err
	}
	return Statement{
		Owner:        criteria.Owner.String(),
		From:         from,
		To:           to,
		Summary:      Aggregate(txs, criteria.Owner, s.defaultOwner),
		Transactions: txs,
		GeneratedAt:  s.now(),
	}, nil
}

func (s *Service) publish(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, Topic); err != nil {
		s.logger.Warn("publish transaction change", slog.Any("error", err))
	}
}
