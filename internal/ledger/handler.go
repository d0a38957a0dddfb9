package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/money"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

type ledgerService interface {
	RecordTransaction(ctx context.Context, in CreateInput) (Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, criteria FilterCriteria) ([]Transaction, error)
	Summary(ctx context.Context, criteria FilterCriteria) (Summary, error)
}

// Handler exposes transactions and ledger summaries.
type Handler struct {
	logger  *slog.Logger
	service ledgerService
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service ledgerService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers transaction and summary routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Delete("/{id}", h.delete)
	})
	r.Get("/ledger/summary", h.summary)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	tx, err := h.service.RecordTransaction(r.Context(), in)
	if err != nil {
		h.respondError(w, "record transaction", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tx)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.BadRequest(w, "invalid transaction id")
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), id); err != nil {
		h.respondError(w, "delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r)
	if err != nil {
		httpx.BadRequest(w, "%s", err.Error())
		return
	}
	txs, err := h.service.ListTransactions(r.Context(), criteria)
	if err != nil {
		h.respondError(w, "list transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, txs)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r)
	if err != nil {
		httpx.BadRequest(w, "%s", err.Error())
		return
	}
	summary, err := h.service.Summary(r.Context(), criteria)
	if err != nil {
		h.respondError(w, "ledger summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// ParseCriteria reads owner, from, to, category, account and q from the
// query string.
func ParseCriteria(r *http.Request) (FilterCriteria, error) {
	q := r.URL.Query()
	criteria := FilterCriteria{
		Owner:    ParseSelector(q.Get("owner")),
		Category: q.Get("category"),
		Account:  q.Get("account"),
		Search:   q.Get("q"),
	}
	var err error
	if criteria.From, err = parseDay(q.Get("from"), "from"); err != nil {
		return criteria, err
	}
	if criteria.To, err = parseDay(q.Get("to"), "to"); err != nil {
		return criteria, err
	}
	if !criteria.From.IsZero() && !criteria.To.IsZero() && criteria.To.Before(criteria.From) {
		return criteria, fmt.Errorf("to must not precede from")
	}
	return criteria, nil
}

func parseDay(v, name string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var nonFinite *money.NonFiniteAmountError
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		err = httpx.Classify(httpx.ErrNotFound, err)
	case errors.Is(err, ErrInvalidTransaction), errors.As(err, &nonFinite):
		err = httpx.Classify(httpx.ErrValidation, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
