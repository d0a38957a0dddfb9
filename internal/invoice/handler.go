package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/money"
	"github.com/fleetdesk/fleetdesk/internal/payment"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

const listPageLimit = 100

type invoiceService interface {
	Preview(in Input) Totals
	CreateInvoice(ctx context.Context, input CreateInput) (Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (Checked, error)
	RecordPayment(ctx context.Context, id uuid.UUID, paid float64) (Invoice, error)
	ListInvoices(ctx context.Context, req ListRequest) ([]Invoice, error)
}

// Handler exposes invoice endpoints as JSON.
type Handler struct {
	logger  *slog.Logger
	service invoiceService
}

// NewHandler constructs the invoice handler.
func NewHandler(logger *slog.Logger, service invoiceService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Post("/preview", h.preview)
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}/payment", h.recordPayment)
	})
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.service.Preview(in))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), in)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.BadRequest(w, "invalid invoice id")
		return
	}
	checked, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	if checked.Drift {
		h.logger.Warn("invoice totals drifted", slog.String("id", id.String()), slog.String("number", checked.Invoice.Number))
	}
	httpx.JSON(w, http.StatusOK, checked)
}

type paymentRequest struct {
	PaidAmount float64 `json:"paid_amount"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.BadRequest(w, "invalid invoice id")
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.RecordPayment(r.Context(), id, req.PaidAmount)
	if err != nil {
		h.respondError(w, "record payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		httpx.BadRequest(w, "%s", err.Error())
		return
	}
	invoices, err := h.service.ListInvoices(r.Context(), req)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	if invoices == nil {
		invoices = []Invoice{}
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func parseListRequest(r *http.Request) (ListRequest, error) {
	q := r.URL.Query()
	req := ListRequest{Limit: listPageLimit}
	if v := q.Get("status"); v != "" {
		status := payment.Status(v)
		if !status.Valid() {
			return req, fmt.Errorf("unknown status %q", v)
		}
		req.Status = status
	}
	if v := q.Get("claim_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, fmt.Errorf("invalid claim_id")
		}
		req.ClaimID = &id
	}
	for key, dst := range map[string]*time.Time{"from": &req.FromDate, "to": &req.ToDate} {
		if v := q.Get(key); v != "" {
			t, err := time.Parse(time.DateOnly, v)
			if err != nil {
				return req, fmt.Errorf("%s must be YYYY-MM-DD", key)
			}
			*dst = t
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > listPageLimit {
			return req, fmt.Errorf("limit must be between 1 and %d", listPageLimit)
		}
		req.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("offset must not be negative")
		}
		req.Offset = n
	}
	return req, nil
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var nonFinite *money.NonFiniteAmountError
	switch {
	case errors.Is(err, ErrInvoiceNotFound):
		err = httpx.Classify(httpx.ErrNotFound, err)
	case errors.Is(err, ErrInvalidInput), errors.As(err, &nonFinite):
		err = httpx.Classify(httpx.ErrValidation, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
