package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/invoice"
	"github.com/fleetdesk/fleetdesk/internal/ledger"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

type documentService interface {
	StatementPDF(ctx context.Context, owner string, from, to time.Time) ([]byte, error)
	InvoicePDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Handler manages report endpoints.
type Handler struct {
	service documentService
	client  pinger
	logger  *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(service documentService, client pinger, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, client: client, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/owners/{owner}/statement.pdf", h.statement)
	r.Get("/invoices/{id}.pdf", h.invoice)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.RespondError(w, httpx.Classify(httpx.ErrUnavailable, err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	criteria, err := ledger.ParseCriteria(r)
	if err != nil {
		httpx.BadRequest(w, "%s", err.Error())
		return
	}
	owner := chi.URLParam(r, "owner")
	pdf, err := h.service.StatementPDF(r.Context(), owner, criteria.From, criteria.To)
	if err != nil {
		h.respondError(w, "render statement", err)
		return
	}
	writePDF(w, "statement-"+ledger.ParseSelector(owner).String()+".pdf", pdf)
}

func (h *Handler) invoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.BadRequest(w, "invalid invoice id")
		return
	}
	pdf, err := h.service.InvoicePDF(r.Context(), id)
	if err != nil {
		h.respondError(w, "render invoice", err)
		return
	}
	writePDF(w, "invoice-"+id.String()+".pdf", pdf)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, invoice.ErrInvoiceNotFound) {
		httpx.RespondError(w, httpx.Classify(httpx.ErrNotFound, err))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusBadGateway, "Render Failed", "")
}

func writePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
