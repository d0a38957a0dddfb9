package claims

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/internal/charges"
	"github.com/fleetdesk/fleetdesk/internal/money"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/progress"
)

type claimService interface {
	CreateClaim(ctx context.Context, in CreateInput) (Claim, error)
	GetClaim(ctx context.Context, id uuid.UUID) (Checked, error)
	UpdateCharges(ctx context.Context, id uuid.UUID, in Charges) (Claim, error)
	AddProgress(ctx context.Context, id uuid.UUID, in ProgressInput) (progress.Entry, error)
	Progress(ctx context.Context, id uuid.UUID) (progress.Log, error)
}

// Handler exposes claim endpoints.
type Handler struct {
	logger  *slog.Logger
	service claimService
}

// NewHandler constructs the claims handler.
func NewHandler(logger *slog.Logger, service claimService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers claim routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/claims", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}/charges", h.updateCharges)
		r.Post("/{id}/progress", h.addProgress)
		r.Get("/{id}/progress", h.listProgress)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.CreateClaim(r.Context(), in)
	if err != nil {
		h.respondError(w, "create claim", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := claimID(w, r)
	if !ok {
		return
	}
	checked, err := h.service.GetClaim(r.Context(), id)
	if err != nil {
		h.respondError(w, "get claim", err)
		return
	}
	if checked.Drift {
		h.logger.Warn("claim totals drifted", slog.String("id", id.String()))
	}
	httpx.JSON(w, http.StatusOK, checked)
}

func (h *Handler) updateCharges(w http.ResponseWriter, r *http.Request) {
	id, ok := claimID(w, r)
	if !ok {
		return
	}
	var in Charges
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	c, err := h.service.UpdateCharges(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "update claim charges", err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) addProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := claimID(w, r)
	if !ok {
		return
	}
	var in ProgressInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.AddProgress(r.Context(), id, in)
	if err != nil {
		h.respondError(w, "add claim progress", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) listProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := claimID(w, r)
	if !ok {
		return
	}
	log, err := h.service.Progress(r.Context(), id)
	if err != nil {
		h.respondError(w, "list claim progress", err)
		return
	}
	current, _ := log.MostRecent()
	httpx.JSON(w, http.StatusOK, struct {
		Entries progress.Log   `json:"entries"`
		Current progress.Entry `json:"current"`
	}{log, current})
}

func claimID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.BadRequest(w, "invalid claim id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var (
		nonFinite *money.NonFiniteAmountError
		badRange  *charges.InvalidRangeError
	)
	switch {
	case errors.Is(err, ErrClaimNotFound):
		err = httpx.Classify(httpx.ErrNotFound, err)
	case errors.Is(err, ErrDuplicateReference), errors.Is(err, progress.ErrDuplicateEntry):
		err = httpx.Classify(httpx.ErrDuplicate, err)
	case errors.Is(err, ErrInvalidClaim),
		errors.Is(err, progress.ErrInvalidEntry),
		errors.Is(err, charges.ErrMissingDates),
		errors.Is(err, charges.ErrNegativeAmount),
		errors.As(err, &nonFinite),
		errors.As(err, &badRange):
		err = httpx.Classify(httpx.ErrValidation, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
