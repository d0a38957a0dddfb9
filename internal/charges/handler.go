package charges

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk/internal/money"
	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
)

// Handler prices hire, storage and recovery charges without storing them.
type Handler struct {
	vatRate float64
}

// NewHandler constructs the charges handler.
func NewHandler(vatRate float64) *Handler {
	return &Handler{vatRate: vatRate}
}

// MountRoutes registers calculator routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/charges", func(r chi.Router) {
		r.Post("/hire", priceHandler(PriceHire))
		r.Post("/storage", priceHandler(PriceStorage))
		r.Post("/recovery", priceHandler(func(rc RecoveryCharge) (RecoveryCharge, error) {
			return PriceRecovery(rc, h.vatRate)
		}))
	})
}

func priceHandler[T any](price func(T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.RespondError(w, err)
			return
		}
		out, err := price(in)
		if err != nil {
			httpx.RespondError(w, classify(err))
			return
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func classify(err error) error {
	var (
		badRange  *InvalidRangeError
		nonFinite *money.NonFiniteAmountError
	)
	if errors.As(err, &badRange) || errors.As(err, &nonFinite) ||
		errors.Is(err, ErrMissingDates) || errors.Is(err, ErrNegativeAmount) {
		return httpx.Classify(httpx.ErrValidation, err)
	}
	return err
}
