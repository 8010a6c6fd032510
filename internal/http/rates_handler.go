package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/rates"
)

type RateQuoter interface {
	GetRates(ctx context.Context, items []domain.CartItem, addr domain.ShippingAddress) (*rates.Quote, error)
}

type RatesHandler struct {
	quoter  RateQuoter
	timeout time.Duration
}

func NewRatesHandler(quoter RateQuoter, timeout time.Duration) *RatesHandler {
	return &RatesHandler{
		quoter:  quoter,
		timeout: timeout,
	}
}

type GetRatesRequestDTO struct {
	Cart    []domain.CartItem      `json:"cart"`
	Address domain.ShippingAddress `json:"address"`
}

type GetRatesResponseDTO struct {
	Rates     []domain.ShippingRate `json:"rates"`
	Estimated bool                  `json:"estimated"`
	Warning   string                `json:"warning,omitempty"`
	Selected  *domain.ShippingRate  `json:"selected,omitempty"`
}

// GetRates quotes shipping for a cart and destination. The destination must
// carry a five-digit ZIP; everything else about the address is optional for
// a quote.
func (h *RatesHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req GetRatesRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if len(req.Cart) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart must contain at least one item")
		return
	}
	if !domain.ValidZip(req.Address.ZipCode) {
		respondError(w, http.StatusBadRequest, "invalid_zip", "zipCode must be exactly five digits")
		return
	}

	quote, err := h.quoter.GetRates(ctx, req.Cart, req.Address)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to quote shipping rates")
		return
	}

	respondJSON(w, http.StatusOK, GetRatesResponseDTO{
		Rates:     quote.Rates,
		Estimated: quote.Estimated,
		Warning:   quote.Warning,
		Selected:  quote.Selected(),
	})
}
