package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutService is the wizard plus the single-shot session path.
type CheckoutService interface {
	Start(ctx context.Context, userID string) (*domain.CheckoutSession, error)
	SubmitInformation(ctx context.Context, id uuid.UUID, contact domain.Contact, addr domain.ShippingAddress) (*domain.CheckoutSession, error)
	SelectShipping(ctx context.Context, id uuid.UUID, rateID string) (*domain.CheckoutSession, error)
	CreatePaymentSession(ctx context.Context, id uuid.UUID) (*payment.Session, error)
	Back(ctx context.Context, id uuid.UUID, to domain.CheckoutStatus) (*domain.CheckoutSession, error)
	CreateDirectSession(ctx context.Context, req *checkout.DirectSessionRequest) (*payment.Session, error)
}

// SessionFetcher reads a hosted payment session back from the provider.
type SessionFetcher interface {
	GetSession(ctx context.Context, sessionID string) (*payment.Session, error)
}

// PaymentNotifier accepts a verified payment session for order recording.
type PaymentNotifier interface {
	PaymentVerified(ctx context.Context, session *payment.Session) error
}

type CheckoutHandler struct {
	service  CheckoutService
	payments SessionFetcher
	notifier PaymentNotifier
	timeout  time.Duration
}

func NewCheckoutHandler(service CheckoutService, payments SessionFetcher, notifier PaymentNotifier, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		payments: payments,
		notifier: notifier,
		timeout:  timeout,
	}
}

type SubmitInformationRequestDTO struct {
	Name    string                 `json:"name"`
	Email   string                 `json:"email"`
	Address domain.ShippingAddress `json:"address"`
}

type SelectShippingRequestDTO struct {
	RateID string `json:"rateId"`
}

type BackRequestDTO struct {
	To string `json:"to"`
}

type PaymentSessionResponseDTO struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CreateSessionRequestDTO struct {
	Cart            []domain.CartItem      `json:"cart"`
	Email           string                 `json:"email"`
	Name            string                 `json:"name"`
	ShippingCost    float64                `json:"shippingCost"`
	ShippingService string                 `json:"shippingService"`
	TaxAmount       float64                `json:"taxAmount"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

type SessionStatusResponseDTO struct {
	Status        string            `json:"status"`
	CustomerEmail string            `json:"customer_email"`
	AmountTotal   int64             `json:"amount_total"`
	Metadata      map[string]string `json:"metadata"`
}

func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	session, err := h.service.Start(ctx, userID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (h *CheckoutHandler) SubmitInformation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := checkoutID(w, r)
	if !ok {
		return
	}

	var req SubmitInformationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	contact := domain.Contact{Name: req.Name, Email: req.Email}
	session, err := h.service.SubmitInformation(ctx, id, contact, req.Address)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) SelectShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := checkoutID(w, r)
	if !ok {
		return
	}

	var req SelectShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.RateID == "" {
		respondError(w, http.StatusBadRequest, "invalid_rate", "rateId is required")
		return
	}

	session, err := h.service.SelectShipping(ctx, id, req.RateID)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := checkoutID(w, r)
	if !ok {
		return
	}

	session, err := h.service.CreatePaymentSession(ctx, id)
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, PaymentSessionResponseDTO{
		ID:  session.ID,
		URL: session.URL,
	})
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := checkoutID(w, r)
	if !ok {
		return
	}

	var req BackRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, err := h.service.Back(ctx, id, domain.CheckoutStatus(req.To))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// CreateSession is the single-shot path: the storefront sends the priced
// cart and gets back the hosted payment page URL.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if len(req.Cart) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "cart must contain at least one item")
		return
	}

	session, err := h.service.CreateDirectSession(ctx, &checkout.DirectSessionRequest{
		Items:           req.Cart,
		CustomerName:    req.Name,
		CustomerEmail:   req.Email,
		Address:         req.ShippingAddress,
		ShippingService: req.ShippingService,
		ShippingCost:    decimal.NewFromFloat(req.ShippingCost).Round(2),
		TaxAmount:       decimal.NewFromFloat(req.TaxAmount).Round(2),
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PaymentSessionResponseDTO{
		ID:  session.ID,
		URL: session.URL,
	})
}

// GetSessionStatus is polled by the success page. When the provider reports
// the session paid, the verified session is queued for order recording; the
// webhook path queues the same session and the outbox dedupes the pair.
func (h *CheckoutHandler) GetSessionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "session id is required")
		return
	}

	session, err := h.payments.GetSession(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "provider_error", "failed to retrieve payment session")
		return
	}

	if session.PaymentStatus == payment.PaymentStatusPaid {
		if err := h.notifier.PaymentVerified(ctx, session); err != nil {
			log.Printf("failed to queue verified session %s: %v", session.ID, err)
		}
	}

	respondJSON(w, http.StatusOK, SessionStatusResponseDTO{
		Status:        session.PaymentStatus,
		CustomerEmail: session.CustomerEmail,
		AmountTotal:   session.AmountTotal,
		Metadata:      session.Metadata,
	})
}

func checkoutID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_checkout_id", "checkout id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "checkout session not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart must contain at least one item")
	case errors.Is(err, checkout.ErrIncompleteInformation):
		respondError(w, http.StatusBadRequest, "incomplete_information", "name, email and a complete shipping address are required")
	case errors.Is(err, checkout.ErrNoShippingSelected):
		respondError(w, http.StatusBadRequest, "no_shipping_selected", "a shipping rate must be selected")
	case errors.Is(err, checkout.ErrUnknownRate):
		respondError(w, http.StatusBadRequest, "unknown_rate", "rateId does not match a quoted rate")
	case errors.Is(err, checkout.ErrStaleQuote):
		respondError(w, http.StatusConflict, "stale_quote", "shipping address changed since rates were quoted")
	case errors.Is(err, checkout.IllegalTransitionError):
		respondError(w, http.StatusConflict, "illegal_transition", "checkout is not in a state that allows this step")
	default:
		log.Printf("checkout error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
