package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/MotownC/TheRackHack/internal/rates"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateQuoter quotes shipping for a cart and destination. Implementations
// never block checkout: provider failures come back as estimated fallback
// tiers, not errors.
type RateQuoter interface {
	GetRates(ctx context.Context, items []domain.CartItem, addr domain.ShippingAddress) (*rates.Quote, error)
}

// SessionCreator creates a hosted payment session with the provider.
type SessionCreator interface {
	CreateSession(ctx context.Context, params *payment.SessionParams) (*payment.Session, error)
}

type CartReader interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
}

// Service drives the three-step checkout wizard: information, shipping,
// payment. State is persisted per session; the redirect to the hosted
// payment page is the terminal transition out of this orchestrator.
type Service struct {
	repo       RepoInterface
	quoter     RateQuoter
	payments   SessionCreator
	carts      CartReader
	successURL string
	cancelURL  string
}

func NewService(repo RepoInterface, quoter RateQuoter, payments SessionCreator, carts CartReader, clientURL string) *Service {
	return &Service{
		repo:       repo,
		quoter:     quoter,
		payments:   payments,
		carts:      carts,
		successURL: clientURL + "/order-success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  clientURL + "/?canceled=true",
	}
}

// Start snapshots the user's cart into a new checkout session. Later cart
// edits do not affect a checkout already in flight.
func (s *Service) Start(ctx context.Context, userID string) (*domain.CheckoutSession, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	session := &domain.CheckoutSession{
		ID:           uuid.New(),
		UserID:       userID,
		Status:       domain.CheckoutStatusInformation,
		CartSnapshot: cart.Items,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitInformation completes step 1. The step predicate requires every
// contact and address field; a short ZIP fails it here, before any rate
// fetch can happen. A complete submission quotes rates for the ZIP and
// auto-selects the cheapest.
func (s *Service) SubmitInformation(ctx context.Context, id uuid.UUID, contact domain.Contact, addr domain.ShippingAddress) (*domain.CheckoutSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionTo(session.Status, domain.CheckoutStatusShipping) {
		return nil, IllegalTransitionError
	}
	if contact.Name == "" || contact.Email == "" || !addr.Complete() {
		return nil, ErrIncompleteInformation
	}

	session.Contact = contact
	session.Address = addr

	// Rates are quoted fresh per ZIP entry; re-submitting the same ZIP keeps
	// the existing quote.
	if session.QuoteZip != addr.ZipCode || len(session.QuotedRates) == 0 {
		quote, err := s.quoter.GetRates(ctx, session.CartSnapshot, addr)
		if err != nil {
			return nil, fmt.Errorf("failed to quote shipping: %w", err)
		}
		session.QuotedRates = quote.Rates
		session.QuoteZip = addr.ZipCode
		session.RatesEstimated = quote.Estimated
		session.SelectedRate = quote.Selected()
		if quote.Estimated {
			log.Printf("checkout %s using estimated rates: %s", session.ID, quote.Warning)
		}
	}

	session.Status = domain.CheckoutStatusShipping
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectShipping completes step 2 with one of the quoted rates.
func (s *Service) SelectShipping(ctx context.Context, id uuid.UUID, rateID string) (*domain.CheckoutSession, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionTo(session.Status, domain.CheckoutStatusPayment) {
		return nil, IllegalTransitionError
	}

	var selected *domain.ShippingRate
	for i := range session.QuotedRates {
		if session.QuotedRates[i].ID == rateID {
			selected = &session.QuotedRates[i]
			break
		}
	}
	if selected == nil {
		return nil, ErrUnknownRate
	}

	session.SelectedRate = selected
	session.Status = domain.CheckoutStatusPayment
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CreatePaymentSession completes step 3: prices the order, packs the session
// metadata and hands the buyer to the hosted payment page.
func (s *Service) CreatePaymentSession(ctx context.Context, id uuid.UUID) (*payment.Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionTo(session.Status, domain.CheckoutStatusRedirected) {
		return nil, IllegalTransitionError
	}
	if session.SelectedRate == nil {
		return nil, ErrNoShippingSelected
	}
	if session.QuoteZip != session.Address.ZipCode {
		return nil, ErrStaleQuote
	}

	subtotal := domain.Subtotal(session.CartSnapshot)
	shippingCost := session.SelectedRate.Rate
	taxAmount := payment.Tax(subtotal, shippingCost)

	metadata, err := payment.PackMetadata(
		session.Contact.Name,
		session.Address,
		session.SelectedRate.Service,
		shippingCost,
		taxAmount,
		session.CartSnapshot,
	)
	if err != nil {
		return nil, err
	}

	providerSession, err := s.payments.CreateSession(ctx, &payment.SessionParams{
		LineItems:     payment.BuildLineItems(session.CartSnapshot, shippingCost, session.SelectedRate.Service, taxAmount),
		CustomerEmail: session.Contact.Email,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		Metadata:      metadata,
	})
	if err != nil {
		return nil, err
	}

	session.ProviderSessionID = providerSession.ID
	session.Status = domain.CheckoutStatusRedirected
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return providerSession, nil
}

// DirectSessionRequest is a single-shot checkout: the storefront sends the
// whole cart with pre-computed shipping and tax, skipping the wizard.
type DirectSessionRequest struct {
	Items           []domain.CartItem
	CustomerName    string
	CustomerEmail   string
	Address         domain.ShippingAddress
	ShippingService string
	ShippingCost    decimal.Decimal
	TaxAmount       decimal.Decimal
}

// CreateDirectSession creates a hosted payment session without a wizard
// session. No checkout row is written; the order is recorded from session
// metadata alone when payment is verified.
func (s *Service) CreateDirectSession(ctx context.Context, req *DirectSessionRequest) (*payment.Session, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	metadata, err := payment.PackMetadata(
		req.CustomerName,
		req.Address,
		req.ShippingService,
		req.ShippingCost,
		req.TaxAmount,
		req.Items,
	)
	if err != nil {
		return nil, err
	}

	return s.payments.CreateSession(ctx, &payment.SessionParams{
		LineItems:     payment.BuildLineItems(req.Items, req.ShippingCost, req.ShippingService, req.TaxAmount),
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		Metadata:      metadata,
	})
}

// Back re-opens an earlier step. The selected rate is cleared, but the
// quoted list is kept until a new ZIP submission replaces it.
func (s *Service) Back(ctx context.Context, id uuid.UUID, to domain.CheckoutStatus) (*domain.CheckoutSession, error) {
	if to != domain.CheckoutStatusInformation && to != domain.CheckoutStatusShipping {
		return nil, IllegalTransitionError
	}

	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransitionTo(session.Status, to) {
		return nil, IllegalTransitionError
	}

	session.SelectedRate = nil
	session.Status = to
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
