package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
)

// ErrNotPaid is returned when a session is verified but its payment status
// is anything other than "paid". The order is never recorded in this state.
var ErrNotPaid = errors.New("payment session is not paid")

// EventPaymentVerified is the outbox/Kafka event type produced once per
// verified payment session.
const EventPaymentVerified = "payment.verified"

// PaymentVerifiedEvent is the payload carried from verification to order
// recording. Amounts are decimal strings; AmountTotal is the provider's
// charged total in minor units.
type PaymentVerifiedEvent struct {
	ProviderSessionID string                 `json:"provider_session_id"`
	UserID            string                 `json:"user_id,omitempty"`
	CustomerName      string                 `json:"customer_name"`
	CustomerEmail     string                 `json:"customer_email"`
	Address           domain.ShippingAddress `json:"address"`
	Items             []domain.CartItem      `json:"items"`
	ShippingService   string                 `json:"shipping_service"`
	ShippingCost      string                 `json:"shipping_cost"`
	TaxAmount         string                 `json:"tax_amount"`
	AmountTotal       int64                  `json:"amount_total"`
}

// Service is the single consumer-facing entry for both verification
// transports. The webhook receiver and the success-page poller both call
// PaymentVerified; neither records orders directly.
type Service struct {
	repo checkout.RepoInterface
}

func NewService(repo checkout.RepoInterface) *Service {
	return &Service{repo: repo}
}

// PaymentVerified accepts a provider session whose payment status has been
// checked, reconstructs the order snapshot from its metadata and enqueues a
// payment.verified event. Calling it twice for the same session enqueues
// once; the orders table's unique constraint is the final guard either way.
func (s *Service) PaymentVerified(ctx context.Context, session *payment.Session) error {
	if session.PaymentStatus != payment.PaymentStatusPaid {
		return ErrNotPaid
	}

	snapshot, err := payment.UnpackMetadata(session.Metadata)
	if err != nil {
		return fmt.Errorf("failed to unpack session metadata: %w", err)
	}

	event := PaymentVerifiedEvent{
		ProviderSessionID: session.ID,
		CustomerName:      snapshot.CustomerName,
		CustomerEmail:     session.CustomerEmail,
		Address:           snapshot.Address,
		Items:             snapshot.Items,
		ShippingService:   snapshot.ShippingService,
		ShippingCost:      snapshot.ShippingCost.StringFixed(2),
		TaxAmount:         snapshot.TaxAmount.StringFixed(2),
		AmountTotal:       session.AmountTotal,
	}

	// Sessions created through the wizard carry a user whose cart gets
	// cleared after recording; bare sessions have none.
	if wizard, err := s.repo.GetSessionByProviderID(ctx, session.ID); err == nil {
		event.UserID = wizard.UserID
		if domain.CanTransitionTo(wizard.Status, domain.CheckoutStatusPaid) {
			if err := s.repo.SetSessionStatus(ctx, wizard.ID, domain.CheckoutStatusPaid); err != nil {
				log.Printf("failed to mark checkout %s paid: %v", wizard.ID, err)
			}
		}
	} else if !errors.Is(err, checkout.ErrSessionNotFound) {
		log.Printf("checkout lookup for session %s failed: %v", session.ID, err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	return s.repo.InsertPaymentEvent(ctx, session.ID, EventPaymentVerified, payload)
}
