package domain

import (
	"time"

	"github.com/google/uuid"
)

type CheckoutStatus string

const (
	// Wizard steps, strictly forward-advancing except via an explicit back.
	CheckoutStatusInformation CheckoutStatus = "INFORMATION"
	CheckoutStatusShipping    CheckoutStatus = "SHIPPING"
	CheckoutStatusPayment     CheckoutStatus = "PAYMENT"

	// Redirected means the buyer was handed off to the hosted payment page;
	// the session leaves this orchestrator's control until verification.
	CheckoutStatusRedirected CheckoutStatus = "REDIRECTED"
	CheckoutStatusPaid       CheckoutStatus = "PAID"
	CheckoutStatusCompleted  CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed     CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusInformation: {CheckoutStatusShipping},
	CheckoutStatusShipping:    {CheckoutStatusPayment, CheckoutStatusInformation},
	CheckoutStatusPayment:     {CheckoutStatusRedirected, CheckoutStatusShipping, CheckoutStatusInformation},
	CheckoutStatusRedirected:  {CheckoutStatusPaid, CheckoutStatusFailed},
	CheckoutStatusPaid:        {CheckoutStatusCompleted},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, allowed := range checkoutTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Contact is the buyer identity collected during the information step.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CheckoutSession is the server-side state of one checkout wizard run.
// The cart snapshot is captured at Start so later cart edits cannot change
// an in-flight checkout.
type CheckoutSession struct {
	ID                uuid.UUID       `json:"id"`
	UserID            string          `json:"user_id"`
	Status            CheckoutStatus  `json:"status"`
	Contact           Contact         `json:"contact"`
	Address           ShippingAddress `json:"address"`
	CartSnapshot      []CartItem      `json:"cart_snapshot"`
	QuotedRates       []ShippingRate  `json:"quoted_rates,omitempty"`
	QuoteZip          string          `json:"quote_zip,omitempty"`
	RatesEstimated    bool            `json:"rates_estimated,omitempty"`
	SelectedRate      *ShippingRate   `json:"selected_rate,omitempty"`
	ProviderSessionID string          `json:"provider_session_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
