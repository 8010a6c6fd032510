package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// Customer is the buyer snapshot stored on an order: contact details plus the
// shipping address they checked out with.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ShippingAddress
}

// Order is the durable record of a verified, paid checkout session. It is
// immutable history; only Status advances as fulfillment progresses.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	Date              time.Time       `json:"date"`
	ProviderSessionID string          `json:"stripe_session_id"`
	PaymentStatus     string          `json:"payment_status"`
	Customer          Customer        `json:"customer"`
	Items             []CartItem      `json:"items"`
	ShippingService   string          `json:"shipping_service"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	Status            OrderStatus     `json:"status"`
}
