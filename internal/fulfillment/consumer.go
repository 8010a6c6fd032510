package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MotownC/TheRackHack/internal/cart"
	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/order"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// StockDecrementer releases reserved inventory for a recorded order.
type StockDecrementer interface {
	DecrementStock(ctx context.Context, id string, quantity int) error
}

// CartClearer empties a user's cart once their order is recorded.
type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

// Consumer records one order per payment.verified event, decrements stock
// and clears the buyer's cart. Recording is first so the unique session
// constraint short-circuits redelivered events before any side effects.
type Consumer struct {
	orders   order.OrderRepository
	stock    StockDecrementer
	carts    CartClearer
	sessions checkout.RepoInterface
	reader   *kafka.Reader
}

func NewConsumer(orders order.OrderRepository, stock StockDecrementer, carts CartClearer, sessions checkout.RepoInterface, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  "fulfillment",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{orders, stock, carts, sessions, reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	if err := c.handleEvent(ctx, m.Value); err != nil {
		log.Printf("failed to handle payment event: %v", err)
	}
}

func (c *Consumer) handleEvent(ctx context.Context, payload []byte) error {
	var event PaymentVerifiedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse payment event: %w", err)
	}

	shippingCost := parseAmount(event.ShippingCost)
	taxAmount := parseAmount(event.TaxAmount)
	total := decimal.NewFromInt(event.AmountTotal).Div(decimal.NewFromInt(100)).Round(2)
	if event.AmountTotal == 0 {
		total = domain.Subtotal(event.Items).Add(shippingCost).Add(taxAmount)
	}

	o := &domain.Order{
		ID:                uuid.New(),
		Date:              time.Now().UTC(),
		ProviderSessionID: event.ProviderSessionID,
		PaymentStatus:     "paid",
		Customer: domain.Customer{
			Name:            event.CustomerName,
			Email:           event.CustomerEmail,
			ShippingAddress: event.Address,
		},
		Items:           event.Items,
		ShippingService: event.ShippingService,
		ShippingCost:    shippingCost,
		TaxAmount:       taxAmount,
		Total:           total,
		Status:          domain.OrderStatusProcessing,
	}

	if err := c.orders.CreateOrder(ctx, o); err != nil {
		if errors.Is(err, order.ErrDuplicateSession) {
			log.Printf("order for session %s already exists, skipping", event.ProviderSessionID)
			return nil
		}
		return fmt.Errorf("create order for session %s: %w", event.ProviderSessionID, err)
	}
	log.Printf("order %s created for session %s", o.ID, event.ProviderSessionID)

	// Stock failures never fail the order; an oversold or missing product
	// is logged and the remaining items still get decremented.
	for _, item := range event.Items {
		if err := c.stock.DecrementStock(ctx, item.ID, item.Quantity); err != nil {
			log.Printf("failed to decrement stock for product %s: %v", item.ID, err)
		}
	}

	if event.UserID != "" {
		if err := c.carts.ClearCart(ctx, event.UserID); err != nil && !errors.Is(err, cart.ErrCartNotFound) {
			log.Printf("failed to clear cart for user %s: %v", event.UserID, err)
		}
		c.completeSession(ctx, event.ProviderSessionID)
	}

	return nil
}

func (c *Consumer) completeSession(ctx context.Context, providerSessionID string) {
	session, err := c.sessions.GetSessionByProviderID(ctx, providerSessionID)
	if err != nil {
		if !errors.Is(err, checkout.ErrSessionNotFound) {
			log.Printf("checkout lookup for session %s failed: %v", providerSessionID, err)
		}
		return
	}
	if !domain.CanTransitionTo(session.Status, domain.CheckoutStatusCompleted) {
		return
	}
	if err := c.sessions.SetSessionStatus(ctx, session.ID, domain.CheckoutStatusCompleted); err != nil {
		log.Printf("failed to complete checkout %s: %v", session.ID, err)
	}
}

func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
