package fulfillment

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Topic carries payment.verified events from the outbox to the consumer.
const Topic = "payment-verified"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPoller drains payment_outbox rows into Kafka and re-enqueues paid
// sessions whose outbox insert was lost to a crash.
type OutboxPoller struct {
	eventTick    time.Duration
	recoveryTick time.Duration
	repo         checkout.RepoInterface
	writer       messageWriter
}

func NewOutboxPoller(repo checkout.RepoInterface, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{time.Second, time.Second * 5, repo, w}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckSessions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			log.Printf("failed to publish event id=%d: %v", event.ID, err)
			continue
		}
		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			log.Printf("failed to mark event id=%d as processed: %v", event.ID, err)
		}
	}
}

// recoverStuckSessions handles sessions marked PAID that never got an outbox
// row. The event payload is rebuilt from the stored session state.
func (p *OutboxPoller) recoverStuckSessions(ctx context.Context) {
	sessions, err := p.repo.GetStuckSessions(ctx)
	if err != nil {
		log.Printf("failed to get stuck sessions: %v", err)
		return
	}

	for _, session := range sessions {
		log.Printf("recovering stuck checkout session: %v", session.ID)

		payload, err := json.Marshal(eventFromSession(session))
		if err != nil {
			log.Printf("failed to marshal recovery payload for session %v: %v", session.ID, err)
			continue
		}

		if err := p.repo.InsertPaymentEvent(ctx, session.ProviderSessionID, EventPaymentVerified, payload); err != nil {
			log.Printf("failed to enqueue recovery event for session %v: %v", session.ID, err)
			continue
		}

		log.Printf("session recovered: %v", session.ID)
	}
}

func eventFromSession(session *domain.CheckoutSession) PaymentVerifiedEvent {
	subtotal := domain.Subtotal(session.CartSnapshot)
	shipping := decimal.Zero
	service := ""
	if session.SelectedRate != nil {
		shipping = session.SelectedRate.Rate
		service = session.SelectedRate.Service
	}
	tax := payment.Tax(subtotal, shipping)
	total := subtotal.Add(shipping).Add(tax)

	return PaymentVerifiedEvent{
		ProviderSessionID: session.ProviderSessionID,
		UserID:            session.UserID,
		CustomerName:      session.Contact.Name,
		CustomerEmail:     session.Contact.Email,
		Address:           session.Address,
		Items:             session.CartSnapshot,
		ShippingService:   service,
		ShippingCost:      shipping.StringFixed(2),
		TaxAmount:         tax.StringFixed(2),
		AmountTotal:       total.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *checkout.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.ProviderSessionID),
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
