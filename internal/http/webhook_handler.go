package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/MotownC/TheRackHack/internal/fulfillment"
	"github.com/MotownC/TheRackHack/internal/payment"
)

// maxWebhookBody caps webhook reads; provider events are a few KB.
const maxWebhookBody = 1 << 20

// EventLog remembers which webhook events were already processed. The
// provider redelivers until it sees a 2xx, so replays are routine.
type EventLog interface {
	Seen(eventID string) (bool, error)
	MarkSeen(eventID string) error
}

type WebhookHandler struct {
	secret   string
	events   EventLog
	notifier PaymentNotifier
	timeout  time.Duration
}

func NewWebhookHandler(secret string, events EventLog, notifier PaymentNotifier, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		secret:   secret,
		events:   events,
		notifier: notifier,
		timeout:  timeout,
	}
}

type WebhookAckDTO struct {
	Received bool `json:"received"`
}

// HandleEvent verifies the provider signature over the raw body, then queues
// completed-session events for order recording. Anything after a valid
// signature is acknowledged with a 2xx so the provider stops redelivering;
// the outbox and the orders table carry the idempotency from here.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	event, err := payment.ParseEvent(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrMissingSignature),
			errors.Is(err, payment.ErrBadSignature),
			errors.Is(err, payment.ErrSignatureExpired):
			respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
		default:
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid webhook payload")
		}
		return
	}

	if event.Type != payment.EventCheckoutCompleted {
		respondJSON(w, http.StatusOK, WebhookAckDTO{Received: true})
		return
	}

	seen, err := h.events.Seen(event.ID)
	if err != nil {
		log.Printf("event log lookup failed for %s: %v", event.ID, err)
	}
	if seen {
		respondJSON(w, http.StatusOK, WebhookAckDTO{Received: true})
		return
	}

	session, err := event.Session()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid session payload")
		return
	}

	if err := h.notifier.PaymentVerified(ctx, session); err != nil {
		if !errors.Is(err, fulfillment.ErrNotPaid) {
			// A failed enqueue must not be acknowledged; the provider
			// redelivers and the outbox insert gets another chance.
			log.Printf("failed to queue webhook session %s: %v", session.ID, err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to process event")
			return
		}
		log.Printf("completed session %s is not paid, ignoring", session.ID)
	}

	if err := h.events.MarkSeen(event.ID); err != nil {
		log.Printf("failed to mark event %s seen: %v", event.ID, err)
	}

	respondJSON(w, http.StatusOK, WebhookAckDTO{Received: true})
}
