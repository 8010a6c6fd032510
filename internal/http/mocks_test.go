package http

import (
	"context"

	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/MotownC/TheRackHack/internal/rates"
	"github.com/google/uuid"
)

// QuoterMock implements RateQuoter for testing
type QuoterMock struct {
	Quote *rates.Quote
	Err   error
	Calls int
}

func (m *QuoterMock) GetRates(_ context.Context, _ []domain.CartItem, _ domain.ShippingAddress) (*rates.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quote, nil
}

// CheckoutServiceMock implements CheckoutService for testing
type CheckoutServiceMock struct {
	Session        *domain.CheckoutSession
	PaymentSession *payment.Session
	Err            error

	DirectReq *checkout.DirectSessionRequest
	BackTo    domain.CheckoutStatus
}

func (m *CheckoutServiceMock) Start(_ context.Context, _ string) (*domain.CheckoutSession, error) {
	return m.Session, m.Err
}

func (m *CheckoutServiceMock) SubmitInformation(_ context.Context, _ uuid.UUID, _ domain.Contact, _ domain.ShippingAddress) (*domain.CheckoutSession, error) {
	return m.Session, m.Err
}

func (m *CheckoutServiceMock) SelectShipping(_ context.Context, _ uuid.UUID, _ string) (*domain.CheckoutSession, error) {
	return m.Session, m.Err
}

func (m *CheckoutServiceMock) CreatePaymentSession(_ context.Context, _ uuid.UUID) (*payment.Session, error) {
	return m.PaymentSession, m.Err
}

func (m *CheckoutServiceMock) Back(_ context.Context, _ uuid.UUID, to domain.CheckoutStatus) (*domain.CheckoutSession, error) {
	m.BackTo = to
	return m.Session, m.Err
}

func (m *CheckoutServiceMock) CreateDirectSession(_ context.Context, req *checkout.DirectSessionRequest) (*payment.Session, error) {
	m.DirectReq = req
	return m.PaymentSession, m.Err
}

// SessionFetcherMock implements SessionFetcher for testing
type SessionFetcherMock struct {
	Session *payment.Session
	Err     error
}

func (m *SessionFetcherMock) GetSession(_ context.Context, _ string) (*payment.Session, error) {
	return m.Session, m.Err
}

// NotifierMock implements PaymentNotifier for testing
type NotifierMock struct {
	Sessions []*payment.Session
	Err      error
}

func (m *NotifierMock) PaymentVerified(_ context.Context, session *payment.Session) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sessions = append(m.Sessions, session)
	return nil
}

// EventLogMock implements EventLog for testing
type EventLogMock struct {
	SeenIDs map[string]bool
}

func NewEventLogMock() *EventLogMock {
	return &EventLogMock{SeenIDs: make(map[string]bool)}
}

func (m *EventLogMock) Seen(eventID string) (bool, error) {
	return m.SeenIDs[eventID], nil
}

func (m *EventLogMock) MarkSeen(eventID string) error {
	m.SeenIDs[eventID] = true
	return nil
}
