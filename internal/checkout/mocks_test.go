package checkout

import (
	"context"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/payment"
	"github.com/MotownC/TheRackHack/internal/rates"
	"github.com/google/uuid"
)

// MockRepository implements RepoInterface for testing
type MockRepository struct {
	Sessions  map[uuid.UUID]*domain.CheckoutSession
	CreateErr error
	UpdateErr error

	Events []*OutboxEvent
}

func NewMockRepository() *MockRepository {
	return &MockRepository{Sessions: make(map[uuid.UUID]*domain.CheckoutSession)}
}

func (m *MockRepository) Close() error                     { return nil }
func (m *MockRepository) RunMigrations(*Credentials) error { return nil }

func (m *MockRepository) CreateSession(_ context.Context, session *domain.CheckoutSession) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	copied := *session
	m.Sessions[session.ID] = &copied
	return nil
}

func (m *MockRepository) GetSession(_ context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	session, ok := m.Sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MockRepository) GetSessionByProviderID(_ context.Context, providerSessionID string) (*domain.CheckoutSession, error) {
	for _, session := range m.Sessions {
		if session.ProviderSessionID == providerSessionID {
			copied := *session
			return &copied, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *MockRepository) UpdateSession(_ context.Context, session *domain.CheckoutSession) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Sessions[session.ID]; !ok {
		return ErrSessionNotFound
	}
	copied := *session
	m.Sessions[session.ID] = &copied
	return nil
}

func (m *MockRepository) SetSessionStatus(_ context.Context, id uuid.UUID, status domain.CheckoutStatus) error {
	session, ok := m.Sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.Status = status
	return nil
}

func (m *MockRepository) InsertPaymentEvent(_ context.Context, providerSessionID, eventType string, payload []byte) error {
	for _, event := range m.Events {
		if event.ProviderSessionID == providerSessionID {
			return nil
		}
	}
	m.Events = append(m.Events, &OutboxEvent{
		ID:                int64(len(m.Events) + 1),
		ProviderSessionID: providerSessionID,
		EventType:         eventType,
		Payload:           payload,
	})
	return nil
}

func (m *MockRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	if len(m.Events) > limit {
		return m.Events[:limit], nil
	}
	return m.Events, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, _ int64) error { return nil }

func (m *MockRepository) GetStuckSessions(_ context.Context) ([]*domain.CheckoutSession, error) {
	return nil, nil
}

// MockQuoter implements RateQuoter for testing
type MockQuoter struct {
	Quote *rates.Quote
	Err   error
	Calls int
}

func (m *MockQuoter) GetRates(_ context.Context, _ []domain.CartItem, _ domain.ShippingAddress) (*rates.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quote, nil
}

// MockSessionCreator implements SessionCreator for testing
type MockSessionCreator struct {
	Session *payment.Session
	Err     error
	Params  *payment.SessionParams
}

func (m *MockSessionCreator) CreateSession(_ context.Context, params *payment.SessionParams) (*payment.Session, error) {
	m.Params = params
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Session, nil
}

// MockCartReader implements CartReader for testing
type MockCartReader struct {
	Cart *domain.Cart
	Err  error
}

func (m *MockCartReader) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Cart, nil
}
