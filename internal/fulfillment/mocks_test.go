package fulfillment

import (
	"context"

	"github.com/MotownC/TheRackHack/internal/checkout"
	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/MotownC/TheRackHack/internal/order"
	"github.com/google/uuid"
)

// MockCheckoutRepo implements checkout.RepoInterface for testing
type MockCheckoutRepo struct {
	Sessions   map[string]*domain.CheckoutSession // keyed by provider session id
	Events     []*checkout.OutboxEvent
	InsertErr  error
	Stuck      []*domain.CheckoutSession
	Processed  []int64
	StatusSets map[uuid.UUID]domain.CheckoutStatus
}

func NewMockCheckoutRepo() *MockCheckoutRepo {
	return &MockCheckoutRepo{
		Sessions:   make(map[string]*domain.CheckoutSession),
		StatusSets: make(map[uuid.UUID]domain.CheckoutStatus),
	}
}

func (m *MockCheckoutRepo) Close() error                              { return nil }
func (m *MockCheckoutRepo) RunMigrations(*checkout.Credentials) error { return nil }

func (m *MockCheckoutRepo) CreateSession(_ context.Context, session *domain.CheckoutSession) error {
	m.Sessions[session.ProviderSessionID] = session
	return nil
}

func (m *MockCheckoutRepo) GetSession(_ context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	for _, session := range m.Sessions {
		if session.ID == id {
			return session, nil
		}
	}
	return nil, checkout.ErrSessionNotFound
}

func (m *MockCheckoutRepo) GetSessionByProviderID(_ context.Context, providerSessionID string) (*domain.CheckoutSession, error) {
	session, ok := m.Sessions[providerSessionID]
	if !ok {
		return nil, checkout.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockCheckoutRepo) UpdateSession(_ context.Context, session *domain.CheckoutSession) error {
	m.Sessions[session.ProviderSessionID] = session
	return nil
}

func (m *MockCheckoutRepo) SetSessionStatus(_ context.Context, id uuid.UUID, status domain.CheckoutStatus) error {
	m.StatusSets[id] = status
	for _, session := range m.Sessions {
		if session.ID == id {
			session.Status = status
			return nil
		}
	}
	return checkout.ErrSessionNotFound
}

func (m *MockCheckoutRepo) InsertPaymentEvent(_ context.Context, providerSessionID, eventType string, payload []byte) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	for _, event := range m.Events {
		if event.ProviderSessionID == providerSessionID {
			return nil
		}
	}
	m.Events = append(m.Events, &checkout.OutboxEvent{
		ID:                int64(len(m.Events) + 1),
		ProviderSessionID: providerSessionID,
		EventType:         eventType,
		Payload:           payload,
	})
	return nil
}

func (m *MockCheckoutRepo) GetUnprocessedEvents(_ context.Context, limit int) ([]*checkout.OutboxEvent, error) {
	if len(m.Events) > limit {
		return m.Events[:limit], nil
	}
	return m.Events, nil
}

func (m *MockCheckoutRepo) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.Processed = append(m.Processed, id)
	return nil
}

func (m *MockCheckoutRepo) GetStuckSessions(_ context.Context) ([]*domain.CheckoutSession, error) {
	return m.Stuck, nil
}

// MockOrderRepo implements order.OrderRepository for testing
type MockOrderRepo struct {
	Orders    []*domain.Order
	CreateErr error
}

func (m *MockOrderRepo) CreateOrder(_ context.Context, o *domain.Order) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, existing := range m.Orders {
		if existing.ProviderSessionID == o.ProviderSessionID {
			return order.ErrDuplicateSession
		}
	}
	m.Orders = append(m.Orders, o)
	return nil
}

func (m *MockOrderRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	for _, o := range m.Orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *MockOrderRepo) ListOrders(_ context.Context) ([]*domain.Order, error) {
	return m.Orders, nil
}

// MockStock implements StockDecrementer for testing
type MockStock struct {
	Decrements map[string]int
	FailFor    map[string]error
}

func NewMockStock() *MockStock {
	return &MockStock{Decrements: make(map[string]int), FailFor: make(map[string]error)}
}

func (m *MockStock) DecrementStock(_ context.Context, id string, quantity int) error {
	if err := m.FailFor[id]; err != nil {
		return err
	}
	m.Decrements[id] += quantity
	return nil
}

// MockCarts implements CartClearer for testing
type MockCarts struct {
	Cleared []string
	Err     error
}

func (m *MockCarts) ClearCart(_ context.Context, userID string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Cleared = append(m.Cleared, userID)
	return nil
}
