package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/MotownC/TheRackHack/internal/domain"
)

// MockRepository implements Repository for testing
type MockRepository struct {
	Cart       *domain.Cart
	GetErr     error
	MutateErr  error
	AddedItems []domain.CartItem
	Deleted    bool
}

func (m *MockRepository) GetCart(_ context.Context, _ string) (*domain.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Cart, nil
}

func (m *MockRepository) AddItem(_ context.Context, _ string, item domain.CartItem) error {
	if m.MutateErr != nil {
		return m.MutateErr
	}
	m.AddedItems = append(m.AddedItems, item)
	return nil
}

func (m *MockRepository) UpdateItemQuantity(_ context.Context, _, _, _ string, _ int) error {
	return m.MutateErr
}

func (m *MockRepository) RemoveItem(_ context.Context, _, _, _ string) error {
	return m.MutateErr
}

func (m *MockRepository) DeleteCart(_ context.Context, _ string) error {
	if m.MutateErr != nil {
		return m.MutateErr
	}
	m.Deleted = true
	return nil
}

// MockCache implements Cache for testing
type MockCache struct {
	mu      sync.Mutex
	Cart    *domain.Cart
	GetErr  error
	SetErr  error
	Sets    int
	Deletes int
}

func (m *MockCache) Get(_ context.Context, _ string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Cart, nil
}

func (m *MockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Cart = cart
	m.Sets++
	return nil
}

func (m *MockCache) Delete(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cart = nil
	m.Deletes++
	return nil
}

func (m *MockCache) SetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sets
}

func (m *MockCache) DeleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Deletes
}

// MockProductReader implements ProductReader for testing
type MockProductReader struct {
	Products map[string]*domain.Product
	Err      error
}

func (m *MockProductReader) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	product, ok := m.Products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return product, nil
}
