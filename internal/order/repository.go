package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrDuplicateSession is the storage-enforced idempotency guarantee:
	// at most one order per payment session, regardless of which device or
	// transport verified it.
	ErrDuplicateSession = errors.New("order for this payment session already exists")
	ErrOrderNotFound    = errors.New("order not found")
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal order customer: %w", err)
	}

	query := `INSERT INTO orders
	          (id, order_date, provider_session_id, payment_status, customer, items, shipping_service, shipping_cost, tax_amount, total, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.Date,
		order.ProviderSessionID,
		order.PaymentStatus,
		customerJSON,
		itemsJSON,
		order.ShippingService,
		order.ShippingCost,
		order.TaxAmount,
		order.Total,
		order.Status)

	if insertErr != nil {
		if isUniqueViolation(insertErr) {
			return ErrDuplicateSession
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := selectColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := selectColumns + ` FROM orders ORDER BY order_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order row iteration: %w", err)
	}
	return orders, nil
}

const selectColumns = `SELECT id, order_date, provider_session_id, payment_status, customer, items, shipping_service, shipping_cost, tax_amount, total, status`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var customerJSON, itemsJSON []byte
	if err := row.Scan(
		&order.ID,
		&order.Date,
		&order.ProviderSessionID,
		&order.PaymentStatus,
		&customerJSON,
		&itemsJSON,
		&order.ShippingService,
		&order.ShippingCost,
		&order.TaxAmount,
		&order.Total,
		&order.Status,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal order customer: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
