package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MotownC/TheRackHack/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is one payment-verified row awaiting publication.
type OutboxEvent struct {
	ID                int64
	ProviderSessionID string
	EventType         string
	Payload           []byte
	CreatedAt         time.Time
}

type RepoInterface interface {
	Close() error
	RunMigrations(*Credentials) error

	CreateSession(ctx context.Context, session *domain.CheckoutSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error)
	GetSessionByProviderID(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error)
	UpdateSession(ctx context.Context, session *domain.CheckoutSession) error
	SetSessionStatus(ctx context.Context, id uuid.UUID, status domain.CheckoutStatus) error

	InsertPaymentEvent(ctx context.Context, providerSessionID, eventType string, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	GetStuckSessions(ctx context.Context) ([]*domain.CheckoutSession, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

// DB exposes the shared connection pool for the other Postgres repositories;
// the whole schema lives in one database.
func (r *Repository) DB() *sql.DB {
	return r.db
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// sessionRecord is the JSON-column shape of a checkout session row.
type sessionRecord struct {
	Contact      domain.Contact         `json:"contact"`
	Address      domain.ShippingAddress `json:"address"`
	CartSnapshot []domain.CartItem      `json:"cart_snapshot"`
	QuotedRates  []domain.ShippingRate  `json:"quoted_rates"`
	SelectedRate *domain.ShippingRate   `json:"selected_rate"`
}

func (r *Repository) CreateSession(ctx context.Context, session *domain.CheckoutSession) error {
	state, err := marshalState(session)
	if err != nil {
		return err
	}

	query := `INSERT INTO checkout_sessions
	          (id, user_id, status, state, quote_zip, rates_estimated, provider_session_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`
	_, err = r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Status,
		state,
		session.QuoteZip,
		session.RatesEstimated,
		session.ProviderSessionID)
	if err != nil {
		return fmt.Errorf("insert checkout session: %w", err)
	}
	return nil
}

func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	query := `SELECT id, user_id, status, state, quote_zip, rates_estimated, provider_session_id, created_at, updated_at
	          FROM checkout_sessions WHERE id = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, id))
}

func (r *Repository) GetSessionByProviderID(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error) {
	query := `SELECT id, user_id, status, state, quote_zip, rates_estimated, provider_session_id, created_at, updated_at
	          FROM checkout_sessions WHERE provider_session_id = $1`
	return r.scanSession(r.db.QueryRowContext(ctx, query, providerSessionID))
}

func (r *Repository) UpdateSession(ctx context.Context, session *domain.CheckoutSession) error {
	state, err := marshalState(session)
	if err != nil {
		return err
	}

	query := `UPDATE checkout_sessions
	          SET status = $2, state = $3, quote_zip = $4, rates_estimated = $5, provider_session_id = $6, updated_at = NOW()
	          WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.Status,
		state,
		session.QuoteZip,
		session.RatesEstimated,
		session.ProviderSessionID)
	if err != nil {
		return fmt.Errorf("update checkout session: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repository) SetSessionStatus(ctx context.Context, id uuid.UUID, status domain.CheckoutStatus) error {
	query := `UPDATE checkout_sessions SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update checkout session status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *Repository) InsertPaymentEvent(ctx context.Context, providerSessionID, eventType string, payload []byte) error {
	// One outbox row per provider session; re-verification is a no-op here
	// and the orders table's unique constraint is the final guard.
	query := `INSERT INTO payment_outbox (provider_session_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, NOW())
	          ON CONFLICT (provider_session_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, providerSessionID, eventType, payload)
	if err != nil {
		return fmt.Errorf("insert payment event: %w", err)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := `SELECT id, provider_session_id, event_type, payload, created_at
	          FROM payment_outbox WHERE processed = FALSE ORDER BY id LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.ProviderSessionID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox row iteration: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	query := `UPDATE payment_outbox SET processed = TRUE, processed_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

// GetStuckSessions finds sessions verified paid that have no outbox event,
// so a crash between the status write and the outbox insert is recovered.
func (r *Repository) GetStuckSessions(ctx context.Context) ([]*domain.CheckoutSession, error) {
	query := `SELECT s.id, s.user_id, s.status, s.state, s.quote_zip, s.rates_estimated, s.provider_session_id, s.created_at, s.updated_at
	          FROM checkout_sessions s
	          LEFT JOIN payment_outbox o ON o.provider_session_id = s.provider_session_id
	          WHERE s.status = $1 AND o.id IS NULL`
	rows, err := r.db.QueryContext(ctx, query, domain.CheckoutStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("query stuck sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.CheckoutSession
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stuck session iteration: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanSession(row *sql.Row) (*domain.CheckoutSession, error) {
	session, err := scanSessionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func scanSessionRow(row rowScanner) (*domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	var state []byte
	var providerSessionID sql.NullString
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Status,
		&state,
		&session.QuoteZip,
		&session.RatesEstimated,
		&providerSessionID,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan checkout session: %w", err)
	}
	session.ProviderSessionID = providerSessionID.String

	var record sessionRecord
	if err := json.Unmarshal(state, &record); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session state: %w", err)
	}
	session.Contact = record.Contact
	session.Address = record.Address
	session.CartSnapshot = record.CartSnapshot
	session.QuotedRates = record.QuotedRates
	session.SelectedRate = record.SelectedRate
	return &session, nil
}

func marshalState(session *domain.CheckoutSession) ([]byte, error) {
	state, err := json.Marshal(sessionRecord{
		Contact:      session.Contact,
		Address:      session.Address,
		CartSnapshot: session.CartSnapshot,
		QuotedRates:  session.QuotedRates,
		SelectedRate: session.SelectedRate,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal checkout session state: %w", err)
	}
	return state, nil
}
