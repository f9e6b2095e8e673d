// Package journal keeps the developer-facing record of every checkout
// state change.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInvalidEntry = errors.New("journal entry needs a reservation and a state")

// Entry is one checkout state change
type Entry struct {
	ID            uuid.UUID `json:"id"`
	ReservationID models.ID `json:"reservationId"`
	FlowID        string    `json:"flowId,omitempty"`
	OrderID       string    `json:"orderId,omitempty"`
	State         string    `json:"state"`
	Detail        string    `json:"detail,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Journal records and lists checkout entries
type Journal interface {
	Record(ctx context.Context, e *Entry) error
	ListByReservation(ctx context.Context, reservationID models.ID) ([]Entry, error)
}

// prepare fills ID and CreatedAt
func prepare(e *Entry) error {
	if e.ReservationID == "" || e.State == "" {
		return ErrInvalidEntry
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Connect opens a pool and checks it answers
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// DB is the subset of pgxpool.Pool the repository uses
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository stores entries in the checkout_events table
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

const schema = `
	CREATE TABLE IF NOT EXISTS checkout_events (
		id             UUID PRIMARY KEY,
		reservation_id TEXT NOT NULL,
		flow_id        TEXT NOT NULL DEFAULT '',
		order_id       TEXT NOT NULL DEFAULT '',
		state          TEXT NOT NULL,
		detail         TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_checkout_events_reservation
		ON checkout_events (reservation_id, created_at);
`

// Migrate creates the table if needed
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	return nil
}

func (r *Repository) Record(ctx context.Context, e *Entry) error {
	if err := prepare(e); err != nil {
		return err
	}

	query := `
		INSERT INTO checkout_events (id, reservation_id, flow_id, order_id, state, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, e.ID, e.ReservationID.String(), e.FlowID, e.OrderID, e.State, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record checkout event: %w", err)
	}
	return nil
}

func (r *Repository) ListByReservation(ctx context.Context, reservationID models.ID) ([]Entry, error) {
	query := `
		SELECT id, reservation_id, flow_id, order_id, state, detail, created_at
		FROM checkout_events
		WHERE reservation_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, reservationID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query checkout events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var resID string
		if err := rows.Scan(&e.ID, &resID, &e.FlowID, &e.OrderID, &e.State, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkout event: %w", err)
		}
		e.ReservationID = models.ID(resID)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checkout events: %w", err)
	}
	return entries, nil
}

// Memory keeps entries in process. Used when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	entries map[models.ID][]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[models.ID][]Entry)}
}

func (m *Memory) Record(ctx context.Context, e *Entry) error {
	if err := prepare(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ReservationID] = append(m.entries[e.ReservationID], *e)
	return nil
}

func (m *Memory) ListByReservation(ctx context.Context, reservationID models.ID) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, len(m.entries[reservationID]))
	copy(entries, m.entries[reservationID])
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
