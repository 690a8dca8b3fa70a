// Package printer journals every printed kitchen ticket and runs the spooler
// that takes print requests off the request path.
package printer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fornace/kitchen-panel/db"
)

// Job states, mirroring the print queue of the upstream system.
const (
	StatePending = "pendiente"
	StatePrinted = "impreso"
	StateError   = "error"
)

// Entry is one journaled print.
type Entry struct {
	ID          int64
	OrderID     int64
	OrderStatus string
	Total       decimal.Decimal
	Body        string
	State       string
	CreatedAt   time.Time
	PrintedAt   *time.Time
}

// Journal persists print entries.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	ListSince(ctx context.Context, since time.Time) ([]Entry, error)
}

// NewPool creates a pgxpool.Pool with shopspring/decimal support registered
// for NUMERIC columns.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database config")
	}

	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create connection pool")
	}
	return pool, nil
}

// RunMigrations applies the embedded schema. Statements are idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

const (
	recordSQL = `INSERT INTO print_jobs (order_id, order_status, total, body, state, printed_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	listSinceSQL = `SELECT id, order_id, order_status, total, body, state, created_at, printed_at
	FROM print_jobs WHERE created_at >= $1 ORDER BY id`
)

var _ Journal = (*PGJournal)(nil)

// PGJournal implements Journal backed by PostgreSQL.
type PGJournal struct {
	pool *pgxpool.Pool
}

// NewJournal returns a PGJournal using the given pool.
func NewJournal(pool *pgxpool.Pool) *PGJournal {
	return &PGJournal{pool: pool}
}

// Record inserts one journal entry.
func (j *PGJournal) Record(ctx context.Context, e Entry) error {
	_, err := j.pool.Exec(ctx, recordSQL,
		e.OrderID, e.OrderStatus, e.Total, e.Body, e.State, e.PrintedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "record print job for order %d", e.OrderID)
	}
	return nil
}

// ListSince returns journal entries created at or after since, oldest first.
func (j *PGJournal) ListSince(ctx context.Context, since time.Time) ([]Entry, error) {
	rows, err := j.pool.Query(ctx, listSinceSQL, since)
	if err != nil {
		return nil, errors.Wrap(err, "query print jobs")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.OrderID, &e.OrderStatus, &e.Total,
			&e.Body, &e.State, &e.CreatedAt, &e.PrintedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan print job")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate print jobs")
	}
	return entries, nil
}
