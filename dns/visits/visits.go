// Package visits records who opened the menu and what they picked.
package visits

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/royaldns/core/logger"
	"github.com/m3rciful/royaldns/core/metrics"
)

// Visit is one /start or menu selection.
type Visit struct {
	UserID    int64     `db:"user_id"`
	ChatID    int64     `db:"chat_id"`
	Username  string    `db:"username"`
	Code      string    `db:"code"`
	Kind      string    `db:"kind"`
	CreatedAt time.Time `db:"created_at"`
}

// Recorder persists visits.
type Recorder interface {
	Record(ctx context.Context, v Visit) error
}

// Nop discards visits; used when no database is configured.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Visit) error { return nil }

// DB is the subset of *sqlx.DB the store needs.
type DB interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PingContext(ctx context.Context) error
}

var _ DB = (*sqlx.DB)(nil)

const (
	upsertUserSQL = `INSERT INTO users (user_id, username, first_seen, last_seen)
VALUES (:user_id, :username, :created_at, :created_at)
ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, last_seen = EXCLUDED.last_seen`

	insertVisitSQL = `INSERT INTO visits (user_id, chat_id, code, kind, created_at)
VALUES (:user_id, :chat_id, :code, :kind, :created_at)`
)

// Store writes visits to Postgres.
type Store struct {
	db  DB
	now func() time.Time
}

// NewStore wraps an open connection.
func NewStore(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record upserts the user and appends the visit.
func (s *Store) Record(ctx context.Context, v Visit) error {
	if v.UserID == 0 {
		return fmt.Errorf("visits: missing user id")
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now().UTC()
	}

	start := time.Now()
	err := s.write(ctx, v)
	took := time.Since(start)
	metrics.ObserveVisit(logger.Status(err))
	if err != nil {
		logger.Visits.LogAttrs(ctx, slog.LevelWarn, "visit record failed",
			slog.String("event", "visits.record"),
			slog.String("code", v.Code),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return err
	}
	if logger.ShouldSampleDebug() {
		logger.Visits.LogAttrs(ctx, slog.LevelDebug, "visit recorded",
			slog.String("event", "visits.record"),
			slog.String("code", v.Code),
			slog.String("kind", v.Kind),
			slog.Duration("duration", logger.RoundMS(took)),
		)
	}
	return nil
}

func (s *Store) write(ctx context.Context, v Visit) error {
	if _, err := s.db.NamedExecContext(ctx, upsertUserSQL, v); err != nil {
		return fmt.Errorf("visits: upsert user: %w", err)
	}
	if _, err := s.db.NamedExecContext(ctx, insertVisitSQL, v); err != nil {
		return fmt.Errorf("visits: insert visit: %w", err)
	}
	return nil
}

// Ping reports database reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
