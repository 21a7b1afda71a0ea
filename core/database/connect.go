// Package database opens the Postgres pool and applies schema migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/royaldns/core/logger"
)

const (
	driver         = "postgres"
	pingTimeout    = 5 * time.Second
	firstRetryWait = 500 * time.Millisecond
	maxRetryWait   = 5 * time.Second
)

// Connect opens the pool and waits up to cfg.ReadyTimeout for the server to answer.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx := context.Background()
	if cfg.ReadyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ReadyTimeout)
		defer cancel()
	}

	db, err := sqlx.Open(driver, cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	start := time.Now()
	attempts, err := waitReady(ctx, db)
	took := logger.RoundMS(time.Since(start))
	if err != nil {
		_ = db.Close()
		logger.DB.LogAttrs(ctx, slog.LevelError, "db connect failed",
			slog.String("event", "db.connect"),
			slog.String("host", cfg.Host),
			slog.String("db", cfg.Name),
			slog.Int("attempts", attempts),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect %s: %w", cfg.Redacted(), err)
	}

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "db connected",
		slog.String("event", "db.connect"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Int("attempts", attempts),
		slog.Duration("duration", took),
	)
	return db, nil
}

// waitReady pings db until it answers or ctx expires, doubling the pause between attempts.
func waitReady(ctx context.Context, db *sqlx.DB) (int, error) {
	wait := firstRetryWait
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return attempt, nil
		}
		logger.DB.LogAttrs(ctx, slog.LevelDebug, "db not ready",
			slog.String("event", "db.wait"),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return attempt, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-t.C:
		}
		wait = min(wait*2, maxRetryWait)
	}
}
