package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver

	"legal-backend/internal/shared/config"
	"legal-backend/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned by Connect when no connection string is configured.
var ErrNoDatabaseURL = errors.New("database url is empty")

// Options tunes the connection pool and the startup connect loop.
// Zero fields fall back to the pool defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectAttempts is how many pings Connect makes before giving up.
	ConnectAttempts int
	RetryDelay      time.Duration
}

var (
	openDB = sql.Open
	sleep  = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
)

// DefaultServerOptions suits the API process, which may start before Postgres is ready.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 5,
		RetryDelay:      time.Second,
	}
}

// DefaultMigrateOptions suits one-shot CLI runs: a single connection and a single attempt.
func DefaultMigrateOptions() Options {
	opts := DefaultServerOptions()
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	opts.ConnectAttempts = 1
	return opts
}

// Override returns o with every non-zero field of other applied on top.
func (o Options) Override(other Options) Options {
	if other.MaxOpenConns > 0 {
		o.MaxOpenConns = other.MaxOpenConns
	}
	if other.MaxIdleConns > 0 {
		o.MaxIdleConns = other.MaxIdleConns
	}
	if other.ConnMaxLifetime > 0 {
		o.ConnMaxLifetime = other.ConnMaxLifetime
	}
	if other.ConnMaxIdleTime > 0 {
		o.ConnMaxIdleTime = other.ConnMaxIdleTime
	}
	if other.PingTimeout > 0 {
		o.PingTimeout = other.PingTimeout
	}
	if other.ConnectAttempts > 0 {
		o.ConnectAttempts = other.ConnectAttempts
	}
	if other.RetryDelay > 0 {
		o.RetryDelay = other.RetryDelay
	}
	return o
}

// PoolOptions converts configured pool overrides into Options.
func PoolOptions(p config.DBPool) Options {
	return Options{
		MaxOpenConns:    p.MaxOpenConns,
		MaxIdleConns:    p.MaxIdleConns,
		ConnMaxLifetime: p.ConnMaxLifetime,
		ConnMaxIdleTime: p.ConnMaxIdleTime,
		PingTimeout:     p.PingTimeout,
		ConnectAttempts: p.ConnectAttempts,
	}
}

// Connect opens a pgx-backed *sql.DB and pings it until it answers or the
// attempts run out. The delay between pings doubles each time.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}
	opts = DefaultServerOptions().Override(opts)

	conn, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(opts.MaxOpenConns)
	conn.SetMaxIdleConns(opts.MaxIdleConns)
	conn.SetConnMaxLifetime(opts.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	delay := opts.RetryDelay
	for attempt := 1; ; attempt++ {
		err = ping(ctx, conn, opts.PingTimeout)
		if err == nil {
			break
		}
		if attempt >= opts.ConnectAttempts {
			conn.Close()
			return nil, fmt.Errorf("ping database after %d attempts: %w", attempt, err)
		}
		telemetry.Warn("db.ping_retry", map[string]any{"attempt": attempt, "delay_ms": delay.Milliseconds(), "error": err})
		if err := sleep(ctx, delay); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		delay *= 2
	}

	stats := conn.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return conn, nil
}

func ping(ctx context.Context, conn *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return conn.PingContext(pingCtx)
}
