package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface repositories depend on. Both *pgxpool.Pool
// and pgxmock.PgxPoolIface satisfy it, so repositories can be unit
// tested without a live database.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresConfig holds PostgreSQL connection configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultPostgresConfig returns pool defaults suitable for development.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "commerce",
		Password:        "commerce_secret",
		DBName:          "commerce_auth",
		SSLMode:         "disable",
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

const (
	connectAttempts  = 3
	connectBaseWait  = 1 * time.Second
	connectJitterPct = 0.25
)

// backoff returns the wait before retrying the given 0-indexed attempt:
// 1s, 2s, 4s with ±25% jitter.
func backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := connectBaseWait << attempt
	jitter := time.Duration(float64(base) * connectJitterPct * (2*rand.Float64() - 1)) // #nosec G404 -- non-cryptographic jitter
	return base + jitter
}

// NewPostgresPool creates a connection pool, retrying transient startup
// failures so the service survives a database that comes up slightly
// after it does.
func NewPostgresPool(ctx context.Context, cfg *PostgresConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		pool, err := connectOnce(ctx, poolConfig)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt == connectAttempts-1 {
			break
		}
		wait := backoff(attempt)
		if log != nil {
			log.Warn("postgres connection failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", connectAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to postgres: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("connect to postgres after %d attempts: %w", connectAttempts, lastErr)
}

func connectOnce(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
