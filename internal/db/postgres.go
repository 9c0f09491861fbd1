// Package db opens the Postgres and Redis connections shared by a process.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// A Lambda instance serves one request at a time.
const (
	lambdaMaxConns        = 2
	lambdaMaxConnIdleTime = 5 * time.Minute
)

// NewPostgresPool opens a small pgxpool suited to a single-request process and
// verifies it with a ping. Pool settings in databaseURL take precedence.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: parse postgres url: %w", err)
	}
	if !hasParam(databaseURL, "pool_max_conns") {
		cfg.MaxConns = lambdaMaxConns
	}
	if !hasParam(databaseURL, "pool_max_conn_idle_time") {
		cfg.MaxConnIdleTime = lambdaMaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: postgres ping failed: %w", err)
	}
	return pool, nil
}
