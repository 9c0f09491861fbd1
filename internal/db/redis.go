package db

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = time.Second

// NewRedisClient parses redisURL, applies short operation timeouts unless the
// URL sets them, and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("db: parse redis url: %w", err)
	}
	if !hasParam(redisURL, "read_timeout") {
		opts.ReadTimeout = redisOpTimeout
	}
	if !hasParam(redisURL, "write_timeout") {
		opts.WriteTimeout = redisOpTimeout
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("db: redis ping failed: %w", err)
	}
	return rdb, nil
}

// hasParam reports whether a URL or keyword/value DSN sets key.
func hasParam(dsn, key string) bool {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return u.Query().Has(key)
	}
	for _, field := range strings.Fields(dsn) {
		if k, _, ok := strings.Cut(field, "="); ok && k == key {
			return true
		}
	}
	return false
}
