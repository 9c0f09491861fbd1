package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"job-advisor/internal/domain"
)

const scanBatch = 200

// ErrForeignPrefix rejects prefix deletes outside KeyPrefix.
var ErrForeignPrefix = errors.New("cache: prefix outside the answer namespace")

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// redisAPI is the subset of *redis.Client used by the store.
type redisAPI interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Store keeps response payloads as JSON values.
type Store struct {
	rdb redisAPI
}

// NewStore returns a Store backed by rdb.
func NewStore(rdb redisAPI) (*Store, error) {
	if rdb == nil {
		return nil, errors.New("cache: redis client must not be nil")
	}
	return &Store{rdb: rdb}, nil
}

// Get loads the payload at key. A missing or undecodable value is a miss;
// undecodable values are deleted.
func (s *Store) Get(ctx context.Context, key string) (*domain.ResponsePayload, bool, error) {
	raw, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: Get: %w", err)
	}

	var p domain.ResponsePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Text == "" {
		_ = s.rdb.Del(ctx, key).Err()
		return nil, false, nil
	}
	if _, ok := domain.ParseSource(string(p.EffectiveSource())); !ok {
		p.Source = domain.SourceCache
		p.SyncMeta()
	}
	return &p, true, nil
}

// Set stores p at key for ttl.
func (s *Store) Set(ctx context.Context, key string, p domain.ResponsePayload, ttl time.Duration) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache: Set: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("cache: Set: %w", err)
	}
	return nil
}

// Delete removes keys. Absent keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: Delete: %w", err)
	}
	return nil
}

// DeleteByPrefix removes every key literally starting with prefix and returns
// how many were deleted. prefix must start with KeyPrefix.
func (s *Store) DeleteByPrefix(ctx context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, errors.New("cache: DeleteByPrefix: empty prefix")
	}
	if !strings.HasPrefix(prefix, KeyPrefix) {
		return 0, fmt.Errorf("%w: %q", ErrForeignPrefix, prefix)
	}
	match := globEscaper.Replace(prefix) + "*"
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("cache: DeleteByPrefix: scan: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("cache: DeleteByPrefix: del: %w", err)
			}
			deleted += int(n)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
