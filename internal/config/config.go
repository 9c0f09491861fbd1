// Package config loads the runtime settings that change without a deploy.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"job-advisor/internal/cache"
)

const (
	tokenParam          = "/open-ai-token"
	enableCacheParam    = "/config/enable_cache"
	cacheTTLMiniParam   = "/config/cache_ttl_mini"
	cacheTTLOthersParam = "/config/cache_ttl_others"
	modelParam          = "/config/model"

	defaultRefresh = 5 * time.Minute
)

// Snapshot is one immutable read of the settings. The zero value has no
// credential, caching disabled and no overrides.
type Snapshot struct {
	APIKey         string
	CacheEnabled   bool
	CacheTTLMini   time.Duration
	CacheTTLOthers time.Duration
	DefaultModel   string
}

// HasCredential reports whether a model call may be attempted.
func (s Snapshot) HasCredential() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// ResolveModel applies the allow list and configured default to requested.
func (s Snapshot) ResolveModel(requested string) string {
	return cache.ResolveModel(requested, s.DefaultModel)
}

// CacheTTL returns the cache lifetime for a resolved model.
func (s Snapshot) CacheTTL(model string) time.Duration {
	return cache.TTL(model, s.CacheTTLMini, s.CacheTTLOthers)
}

// ParamGetter fetches parameters by full name. Unknown names are absent.
type ParamGetter interface {
	GetParameters(ctx context.Context, names []string) (map[string]string, error)
}

// Loader caches the last Snapshot for a refresh interval. Failed loads are not
// cached so the next call retries.
type Loader struct {
	params  ParamGetter
	prefix  string
	refresh time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	snap     Snapshot
	loadedAt time.Time
	loaded   bool
}

// NewLoader returns a Loader reading parameters under prefix. A non-positive
// refresh uses five minutes.
func NewLoader(p ParamGetter, prefix string, refresh time.Duration) (*Loader, error) {
	if p == nil {
		return nil, errors.New("config: param getter must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("config: parameter prefix must not be empty")
	}
	if refresh <= 0 {
		refresh = defaultRefresh
	}
	return &Loader{params: p, prefix: prefix, refresh: refresh, now: time.Now}, nil
}

// Load returns the cached snapshot or fetches a fresh one.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	l.mu.RLock()
	if l.fresh() {
		snap := l.snap
		l.mu.RUnlock()
		return snap, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fresh() {
		return l.snap, nil
	}

	snap, err := l.fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	l.snap = snap
	l.loadedAt = l.now()
	l.loaded = true
	return snap, nil
}

func (l *Loader) fresh() bool {
	return l.loaded && l.now().Sub(l.loadedAt) < l.refresh
}

func (l *Loader) fetch(ctx context.Context) (Snapshot, error) {
	names := []string{
		l.prefix + tokenParam,
		l.prefix + enableCacheParam,
		l.prefix + cacheTTLMiniParam,
		l.prefix + cacheTTLOthersParam,
		l.prefix + modelParam,
	}
	values, err := l.params.GetParameters(ctx, names)
	if err != nil {
		return Snapshot{}, fmt.Errorf("config: load parameters: %w", err)
	}

	snap := Snapshot{
		CacheEnabled:   true,
		CacheTTLMini:   seconds(values[l.prefix+cacheTTLMiniParam]),
		CacheTTLOthers: seconds(values[l.prefix+cacheTTLOthersParam]),
		DefaultModel:   strings.TrimSpace(values[l.prefix+modelParam]),
	}
	if raw, ok := values[l.prefix+enableCacheParam]; ok {
		snap.CacheEnabled = strings.TrimSpace(raw) == "1"
	}
	if raw, ok := values[l.prefix+tokenParam]; ok {
		key, err := parseToken(raw)
		if err != nil {
			return Snapshot{}, err
		}
		snap.APIKey = key
	}
	return snap, nil
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

// parseToken accepts an empty value as "no credential".
func parseToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("config: unmarshal token parameter as JSON: %w", err)
	}
	return strings.TrimSpace(tp.Token), nil
}

// seconds parses a positive whole number of seconds; anything else is zero.
func seconds(raw string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
