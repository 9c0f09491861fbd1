package jobmatch

import (
	"context"
	"fmt"
	"strings"
)

// Catalog is the read-only title lookup surface of the job catalog. Each
// method returns "" when nothing matches.
type Catalog interface {
	// FindTitleContaining returns the shortest title whose folded form
	// contains phrase.
	FindTitleContaining(ctx context.Context, phrase string) (string, error)
	// FindCompactTitleContaining matches against titles with separators stripped.
	FindCompactTitleContaining(ctx context.Context, compact string) (string, error)
	FindExactTitle(ctx context.Context, title string) (string, error)
}

// Resolver matches messages against the catalog. A Resolver memoizes lookups
// and is meant to live for one request.
type Resolver struct {
	catalog Catalog
	memo    map[string]string
}

// NewResolver returns a request-scoped Resolver.
func NewResolver(c Catalog) *Resolver {
	return &Resolver{catalog: c, memo: make(map[string]string)}
}

// Hints are caller-supplied job identifiers tried before the message.
type Hints struct {
	JobTitle string
	JobSlug  string
}

// Resolve returns the best-matching title for the request, or "".
func (r *Resolver) Resolve(ctx context.Context, message string, hints Hints) (string, error) {
	for _, hint := range []string{hints.JobTitle, hints.JobSlug} {
		title, err := r.resolveHint(ctx, hint)
		if err != nil {
			return "", err
		}
		if title != "" {
			return title, nil
		}
	}
	return r.ResolveMessage(ctx, message)
}

func (r *Resolver) resolveHint(ctx context.Context, hint string) (string, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", nil
	}
	title, err := r.exact(ctx, hint)
	if err != nil || title != "" {
		return title, err
	}
	normalized := NormalizeLookupText(hint)
	if normalized == "" {
		return "", nil
	}
	title, err = r.ResolveMessage(ctx, normalized)
	if err != nil || title != "" {
		return title, err
	}
	if normalized == hint {
		return "", nil
	}
	return r.exact(ctx, normalized)
}

// ResolveMessage runs the phrase algorithm: the first (longest) phrase that
// matches wins, then a compact retry for unspaced spellings.
func (r *Resolver) ResolveMessage(ctx context.Context, message string) (string, error) {
	for _, phrase := range Phrases(message) {
		title, err := r.lookup(ctx, "contains:"+phrase, func() (string, error) {
			return r.catalog.FindTitleContaining(ctx, phrase)
		})
		if err != nil {
			return "", fmt.Errorf("jobmatch: lookup %q: %w", phrase, err)
		}
		if title != "" {
			return title, nil
		}
	}

	compact := Compact(message)
	if compact == "" {
		return "", nil
	}
	title, err := r.lookup(ctx, "compact:"+compact, func() (string, error) {
		return r.catalog.FindCompactTitleContaining(ctx, compact)
	})
	if err != nil {
		return "", fmt.Errorf("jobmatch: compact lookup: %w", err)
	}
	return title, nil
}

func (r *Resolver) exact(ctx context.Context, title string) (string, error) {
	found, err := r.lookup(ctx, "exact:"+title, func() (string, error) {
		return r.catalog.FindExactTitle(ctx, title)
	})
	if err != nil {
		return "", fmt.Errorf("jobmatch: exact lookup: %w", err)
	}
	return found, nil
}

func (r *Resolver) lookup(_ context.Context, key string, fetch func() (string, error)) (string, error) {
	if v, ok := r.memo[key]; ok {
		return v, nil
	}
	v, err := fetch()
	if err != nil {
		return "", err
	}
	r.memo[key] = v
	return v, nil
}
