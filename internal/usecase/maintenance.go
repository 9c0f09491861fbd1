package usecase

import (
	"context"
	"strings"
	"time"

	"job-advisor/internal/cache"
	"job-advisor/internal/domain"
	"job-advisor/internal/jobmatch"
)

const defaultExtendedTTL = 3 * time.Hour

// CacheQuery names the stored answer of one request.
type CacheQuery struct {
	Message  string
	Category string
	Model    string
	JobTitle string
}

func (s *AskService) fingerprint(ctx context.Context, q CacheQuery) (cache.Fingerprint, bool, error) {
	snap, err := s.cfg.Load(ctx)
	if err != nil {
		return cache.Fingerprint{}, false, newError(ErrorInternal, "config_load_error", err)
	}
	fp := cache.Fingerprint{
		Message:  jobmatch.NormalizeMessage(q.Message),
		Category: strings.TrimSpace(q.Category),
		Model:    snap.ResolveModel(q.Model),
	}.WithJobTitle(q.JobTitle)
	return fp, snap.CacheEnabled, nil
}

func fingerprintKeys(fp cache.Fingerprint) []string {
	keys := []string{fp.Key()}
	if fp.JobTitle != nil {
		keys = append(keys, fp.LegacyKey())
	}
	return keys
}

// DeleteFor removes the stored answer for q, including its legacy key.
func (s *AskService) DeleteFor(ctx context.Context, q CacheQuery) error {
	fp, _, err := s.fingerprint(ctx, q)
	if err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, fingerprintKeys(fp)...); err != nil {
		return newError(ErrorInternal, "cache_delete_error", err)
	}
	return nil
}

// ExtendTTL rewrites the first existing entry for q with a new lifetime. It
// reports false when caching is off or nothing is stored.
func (s *AskService) ExtendTTL(ctx context.Context, q CacheQuery, ttl time.Duration) (bool, error) {
	fp, enabled, err := s.fingerprint(ctx, q)
	if err != nil || !enabled {
		return false, err
	}
	if ttl <= 0 {
		ttl = defaultExtendedTTL
	}

	for _, key := range fingerprintKeys(fp) {
		p, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			return false, newError(ErrorInternal, "cache_read_error", err)
		}
		if !ok {
			continue
		}
		if err := s.cache.Set(ctx, key, *p, ttl); err != nil {
			return false, newError(ErrorInternal, "cache_write_error", err)
		}
		return true, nil
	}
	return false, nil
}

// FlushCache deletes every entry under prefix, or the whole namespace when
// prefix is blank. Prefixes outside cache.KeyPrefix are rejected.
func (s *AskService) FlushCache(ctx context.Context, prefix string) (int, error) {
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = cache.KeyPrefix
	}
	if !strings.HasPrefix(prefix, cache.KeyPrefix) {
		return 0, newError(ErrorInvalidInput, "foreign_cache_prefix", cache.ErrForeignPrefix)
	}
	n, err := s.cache.DeleteByPrefix(ctx, prefix)
	if err != nil {
		return n, newError(ErrorInternal, "cache_flush_error", err)
	}
	return n, nil
}

// RecordJob adds a catalog record. Any stored answer may now be stale, so the
// whole namespace is dropped.
func (s *AskService) RecordJob(ctx context.Context, r domain.JobRecord) (int64, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return 0, newError(ErrorInvalidInput, "empty_job_title", nil)
	}
	id, err := s.catalog.InsertJob(ctx, r)
	if err != nil {
		return 0, newError(ErrorInternal, "catalog_insert_error", err)
	}
	if n, err := s.cache.DeleteByPrefix(ctx, cache.KeyPrefix); err != nil {
		s.log.Warn("cache flush after job insert failed", "err", err, "job_id", id)
	} else {
		s.log.Info("cache flushed after job insert", "job_id", id, "deleted", n)
	}
	return id, nil
}

func (s *AskService) RecordFeedback(ctx context.Context, f domain.FeedbackRecord) error {
	if f.Vote < -1 || f.Vote > 1 {
		return newError(ErrorInvalidInput, "vote_out_of_range", nil)
	}
	if jobmatch.NormalizeMessage(f.Message) == "" {
		return newError(ErrorInvalidInput, "empty_message", nil)
	}
	if err := s.feedback.Insert(ctx, f); err != nil {
		return newError(ErrorInternal, "feedback_insert_error", err)
	}
	return nil
}
