// Package cache fingerprints answerable requests, decides which tier TTL and
// model apply, and stores response payloads in Redis.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"job-advisor/internal/jobmatch"
)

// KeyPrefix namespaces every cache entry. Prefix deletion uses it as the
// invalidation epoch.
const KeyPrefix = "bkja_cache_"

// Fingerprint identifies one logical request. Model must already be resolved.
// A nil JobTitle omits the job part entirely; an empty one still appends it.
type Fingerprint struct {
	Message  string
	Category string
	Model    string
	JobTitle *string
}

// Key returns the primary cache key.
func (f Fingerprint) Key() string {
	return BuildKey(f.Message, f.Category, f.Model, f.JobTitle)
}

// LegacyKey returns the key written before job titles were part of the
// fingerprint.
func (f Fingerprint) LegacyKey() string {
	return BuildKey(f.Message, f.Category, f.Model, nil)
}

// WithJobTitle returns a copy keyed on title. A blank title drops the job part.
func (f Fingerprint) WithJobTitle(title string) Fingerprint {
	f.JobTitle = nil
	if t := strings.TrimSpace(title); t != "" {
		f.JobTitle = &t
	}
	return f
}

// BuildKey hashes the normalized request fields into a prefixed key.
func BuildKey(message, category, model string, jobTitle *string) string {
	parts := []string{
		"msg:" + jobmatch.NormalizeMessage(message),
		"cat:" + strings.TrimSpace(category),
		"m:" + model,
	}
	if jobTitle != nil {
		parts = append(parts, "job:"+jobmatch.NormalizeMessage(*jobTitle))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "|")))
	return KeyPrefix + hex.EncodeToString(sum[:])
}
