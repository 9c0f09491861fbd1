package cache

import (
	"strings"
	"time"

	"job-advisor/internal/domain"
	"job-advisor/internal/persian"
)

// DefaultModel is used when neither the caller nor configuration names an
// allowed model.
const DefaultModel = "gpt-4o-mini"

var allowedModels = map[string]struct{}{
	"gpt-4o-mini":   {},
	"gpt-4o":        {},
	"gpt-4":         {},
	"gpt-3.5-turbo": {},
	"gpt-5":         {},
}

// Premium tier entries live twice as long by default.
var longLivedModels = map[string]struct{}{
	"gpt-4o": {},
	"gpt-4":  {},
	"gpt-5":  {},
}

// Questions about these need an answer with at least one number in it.
var numericKeywords = []string{"درآمد", "حقوق", "سرمایه"}

// AllowedModel reports whether model may be requested.
func AllowedModel(model string) bool {
	_, ok := allowedModels[model]
	return ok
}

// ResolveModel returns requested when allowed, else the configured default
// when allowed, else DefaultModel.
func ResolveModel(requested, configured string) string {
	if m := strings.TrimSpace(requested); AllowedModel(m) {
		return m
	}
	if m := strings.TrimSpace(configured); AllowedModel(m) {
		return m
	}
	return DefaultModel
}

// TTL returns the entry lifetime for a resolved model. Positive overrides take
// precedence over the tier default.
func TTL(model string, miniOverride, othersOverride time.Duration) time.Duration {
	if model == DefaultModel {
		if miniOverride > 0 {
			return miniOverride
		}
		return time.Hour
	}
	if othersOverride > 0 {
		return othersOverride
	}
	if _, ok := longLivedModels[model]; ok {
		return 2 * time.Hour
	}
	return time.Hour
}

// ShouldAccept decides whether a stored payload may be served for message.
func ShouldAccept(normalizedMessage string, p *domain.ResponsePayload, credentialConfigured bool) bool {
	if strings.TrimSpace(normalizedMessage) == "" || p == nil || strings.TrimSpace(p.Text) == "" {
		return false
	}
	if p.EffectiveSource().Heuristic() && credentialConfigured {
		return false
	}
	lower := strings.ToLower(normalizedMessage)
	for _, kw := range numericKeywords {
		if strings.Contains(lower, kw) && !persian.ContainsDigit(p.Text) {
			return false
		}
	}
	return true
}
