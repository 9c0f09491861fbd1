package domain

// Source tags the subsystem that produced a response.
type Source string

const (
	SourceOpenAI        Source = "openai"
	SourceDatabase      Source = "database"
	SourceJobContext    Source = "job_context"
	SourceCache         Source = "cache"
	SourceLocalFallback Source = "local_fallback"
)

// ParseSource validates a stored source tag.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceOpenAI, SourceDatabase, SourceJobContext, SourceCache, SourceLocalFallback:
		return Source(s), true
	}
	return "", false
}

// Heuristic reports whether the answer was derived from catalog data rather
// than a model completion.
func (s Source) Heuristic() bool {
	switch s {
	case SourceDatabase, SourceJobContext:
		return true
	case SourceOpenAI, SourceCache, SourceLocalFallback:
		return false
	}
	return false
}

// ResponsePayload is the structured answer returned to callers and stored in
// the cache.
type ResponsePayload struct {
	Text              string      `json:"text"`
	Suggestions       []string    `json:"suggestions"`
	ContextUsed       bool        `json:"context_used"`
	FromCache         bool        `json:"from_cache"`
	Source            Source      `json:"source"`
	JobTitle          string      `json:"job_title"`
	JobSlug           string      `json:"job_slug"`
	Model             string      `json:"model,omitempty"`
	Category          string      `json:"category"`
	NormalizedMessage string      `json:"normalized_message,omitempty"`
	Meta              PayloadMeta `json:"meta"`
}

// PayloadMeta is the flattened provenance block. Nil pointers mean absent.
type PayloadMeta struct {
	ContextUsed bool    `json:"context_used"`
	FromCache   bool    `json:"from_cache"`
	Source      Source  `json:"source"`
	Category    *string `json:"category"`
	JobTitle    *string `json:"job_title"`
	JobSlug     *string `json:"job_slug"`
}

// EffectiveSource returns the top-level source, falling back to meta.
func (p ResponsePayload) EffectiveSource() Source {
	if p.Source != "" {
		return p.Source
	}
	return p.Meta.Source
}

// SyncMeta rewrites the meta block from the top-level fields.
func (p *ResponsePayload) SyncMeta() {
	p.Meta = PayloadMeta{
		ContextUsed: p.ContextUsed,
		FromCache:   p.FromCache,
		Source:      p.Source,
		Category:    Optional(p.Category),
		JobTitle:    Optional(p.JobTitle),
		JobSlug:     Optional(p.JobSlug),
	}
}

// Optional returns nil for the empty string.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
