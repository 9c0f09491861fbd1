package usecase

import (
	"strings"

	"job-advisor/internal/domain"
	"job-advisor/internal/suggest"
)

// PayloadExtras are request fields copied onto a payload. JobTitle and JobSlug
// only apply when the context has none.
type PayloadExtras struct {
	Model             string
	Category          string
	JobTitle          string
	JobSlug           string
	NormalizedMessage string
}

// BuildPayload assembles the response for text produced by source. Meta is
// always derived from the top-level fields.
func BuildPayload(text string, jc domain.JobContext, message string, source domain.Source, x PayloadExtras) domain.ResponsePayload {
	title := jc.JobTitle
	if title == "" {
		title = strings.TrimSpace(x.JobTitle)
	}
	slug := jc.Slug()
	if slug == "" {
		slug = strings.TrimSpace(x.JobSlug)
	}

	p := domain.ResponsePayload{
		Text:              text,
		Suggestions:       suggest.Build(message, jc, text),
		ContextUsed:       jc.Matched(),
		Source:            source,
		JobTitle:          title,
		JobSlug:           slug,
		Model:             x.Model,
		Category:          strings.TrimSpace(x.Category),
		NormalizedMessage: x.NormalizedMessage,
	}
	p.SyncMeta()
	return p
}
