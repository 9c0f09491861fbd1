package jobcontext

import (
	"context"
	"fmt"
	"strings"

	"job-advisor/internal/domain"
)

// SampleRecords is the number of most recent records attached to a context.
const SampleRecords = 5

// RecordSource reads the records of one title.
type RecordSource interface {
	// RecordsByTitle returns every record with exactly this title.
	RecordsByTitle(ctx context.Context, title string) ([]domain.JobRecord, error)
	// RecentRecords returns up to limit records, most recent first.
	RecentRecords(ctx context.Context, title string, limit int) ([]domain.JobRecord, error)
}

// Builder assembles a JobContext for a resolved title.
type Builder struct {
	records RecordSource
}

// NewBuilder returns a Builder reading from src.
func NewBuilder(src RecordSource) *Builder {
	return &Builder{records: src}
}

// Build returns the context for title. An empty title yields the empty context.
func (b *Builder) Build(ctx context.Context, title, slug string) (domain.JobContext, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.JobContext{}, nil
	}

	all, err := b.records.RecordsByTitle(ctx, title)
	if err != nil {
		return domain.JobContext{}, fmt.Errorf("jobcontext: records for %q: %w", title, err)
	}
	recent, err := b.records.RecentRecords(ctx, title, SampleRecords)
	if err != nil {
		return domain.JobContext{}, fmt.Errorf("jobcontext: recent records for %q: %w", title, err)
	}
	if len(recent) > SampleRecords {
		recent = recent[:SampleRecords]
	}

	return domain.JobContext{
		JobTitle: title,
		Summary:  Summarize(title, all),
		Records:  recent,
		JobSlug:  domain.Optional(strings.TrimSpace(slug)),
	}, nil
}
