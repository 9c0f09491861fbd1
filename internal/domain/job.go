package domain

import "time"

// JobRecord is one reported experience for a job title.
type JobRecord struct {
	ID            int64
	CategoryID    int64
	Title         string
	Income        string
	Investment    string
	City          string
	Gender        string
	Advantages    string
	Disadvantages string
	Details       string
	CreatedAt     time.Time
}

// MoneySummary aggregates the free-text amounts reported for one money field.
type MoneySummary struct {
	// Text is either "میانگین تقریبی: <amount>" or "نامشخص".
	Text       string
	Reports    int
	Numeric    int
	TopSamples []string
}

// JobSummary is derived on every request from all records sharing a title.
type JobSummary struct {
	JobTitle      string
	Income        MoneySummary
	Investment    MoneySummary
	Cities        []string
	Genders       []string
	Advantages    []string
	Disadvantages []string
	RecordsCount  int
}

// JobContext is the resolved job data for a request. The zero value is the
// "no match" context.
type JobContext struct {
	JobTitle string
	Summary  *JobSummary
	Records  []JobRecord
	JobSlug  *string
}

// Matched reports whether a job title was resolved.
func (c JobContext) Matched() bool {
	return c.JobTitle != ""
}

// Slug returns the job slug or "" when absent.
func (c JobContext) Slug() string {
	if c.JobSlug == nil {
		return ""
	}
	return *c.JobSlug
}
