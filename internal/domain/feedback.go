package domain

import "time"

// FeedbackRecord is a user's vote on a previous answer.
type FeedbackRecord struct {
	ID        int64
	Message   string
	Response  string
	SessionID string
	UserID    string
	Vote      int
	Tags      []string
	Comment   string
	CreatedAt time.Time
}

// Negative reports whether the user marked the answer as unsatisfactory.
func (f FeedbackRecord) Negative() bool {
	return f.Vote == -1
}
