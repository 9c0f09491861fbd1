// Package feedback stores user votes on answers in Postgres.
//
// Expected schema:
//
//	CREATE TABLE feedback (
//	    id         BIGSERIAL PRIMARY KEY,
//	    session_id TEXT NOT NULL DEFAULT '',
//	    user_id    TEXT NOT NULL DEFAULT '',
//	    message    TEXT NOT NULL DEFAULT '',
//	    response   TEXT NOT NULL DEFAULT '',
//	    vote       SMALLINT NOT NULL DEFAULT 0,
//	    tags       TEXT NOT NULL DEFAULT '',
//	    comment    TEXT NOT NULL DEFAULT '',
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"job-advisor/internal/domain"
	"job-advisor/internal/jobmatch"
)

// querier is the subset of *pgxpool.Pool used by Store.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store reads and writes the feedback table.
type Store struct {
	db querier
}

// New returns a Store backed by db.
func New(db querier) (*Store, error) {
	if db == nil {
		return nil, errors.New("feedback: db must not be nil")
	}
	return &Store{db: db}, nil
}

// GetLatest returns the most recent feedback matching every non-empty filter.
// It returns nil when all filters are empty or nothing matches.
func (s *Store) GetLatest(ctx context.Context, normalizedMessage, sessionID, userID string) (*domain.FeedbackRecord, error) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value = strings.TrimSpace(value); value != "" {
			args = append(args, value)
			where = append(where, column+" = $"+strconv.Itoa(len(args)))
		}
	}
	add("user_id", userID)
	add("session_id", sessionID)
	add("message", normalizedMessage)
	if len(where) == 0 {
		return nil, nil
	}

	q := `SELECT id, message, response, session_id, user_id, vote, tags, comment, created_at
		FROM feedback
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var (
		f    domain.FeedbackRecord
		vote int16
		tags string
	)
	err := s.db.QueryRow(ctx, q, args...).Scan(
		&f.ID, &f.Message, &f.Response, &f.SessionID, &f.UserID, &vote, &tags, &f.Comment, &f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("feedback: GetLatest: %w", err)
	}
	f.Vote = int(vote)
	f.Tags = splitTags(tags)
	return &f, nil
}

// Insert stores a vote. The message is stored in normalized form so GetLatest
// can match it.
func (s *Store) Insert(ctx context.Context, f domain.FeedbackRecord) error {
	if f.Vote < -1 || f.Vote > 1 {
		return fmt.Errorf("feedback: Insert: vote %d out of range", f.Vote)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO feedback (session_id, user_id, message, response, vote, tags, comment)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		strings.TrimSpace(f.SessionID), strings.TrimSpace(f.UserID),
		jobmatch.NormalizeMessage(f.Message), f.Response, int16(f.Vote),
		strings.Join(cleanTags(f.Tags), ","), strings.TrimSpace(f.Comment),
	)
	if err != nil {
		return fmt.Errorf("feedback: Insert: %w", err)
	}
	return nil
}

func splitTags(raw string) []string {
	return cleanTags(strings.Split(raw, ","))
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
