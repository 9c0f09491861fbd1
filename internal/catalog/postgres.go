// Package catalog stores job experience records in Postgres.
//
// Expected schema:
//
//	CREATE TABLE jobs (
//	    id            BIGSERIAL PRIMARY KEY,
//	    category_id   BIGINT NOT NULL DEFAULT 0,
//	    title         TEXT NOT NULL,
//	    income        TEXT,
//	    investment    TEXT,
//	    city          TEXT,
//	    gender        TEXT NOT NULL DEFAULT 'both',
//	    advantages    TEXT,
//	    disadvantages TEXT,
//	    details       TEXT,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX jobs_title_idx ON jobs (title);
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"job-advisor/internal/domain"
	"job-advisor/internal/jobmatch"
)

// querier is the subset of *pgxpool.Pool used by Store.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// foldedTitle applies the lookup folds to the title column; $1 and $2 carry
// the translate() tables.
const foldedTitle = `regexp_replace(translate(title, $1, $2), '\s+', ' ', 'g')`

const recordColumns = `id, category_id, title, COALESCE(income, ''), COALESCE(investment, ''),
	COALESCE(city, ''), COALESCE(gender, ''), COALESCE(advantages, ''),
	COALESCE(disadvantages, ''), COALESCE(details, ''), created_at`

// Store reads and writes the jobs table.
type Store struct {
	db               querier
	foldFrom, foldTo string
}

// New returns a Store backed by db.
func New(db querier) (*Store, error) {
	if db == nil {
		return nil, errors.New("catalog: db must not be nil")
	}
	from, to := jobmatch.FoldTable()
	return &Store{db: db, foldFrom: from, foldTo: to}, nil
}

// FindTitleContaining returns the shortest title whose folded form contains
// phrase.
func (s *Store) FindTitleContaining(ctx context.Context, phrase string) (string, error) {
	if strings.TrimSpace(phrase) == "" {
		return "", nil
	}
	q := `SELECT title FROM jobs
		WHERE ` + foldedTitle + ` ILIKE $3 ESCAPE '\'
		ORDER BY char_length(title), id
		LIMIT 1`
	return s.scanTitle(ctx, "FindTitleContaining", q, s.foldFrom, s.foldTo, containsPattern(phrase))
}

// FindCompactTitleContaining matches against folded titles with all
// whitespace removed.
func (s *Store) FindCompactTitleContaining(ctx context.Context, compact string) (string, error) {
	if strings.TrimSpace(compact) == "" {
		return "", nil
	}
	q := `SELECT title FROM jobs
		WHERE replace(` + foldedTitle + `, ' ', '') ILIKE $3 ESCAPE '\'
		ORDER BY char_length(title), id
		LIMIT 1`
	return s.scanTitle(ctx, "FindCompactTitleContaining", q, s.foldFrom, s.foldTo, containsPattern(compact))
}

// FindExactTitle returns title when a record carries it verbatim.
func (s *Store) FindExactTitle(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", nil
	}
	return s.scanTitle(ctx, "FindExactTitle", `SELECT title FROM jobs WHERE title = $1 LIMIT 1`, title)
}

func (s *Store) scanTitle(ctx context.Context, op, q string, args ...any) (string, error) {
	var title string
	err := s.db.QueryRow(ctx, q, args...).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("catalog: %s: %w", op, err)
	}
	return title, nil
}

// RecordsByTitle returns every record with exactly this title, oldest first.
func (s *Store) RecordsByTitle(ctx context.Context, title string) ([]domain.JobRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM jobs WHERE title = $1 ORDER BY created_at, id`, title)
	if err != nil {
		return nil, fmt.Errorf("catalog: RecordsByTitle query: %w", err)
	}
	return collectRecords(rows, "RecordsByTitle")
}

// RecentRecords returns up to limit records for title, most recent first.
func (s *Store) RecentRecords(ctx context.Context, title string, limit int) ([]domain.JobRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+recordColumns+` FROM jobs WHERE title = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		title, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: RecentRecords query: %w", err)
	}
	return collectRecords(rows, "RecentRecords")
}

// InsertJob stores a record and returns its id. Blank gender defaults to
// "both".
func (s *Store) InsertJob(ctx context.Context, r domain.JobRecord) (int64, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return 0, errors.New("catalog: InsertJob: title is required")
	}
	gender := strings.TrimSpace(r.Gender)
	if gender == "" {
		gender = "both"
	}

	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO jobs (category_id, title, income, investment, city, gender, advantages, disadvantages, details)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		r.CategoryID, title, strings.TrimSpace(r.Income), strings.TrimSpace(r.Investment),
		strings.TrimSpace(r.City), gender, strings.TrimSpace(r.Advantages),
		strings.TrimSpace(r.Disadvantages), strings.TrimSpace(r.Details),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("catalog: InsertJob: %w", err)
	}
	return id, nil
}

func collectRecords(rows pgx.Rows, op string) ([]domain.JobRecord, error) {
	defer rows.Close()

	records := make([]domain.JobRecord, 0)
	for rows.Next() {
		var r domain.JobRecord
		if err := rows.Scan(
			&r.ID, &r.CategoryID, &r.Title, &r.Income, &r.Investment,
			&r.City, &r.Gender, &r.Advantages, &r.Disadvantages, &r.Details,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: %s scan: %w", op, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: %s rows: %w", op, err)
	}
	return records, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
