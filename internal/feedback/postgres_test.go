package feedback

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"job-advisor/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

type fakeDB struct {
	row     fakeRow
	execErr error

	lastSQL  string
	lastArgs []any
	calls    int
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls++
	f.lastSQL, f.lastArgs = sql, args
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls++
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), f.execErr
}

func TestNew_NilDB(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}

func TestGetLatest_NoFilters(t *testing.T) {
	db := &fakeDB{}
	s, err := New(db)
	require.NoError(t, err)

	got, err := s.GetLatest(context.Background(), " ", "", "")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Zero(t, db.calls)
}

func TestGetLatest_BuildsWhereFromFilters(t *testing.T) {
	now := time.Now()
	db := &fakeDB{row: fakeRow{values: []any{
		int64(5), "سوال", "پاسخ", "s1", "", int16(-1), "طولانی, بدون عدد ,", "خیلی کلی بود", now,
	}}}
	s, _ := New(db)

	got, err := s.GetLatest(context.Background(), "سوال", "s1", "")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Negative())
	require.Equal(t, []string{"طولانی", "بدون عدد"}, got.Tags)
	require.Equal(t, "خیلی کلی بود", got.Comment)
	require.Contains(t, db.lastSQL, "WHERE session_id = $1 AND message = $2")
	require.Equal(t, []any{"s1", "سوال"}, db.lastArgs)
}

func TestGetLatest_UserFirst(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	s, _ := New(db)

	got, err := s.GetLatest(context.Background(), "q", "s1", "42")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Contains(t, db.lastSQL, "WHERE user_id = $1 AND session_id = $2 AND message = $3")
}

func TestGetLatest_Error(t *testing.T) {
	s, _ := New(&fakeDB{row: fakeRow{err: errors.New("conn closed")}})
	_, err := s.GetLatest(context.Background(), "q", "", "")
	require.ErrorContains(t, err, "feedback: GetLatest")
}

func TestInsert(t *testing.T) {
	db := &fakeDB{}
	s, _ := New(db)

	err := s.Insert(context.Background(), domain.FeedbackRecord{
		SessionID: " s1 ", Message: "  درآمد   نانوایی ", Response: "پاسخ", Vote: -1,
		Tags: []string{" کوتاه ", "", "عددی"}, Comment: " بهتر شود ",
	})
	require.NoError(t, err)
	require.Equal(t, []any{"s1", "", "درآمد نانوایی", "پاسخ", int16(-1), "کوتاه,عددی", "بهتر شود"}, db.lastArgs)
}

func TestInsert_VoteRange(t *testing.T) {
	db := &fakeDB{}
	s, _ := New(db)
	require.ErrorContains(t, s.Insert(context.Background(), domain.FeedbackRecord{Vote: 3}), "out of range")
	require.Zero(t, db.calls)
}

func TestInsert_ExecError(t *testing.T) {
	s, _ := New(&fakeDB{execErr: errors.New("disk full")})
	require.ErrorContains(t, s.Insert(context.Background(), domain.FeedbackRecord{Vote: 1}), "disk full")
}
