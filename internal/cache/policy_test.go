package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"job-advisor/internal/domain"
)

func TestResolveModel(t *testing.T) {
	require.Equal(t, "gpt-4o", ResolveModel("gpt-4o", ""))
	require.Equal(t, "gpt-5", ResolveModel("unknown", "gpt-5"))
	require.Equal(t, DefaultModel, ResolveModel("unknown", "also-unknown"))
	require.Equal(t, DefaultModel, ResolveModel("", ""))
}

func TestTTL(t *testing.T) {
	require.Equal(t, time.Hour, TTL("gpt-4o-mini", 0, 0))
	require.Equal(t, 10*time.Minute, TTL("gpt-4o-mini", 10*time.Minute, 5*time.Hour))
	require.Equal(t, 2*time.Hour, TTL("gpt-4o", 0, 0))
	require.Equal(t, 2*time.Hour, TTL("gpt-5", 0, 0))
	require.Equal(t, 5*time.Hour, TTL("gpt-4", 10*time.Minute, 5*time.Hour))
	require.Equal(t, time.Hour, TTL("gpt-3.5-turbo", 0, 0))
	require.Equal(t, 3*time.Hour, TTL("gpt-3.5-turbo", 0, 3*time.Hour))
}

func TestShouldAccept(t *testing.T) {
	openai := &domain.ResponsePayload{Text: "حدود ۲۰ میلیون", Source: domain.SourceOpenAI}
	noDigits := &domain.ResponsePayload{Text: "بستگی دارد", Source: domain.SourceOpenAI}
	database := &domain.ResponsePayload{Text: "۵ میلیون", Source: domain.SourceDatabase}
	metaOnly := &domain.ResponsePayload{Text: "۵ میلیون", Meta: domain.PayloadMeta{Source: domain.SourceJobContext}}

	tests := []struct {
		name    string
		msg     string
		p       *domain.ResponsePayload
		withKey bool
		want    bool
	}{
		{name: "empty message", msg: " ", p: openai, want: false},
		{name: "nil payload", msg: "سلام", p: nil, want: false},
		{name: "empty text", msg: "سلام", p: &domain.ResponsePayload{Source: domain.SourceOpenAI}, want: false},
		{name: "model answer", msg: "درآمد نانوایی", p: openai, withKey: true, want: true},
		{name: "numeric question without digits", msg: "حقوق نانوا چقدر است", p: noDigits, want: false},
		{name: "non numeric question without digits", msg: "نانوایی سخت است", p: noDigits, want: true},
		{name: "heuristic with key", msg: "نانوایی", p: database, withKey: true, want: false},
		{name: "heuristic without key", msg: "نانوایی", p: database, want: true},
		{name: "meta source with key", msg: "نانوایی", p: metaOnly, withKey: true, want: false},
		{name: "numeric question without digits with key", msg: "حقوق نانوا چقدر است", p: noDigits, withKey: true, want: false},
		{name: "salary answer with persian digits", msg: "حقوق این شغل چقدره؟", p: &domain.ResponsePayload{Text: "حقوق حدود ۵ میلیون است", Source: domain.SourceOpenAI}, want: true},
		{name: "salary answer with persian digits with key", msg: "حقوق این شغل چقدره؟", p: &domain.ResponsePayload{Text: "حقوق حدود ۵ میلیون است", Source: domain.SourceOpenAI}, withKey: true, want: true},
		{name: "investment question answered without digits", msg: "سرمایه لازم چقدره", p: noDigits, want: false},
		{name: "investment question answered without digits with key", msg: "سرمایه لازم چقدره", p: noDigits, withKey: true, want: false},
		{name: "latin digits", msg: "سرمایه لازم", p: &domain.ResponsePayload{Text: "about 200", Source: domain.SourceOpenAI}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ShouldAccept(tt.msg, tt.p, tt.withKey))
		})
	}
}
