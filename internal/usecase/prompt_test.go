package usecase

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"job-advisor/internal/domain"
)

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "کوتاه", truncateRunes("  کوتاه ", 10))
	require.Equal(t, "abcd…", truncateRunes("abcdefgh", 5))
	require.Equal(t, "ab…", truncateRunes("ab  cdef", 4))
	require.Equal(t, "abc", truncateRunes("abc", 0))
}

func TestClampHistory(t *testing.T) {
	turns := []domain.Turn{{Content: "1"}, {Content: "2"}, {Content: "3"}, {Content: "4"}}
	require.Equal(t, turns[1:], clampHistory(turns, 3))
	require.Equal(t, turns[:2], clampHistory(turns[:2], 3))
	require.Nil(t, clampHistory(turns, 0))
}

func TestFeedbackHint(t *testing.T) {
	require.Empty(t, feedbackHint(nil))
	require.Empty(t, feedbackHint(&domain.FeedbackRecord{Vote: 0}))
	require.Equal(t, feedbackBase, feedbackHint(&domain.FeedbackRecord{Vote: -1}))

	got := feedbackHint(&domain.FeedbackRecord{Vote: -1, Tags: []string{"طولانی", " ", "بدون عدد"}, Comment: " منبع نداشت "})
	require.Equal(t, feedbackBase+" نکات اعلام‌شده کاربر: طولانی, بدون عدد. توضیح کاربر: منبع نداشت.", got)
}

func TestBuildContextPrompt_Unmatched(t *testing.T) {
	require.Empty(t, buildContextPrompt(domain.JobContext{}))
}

func TestBuildContextPrompt_WithoutSummary(t *testing.T) {
	got := buildContextPrompt(domain.JobContext{JobTitle: "نانوایی"})
	require.Equal(t, "داده‌های داخلی ساخت‌یافته درباره شغل «نانوایی»:\n"+contextClosing, got)
}

func TestBuildContextPrompt_Full(t *testing.T) {
	jc := domain.JobContext{
		JobTitle: "نانوایی",
		Summary: &domain.JobSummary{
			Income:       domain.MoneySummary{Text: "میانگین تقریبی: ۲۰ میلیون تومان", Reports: 3, TopSamples: []string{"۲۰ میلیون", "۱۵ میلیون"}},
			Investment:   domain.MoneySummary{Text: unknownText},
			Cities:       []string{"تهران", "شیراز"},
			RecordsCount: 3,
		},
		Records: []domain.JobRecord{
			{Income: "۲۰ میلیون", City: "تهران", Details: "سخت ولی پردرآمد"},
			{Investment: "۵۰۰ میلیون"},
			{Income: "ignored"},
		},
	}

	lines := strings.Split(buildContextPrompt(jc), "\n")
	require.Equal(t, []string{
		"داده‌های داخلی ساخت‌یافته درباره شغل «نانوایی»:",
		"تحلیل درآمد: میانگین تقریبی: ۲۰ میلیون تومان (بر اساس ۳ گزارش)",
		"مقادیر پرتکرار درآمد: ۲۰ میلیون، ۱۵ میلیون",
		"تحلیل سرمایه لازم: نامشخص/تقریبی",
		"شهرهای پرتکرار تجربه‌شده: تهران، شیراز",
		"تعداد کل رکوردهای داخلی برای این عنوان: ۳",
		"نمونه تجربه ۱: درآمد: ۲۰ میلیون | سرمایه: نامشخص | شهر: تهران",
		"خلاصه تجربه: سخت ولی پردرآمد",
		"نمونه تجربه ۲: درآمد: نامشخص | سرمایه: ۵۰۰ میلیون",
		contextClosing,
	}, lines)
}

func TestBuildContextPrompt_CapsLinesAndKeepsClosing(t *testing.T) {
	long := strings.Repeat("خیلی ", 60)
	var values []string
	for i := 0; i < 10; i++ {
		values = append(values, fmt.Sprintf("مورد %d", i))
	}
	jc := domain.JobContext{
		JobTitle: "نانوایی",
		Summary: &domain.JobSummary{
			Income:        domain.MoneySummary{Text: long, Reports: 1, TopSamples: []string{"۱"}},
			Investment:    domain.MoneySummary{Text: long, Reports: 1, TopSamples: []string{"۲"}},
			Cities:        values,
			Genders:       values,
			Advantages:    values,
			Disadvantages: values,
			RecordsCount:  2,
		},
		Records: []domain.JobRecord{
			{Income: "۱", Advantages: long, Disadvantages: long, Details: long},
			{Income: "۲", Details: long},
		},
	}

	lines := strings.Split(buildContextPrompt(jc), "\n")
	require.Len(t, lines, maxContextLines)
	require.Equal(t, contextClosing, lines[len(lines)-1])
	for _, l := range lines[1 : len(lines)-1] {
		require.LessOrEqual(t, utf8.RuneCountInString(l), 240, l)
	}
}

func TestBuildPromptMessages_SkipsBlankTurns(t *testing.T) {
	msgs := buildPromptMessages(promptInput{
		history: []domain.Turn{{Role: domain.RoleUser, Content: " "}, {Role: domain.RoleAssistant, Content: "قبلی"}},
		message: "سلام",
	})
	require.Equal(t, []domain.ChatMessage{
		{Role: "system", Content: defaultSystemPrompt},
		{Role: "assistant", Content: "قبلی"},
		{Role: "user", Content: "سلام"},
	}, msgs)
}
