package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"job-advisor/internal/domain"
)

func TestFormatJobContextReply_Unmatched(t *testing.T) {
	require.Empty(t, formatJobContextReply(domain.JobContext{}))
}

func TestFormatJobContextReply_WithData(t *testing.T) {
	jc := domain.JobContext{
		JobTitle: "نانوایی",
		Summary: &domain.JobSummary{
			Income:       domain.MoneySummary{Text: "میانگین تقریبی: ۲۰ میلیون تومان", Reports: 1, Numeric: 1, TopSamples: []string{"۲۰ میلیون"}},
			Investment:   domain.MoneySummary{Text: unknownText},
			Cities:       []string{"تهران"},
			RecordsCount: 1,
		},
		Records: []domain.JobRecord{{Income: "۲۰ میلیون", City: "تهران"}},
	}

	lines := strings.Split(formatJobContextReply(jc), "\n")
	require.Equal(t, []string{
		"📌 خلاصه سریع درباره «نانوایی»:",
		"• داده‌های داخلی کاربران برای این شغل در دسترس است و اعداد زیر از همان داده‌ها استخراج شده است. (۱ تجربه ثبت شده)",
		"• شهرهای پرتکرار: تهران",
		"💵 درآمد تقریبی:",
		"• میانگین تقریبی: ۲۰ میلیون تومان",
		"• تعداد گزارش‌های درآمد: ۱",
		"• رایج‌ترین اعداد کاربران: ۲۰ میلیون",
		"• نمونه گزارش کاربران: ۲۰ میلیون",
		"💰 سرمایه و ملزومات راه‌اندازی:",
		"• نامشخص (کاربران هنوز سرمایه لازم را ثبت نکرده‌اند).",
		"🛠 مهارت‌های کلیدی و شرایط کاری:",
		"• برای شناخت مهارت‌های ضروری با فعالان این حوزه گفتگو کن یا به دوره‌های تخصصی مراجعه کن.",
		"🧪 چند تجربه واقعی کاربران:",
		"• درآمد: ۲۰ میلیون | شهر: تهران",
		"🚀 قدم بعدی پیشنهادی:",
		"• یک فهرست کوتاه از مهارت‌ها و ابزار لازم تهیه کن و هزینه‌ی واقعی هر کدام را برآورد کن.",
		"• با دو نفر از فعالان «نانوایی» مصاحبه کوتاه انجام بده تا برآورد درآمد و سرمایه را تأیید یا اصلاح کنی.",
		"• اگر رقم سرمایه مشخصی در ذهن داری (مثلاً ۵۰۰ میلیون یا یک میلیارد تومان)، بگو تا سناریوهای مناسب همان بودجه را ارائه کنم.",
	}, lines)
}

func TestFormatJobContextReply_NoSummary(t *testing.T) {
	got := formatJobContextReply(domain.JobContext{JobTitle: "نانوایی"})
	require.Contains(t, got, "• هنوز داده‌ای در پایگاه ما ثبت نشده؛ بنابراین برآوردها باید با احتیاط بررسی شوند.")
	require.Contains(t, got, "• نامشخص (داده‌ی معتبری ثبت نشده است).")
	require.NotContains(t, got, "🧪")
	require.NotContains(t, got, "\n\n")
}

func TestFormatJobContextReply_SkillsFromSummary(t *testing.T) {
	jc := domain.JobContext{
		JobTitle: "نانوایی",
		Summary:  &domain.JobSummary{Advantages: []string{"درآمد روزانه"}, Disadvantages: []string{"کار شبانه"}},
	}
	got := formatJobContextReply(jc)
	require.Contains(t, got, "• مزایا: درآمد روزانه")
	require.Contains(t, got, "• چالش‌های رایج: کار شبانه")
	require.NotContains(t, got, "با فعالان این حوزه گفتگو کن")
}

func TestFormatJobContextReply_UniqueSamplesFromFirstRecords(t *testing.T) {
	jc := domain.JobContext{
		JobTitle: "نانوایی",
		Records: []domain.JobRecord{
			{Investment: "۱۰۰ میلیون"},
			{Investment: "۱۰۰ میلیون"},
			{Investment: "۲۰۰ میلیون"},
			{Investment: "۹۰۰ میلیون"},
		},
	}
	got := formatJobContextReply(jc)
	require.Contains(t, got, "• سرمایه‌های گزارش‌شده: ۱۰۰ میلیون، ۲۰۰ میلیون")
	require.NotContains(t, got, "۹۰۰ میلیون")
}
