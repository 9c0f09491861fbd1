package usecase

import (
	"fmt"
	"strings"

	"job-advisor/internal/domain"
	"job-advisor/internal/jobcontext"
	"job-advisor/internal/persian"
)

const (
	unknownText     = jobcontext.Unknown
	replySamples    = 3
	replyExperience = 2
)

const localFallbackText = "برای دریافت پاسخ دقیق‌تر لازم است مدیر سایت کلید API را در تنظیمات افزونه وارد کند. تا آن زمان می‌توانم صرفاً راهنمایی‌های کلی ارائه دهم."

// formatJobContextReply writes a sectioned answer from catalog data alone.
// It returns "" for an unmatched context.
func formatJobContextReply(jc domain.JobContext) string {
	if !jc.Matched() {
		return ""
	}
	s := jc.Summary
	var b replyBuilder

	b.heading(fmt.Sprintf("📌 خلاصه سریع درباره «%s»:", jc.JobTitle))
	if s != nil {
		line := "• داده‌های داخلی کاربران برای این شغل در دسترس است و اعداد زیر از همان داده‌ها استخراج شده است."
		if s.RecordsCount > 0 {
			line += fmt.Sprintf(" (%s تجربه ثبت شده)", persian.FormatInt(int64(s.RecordsCount)))
		}
		b.line(line)
		b.list("• شهرهای پرتکرار: ", s.Cities, 80)
		b.list("• مناسب برای: ", s.Genders, 80)
		b.list("• مهم‌ترین مزایا: ", s.Advantages, 120)
		b.list("• چالش‌های رایج: ", s.Disadvantages, 120)
	} else {
		b.line("• هنوز داده‌ای در پایگاه ما ثبت نشده؛ بنابراین برآوردها باید با احتیاط بررسی شوند.")
	}

	b.heading("💵 درآمد تقریبی:")
	b.money(s, func(s *domain.JobSummary) domain.MoneySummary { return s.Income },
		func(r domain.JobRecord) string { return r.Income },
		jc.Records,
		moneyLabels{
			reports: "• تعداد گزارش‌های درآمد: ",
			top:     "• رایج‌ترین اعداد کاربران: ",
			samples: "• نمونه گزارش کاربران: ",
			empty:   "• نامشخص (داده‌ی معتبری ثبت نشده است).",
		})

	b.heading("💰 سرمایه و ملزومات راه‌اندازی:")
	b.money(s, func(s *domain.JobSummary) domain.MoneySummary { return s.Investment },
		func(r domain.JobRecord) string { return r.Investment },
		jc.Records,
		moneyLabels{
			reports: "• تعداد گزارش‌های سرمایه: ",
			top:     "• سرمایه‌های پرتکرار: ",
			samples: "• سرمایه‌های گزارش‌شده: ",
			empty:   "• نامشخص (کاربران هنوز سرمایه لازم را ثبت نکرده‌اند).",
		})

	b.heading("🛠 مهارت‌های کلیدی و شرایط کاری:")
	n := b.count
	if s != nil {
		b.list("• مزایا: ", s.Advantages, 120)
		b.list("• چالش‌های رایج: ", s.Disadvantages, 120)
	}
	if b.count == n {
		b.line("• برای شناخت مهارت‌های ضروری با فعالان این حوزه گفتگو کن یا به دوره‌های تخصصی مراجعه کن.")
	}

	if len(jc.Records) > 0 {
		b.heading("🧪 چند تجربه واقعی کاربران:")
		for _, r := range firstRecords(jc.Records, replyExperience) {
			var parts []string
			if v := strings.TrimSpace(r.Income); v != "" {
				parts = append(parts, "درآمد: "+truncateRunes(v, 60))
			}
			if v := strings.TrimSpace(r.Investment); v != "" {
				parts = append(parts, "سرمایه: "+truncateRunes(v, 60))
			}
			if v := strings.TrimSpace(r.City); v != "" {
				parts = append(parts, "شهر: "+v)
			}
			if v := strings.TrimSpace(r.Details); v != "" {
				parts = append(parts, "تجربه: "+truncateRunes(v, 120))
			}
			if len(parts) > 0 {
				b.line("• " + strings.Join(parts, " | "))
			}
		}
	}

	b.heading("🚀 قدم بعدی پیشنهادی:")
	b.line("• یک فهرست کوتاه از مهارت‌ها و ابزار لازم تهیه کن و هزینه‌ی واقعی هر کدام را برآورد کن.")
	b.line("• با دو نفر از فعالان «" + jc.JobTitle + "» مصاحبه کوتاه انجام بده تا برآورد درآمد و سرمایه را تأیید یا اصلاح کنی.")
	b.line("• اگر رقم سرمایه مشخصی در ذهن داری (مثلاً ۵۰۰ میلیون یا یک میلیارد تومان)، بگو تا سناریوهای مناسب همان بودجه را ارائه کنم.")

	return b.String()
}

type moneyLabels struct {
	reports string
	top     string
	samples string
	empty   string
}

type replyBuilder struct {
	lines []string
	// count tracks bullet lines only.
	count int
}

func (b *replyBuilder) heading(s string) {
	b.lines = append(b.lines, s)
}

func (b *replyBuilder) line(s string) {
	b.lines = append(b.lines, s)
	b.count++
}

func (b *replyBuilder) list(label string, values []string, limit int) {
	if len(values) == 0 {
		return
	}
	b.line(label + truncateRunes(strings.Join(values, listSeparator), limit))
}

func (b *replyBuilder) money(s *domain.JobSummary, pick func(*domain.JobSummary) domain.MoneySummary, field func(domain.JobRecord) string, records []domain.JobRecord, l moneyLabels) {
	n := b.count
	if s != nil {
		m := pick(s)
		if text := strings.TrimSpace(m.Text); text != "" && text != unknownText {
			b.line("• " + truncateRunes(text, 100))
		}
		if m.Reports > 0 {
			b.line(l.reports + persian.FormatInt(int64(m.Reports)))
		}
		if len(m.TopSamples) > 0 {
			b.line(l.top + strings.Join(m.TopSamples, listSeparator))
		}
	}
	if samples := uniqueField(firstRecords(records, replySamples), field); len(samples) > 0 {
		b.line(l.samples + strings.Join(samples, listSeparator))
	}
	if b.count == n {
		b.line(l.empty)
	}
}

func (b *replyBuilder) String() string {
	return strings.Join(b.lines, "\n")
}

func uniqueField(records []domain.JobRecord, field func(domain.JobRecord) string) []string {
	seen := make(map[string]struct{}, len(records))
	var out []string
	for _, r := range records {
		v := strings.TrimSpace(field(r))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
