package usecase

import (
	"fmt"
	"strings"

	"job-advisor/internal/domain"
	"job-advisor/internal/persian"
)

const (
	maxContextLines = 14
	maxPromptTurns  = 3
	contextSamples  = 2
	listSeparator   = "، "
	ellipsis        = "…"
)

const defaultSystemPrompt = "شما یک دستیار شغلی فارسی و عدد-محور هستید. پاسخ را در پنج بخش تیتر‌دار (خلاصه سریع، درآمد تقریبی، سرمایه و ملزومات، مهارت‌ها و مسیر رشد، قدم‌های بعدی و گزینه‌های جایگزین) با حداکثر سه بولت فشرده برای هر بخش ارائه کن. اعداد را دقیق یا با برچسب «نامشخص/تقریبی» بیان کن، اگر سرمایه‌ای مطرح شد سناریوی متناسب با همان رقم بده، به داده‌های داخلی با ذکر منبع اشاره کن و موضوع گفتگو را تغییر نده. لحن باید طبیعی اما حرفه‌ای باشد و در پایان یک اقدام عملی برای ادامه تحقیق پیشنهاد بده."

const contextClosing = "پاسخ نهایی باید مرحله‌به‌مرحله، عدد-محور و بر اساس همین داده‌ها باشد و اگر داده‌ای وجود ندارد حتماً «نامشخص/تقریبی» اعلام شود. موضوع گفتگو را تغییر نده."

const feedbackBase = "پاسخ قبلی برای این کاربر رضایت‌بخش نبود؛ لطفاً کوتاه‌تر، دقیق‌تر و عدد-محورتر پاسخ بده و در صورت وجود داده‌های داخلی، منبع را اعلام کن."

type promptInput struct {
	system   string
	context  domain.JobContext
	feedback *domain.FeedbackRecord
	history  []domain.Turn
	message  string
}

func buildPromptMessages(in promptInput) []domain.ChatMessage {
	system := strings.TrimSpace(in.system)
	if system == "" {
		system = defaultSystemPrompt
	}
	messages := []domain.ChatMessage{{Role: "system", Content: system}}

	if c := buildContextPrompt(in.context); c != "" {
		messages = append(messages, domain.ChatMessage{Role: "system", Content: c})
	}
	if hint := feedbackHint(in.feedback); hint != "" {
		messages = append(messages, domain.ChatMessage{Role: "system", Content: hint})
	}
	for _, t := range clampHistory(in.history, maxPromptTurns) {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		messages = append(messages, domain.ChatMessage{Role: string(t.Role), Content: content})
	}

	return append(messages, domain.ChatMessage{Role: "user", Content: in.message})
}

// buildContextPrompt renders the structured job data as a system message.
// It returns "" for an unmatched context.
func buildContextPrompt(jc domain.JobContext) string {
	if !jc.Matched() {
		return ""
	}

	lines := []string{fmt.Sprintf("داده‌های داخلی ساخت‌یافته درباره شغل «%s»:", jc.JobTitle)}

	if s := jc.Summary; s != nil {
		lines = append(lines, moneyAnalysis("تحلیل درآمد: ", s.Income))
		if len(s.Income.TopSamples) > 0 {
			lines = append(lines, "مقادیر پرتکرار درآمد: "+strings.Join(s.Income.TopSamples, listSeparator))
		}
		lines = append(lines, moneyAnalysis("تحلیل سرمایه لازم: ", s.Investment))
		if len(s.Investment.TopSamples) > 0 {
			lines = append(lines, "مقادیر پرتکرار سرمایه: "+strings.Join(s.Investment.TopSamples, listSeparator))
		}
		lines = appendList(lines, "شهرهای پرتکرار تجربه‌شده: ", s.Cities, 80)
		lines = appendList(lines, "مخاطبان مناسب: ", s.Genders, 80)
		lines = appendList(lines, "مزایای پرتکرار: ", s.Advantages, 120)
		lines = appendList(lines, "چالش‌های پرتکرار: ", s.Disadvantages, 120)
		if s.RecordsCount > 0 {
			lines = append(lines, "تعداد کل رکوردهای داخلی برای این عنوان: "+persian.FormatInt(int64(s.RecordsCount)))
		}
	}

	for i, r := range firstRecords(jc.Records, contextSamples) {
		parts := []string{
			"درآمد: " + orUnknown(r.Income),
			"سرمایه: " + orUnknown(r.Investment),
		}
		if city := strings.TrimSpace(r.City); city != "" {
			parts = append(parts, "شهر: "+city)
		}
		if adv := strings.TrimSpace(r.Advantages); adv != "" {
			parts = append(parts, "مزایا: "+truncateRunes(adv, 80))
		}
		if dis := strings.TrimSpace(r.Disadvantages); dis != "" {
			parts = append(parts, "معایب: "+truncateRunes(dis, 80))
		}
		lines = append(lines, fmt.Sprintf("نمونه تجربه %s: %s", persian.FormatInt(int64(i+1)), strings.Join(parts, " | ")))
		if details := strings.TrimSpace(r.Details); details != "" {
			lines = append(lines, "خلاصه تجربه: "+truncateRunes(details, 140))
		}
	}

	// The closing instruction always survives the cap.
	if len(lines) > maxContextLines-1 {
		lines = lines[:maxContextLines-1]
	}
	lines = append(lines, contextClosing)
	return strings.Join(lines, "\n")
}

func moneyAnalysis(label string, m domain.MoneySummary) string {
	text := strings.TrimSpace(m.Text)
	if text == "" || text == unknownText {
		return label + "نامشخص/تقریبی"
	}
	line := label + truncateRunes(text, 90)
	if m.Reports > 0 {
		line += fmt.Sprintf(" (بر اساس %s گزارش)", persian.FormatInt(int64(m.Reports)))
	}
	return line
}

// feedbackHint asks for a tighter answer after a downvote.
func feedbackHint(f *domain.FeedbackRecord) string {
	if f == nil || !f.Negative() {
		return ""
	}
	hint := feedbackBase
	var tags []string
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) > 0 {
		hint += " نکات اعلام‌شده کاربر: " + strings.Join(tags, ", ") + "."
	}
	if c := strings.TrimSpace(f.Comment); c != "" {
		hint += " توضیح کاربر: " + c + "."
	}
	return hint
}

func clampHistory(turns []domain.Turn, limit int) []domain.Turn {
	if limit <= 0 {
		return nil
	}
	if len(turns) > limit {
		return turns[len(turns)-limit:]
	}
	return turns
}

// truncateRunes shortens s to limit runes, ending with an ellipsis when cut.
func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit-1]), " \t\n") + ellipsis
}

func appendList(lines []string, label string, values []string, limit int) []string {
	if len(values) == 0 {
		return lines
	}
	return append(lines, label+truncateRunes(strings.Join(values, listSeparator), limit))
}

func firstRecords(records []domain.JobRecord, n int) []domain.JobRecord {
	if len(records) > n {
		return records[:n]
	}
	return records
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return unknownText
}
