// Package suggest proposes follow-up questions from what the user asked and
// what the answer already covered.
package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"job-advisor/internal/domain"
	"job-advisor/internal/jobmatch"
)

// MaxSuggestions caps the returned list.
const MaxSuggestions = 3

type topic string

const (
	topicIncome      topic = "income"
	topicInvestment  topic = "investment"
	topicSkills      topic = "skills"
	topicMarket      topic = "market"
	topicRisk        topic = "risk"
	topicGrowth      topic = "growth"
	topicTools       topic = "tools"
	topicPersonality topic = "personality"
	topicCompare     topic = "compare"
)

var topicKeywords = []struct {
	topic    topic
	keywords []string
}{
	{topicIncome, []string{"درآمد", "حقوق", "دستمزد"}},
	{topicInvestment, []string{"سرمایه", "هزینه", "بودجه", "تجهیز"}},
	{topicSkills, []string{"مهارت", "آموزش", "یادگیری", "دوره"}},
	{topicMarket, []string{"بازار", "تقاضا", "استخدام", "فرصت"}},
	{topicRisk, []string{"چالش", "ریسک", "مشکل", "دغدغه", "سختی"}},
	{topicGrowth, []string{"پیشرفت", "رشد", "مسیر", "نقشه راه"}},
	{topicTools, []string{"ابزار", "گواهی", "مدرک", "تجهیزات"}},
	{topicPersonality, []string{"شخصیت", "تیپ", "روحیه"}},
	{topicCompare, []string{"مقایسه", "جایگزین", "مشابه", "دیگر"}},
}

// Templates take the job fragment. Order matters.
var topicPrompts = []struct {
	topic    topic
	template string
}{
	{topicIncome, "حدود درآمد %s در سطوح مختلف تجربه چقدر است؟"},
	{topicInvestment, "برای شروع %s چه مقدار سرمایه و تجهیزات لازم است؟"},
	{topicSkills, "چه مهارت‌های نرم و سختی برای موفقیت در %s ضروری است؟"},
	{topicMarket, "چشم‌انداز بازار کار %s در یک تا سه سال آینده چگونه است؟"},
	{topicRisk, "مهم‌ترین چالش‌ها و ریسک‌های %s چیست و چطور باید مدیریت‌شان کرد؟"},
	{topicGrowth, "یک نقشه راه مرحله‌به‌مرحله برای پیشرفت در %s پیشنهاد بده."},
	{topicTools, "کدام ابزار، گواهی یا دوره برای شروع %s توصیه می‌شود؟"},
}

const (
	genericFragment = "این حوزه"

	jobSkillsPrompt      = "برای موفقیت در %s چه مهارت‌هایی را باید از همین حالا تمرین کنم؟"
	jobMarketPrompt      = "بازار کار %s در ایران و خارج چه تفاوت‌هایی دارد؟"
	jobRiskPrompt        = "بزرگ‌ترین اشتباهات رایج در مسیر %s چیست و چطور از آن‌ها دوری کنم؟"
	jobComparePrompt     = "شغل‌های جایگزین نزدیک به %s که ارزش بررسی دارند را معرفی کن."
	jobPersonalityPrompt = "آیا %s با ویژگی‌های شخصیتی من هماهنگ است؟ اگر لازم است سوال بپرس."

	genericPersonalityPrompt = "اگر بخوای بررسی کنی این حوزه با شخصیت من هماهنگ است از چه سوالاتی شروع می‌کنی؟"
	nextStepPrompt           = "به من کمک کن بدانم قدم بعدی منطقی برای تحقیق بیشتر درباره این موضوع چیست."

	budgetAmountPrompt  = "برای سرمایه %s چه مسیرهای شغلی مطمئن و قابل راه‌اندازی پیشنهاد می‌کنی؟"
	budgetGenericPrompt = "اگر سرمایه مشخصی دارم چطور انتخاب کنم کدام شغل با آن بودجه قابل شروع است؟"
)

var (
	capitalTerms = regexp.MustCompile(`سرمایه|بودجه|سرمایه‌گذاری|پول|سرمایه گذاری`)
	amountRe     = regexp.MustCompile(`([0-9۰-۹]+[0-9۰-۹.,]*)\s*(میلیارد|میلیون|هزار)?\s*(تومان|تومن|ریال)?`)
)

type topicState struct {
	asked, answered bool
}

// Build returns up to MaxSuggestions distinct follow-up questions.
func Build(message string, jc domain.JobContext, answer string) []string {
	msg := fold(message)
	ans := fold(answer)

	state := make(map[topic]topicState, len(topicKeywords))
	for _, tk := range topicKeywords {
		var s topicState
		for _, kw := range tk.keywords {
			if strings.Contains(msg, kw) {
				s.asked = true
			}
			if strings.Contains(ans, kw) {
				s.answered = true
			}
		}
		state[tk.topic] = s
	}

	title := strings.TrimSpace(jc.JobTitle)
	fragment := genericFragment
	if title != "" {
		fragment = "«" + title + "»"
	}
	fill := func(tmpl string) string { return fmt.Sprintf(tmpl, fragment) }

	var out list
	for _, tp := range topicPrompts {
		if s := state[tp.topic]; s.asked && !s.answered {
			out.push(fill(tp.template))
		}
	}

	if title != "" {
		if !state[topicSkills].answered {
			out.push(fill(jobSkillsPrompt))
		}
		if !state[topicMarket].answered {
			out.push(fill(jobMarketPrompt))
		}
		if !state[topicRisk].answered {
			out.push(fill(jobRiskPrompt))
		}
		if !state[topicCompare].asked {
			out.push(fill(jobComparePrompt))
		}
	}

	if len(out) == 0 {
		if !state[topicPersonality].asked {
			if title != "" {
				out.push(fill(jobPersonalityPrompt))
			} else {
				out.push(genericPersonalityPrompt)
			}
		}
		out.push(nextStepPrompt)
	}

	if capitalTerms.MatchString(msg) {
		out.prepend(budgetPrompt(msg))
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func budgetPrompt(msg string) string {
	if amount := strings.TrimSpace(amountRe.FindString(msg)); amount != "" {
		return fmt.Sprintf(budgetAmountPrompt, amount)
	}
	return budgetGenericPrompt
}

func fold(s string) string {
	return strings.ToLower(jobmatch.NormalizeMessage(s))
}

// list is an ordered set of non-blank prompts.
type list []string

func (l list) has(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

func (l *list) push(s string) {
	if s = strings.TrimSpace(s); s != "" && !l.has(s) {
		*l = append(*l, s)
	}
}

func (l *list) prepend(s string) {
	if s = strings.TrimSpace(s); s != "" && !l.has(s) {
		*l = append(list{s}, *l...)
	}
}
