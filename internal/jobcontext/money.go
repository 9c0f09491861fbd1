// Package jobcontext aggregates catalog records into the context used to
// answer a question about one job title.
package jobcontext

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"job-advisor/internal/domain"
	"job-advisor/internal/persian"
)

const (
	currencyUnit  = "تومان"
	averagePrefix = "میانگین تقریبی: "
	// Unknown is the summary text when no amount could be parsed.
	Unknown = "نامشخص"
)

var nonDigits = regexp.MustCompile(`[^0-9]`)

type unitScale struct {
	keywords []string
	factor   float64
}

// Checked in order; the first unit present wins.
var unitScales = []unitScale{
	{keywords: []string{"میلیارد"}, factor: 1e9},
	{keywords: []string{"میلیون"}, factor: 1e6},
	{keywords: []string{"هزار", "k"}, factor: 1e3},
}

// ParseToman converts a free-text amount to toman. It keeps every digit in the
// text and scales by the unit keyword. ok is false for blank, digitless or
// non-positive input.
func ParseToman(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	digits := nonDigits.ReplaceAllString(persian.ASCIIDigits(text), "")
	if digits == "" {
		return 0, false
	}
	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}

	lower := strings.ToLower(text)
	for _, u := range unitScales {
		if containsAny(lower, u.keywords) {
			amount *= u.factor
			break
		}
	}
	if amount >= math.MaxInt64 {
		return 0, false
	}
	return int64(math.Round(amount)), true
}

// FormatToman renders an amount scaled to billions, millions or thousands.
func FormatToman(amount float64) string {
	if amount <= 0 {
		return ""
	}
	scaled := func(v float64, unit string) string {
		decimals := 1
		if v >= 10 {
			decimals = 0
		}
		return persian.FormatDecimal(v, decimals) + " " + unit + " " + currencyUnit
	}
	switch {
	case amount >= 1e9:
		return scaled(amount/1e9, "میلیارد")
	case amount >= 1e6:
		return scaled(amount/1e6, "میلیون")
	case amount >= 1e3:
		return scaled(amount/1e3, "هزار")
	default:
		return persian.FormatInt(int64(math.Round(amount))) + " " + currencyUnit
	}
}

// SummarizeMoney averages the parsed amounts and picks the most frequent raw
// texts.
func SummarizeMoney(numeric []int64, raw []string) domain.MoneySummary {
	var sum float64
	var n int
	for _, v := range numeric {
		if v <= 0 {
			continue
		}
		sum += float64(v)
		n++
	}

	texts := make([]string, 0, len(raw))
	for _, r := range raw {
		if r = strings.TrimSpace(r); r != "" {
			texts = append(texts, r)
		}
	}

	text := Unknown
	if n > 0 {
		text = averagePrefix + FormatToman(sum/float64(n))
	}
	return domain.MoneySummary{
		Text:       text,
		Reports:    len(texts),
		Numeric:    n,
		TopSamples: topFrequent(texts, 3),
	}
}

// topFrequent returns up to limit values by descending count. Ties keep
// first-seen order.
func topFrequent(values []string, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
