package jobcontext

import (
	"regexp"
	"strings"

	"job-advisor/internal/domain"
)

const (
	maxCities        = 6
	maxGenders       = 3
	maxAdvantages    = 5
	maxDisadvantages = 5
)

var htmlTags = regexp.MustCompile(`<[^>]*>`)

// Summarize aggregates every record of a title. It returns nil when there are
// no records.
func Summarize(title string, records []domain.JobRecord) *domain.JobSummary {
	if len(records) == 0 {
		return nil
	}

	var (
		incomeTexts, investmentTexts               []string
		incomeNumeric, investmentNumeric           []int64
		cities, genders, advantages, disadvantages []string
	)
	for _, r := range records {
		if income := strings.TrimSpace(r.Income); income != "" {
			incomeTexts = append(incomeTexts, income)
			if v, ok := ParseToman(income); ok {
				incomeNumeric = append(incomeNumeric, v)
			}
		}
		if investment := strings.TrimSpace(r.Investment); investment != "" {
			investmentTexts = append(investmentTexts, investment)
			if v, ok := ParseToman(investment); ok {
				investmentNumeric = append(investmentNumeric, v)
			}
		}
		cities = append(cities, r.City)
		genders = append(genders, r.Gender)
		advantages = append(advantages, stripTags(r.Advantages))
		disadvantages = append(disadvantages, stripTags(r.Disadvantages))
	}

	return &domain.JobSummary{
		JobTitle:      title,
		Income:        SummarizeMoney(incomeNumeric, incomeTexts),
		Investment:    SummarizeMoney(investmentNumeric, investmentTexts),
		Cities:        uniqueValues(cities, maxCities),
		Genders:       uniqueValues(genders, maxGenders),
		Advantages:    uniqueValues(advantages, maxAdvantages),
		Disadvantages: uniqueValues(disadvantages, maxDisadvantages),
		RecordsCount:  len(records),
	}
}

// uniqueValues keeps non-blank values in first-seen order, capped at limit.
func uniqueValues(values []string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

func stripTags(s string) string {
	return strings.TrimSpace(htmlTags.ReplaceAllString(s, ""))
}
