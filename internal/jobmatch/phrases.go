package jobmatch

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxWindow    = 4
	minPhraseLen = 2
)

// stopwords are conversational filler and job-generic nouns. They are stored
// in lookup form, see init.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"در", "برای", "به", "از", "که", "چی", "چیه", "چه", "چطور", "چگونه", "چقدر", "چقد", "چقدره",
		"درآمد", "درامد", "درآمدش", "درامدش", "سرمایه", "حقوق",
		"میخوام", "می‌خوام", "میخواهم", "میخواستم", "میخوای", "میخواید", "میشه", "می", "من",
		"کنم", "کن", "کردن", "کرد", "شروع", "قدم", "بعدی", "منطقی", "بیشتر", "تحقیق", "موضوع",
		"حرفه", "حوزه", "شغل", "کار", "رشته", "درمورد", "درباره", "اطلاعات",
		"را", "با", "و", "یا", "اگر", "آیا", "ایا", "است", "نیست", "هست", "هستن", "هستش",
		"کج", "کجاست", "چیکار", "چکار", "بگو", "بگید", "نیاز", "دارم", "داریم", "مورد",
		"برا", "برام", "براش", "براشون", "توضیح", "لطفا", "لطفاً", "معرفی",
		"چند", "چندتا", "چندمه", "پول", "هزینه", "هزینه‌", "چیا", "سود", "درآمدزایی",
	} {
		key := strings.ToLower(NormalizeLookupText(w))
		if key == "" || strings.Contains(key, " ") {
			// Never matches a single token once separators are folded.
			continue
		}
		stopwords[key] = struct{}{}
	}
}

func isTokenSeparator(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '،', ',', '.', '!', '?', '؟':
		return true
	}
	return false
}

// Tokens splits the lookup form of msg and drops stopwords and tokens shorter
// than two characters.
func Tokens(msg string) []string {
	fields := strings.FieldsFunc(NormalizeLookupText(msg), isTokenSeparator)
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < minPhraseLen {
			continue
		}
		if _, stop := stopwords[strings.ToLower(f)]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Phrases returns the candidate lookup phrases for msg, longest first. The
// first candidate is always the whole lookup text.
func Phrases(msg string) []string {
	text := NormalizeLookupText(msg)
	if text == "" {
		return nil
	}

	candidates := []string{text}
	words := Tokens(text)
	for size := min(maxWindow, len(words)); size >= 1; size-- {
		for i := 0; i+size <= len(words); i++ {
			chunk := strings.Join(words[i:i+size], " ")
			if utf8.RuneCountInString(chunk) < minPhraseLen {
				continue
			}
			candidates = append(candidates, chunk)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	phrases := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		phrases = append(phrases, c)
	}

	sort.SliceStable(phrases, func(i, j int) bool {
		return utf8.RuneCountInString(phrases[i]) > utf8.RuneCountInString(phrases[j])
	})
	return phrases
}
