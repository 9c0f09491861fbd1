// Package persian handles Persian digits and locale number formatting.
package persian

import (
	"math"
	"strconv"
	"strings"
)

const (
	thousandsSep = "٬"
	decimalSep   = "٫"
)

var (
	toASCII = strings.NewReplacer(
		"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
		"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
		"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
		"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	)
	toPersian = strings.NewReplacer(
		"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
		"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
	)
)

// ASCIIDigits rewrites Persian and Arabic-Indic digits to ASCII.
func ASCIIDigits(s string) string {
	return toASCII.Replace(s)
}

// Digits rewrites ASCII digits to Persian.
func Digits(s string) string {
	return toPersian.Replace(s)
}

// IsDigit reports whether r is an ASCII or Persian digit.
func IsDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= '۰' && r <= '۹')
}

// ContainsDigit reports whether s has at least one ASCII or Persian digit.
func ContainsDigit(s string) bool {
	return strings.IndexFunc(s, IsDigit) >= 0
}

// FormatInt renders n with Persian digits and thousands separators.
func FormatInt(n int64) string {
	return formatDecimal(float64(n), 0)
}

// FormatDecimal renders v with at most the given number of decimals. A
// fractional part that rounds to zero is dropped.
func FormatDecimal(v float64, decimals int) string {
	return formatDecimal(v, decimals)
}

func formatDecimal(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	raw := strconv.FormatFloat(roundTo(v, decimals), 'f', decimals, 64)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	intPart, frac, _ := strings.Cut(raw, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString(group(intPart))
	if frac != "" {
		b.WriteString(decimalSep)
		b.WriteString(frac)
	}
	return Digits(b.String())
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(thousandsSep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
