// Package jobmatch resolves free-text questions to job titles in the catalog.
package jobmatch

import (
	"fmt"
	"strings"
	"unicode"
)

// lookupFoldPairs maps Persian/Arabic look-alike characters to one canonical
// form and separator punctuation to spaces.
var lookupFoldPairs = []struct{ from, to rune }{
	{'ي', 'ی'},
	{'ك', 'ک'},
	{'ة', 'ه'},
	{'ۀ', 'ه'},
	{'ؤ', 'و'},
	{'إ', 'ا'},
	{'أ', 'ا'},
	{'آ', 'ا'},
	{'\u200c', ' '},
	{'-', ' '},
	{'–', ' '},
	{'—', ' '},
	{'_', ' '},
	{'/', ' '},
	{'\\', ' '},
	{'(', ' '},
	{')', ' '},
	{'[', ' '},
	{']', ' '},
	{'{', ' '},
	{'}', ' '},
	{'«', ' '},
	{'»', ' '},
	{'"', ' '},
	{'\'', ' '},
	{':', ' '},
}

var lookupFolds = func() *strings.Replacer {
	oldnew := make([]string, 0, 2*len(lookupFoldPairs))
	for _, p := range lookupFoldPairs {
		oldnew = append(oldnew, string(p.from), string(p.to))
	}
	return strings.NewReplacer(oldnew...)
}()

// FoldTable returns the character folds as two strings of equal rune length,
// suitable for SQL translate(col, from, to).
func FoldTable() (from, to string) {
	var f, t strings.Builder
	for _, p := range lookupFoldPairs {
		f.WriteRune(p.from)
		t.WriteRune(p.to)
	}
	return f.String(), t.String()
}

// NormalizeMessage trims s and collapses every whitespace run to one space.
func NormalizeMessage(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeValue is NormalizeMessage for values that are not strings.
func NormalizeValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return NormalizeMessage(t)
	case fmt.Stringer:
		return NormalizeMessage(t.String())
	default:
		return NormalizeMessage(fmt.Sprint(t))
	}
}

// NormalizeLookupText folds orthographic variants for matching. The result is
// never shown to users.
func NormalizeLookupText(s string) string {
	s = NormalizeMessage(s)
	if s == "" {
		return ""
	}
	return NormalizeMessage(lookupFolds.Replace(s))
}

// Compact removes all whitespace from the lookup form of s.
func Compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, NormalizeLookupText(s))
}
