package jobmatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type stringer struct{}

func (stringer) String() string { return "  hello \t world " }

func TestNormalizeMessage(t *testing.T) {
	require.Equal(t, "a b c", NormalizeMessage("  a \n\t b   c "))
	require.Equal(t, "", NormalizeMessage(" \n "))
}

func TestNormalizeValue_CoercesNonStrings(t *testing.T) {
	require.Equal(t, "42", NormalizeValue(42))
	require.Equal(t, "hello world", NormalizeValue(stringer{}))
	require.Equal(t, "", NormalizeValue(nil))
	require.Equal(t, "true", NormalizeValue(true))
}

func TestNormalizeLookupText_FoldsVariants(t *testing.T) {
	require.Equal(t, "کیک پزی", NormalizeLookupText("كيك‌پزي"))
	require.Equal(t, "مهندسی نرم افزار", NormalizeLookupText("مهندسی (نرم-افزار)"))
	require.Equal(t, "اموزش و پرورش", NormalizeLookupText("«آموزش» و پرورش"))
	require.Equal(t, "خانه", NormalizeLookupText("خانة"))
	require.Equal(t, "موسسه", NormalizeLookupText("مؤسسه"))
}

func TestNormalizeLookupText_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"كيك‌پزي  خانگي",
		"برنامه‌نویسی / طراحی — وب",
		"«آموزش» : إدارة [أ] {ۀ}",
		"plain ascii text",
		"‌‌",
	}
	for _, in := range inputs {
		once := NormalizeLookupText(in)
		require.Equal(t, once, NormalizeLookupText(once), "input=%q", in)
	}
}

func TestCompact(t *testing.T) {
	require.Equal(t, "برنامهنویسی", Compact("برنامه‌ نویسی"))
	require.Equal(t, "", Compact("  "))
}

func TestFoldTableMatchesReplacer(t *testing.T) {
	from, to := FoldTable()
	fromRunes, toRunes := []rune(from), []rune(to)
	require.Equal(t, len(fromRunes), len(toRunes))
	for i, r := range fromRunes {
		require.Equal(t, string(toRunes[i]), lookupFolds.Replace(string(r)))
	}
}
