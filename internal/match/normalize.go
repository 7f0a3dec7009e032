package match

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// NormalizeDescription lowercases, strips everything outside [a-z0-9 ],
// collapses runs of whitespace and trims. Comparison-only; normalized text
// is never persisted.
func NormalizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity returns a symmetric 0-1 ratio between two descriptions after
// normalization. Two empty strings are identical; one empty string matches
// nothing.
func Similarity(a, b string) float64 {
	na := NormalizeDescription(a)
	nb := NormalizeDescription(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	return levenshtein.RatioForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
}
