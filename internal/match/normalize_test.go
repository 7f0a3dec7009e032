package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WOOLWORTHS 1234 SYDNEY NSW", "woolworths 1234 sydney nsw"},
		{"  spaced   out  ", "spaced out"},
		{"NETFLIX.COM", "netflixcom"},
		{"CAFÉ*PAYMENT #42", "cafpayment 42"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDescription(tt.in), "input %q", tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("WOOLWORTHS", "woolworths"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("", "Woolworths"))
	assert.Equal(t, 0.0, Similarity("Woolworths", "!!!"))

	// Shared prefix scores above the partial-similarity floor.
	sim := Similarity("WOOLWORTHS 1234 SYDNEY", "Woolworths")
	assert.Greater(t, sim, 0.5)
	assert.Less(t, sim, 1.0)

	// Unrelated strings stay low.
	assert.Less(t, Similarity("Woolworths", "Quarterly Interest"), 0.5)
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "WOOLWORTHS 1234 SYDNEY", "Woolworths Sydney"
	assert.Equal(t, Similarity(a, b), Similarity(b, a))
}
