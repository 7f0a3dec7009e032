package statement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"05/01/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"31/12/2024", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{"05-01-2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"5/1/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"3 Jan 2025", time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"15 December 2024", time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)},
		{"  7 Feb 2025  ", time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		require.True(t, ok, "expected %q to parse", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	tests := []struct {
		in       string
		wantYear int
	}{
		{"05/01/25", 2025},
		{"05/01/49", 2049},
		{"05/01/50", 1950},
		{"05/01/99", 1999},
		{"05/01/00", 2000},
		{"3 Jan 25", 2025},
		{"3 Jan 75", 1975},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		require.True(t, ok, "expected %q to parse", tt.in)
		assert.Equal(t, tt.wantYear, got.Year(), "input %q", tt.in)
	}
}

func TestParseDate_SameDayAcrossForms(t *testing.T) {
	short, ok := ParseDate("05/01/25")
	require.True(t, ok)
	long, ok := ParseDate("05/01/2025")
	require.True(t, ok)
	assert.True(t, short.Equal(long))
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{
		"", "hello", "2025-01-05", "32/01/2025", "31/02/2025",
		"05/13/2025", "0/01/2025", "3 Frx 2025", "Jan 3 2025",
	} {
		_, ok := ParseDate(in)
		assert.False(t, ok, "expected %q to fail", in)
	}
}

func TestLeadingDate(t *testing.T) {
	d, rest, ok := leadingDate("05/01/2025 Coffee Shop 4.50")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "Coffee Shop 4.50", rest)

	d, rest, ok = leadingDate("3 Jan 2025 Woolworths 52.30")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "Woolworths 52.30", rest)

	_, _, ok = leadingDate("Value Date: 05/01/2025")
	assert.False(t, ok)

	_, _, ok = leadingDate("")
	assert.False(t, ok)
}
