package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestGrossToExclusive(t *testing.T) {
	tests := []struct {
		gross     string
		exclusive string
		gst       string
	}{
		{"110.00", "100.00", "10.00"},
		{"11.00", "10.00", "1.00"},
		{"1.10", "1.00", "0.10"},
		{"125.50", "114.09", "11.41"},
		{"0.01", "0.01", "0.00"},
		{"-110.00", "-100.00", "-10.00"},
	}
	for _, tt := range tests {
		excl, g := GrossToExclusive(dec(tt.gross), DefaultRate)
		assert.True(t, excl.Equal(dec(tt.exclusive)), "gross %s: exclusive got %s want %s", tt.gross, excl, tt.exclusive)
		assert.True(t, g.Equal(dec(tt.gst)), "gross %s: gst got %s want %s", tt.gross, g, tt.gst)
	}
}

func TestGrossToExclusive_SplitPreservesGross(t *testing.T) {
	for _, gross := range []string{"110.00", "4.55", "999.99", "0.03", "123.45"} {
		excl, g := GrossToExclusive(dec(gross), DefaultRate)
		assert.True(t, excl.Add(g).Equal(dec(gross)), "split of %s must reproduce gross", gross)
	}
}
