// Package gst holds the GST split arithmetic shared by every ingestion path.
package gst

import "github.com/shopspring/decimal"

// DefaultRate is the Australian GST rate.
var DefaultRate = decimal.NewFromFloat(0.10)

// GrossToExclusive splits a GST-inclusive gross amount into the exclusive
// amount and the GST portion: gst = gross * rate / (1 + rate), rounded to
// cents. exclusive + gst always reproduces gross exactly.
func GrossToExclusive(gross, rate decimal.Decimal) (exclusive, gst decimal.Decimal) {
	one := decimal.NewFromInt(1)
	gst = gross.Mul(rate).Div(one.Add(rate)).Round(2)
	exclusive = gross.Sub(gst)
	return exclusive, gst
}
