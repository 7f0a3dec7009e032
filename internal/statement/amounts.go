package statement

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var amountTokenRe = regexp.MustCompile(`^\$?-?[\d,]+\.?\d*-?$`)

// parseAmount parses a bank amount token: optional leading $, thousands
// commas, and a leading or trailing minus.
func parseAmount(token string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(token)
	if s == "" || !amountTokenRe.MatchString(s) {
		return decimal.Decimal{}, false
	}

	negative := false
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}
	s = strings.TrimPrefix(s, "$")
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// stripTrailingBalance removes a trailing running-balance token from a line
// remainder: either "$X.XX CR", "$X.XX DR" (DR reported negative) or, when
// at least one other amount token precedes it, a bare trailing number.
// Returns the shortened line, the balance, and whether one was found.
func stripTrailingBalance(rest string) (string, decimal.Decimal, bool) {
	fields := strings.Fields(rest)
	n := len(fields)
	if n == 0 {
		return rest, decimal.Decimal{}, false
	}

	// "$X.XX CR" / "$X.XX DR"
	if n >= 2 {
		suffix := strings.ToUpper(fields[n-1])
		if suffix == "CR" || suffix == "DR" {
			if bal, ok := parseAmount(fields[n-2]); ok {
				if suffix == "DR" {
					bal = bal.Neg()
				}
				return strings.Join(fields[:n-2], " "), bal, true
			}
		}
	}

	// Bare trailing number counts as the balance only when another amount
	// token sits before it; otherwise the lone number is the amount itself.
	if n >= 2 {
		if bal, ok := parseAmount(fields[n-1]); ok {
			if _, ok2 := parseAmount(fields[n-2]); ok2 {
				return strings.Join(fields[:n-1], " "), bal, true
			}
		}
	}

	return rest, decimal.Decimal{}, false
}

// findBalance applies a balance regex (amount group + optional CR/DR group)
// and returns the signed balance. DR balances are reported negative.
func findBalance(re *regexp.Regexp, text string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Decimal{}, false
	}
	bal, ok := parseAmount(m[1])
	if !ok {
		return decimal.Decimal{}, false
	}
	if strings.EqualFold(m[2], "DR") {
		bal = bal.Neg()
	}
	return bal, true
}

// trailingAmount splits the last token off a line remainder if it parses as
// an amount. The raw token is returned for sign-convention inspection.
func trailingAmount(rest string) (desc, raw string, amount decimal.Decimal, ok bool) {
	fields := strings.Fields(rest)
	n := len(fields)
	if n == 0 {
		return rest, "", decimal.Decimal{}, false
	}
	amt, ok2 := parseAmount(fields[n-1])
	if !ok2 {
		return rest, "", decimal.Decimal{}, false
	}
	return strings.Join(fields[:n-1], " "), fields[n-1], amt, true
}
