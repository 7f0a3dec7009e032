// Package statement turns raw bank-statement text into normalized
// transaction records. Formats are a closed variant set; adding a bank means
// adding a variant, not editing a monolith.
package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Format is one bank statement layout. Detection, metadata extraction and
// transaction extraction are pure functions over the raw text.
type Format interface {
	Name() string
	Detect(text string) bool
	ExtractInfo(text string) model.StatementInfo
	ExtractTransactions(text string) []model.StatementTransaction
}

// formats lists the known layouts in detection precedence order. Credit-card
// layouts come before savings layouts: savings-account phrases can co-occur
// on a card statement. The generic fallback is last and always matches.
var formats = []Format{
	&commbankCardFormat{},
	&commbankSavingsFormat{},
	&genericFormat{},
}

// DetectFormat inspects signature phrases and returns the first matching
// format.
func DetectFormat(text string) Format {
	for _, f := range formats {
		if f.Detect(text) {
			return f
		}
	}
	return formats[len(formats)-1]
}

// FormatByName returns a format by name, or nil.
func FormatByName(name string) Format {
	for _, f := range formats {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// amountClassifier maps a raw trailing amount token to debit/credit per a
// format's sign convention.
type amountClassifier func(rawToken string, desc string) (debit, credit bool)

// scanSection is the shared line-scanning state machine: enter a
// transaction section on a header marker, leave on a trailer marker, anchor
// on leading dates, and fold continuation lines into the prior dated line.
// Unrecognized lines are skipped, never fatal.
func scanSection(text string, header, trailer *regexp.Regexp, classify amountClassifier) []model.StatementTransaction {
	var (
		result    []model.StatementTransaction
		pending   *model.StatementTransaction
		inSection bool
	)

	flush := func() {
		if pending != nil {
			result = append(result, *pending)
			pending = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if !inSection {
			if header.MatchString(line) {
				inSection = true
			}
			continue
		}

		if trailer.MatchString(line) {
			flush()
			inSection = false
			continue
		}

		date, rest, ok := leadingDate(line)
		if !ok {
			// Continuation: extend the prior dated line's description.
			if pending != nil {
				pending.Description = strings.TrimSpace(pending.Description + " " + line)
				pending.RawText += "\n" + raw
			}
			continue
		}

		flush()
		txn, ok := buildLine(date, rest, raw, classify)
		if !ok {
			continue
		}
		pending = &txn
	}
	flush()

	return result
}

// buildLine strips the trailing balance token first, then classifies the
// remaining trailing amount token using the format's sign convention.
func buildLine(date time.Time, rest, raw string, classify amountClassifier) (model.StatementTransaction, bool) {
	rest, balance, hasBalance := stripTrailingBalance(rest)

	desc, token, amount, ok := trailingAmount(rest)
	if !ok {
		return model.StatementTransaction{}, false
	}

	txn := model.StatementTransaction{
		Date:        date,
		Description: desc,
		Balance:     balance,
		HasBalance:  hasBalance,
		RawText:     raw,
	}

	debit, credit := classify(token, desc)
	switch {
	case credit:
		txn.Credit = amount.Abs()
	case debit:
		txn.Debit = amount.Abs()
	default:
		return model.StatementTransaction{}, false
	}
	return txn, true
}

// findGroup applies a regex with one capture group, returning the trimmed
// match.
func findGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
