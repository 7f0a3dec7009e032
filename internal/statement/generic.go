package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// genericFormat is the fallback for unrecognized layouts: every line with a
// leading date and 1-3 trailing numeric tokens is a candidate transaction.
// Single-amount lines are classified debit/credit by keyword.
type genericFormat struct{}

var (
	genericAccountRe = regexp.MustCompile(`(?i)account (?:number|no\.?)[:\s]+([\d -]*\d)`)
	genericPeriodRe  = regexp.MustCompile(`(?i)(?:statement )?period[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(?:to|-)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
)

// debitKeywords mark a line as money out; creditKeywords as money in.
// A line with neither cue defaults to a debit.
var debitKeywords = []string{
	"withdrawal", "payment", "purchase", "fee", "charge", "debit",
	"transfer to", "eftpos", "atm",
}

var creditKeywords = []string{
	"deposit", "credit", "salary", "refund", "interest", "transfer from",
}

func (f *genericFormat) Name() string { return "generic" }

func (f *genericFormat) Detect(string) bool { return true }

func (f *genericFormat) ExtractInfo(text string) model.StatementInfo {
	info := model.StatementInfo{
		AccountNumber: findGroup(genericAccountRe, text),
	}
	if m := genericPeriodRe.FindStringSubmatch(text); m != nil {
		start, ok1 := ParseDate(m[1])
		end, ok2 := ParseDate(m[2])
		if ok1 && ok2 {
			info.PeriodStart, info.PeriodEnd, info.HasPeriod = start, end, true
		}
	}
	info.OpeningBalance, info.HasOpening = findBalance(openingBalanceRe, text)
	info.ClosingBalance, info.HasClosing = findBalance(closingBalanceRe, text)
	return info
}

func (f *genericFormat) ExtractTransactions(text string) []model.StatementTransaction {
	var result []model.StatementTransaction
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		date, rest, ok := leadingDate(line)
		if !ok {
			continue
		}
		txn, ok := parseGenericLine(date, rest, raw)
		if !ok {
			continue
		}
		result = append(result, txn)
	}
	return result
}

// parseGenericLine splits 1-3 trailing numeric tokens off the line:
// amount, amount+balance, or debit+credit+balance.
func parseGenericLine(date time.Time, rest, raw string) (model.StatementTransaction, bool) {
	fields := strings.Fields(rest)

	// Collect up to 3 trailing amount tokens.
	var amounts []string
	for len(fields) > 0 && len(amounts) < 3 {
		if _, ok := parseAmount(fields[len(fields)-1]); !ok {
			break
		}
		amounts = append([]string{fields[len(fields)-1]}, amounts...)
		fields = fields[:len(fields)-1]
	}
	if len(amounts) == 0 || len(fields) == 0 {
		return model.StatementTransaction{}, false
	}

	desc := strings.Join(fields, " ")
	txn := model.StatementTransaction{
		Date:        date,
		Description: desc,
		RawText:     raw,
	}

	parse := func(s string) decimal.Decimal {
		d, _ := parseAmount(s)
		return d
	}

	switch len(amounts) {
	case 1:
		amt := parse(amounts[0])
		if IsDebit(desc) {
			txn.Debit = amt.Abs()
		} else {
			txn.Credit = amt.Abs()
		}
	case 2:
		amt := parse(amounts[0])
		txn.Balance = parse(amounts[1])
		txn.HasBalance = true
		if IsDebit(desc) {
			txn.Debit = amt.Abs()
		} else {
			txn.Credit = amt.Abs()
		}
	case 3:
		txn.Debit = parse(amounts[0]).Abs()
		txn.Credit = parse(amounts[1]).Abs()
		txn.Balance = parse(amounts[2])
		txn.HasBalance = true
	}
	return txn, true
}

// IsDebit classifies a single-amount statement line by description keywords.
// Debit cues win, then credit cues; a line with neither is treated as money
// out.
func IsDebit(desc string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range debitKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	return true
}
