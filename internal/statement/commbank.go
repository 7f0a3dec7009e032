package statement

import (
	"regexp"
	"strings"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// CommBank credit-card statements: "D MMM YYYY" dates, and a trailing "-"
// on the amount marks a credit (payment or refund).
type commbankCardFormat struct{}

var (
	cardNumberRe  = regexp.MustCompile(`(?i)card number[:\s]+(\d[\d ]+\d)`)
	cardPeriodRe  = regexp.MustCompile(`(?i)statement period[:\s]+(\d{1,2} [A-Za-z]{3,9} \d{2,4})\s+(?:to|-)\s+(\d{1,2} [A-Za-z]{3,9} \d{2,4})`)
	cardHeaderRe  = regexp.MustCompile(`(?i)^date\s+transaction`)
	cardTrailerRe = regexp.MustCompile(`(?i)^(closing balance|total interest|payment summary)`)
)

func (f *commbankCardFormat) Name() string { return "commbank-card" }

func (f *commbankCardFormat) Detect(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "credit card statement") {
		return true
	}
	return strings.Contains(lower, "commbank") && strings.Contains(lower, "card number")
}

func (f *commbankCardFormat) ExtractInfo(text string) model.StatementInfo {
	info := model.StatementInfo{
		AccountNumber: findGroup(cardNumberRe, text),
	}
	if m := cardPeriodRe.FindStringSubmatch(text); m != nil {
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

func (f *commbankCardFormat) ExtractTransactions(text string) []model.StatementTransaction {
	return scanSection(text, cardHeaderRe, cardTrailerRe, func(token, _ string) (debit, credit bool) {
		if strings.HasSuffix(token, "-") {
			return false, true
		}
		return true, false
	})
}

// CommBank savings/transaction accounts: DD/MM/YYYY dates, and a leading "$"
// on the amount marks a credit while a bare number is a debit.
type commbankSavingsFormat struct{}

var (
	savingsAccountRe = regexp.MustCompile(`(?i)account number[:\s]+(\d[\d -]+\d)`)
	savingsPeriodRe  = regexp.MustCompile(`(?i)statement period[:\s]+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(?:to|-)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	savingsHeaderRe  = regexp.MustCompile(`(?i)^date\s+(description|transaction)`)
	savingsTrailerRe = regexp.MustCompile(`(?i)^(closing balance|end of statement|total\b)`)

	openingBalanceRe = regexp.MustCompile(`(?i)opening balance[:\s]+(\$?[\d,]+\.\d{2})\s*(CR|DR)?`)
	closingBalanceRe = regexp.MustCompile(`(?i)closing balance[:\s]+(\$?[\d,]+\.\d{2})\s*(CR|DR)?`)
)

func (f *commbankSavingsFormat) Name() string { return "commbank-savings" }

func (f *commbankSavingsFormat) Detect(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "smart access") ||
		strings.Contains(lower, "netbank saver") ||
		strings.Contains(lower, "statement of account")
}

func (f *commbankSavingsFormat) ExtractInfo(text string) model.StatementInfo {
	info := model.StatementInfo{
		AccountNumber: findGroup(savingsAccountRe, text),
	}
	if m := savingsPeriodRe.FindStringSubmatch(text); m != nil {
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

func (f *commbankSavingsFormat) ExtractTransactions(text string) []model.StatementTransaction {
	return scanSection(text, savingsHeaderRe, savingsTrailerRe, func(token, _ string) (debit, credit bool) {
		if strings.HasPrefix(token, "$") {
			return false, true
		}
		return true, false
	})
}
