package statement

import "github.com/tallybook-dev/tallybook/internal/model"

// Result is the outcome of parsing one statement's raw text.
type Result struct {
	Format       string
	Info         model.StatementInfo
	Transactions []model.StatementTransaction
	Confidence   Confidence
}

// ParseStatement detects the bank format, extracts metadata and
// transactions, and grades the extraction. Zero transactions is a valid,
// low-confidence result; extraction never fails.
func ParseStatement(text string) Result {
	f := DetectFormat(text)
	info := f.ExtractInfo(text)
	txns := f.ExtractTransactions(text)
	return Result{
		Format:       f.Name(),
		Info:         info,
		Transactions: txns,
		Confidence:   AssessConfidence(info, txns),
	}
}
