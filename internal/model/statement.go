package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementTransaction is one parsed bank-statement line. It is ephemeral:
// created per extraction call, consumed by matching, never persisted raw.
type StatementTransaction struct {
	Date        time.Time
	Description string
	Debit       decimal.Decimal // money out, zero if credit side
	Credit      decimal.Decimal // money in, zero if debit side
	Balance     decimal.Decimal
	HasBalance  bool
	RawText     string
}

// SignedAmount returns the line amount in ledger orientation:
// credits positive, debits negative.
func (s StatementTransaction) SignedAmount() decimal.Decimal {
	return s.Credit.Sub(s.Debit)
}

// StatementInfo holds statement-level metadata. Every field is optional;
// extraction reports what it found and nothing more.
type StatementInfo struct {
	AccountNumber  string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	HasPeriod      bool
	OpeningBalance decimal.Decimal
	HasOpening     bool
	ClosingBalance decimal.Decimal
	HasClosing     bool
}
