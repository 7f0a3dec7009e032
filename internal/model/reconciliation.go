package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the session state. LOCKED is terminal.
type ReconciliationStatus string

const (
	ReconciliationInProgress ReconciliationStatus = "in_progress"
	ReconciliationLocked     ReconciliationStatus = "locked"
)

// Reconciliation certifies that a bank-reported balance range agrees with
// the ledger. It owns postings via Posting.ReconciliationID.
type Reconciliation struct {
	ID                    string
	AccountID             int
	StatementStartDate    time.Time
	StatementEndDate      time.Time
	StatementStartBalance decimal.Decimal
	StatementEndBalance   decimal.Decimal
	Status                ReconciliationStatus
	Notes                 string
}
