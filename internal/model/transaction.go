package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a ledger transaction.
type TransactionStatus string

const (
	StatusNormal TransactionStatus = "normal"
	StatusVoid   TransactionStatus = "void"
)

// Transaction is a dated double-entry with an ordered set of postings.
// The posting amounts of a valid transaction sum to zero within one cent.
type Transaction struct {
	ID       string
	Date     time.Time
	Payee    string
	Memo     string
	Tags     string // semicolon-separated
	Status   TransactionStatus
	Metadata string // opaque, importer-owned
	Postings []Posting
}

// Posting is one signed leg of a Transaction, tied to one account.
// ReconciliationID is empty until the posting is claimed by a
// reconciliation session.
type Posting struct {
	ID               string
	TransactionID    string
	AccountID        int
	Amount           decimal.Decimal // negative = money out of the account
	IsBusiness       bool
	GSTCode          string
	GSTRate          decimal.Decimal
	GSTAmount        decimal.Decimal
	Cleared          bool
	ReconciliationID string
}

// PostingAmount returns the summed posting amount on the given account.
// This is the account-scoped figure statement lines are compared against;
// the whole-transaction sum is always ~0 and carries no signal.
func (t Transaction) PostingAmount(accountID int) decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Postings {
		if p.AccountID == accountID {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Touches reports whether any posting of the transaction is on accountID.
func (t Transaction) Touches(accountID int) bool {
	for _, p := range t.Postings {
		if p.AccountID == accountID {
			return true
		}
	}
	return false
}
