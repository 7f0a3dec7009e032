package match

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Tier classifies a statement-to-ledger pairing by score.
type Tier string

const (
	TierExact    Tier = "exact"
	TierProbable Tier = "probable"
	TierPossible Tier = "possible"
	TierNone     Tier = "none"
)

var (
	centTolerance   = decimal.NewFromFloat(0.01)
	dollarTolerance = decimal.NewFromInt(1)
)

// Candidate pairs a statement line with a scored ledger transaction.
type Candidate struct {
	Statement model.StatementTransaction
	Ledger    model.Transaction
	Score     int
	Reasons   []string
	Tier      Tier
}

// CalculateMatchScore scores a statement line against one ledger
// transaction. Signals are independent and additive: date proximity, amount
// proximity against the account-scoped posting, and description similarity.
func CalculateMatchScore(stmt model.StatementTransaction, tx model.Transaction, accountID int) (int, []string) {
	score := 0
	var reasons []string

	days := daysBetween(stmt.Date, tx.Date)
	switch {
	case days == 0:
		score += 40
		reasons = append(reasons, "same date")
	case days <= 1:
		score += 25
		reasons = append(reasons, "date within 1 day")
	case days <= 3:
		score += 15
		reasons = append(reasons, "date within 3 days")
	}

	// Compare against the posting on this account, not the transaction
	// sum: the sum is ~0 for every balanced transaction.
	posted := tx.PostingAmount(accountID)
	delta := stmt.SignedAmount().Sub(posted).Abs()
	switch {
	case delta.LessThanOrEqual(centTolerance):
		score += 30
		reasons = append(reasons, "amount matches")
	case delta.LessThanOrEqual(dollarTolerance):
		score += 15
		reasons = append(reasons, "amount within $1")
	}

	sim := Similarity(stmt.Description, tx.Payee)
	switch {
	case sim >= 0.8:
		score += 20
		reasons = append(reasons, fmt.Sprintf("description similar (%.2f)", sim))
	case sim >= 0.5:
		score += 10
		reasons = append(reasons, fmt.Sprintf("description partly similar (%.2f)", sim))
	}

	return score, reasons
}

// GetMatchType maps a score to its confidence tier.
func GetMatchType(score int) Tier {
	switch {
	case score >= 80:
		return TierExact
	case score >= 60:
		return TierProbable
	case score >= 40:
		return TierPossible
	default:
		return TierNone
	}
}

func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
