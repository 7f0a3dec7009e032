package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/gst"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// balanceTolerance is the rounding slack allowed on a transaction's posting sum
// and on stored GST figures.
var balanceTolerance = decimal.NewFromFloat(0.01)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	TransactionID string
	Description   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s]: %s", e.TransactionID, e.Description)
}

// JoinValidationErrors collapses violations into one human-readable message.
func JoinValidationErrors(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, ve := range errs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// ValidateTransactions enforces the double-entry invariants on a set of
// transactions.
func ValidateTransactions(txs []model.Transaction, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	hundred := decimal.NewFromInt(100)

	for _, tx := range txs {
		if len(tx.Postings) < 2 {
			errs = append(errs, ValidationError{
				TransactionID: tx.ID,
				Description:   "transaction must have at least two postings",
			})
		}

		// Postings sum to zero within a cent.
		total := decimal.Zero
		for _, p := range tx.Postings {
			total = total.Add(p.Amount)
		}
		if total.Abs().GreaterThan(balanceTolerance) {
			errs = append(errs, ValidationError{
				TransactionID: tx.ID,
				Description:   fmt.Sprintf("postings sum to %s, not zero", total.StringFixed(2)),
			})
		}

		for _, p := range tx.Postings {
			if !accounts.Exists(p.AccountID) {
				errs = append(errs, ValidationError{
					TransactionID: tx.ID,
					Description:   fmt.Sprintf("posting %s references unknown account %d", p.ID, p.AccountID),
				})
			}

			// No more than 2 decimal places.
			if !p.Amount.Mul(hundred).Equal(p.Amount.Mul(hundred).Floor()) {
				errs = append(errs, ValidationError{
					TransactionID: tx.ID,
					Description:   fmt.Sprintf("posting %s amount %s has more than 2 decimal places", p.ID, p.Amount),
				})
			}

			// GST arithmetic: the stored GST portion must agree with the
			// gross split within a cent. Gross is the original cash
			// movement, amount + gst.
			if p.IsBusiness && p.GSTCode != "" {
				rate := p.GSTRate
				if rate.IsZero() {
					rate = gst.DefaultRate
				}
				gross := p.Amount.Add(p.GSTAmount)
				_, want := gst.GrossToExclusive(gross, rate)
				if p.GSTAmount.Sub(want).Abs().GreaterThan(balanceTolerance) {
					errs = append(errs, ValidationError{
						TransactionID: tx.ID,
						Description: fmt.Sprintf("posting %s gst %s does not match gross %s at rate %s (want %s)",
							p.ID, p.GSTAmount.StringFixed(2), gross.StringFixed(2), rate, want.StringFixed(2)),
					})
				}
			}
		}
	}

	return errs
}
