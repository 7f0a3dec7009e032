package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/model"
)

type allAccounts struct{}

func (allAccounts) Exists(int) bool { return true }

type noAccounts struct{}

func (noAccounts) Exists(int) bool { return false }

func balancedTx() model.Transaction {
	return model.Transaction{
		ID:   "2025-01-001",
		Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		Postings: []model.Posting{
			{ID: "2025-01-001a", AccountID: 1010, Amount: dec("-52.30")},
			{ID: "2025-01-001b", AccountID: 5200, Amount: dec("52.30")},
		},
	}
}

func TestValidateTransactions_Valid(t *testing.T) {
	errs := ValidateTransactions([]model.Transaction{balancedTx()}, allAccounts{})
	assert.Empty(t, errs)
}

func TestValidateTransactions_SinglePosting(t *testing.T) {
	tx := balancedTx()
	tx.Postings = tx.Postings[:1]

	errs := ValidateTransactions([]model.Transaction{tx}, allAccounts{})
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Description, "at least two postings")
}

func TestValidateTransactions_Unbalanced(t *testing.T) {
	tx := balancedTx()
	tx.Postings[1].Amount = dec("52.40")

	errs := ValidateTransactions([]model.Transaction{tx}, allAccounts{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Description, "sum to 0.10")
}

func TestValidateTransactions_OneCentRoundingTolerated(t *testing.T) {
	tx := balancedTx()
	tx.Postings[1].Amount = dec("52.31")

	errs := ValidateTransactions([]model.Transaction{tx}, allAccounts{})
	assert.Empty(t, errs)
}

func TestValidateTransactions_UnknownAccount(t *testing.T) {
	errs := ValidateTransactions([]model.Transaction{balancedTx()}, noAccounts{})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Description, "unknown account")
}

func TestValidateTransactions_SubCentAmount(t *testing.T) {
	tx := balancedTx()
	tx.Postings[0].Amount = dec("-52.305")
	tx.Postings[1].Amount = dec("52.305")

	errs := ValidateTransactions([]model.Transaction{tx}, allAccounts{})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Description, "more than 2 decimal places")
}

func TestValidateTransactions_GSTArithmetic(t *testing.T) {
	tx := model.Transaction{
		ID:   "2025-01-002",
		Date: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		Postings: []model.Posting{
			{ID: "2025-01-002a", AccountID: 1010, Amount: dec("-110.00")},
			{ID: "2025-01-002b", AccountID: 6300, Amount: dec("100.00"),
				IsBusiness: true, GSTCode: "GST", GSTRate: dec("0.1"), GSTAmount: dec("10.00")},
			{ID: "2025-01-002c", AccountID: 1310, Amount: dec("10.00")},
		},
	}
	assert.Empty(t, ValidateTransactions([]model.Transaction{tx}, allAccounts{}))

	// Shift a dollar from the exclusive amount into the GST portion: the
	// postings still balance but the split no longer matches the rate.
	tx.Postings[1].Amount = dec("99.00")
	tx.Postings[1].GSTAmount = dec("11.00")
	tx.Postings[2].Amount = dec("11.00")

	errs := ValidateTransactions([]model.Transaction{tx}, allAccounts{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Description, "does not match gross")
}

func TestValidateTransactions_GSTSkippedForPersonal(t *testing.T) {
	tx := balancedTx()
	// Not business: GST arithmetic is not checked even with a code set.
	tx.Postings[1].GSTCode = "GST"
	tx.Postings[1].GSTAmount = dec("999.00")
	tx.Postings[0].Amount = dec("-52.30")

	assert.Empty(t, ValidateTransactions([]model.Transaction{tx}, allAccounts{}))
}

func TestJoinValidationErrors(t *testing.T) {
	assert.NoError(t, JoinValidationErrors(nil))

	err := JoinValidationErrors([]ValidationError{
		{TransactionID: "2025-01-001", Description: "first"},
		{TransactionID: "2025-01-002", Description: "second"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[2025-01-001]: first; [2025-01-002]: second")
}
