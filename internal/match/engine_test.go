package match

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/model"
)

type fakeRepo struct {
	txs       []model.Transaction
	err       error
	gotStart  time.Time
	gotEnd    time.Time
	gotAcctID int
}

func (f *fakeRepo) FetchTransactions(accountID int, start, end time.Time) ([]model.Transaction, error) {
	f.gotAcctID = accountID
	f.gotStart = start
	f.gotEnd = end
	return f.txs, f.err
}

func TestMatchTransactions_PadsWindow(t *testing.T) {
	repo := &fakeRepo{}
	e := NewEngine(repo, 5, nil)

	_, err := e.MatchTransactions(testAccountID, nil, day(1), day(31))
	require.NoError(t, err)

	assert.Equal(t, testAccountID, repo.gotAcctID)
	assert.Equal(t, time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC), repo.gotStart)
	assert.Equal(t, time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), repo.gotEnd)
}

func TestMatchTransactions_RepoError(t *testing.T) {
	repo := &fakeRepo{err: errors.New("disk gone")}
	e := NewEngine(repo, 0, nil)

	_, err := e.MatchTransactions(testAccountID, nil, day(1), day(31))
	assert.Error(t, err)
}

func TestMatchTransactions_Partition(t *testing.T) {
	repo := &fakeRepo{txs: []model.Transaction{
		ledgerTx("2025-01-001", 3, "Woolworths", "-52.30"),
		ledgerTx("2025-01-002", 10, "Quarterly Interest", "1.05"),
		ledgerTx("2025-01-003", 20, "Rent", "-800.00"),
	}}
	e := NewEngine(repo, 5, nil)

	stmts := []model.StatementTransaction{
		stmtLine(3, "WOOLWORTHS 1234 SYDNEY", "52.30"),
		{Date: day(11), Description: "CREDIT INTEREST", Credit: dec("1.05")},
		stmtLine(25, "UNRELATED MERCHANT", "7.77"),
	}

	res, err := e.MatchTransactions(testAccountID, stmts, day(1), day(31))
	require.NoError(t, err)

	// Same date + amount + partial description: exact.
	require.Len(t, res.ExactMatches, 1)
	assert.Equal(t, "2025-01-001", res.ExactMatches[0].Ledger.ID)

	// One day off + amount: probable.
	require.Len(t, res.ProbableMatches, 1)
	assert.Equal(t, "2025-01-002", res.ProbableMatches[0].Ledger.ID)

	assert.Empty(t, res.PossibleMatches)

	require.Len(t, res.UnmatchedStatement, 1)
	assert.Equal(t, "UNRELATED MERCHANT", res.UnmatchedStatement[0].Description)

	require.Len(t, res.UnmatchedLedger, 1)
	assert.Equal(t, "2025-01-003", res.UnmatchedLedger[0].ID)

	s := res.Summary
	assert.Equal(t, 3, s.TotalStatement)
	assert.Equal(t, 2, s.TotalMatched)
	assert.Equal(t, 1, s.TotalUnmatched)
	assert.True(t, s.StatementBalance.Equal(dec("-59.02")))
	assert.True(t, s.LedgerBalance.Equal(dec("-851.25")))
	assert.True(t, s.Difference.Equal(dec("792.23")))
}

func TestMatchTransactions_NoDoubleClaim(t *testing.T) {
	// Two identical statement lines, one ledger transaction: the first line
	// claims it, the second goes unmatched.
	repo := &fakeRepo{txs: []model.Transaction{
		ledgerTx("2025-01-001", 3, "Coffee Shop", "-4.50"),
	}}
	e := NewEngine(repo, 5, nil)

	stmts := []model.StatementTransaction{
		stmtLine(3, "COFFEE SHOP", "4.50"),
		stmtLine(3, "COFFEE SHOP", "4.50"),
	}

	res, err := e.MatchTransactions(testAccountID, stmts, day(1), day(31))
	require.NoError(t, err)

	assert.Len(t, res.ExactMatches, 1)
	assert.Len(t, res.UnmatchedStatement, 1)
	assert.Empty(t, res.UnmatchedLedger)
}

func TestMatchTransactions_AlreadyReconciledExcluded(t *testing.T) {
	claimed := ledgerTx("2025-01-001", 3, "Coffee Shop", "-4.50")
	claimed.Postings[0].ReconciliationID = "prior-session"
	repo := &fakeRepo{txs: []model.Transaction{claimed}}
	e := NewEngine(repo, 5, nil)

	stmts := []model.StatementTransaction{stmtLine(3, "COFFEE SHOP", "4.50")}

	res, err := e.MatchTransactions(testAccountID, stmts, day(1), day(31))
	require.NoError(t, err)

	// Out of play entirely: not matchable, not reported as unmatched ledger.
	assert.Empty(t, res.ExactMatches)
	assert.Len(t, res.UnmatchedStatement, 1)
	assert.Empty(t, res.UnmatchedLedger)
}

func TestFindBestMatch_TieBreaksToEarlierDate(t *testing.T) {
	e := NewEngine(&fakeRepo{}, 5, nil)
	stmt := stmtLine(5, "zzz", "10.00")

	// Equidistant dates, identical amounts: same score either way.
	later := ledgerTx("2025-01-002", 6, "qqq", "-10.00")
	earlier := ledgerTx("2025-01-001", 4, "qqq", "-10.00")

	cand, ok := e.FindBestMatch(stmt, []model.Transaction{later, earlier}, map[string]bool{}, testAccountID)
	require.True(t, ok)
	assert.Equal(t, "2025-01-001", cand.Ledger.ID)
}

func TestFindBestMatch_NoneTierSuppressed(t *testing.T) {
	e := NewEngine(&fakeRepo{}, 5, nil)
	stmt := stmtLine(5, "zzz", "10.00")
	weak := ledgerTx("2025-01-001", 25, "qqq", "-999.00")

	_, ok := e.FindBestMatch(stmt, []model.Transaction{weak}, map[string]bool{}, testAccountID)
	assert.False(t, ok)
}

func TestFindBestMatch_RespectsExclusions(t *testing.T) {
	e := NewEngine(&fakeRepo{}, 5, nil)
	stmt := stmtLine(3, "Coffee Shop", "4.50")
	tx := ledgerTx("2025-01-001", 3, "Coffee Shop", "-4.50")

	_, ok := e.FindBestMatch(stmt, []model.Transaction{tx}, map[string]bool{"2025-01-001": true}, testAccountID)
	assert.False(t, ok)
}

func TestMatchTransactions_Deterministic(t *testing.T) {
	repo := &fakeRepo{txs: []model.Transaction{
		ledgerTx("2025-01-001", 3, "Coffee Shop", "-4.50"),
		ledgerTx("2025-01-002", 3, "Coffee House", "-4.50"),
	}}
	e := NewEngine(repo, 5, nil)
	stmts := []model.StatementTransaction{
		stmtLine(3, "COFFEE SHOP", "4.50"),
		stmtLine(3, "COFFEE HOUSE", "4.50"),
	}

	first, err := e.MatchTransactions(testAccountID, stmts, day(1), day(31))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.MatchTransactions(testAccountID, stmts, day(1), day(31))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateBalance(t *testing.T) {
	txs := []model.Transaction{
		ledgerTx("2025-01-001", 3, "a", "-52.30"),
		ledgerTx("2025-01-002", 4, "b", "1.05"),
	}
	assert.True(t, CalculateBalance(testAccountID, txs).Equal(dec("-51.25")))
	assert.True(t, CalculateBalance(9999, txs).IsZero())
}
