package match

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// DefaultWindowDays pads the candidate date window beyond the statement
// period on both sides.
const DefaultWindowDays = 5

// Repository fetches candidate ledger transactions. Implemented by
// ledger.Service; tests inject their own.
type Repository interface {
	FetchTransactions(accountID int, start, end time.Time) ([]model.Transaction, error)
}

// Result partitions one matching run. Identical inputs always produce the
// identical partition.
type Result struct {
	ExactMatches       []Candidate
	ProbableMatches    []Candidate
	PossibleMatches    []Candidate
	UnmatchedStatement []model.StatementTransaction
	UnmatchedLedger    []model.Transaction
	Summary            Summary
}

// Summary reports statement/ledger totals independent of pairwise matching.
type Summary struct {
	TotalStatement   int
	TotalMatched     int
	TotalUnmatched   int
	StatementBalance decimal.Decimal
	LedgerBalance    decimal.Decimal
	Difference       decimal.Decimal
}

// Engine scores statement lines against ledger transactions. It is a pure
// transform over its inputs and safe to share across accounts.
type Engine struct {
	repo       Repository
	windowDays int
	log        *zap.Logger
}

// NewEngine creates a matching engine. windowDays <= 0 selects the default
// padding; a nil logger disables logging.
func NewEngine(repo Repository, windowDays int, log *zap.Logger) *Engine {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{repo: repo, windowDays: windowDays, log: log}
}

// FindBestMatch scores stmt against every non-excluded candidate and picks
// the highest score; ties break to the earliest ledger date, then input
// order. A winner in the "none" tier is suppressed entirely.
func (e *Engine) FindBestMatch(stmt model.StatementTransaction, candidates []model.Transaction, excluded map[string]bool, accountID int) (Candidate, bool) {
	best := Candidate{Tier: TierNone}
	found := false

	for _, tx := range candidates {
		if excluded[tx.ID] {
			continue
		}
		score, reasons := CalculateMatchScore(stmt, tx, accountID)
		better := score > best.Score ||
			(found && score == best.Score && tx.Date.Before(best.Ledger.Date))
		if !found || better {
			best = Candidate{
				Statement: stmt,
				Ledger:    tx,
				Score:     score,
				Reasons:   reasons,
				Tier:      GetMatchType(score),
			}
			found = true
		}
	}

	if !found || best.Tier == TierNone {
		return Candidate{Statement: stmt, Tier: TierNone}, false
	}
	return best, true
}

// MatchTransactions matches statement lines against ledger transactions on
// the account within the padded date window. Lines are processed in input
// order; each claim removes the ledger transaction from later consideration,
// so no ledger id is ever assigned twice.
func (e *Engine) MatchTransactions(accountID int, stmtTxs []model.StatementTransaction, rangeStart, rangeEnd time.Time) (*Result, error) {
	start := rangeStart.AddDate(0, 0, -e.windowDays)
	end := rangeEnd.AddDate(0, 0, e.windowDays)

	candidates, err := e.repo.FetchTransactions(accountID, start, end)
	if err != nil {
		return nil, err
	}

	// Transactions already claimed by an earlier reconciliation are out of
	// play from the start.
	preExcluded := make(map[string]bool)
	for _, tx := range candidates {
		for _, p := range tx.Postings {
			if p.AccountID == accountID && p.ReconciliationID != "" {
				preExcluded[tx.ID] = true
			}
		}
	}
	excluded := make(map[string]bool, len(preExcluded))
	for txID := range preExcluded {
		excluded[txID] = true
	}

	result := &Result{}
	claimed := make(map[string]bool)

	for _, stmt := range stmtTxs {
		cand, ok := e.FindBestMatch(stmt, candidates, excluded, accountID)
		if !ok {
			result.UnmatchedStatement = append(result.UnmatchedStatement, stmt)
			continue
		}
		excluded[cand.Ledger.ID] = true
		claimed[cand.Ledger.ID] = true
		switch cand.Tier {
		case TierExact:
			result.ExactMatches = append(result.ExactMatches, cand)
		case TierProbable:
			result.ProbableMatches = append(result.ProbableMatches, cand)
		case TierPossible:
			result.PossibleMatches = append(result.PossibleMatches, cand)
		}
	}

	for _, tx := range candidates {
		if !claimed[tx.ID] && !preExcluded[tx.ID] {
			result.UnmatchedLedger = append(result.UnmatchedLedger, tx)
		}
	}

	matched := len(result.ExactMatches) + len(result.ProbableMatches) + len(result.PossibleMatches)
	stmtBalance := decimal.Zero
	for _, s := range stmtTxs {
		stmtBalance = stmtBalance.Add(s.SignedAmount())
	}
	ledgerBalance := CalculateBalance(accountID, candidates)
	result.Summary = Summary{
		TotalStatement:   len(stmtTxs),
		TotalMatched:     matched,
		TotalUnmatched:   len(result.UnmatchedStatement),
		StatementBalance: stmtBalance,
		LedgerBalance:    ledgerBalance,
		Difference:       stmtBalance.Sub(ledgerBalance),
	}

	e.log.Debug("matched statement",
		zap.Int("account_id", accountID),
		zap.Int("statement_lines", len(stmtTxs)),
		zap.Int("candidates", len(candidates)),
		zap.Int("exact", len(result.ExactMatches)),
		zap.Int("probable", len(result.ProbableMatches)),
		zap.Int("possible", len(result.PossibleMatches)),
		zap.Int("unmatched", len(result.UnmatchedStatement)),
	)

	return result, nil
}

// CalculateBalance sums the account-scoped posting amounts across
// transactions; a balance figure independent of pairwise matching.
func CalculateBalance(accountID int, txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.PostingAmount(accountID))
	}
	return total
}
