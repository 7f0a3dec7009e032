package recon

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// statusWindowDays pads the posting fetch beyond the statement period, so
// postings reconciled a few days either side of the period still count.
const statusWindowDays = 5

var balanceTolerance = decimal.NewFromFloat(0.01)

// ConflictError signals an operation that is illegal in the current session
// state.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string { return e.Reason }

// NotFoundError is returned for unknown reconciliation IDs.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("reconciliation %q not found", e.ID)
}

// Ledger is the posting-side collaborator the session drives.
type Ledger interface {
	FetchTransactions(accountID int, start, end time.Time) ([]model.Transaction, error)
	FindPosting(postingID string) (model.Posting, error)
	ReconcilePosting(postingID, reconciliationID string) error
	UnreconcilePosting(postingID string) error
}

// Status is the on-demand balance picture of one session. It is recomputed
// on every call, never cached.
type Status struct {
	StatementBalance    decimal.Decimal
	ClearedBalance      decimal.Decimal
	UnreconciledBalance decimal.Decimal
	Difference          decimal.Decimal
	IsBalanced          bool
	ReconciledCount     int
	UnreconciledCount   int
}

// Service drives reconciliation sessions: IN_PROGRESS -> LOCKED, one way.
// Mutating operations are serialized per reconciliation id.
type Service struct {
	store  *Store
	ledger Ledger
	log    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewService creates a session Service. A nil logger disables logging.
func NewService(store *Store, ledger Ledger, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		ledger:   ledger,
		log:      log,
		sessions: make(map[string]*sync.Mutex),
	}
}

// Start opens a session for an account and statement period. It conflicts
// if an IN_PROGRESS session already exists for the account.
func (s *Service) Start(accountID int, startDate, endDate time.Time, startBalance, endBalance decimal.Decimal, notes string) (model.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.store.Load()
	if err != nil {
		return model.Reconciliation{}, err
	}
	for _, r := range recs {
		if r.AccountID == accountID && r.Status == model.ReconciliationInProgress {
			return model.Reconciliation{}, ConflictError{
				Reason: fmt.Sprintf("account %d already has reconciliation %s in progress", accountID, r.ID),
			}
		}
	}

	rec := model.Reconciliation{
		ID:                    uuid.NewString(),
		AccountID:             accountID,
		StatementStartDate:    startDate,
		StatementEndDate:      endDate,
		StatementStartBalance: startBalance,
		StatementEndBalance:   endBalance,
		Status:                model.ReconciliationInProgress,
		Notes:                 notes,
	}
	recs = append(recs, rec)
	if err := s.store.Save(recs); err != nil {
		return model.Reconciliation{}, err
	}

	s.log.Info("reconciliation started",
		zap.String("reconciliation_id", rec.ID),
		zap.Int("account_id", accountID),
		zap.String("period_start", startDate.Format("2006-01-02")),
		zap.String("period_end", endDate.Format("2006-01-02")),
	)
	return rec, nil
}

// Get returns a session by ID.
func (s *Service) Get(sessionID string) (model.Reconciliation, error) {
	recs, err := s.store.Load()
	if err != nil {
		return model.Reconciliation{}, err
	}
	for _, r := range recs {
		if r.ID == sessionID {
			return r, nil
		}
	}
	return model.Reconciliation{}, NotFoundError{ID: sessionID}
}

// List returns all sessions in store order.
func (s *Service) List() ([]model.Reconciliation, error) {
	return s.store.Load()
}

// ReconcilePostings stamps postings with the session ID and marks them
// cleared. Legal only while the session is IN_PROGRESS.
func (s *Service) ReconcilePostings(sessionID string, postingIDs []string) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	rec, err := s.requireInProgress(sessionID)
	if err != nil {
		return err
	}

	for _, pid := range postingIDs {
		p, err := s.ledger.FindPosting(pid)
		if err != nil {
			return err
		}
		if p.AccountID != rec.AccountID {
			return ConflictError{
				Reason: fmt.Sprintf("posting %s is not on account %d", pid, rec.AccountID),
			}
		}
		if err := s.ledger.ReconcilePosting(pid, sessionID); err != nil {
			return err
		}
	}

	s.log.Debug("postings reconciled",
		zap.String("reconciliation_id", sessionID),
		zap.Int("count", len(postingIDs)),
	)
	return nil
}

// UnreconcilePostings clears postings previously stamped by this session.
func (s *Service) UnreconcilePostings(sessionID string, postingIDs []string) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	if _, err := s.requireInProgress(sessionID); err != nil {
		return err
	}

	for _, pid := range postingIDs {
		p, err := s.ledger.FindPosting(pid)
		if err != nil {
			return err
		}
		if p.ReconciliationID != sessionID {
			return ConflictError{
				Reason: fmt.Sprintf("posting %s is not reconciled under this session", pid),
			}
		}
		if err := s.ledger.UnreconcilePosting(pid); err != nil {
			return err
		}
	}
	return nil
}

// Status recomputes the session's balance picture from the ledger.
func (s *Service) Status(sessionID string) (Status, error) {
	rec, err := s.Get(sessionID)
	if err != nil {
		return Status{}, err
	}
	return s.computeStatus(rec)
}

// Lock transitions the session to LOCKED. It succeeds only when the session
// is balanced at call time; LOCKED is terminal.
func (s *Service) Lock(sessionID string) error {
	unlock := s.lockSession(sessionID)
	defer unlock()

	rec, err := s.requireInProgress(sessionID)
	if err != nil {
		return err
	}

	status, err := s.computeStatus(rec)
	if err != nil {
		return err
	}
	if !status.IsBalanced {
		return ConflictError{
			Reason: fmt.Sprintf("reconciliation %s is out of balance by %s", sessionID, status.Difference.StringFixed(2)),
		}
	}

	recs, err := s.store.Load()
	if err != nil {
		return err
	}
	for i := range recs {
		if recs[i].ID == sessionID {
			recs[i].Status = model.ReconciliationLocked
		}
	}
	if err := s.store.Save(recs); err != nil {
		return err
	}

	s.log.Info("reconciliation locked",
		zap.String("reconciliation_id", sessionID),
		zap.String("cleared_balance", status.ClearedBalance.StringFixed(2)),
	)
	return nil
}

func (s *Service) computeStatus(rec model.Reconciliation) (Status, error) {
	start := rec.StatementStartDate.AddDate(0, 0, -statusWindowDays)
	end := rec.StatementEndDate.AddDate(0, 0, statusWindowDays)
	txs, err := s.ledger.FetchTransactions(rec.AccountID, start, end)
	if err != nil {
		return Status{}, err
	}

	cleared := rec.StatementStartBalance
	unreconciled := decimal.Zero
	reconciledCount, unreconciledCount := 0, 0

	for _, tx := range txs {
		for _, p := range tx.Postings {
			if p.AccountID != rec.AccountID {
				continue
			}
			if p.ReconciliationID == rec.ID {
				cleared = cleared.Add(p.Amount)
				reconciledCount++
				continue
			}
			if p.ReconciliationID == "" &&
				!tx.Date.Before(rec.StatementStartDate) && !tx.Date.After(rec.StatementEndDate) {
				unreconciled = unreconciled.Add(p.Amount)
				unreconciledCount++
			}
		}
	}

	difference := rec.StatementEndBalance.Sub(cleared)
	return Status{
		StatementBalance:    rec.StatementEndBalance,
		ClearedBalance:      cleared,
		UnreconciledBalance: unreconciled,
		Difference:          difference,
		IsBalanced:          difference.Abs().LessThan(balanceTolerance),
		ReconciledCount:     reconciledCount,
		UnreconciledCount:   unreconciledCount,
	}, nil
}

func (s *Service) requireInProgress(sessionID string) (model.Reconciliation, error) {
	rec, err := s.Get(sessionID)
	if err != nil {
		return model.Reconciliation{}, err
	}
	if rec.Status != model.ReconciliationInProgress {
		return model.Reconciliation{}, ConflictError{
			Reason: fmt.Sprintf("reconciliation %s is %s", sessionID, rec.Status),
		}
	}
	return rec, nil
}

// lockSession serializes mutating operations per reconciliation id.
// Operations on different sessions proceed in parallel.
func (s *Service) lockSession(sessionID string) func() {
	s.mu.Lock()
	m, ok := s.sessions[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.sessions[sessionID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}
