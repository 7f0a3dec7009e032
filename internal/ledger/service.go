package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/gst"
	"github.com/tallybook-dev/tallybook/internal/id"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// NotFoundError is returned for unknown posting or transaction IDs.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// LockedError is returned when a mutation targets a posting owned by a
// locked reconciliation.
type LockedError struct {
	PostingID        string
	ReconciliationID string
}

func (e LockedError) Error() string {
	return fmt.Sprintf("posting %s belongs to locked reconciliation %s", e.PostingID, e.ReconciliationID)
}

// LockChecker reports whether a reconciliation has been locked. The
// reconciliation store implements this; the ledger refuses to touch
// postings it covers.
type LockChecker interface {
	IsLocked(reconciliationID string) bool
}

// GSTAccounts names the control accounts the GST split posts into.
type GSTAccounts struct {
	Paid      int
	Collected int
}

// Service provides ledger persistence and the posting-mutation API.
type Service struct {
	bookRoot string
	accounts AccountChecker
	locks    LockChecker
	gstAccts GSTAccounts
}

// NewService creates a ledger Service. locks may be nil, in which case no
// posting is considered locked.
func NewService(bookRoot string, accounts AccountChecker, locks LockChecker, gstAccts GSTAccounts) *Service {
	return &Service{bookRoot: bookRoot, accounts: accounts, locks: locks, gstAccts: gstAccts}
}

// SplitParams holds parameters for creating a transaction from one bank line.
// Exactly one of CategoryAccount or TransferAccount must be set.
type SplitParams struct {
	Date            time.Time
	Payee           string
	Memo            string
	Tags            string
	Metadata        string
	CashAccount     int
	Amount          decimal.Decimal // signed cash movement, negative = money out
	CategoryAccount int
	TransferAccount int
	IsBusiness      bool
	GSTCode         string
	GSTRate         decimal.Decimal
}

// AddSplit creates a balanced transaction from a cash movement against a
// category or transfer account, applies the GST split when requested,
// validates, and appends to the month's ledger.csv. Returns the transaction ID.
func (s *Service) AddSplit(params SplitParams) (string, error) {
	hasCategory := params.CategoryAccount != 0
	hasTransfer := params.TransferAccount != 0
	if hasCategory == hasTransfer {
		return "", JoinValidationErrors([]ValidationError{{
			TransactionID: "new",
			Description:   "line must specify exactly one of a category or a transfer account",
		}})
	}

	year := params.Date.Year()
	month := int(params.Date.Month())

	seq, err := s.NextTransactionSeq(year, month)
	if err != nil {
		return "", err
	}
	txID := id.FormatTransactionID(year, month, seq)

	counter := params.CategoryAccount
	if hasTransfer {
		counter = params.TransferAccount
	}

	tx := model.Transaction{
		ID:       txID,
		Date:     params.Date,
		Payee:    params.Payee,
		Memo:     params.Memo,
		Tags:     params.Tags,
		Status:   model.StatusNormal,
		Metadata: params.Metadata,
	}

	cash := model.Posting{
		TransactionID: txID,
		AccountID:     params.CashAccount,
		Amount:        params.Amount,
	}

	gross := params.Amount.Neg()
	if hasCategory && params.IsBusiness && params.GSTCode != "" {
		rate := params.GSTRate
		if rate.IsZero() {
			rate = gst.DefaultRate
		}
		exclusive, g := gst.GrossToExclusive(gross, rate)
		control := s.gstAccts.Paid
		if g.IsNegative() {
			control = s.gstAccts.Collected
		}
		tx.Postings = []model.Posting{
			cash,
			{
				TransactionID: txID,
				AccountID:     counter,
				Amount:        exclusive,
				IsBusiness:    true,
				GSTCode:       params.GSTCode,
				GSTRate:       rate,
				GSTAmount:     g,
			},
			{
				TransactionID: txID,
				AccountID:     control,
				Amount:        g,
				IsBusiness:    true,
			},
		}
	} else {
		tx.Postings = []model.Posting{
			cash,
			{
				TransactionID: txID,
				AccountID:     counter,
				Amount:        gross,
				IsBusiness:    params.IsBusiness,
			},
		}
	}

	for i := range tx.Postings {
		tx.Postings[i].ID = id.FormatPostingID(txID, i)
	}

	if err := s.Append(tx); err != nil {
		return "", err
	}
	return txID, nil
}

// Append validates a transaction against the month it belongs to and
// appends it to that month's ledger.csv.
func (s *Service) Append(tx model.Transaction) error {
	year := tx.Date.Year()
	month := int(tx.Date.Month())

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}

	all := append(existing, tx)
	if verrs := ValidateTransactions(all, s.accounts); len(verrs) > 0 {
		return JoinValidationErrors(verrs)
	}

	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendTransactions(f, []model.Transaction{tx}); err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}
	return nil
}

// ReadMonth reads all transactions for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Transaction, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txs, nil
}

// FetchTransactions returns non-void transactions touching accountID dated
// within [start, end] inclusive, in ledger order.
func (s *Service) FetchTransactions(accountID int, start, end time.Time) ([]model.Transaction, error) {
	var result []model.Transaction
	for cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		txs, err := s.ReadMonth(cursor.Year(), int(cursor.Month()))
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if tx.Status == model.StatusVoid {
				continue
			}
			if tx.Date.Before(start) || tx.Date.After(end) {
				continue
			}
			if tx.Touches(accountID) {
				result = append(result, tx)
			}
		}
	}
	return result, nil
}

// ReconcilePosting stamps a posting with a reconciliation ID and marks it
// cleared.
func (s *Service) ReconcilePosting(postingID, reconciliationID string) error {
	return s.mutatePosting(postingID, func(p *model.Posting) {
		p.ReconciliationID = reconciliationID
		p.Cleared = true
	})
}

// UnreconcilePosting clears a posting's reconciliation stamp.
func (s *Service) UnreconcilePosting(postingID string) error {
	return s.mutatePosting(postingID, func(p *model.Posting) {
		p.ReconciliationID = ""
		p.Cleared = false
	})
}

// MarkCleared sets the cleared flag without touching reconciliation state.
func (s *Service) MarkCleared(postingID string, cleared bool) error {
	return s.mutatePosting(postingID, func(p *model.Posting) {
		p.Cleared = cleared
	})
}

// FindPosting returns a posting by ID.
func (s *Service) FindPosting(postingID string) (model.Posting, error) {
	year, month, _, err := id.ParseTransactionID(postingID)
	if err != nil {
		return model.Posting{}, NotFoundError{Kind: "posting", ID: postingID}
	}
	txs, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Posting{}, err
	}
	for _, tx := range txs {
		for _, p := range tx.Postings {
			if p.ID == postingID {
				return p, nil
			}
		}
	}
	return model.Posting{}, NotFoundError{Kind: "posting", ID: postingID}
}

func (s *Service) mutatePosting(postingID string, mutate func(*model.Posting)) error {
	year, month, _, err := id.ParseTransactionID(postingID)
	if err != nil {
		return NotFoundError{Kind: "posting", ID: postingID}
	}

	txs, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}

	found := false
	for ti := range txs {
		for pi := range txs[ti].Postings {
			p := &txs[ti].Postings[pi]
			if p.ID != postingID {
				continue
			}
			if s.locks != nil && p.ReconciliationID != "" && s.locks.IsLocked(p.ReconciliationID) {
				return LockedError{PostingID: postingID, ReconciliationID: p.ReconciliationID}
			}
			mutate(p)
			found = true
		}
	}
	if !found {
		return NotFoundError{Kind: "posting", ID: postingID}
	}

	return s.writeMonth(year, month, txs)
}

// NextTransactionSeq returns the next available sequence number for a month.
func (s *Service) NextTransactionSeq(year, month int) (int, error) {
	txs, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, tx := range txs {
		_, _, seq, err := id.ParseTransactionID(tx.ID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func (s *Service) writeMonth(year, month int, txs []model.Transaction) error {
	path := s.monthPath(year, month)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewriting ledger %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTransactions(f, txs); err != nil {
		return fmt.Errorf("writing ledger %s: %w", path, err)
	}
	return nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.bookRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "ledger.csv")
}
