package recon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Header is the CSV header for reconciliations.csv.
const Header = "reconciliation_id,account_id,statement_start_date,statement_end_date,statement_start_balance,statement_end_balance,status,notes"

const (
	numFields    = 8
	dateFormat   = "2006-01-02"
	colID        = 0
	colAcctID    = 1
	colStartDate = 2
	colEndDate   = 3
	colStartBal  = 4
	colEndBal    = 5
	colStatus    = 6
	colNotes     = 7
)

// Store persists reconciliations to <bookRoot>/reconciliations.csv.
type Store struct {
	bookRoot string
}

// NewStore creates a Store rooted at a book directory.
func NewStore(bookRoot string) *Store {
	return &Store{bookRoot: bookRoot}
}

// Load reads all reconciliations. A missing file is an empty book.
func (s *Store) Load() ([]model.Reconciliation, error) {
	f, err := os.Open(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening reconciliations: %w", err)
	}
	defer f.Close()

	recs, err := ReadReconciliations(f)
	if err != nil {
		return nil, fmt.Errorf("reading reconciliations: %w", err)
	}
	return recs, nil
}

// Save rewrites the full reconciliations file.
func (s *Store) Save(recs []model.Reconciliation) error {
	f, err := os.Create(s.path())
	if err != nil {
		return fmt.Errorf("creating reconciliations file: %w", err)
	}
	defer f.Close()

	if err := WriteReconciliations(f, recs); err != nil {
		return fmt.Errorf("writing reconciliations: %w", err)
	}
	return nil
}

// IsLocked reports whether the reconciliation exists and is locked. Errors
// read as unlocked; the ledger treats this as advisory protection, and the
// session layer re-checks on every mutation.
func (s *Store) IsLocked(reconciliationID string) bool {
	recs, err := s.Load()
	if err != nil {
		return false
	}
	for _, r := range recs {
		if r.ID == reconciliationID {
			return r.Status == model.ReconciliationLocked
		}
	}
	return false
}

func (s *Store) path() string {
	return filepath.Join(s.bookRoot, "reconciliations.csv")
}

// ReadReconciliations reads all rows from a reconciliations.csv reader.
func ReadReconciliations(r io.Reader) ([]model.Reconciliation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading reconciliations CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var recs []model.Reconciliation
	for i, rec := range records[1:] {
		rc, err := UnmarshalReconciliation(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		recs = append(recs, rc)
	}
	return recs, nil
}

// WriteReconciliations writes rows to a reconciliations.csv writer
// (including header).
func WriteReconciliations(w io.Writer, recs []model.Reconciliation) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rc := range recs {
		if err := cw.Write(MarshalReconciliation(rc)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalReconciliation converts a Reconciliation to a CSV row.
func MarshalReconciliation(rc model.Reconciliation) []string {
	row := make([]string, numFields)
	row[colID] = rc.ID
	row[colAcctID] = strconv.Itoa(rc.AccountID)
	row[colStartDate] = rc.StatementStartDate.Format(dateFormat)
	row[colEndDate] = rc.StatementEndDate.Format(dateFormat)
	row[colStartBal] = rc.StatementStartBalance.StringFixed(2)
	row[colEndBal] = rc.StatementEndBalance.StringFixed(2)
	row[colStatus] = string(rc.Status)
	row[colNotes] = rc.Notes
	return row
}

// UnmarshalReconciliation converts a CSV row to a Reconciliation.
func UnmarshalReconciliation(record []string) (model.Reconciliation, error) {
	if len(record) != numFields {
		return model.Reconciliation{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	startDate, err := time.Parse(dateFormat, record[colStartDate])
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("parsing statement_start_date %q: %w", record[colStartDate], err)
	}

	endDate, err := time.Parse(dateFormat, record[colEndDate])
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("parsing statement_end_date %q: %w", record[colEndDate], err)
	}

	startBal, err := decimal.NewFromString(record[colStartBal])
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("parsing statement_start_balance %q: %w", record[colStartBal], err)
	}

	endBal, err := decimal.NewFromString(record[colEndBal])
	if err != nil {
		return model.Reconciliation{}, fmt.Errorf("parsing statement_end_balance %q: %w", record[colEndBal], err)
	}

	return model.Reconciliation{
		ID:                    record[colID],
		AccountID:             accountID,
		StatementStartDate:    startDate,
		StatementEndDate:      endDate,
		StatementStartBalance: startBal,
		StatementEndBalance:   endBal,
		Status:                model.ReconciliationStatus(record[colStatus]),
		Notes:                 record[colNotes],
	}, nil
}
