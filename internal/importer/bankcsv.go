package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// BankCSVParser parses the common AU bank export layout:
// date,description,debit,credit,balance. Debit and credit are mutually
// exclusive per row; balance is optional.
type BankCSVParser struct{}

const (
	bankDateFormat = "02/01/2006"
	bankNumFields  = 5
	bankColDate    = 0
	bankColDesc    = 1
	bankColDebit   = 2
	bankColCredit  = 3
	bankColBalance = 4
)

// Format returns the parser name.
func (p *BankCSVParser) Format() string { return "bank-csv" }

// Parse reads a bank CSV export and returns statement transactions.
func (p *BankCSVParser) Parse(r io.Reader) ([]model.StatementTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = bankNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var txns []model.StatementTransaction
	for i, rec := range records[1:] {
		txn, err := parseBankRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

func parseBankRow(rec []string) (model.StatementTransaction, error) {
	date, err := time.Parse(bankDateFormat, rec[bankColDate])
	if err != nil {
		return model.StatementTransaction{}, fmt.Errorf("parsing date %q: %w", rec[bankColDate], err)
	}

	txn := model.StatementTransaction{
		Date:        date,
		Description: rec[bankColDesc],
		RawText:     strings.Join(rec, ","),
	}

	if rec[bankColDebit] != "" {
		txn.Debit, err = decimal.NewFromString(rec[bankColDebit])
		if err != nil {
			return model.StatementTransaction{}, fmt.Errorf("parsing debit %q: %w", rec[bankColDebit], err)
		}
	}
	if rec[bankColCredit] != "" {
		txn.Credit, err = decimal.NewFromString(rec[bankColCredit])
		if err != nil {
			return model.StatementTransaction{}, fmt.Errorf("parsing credit %q: %w", rec[bankColCredit], err)
		}
	}
	if !txn.Debit.IsZero() && !txn.Credit.IsZero() {
		return model.StatementTransaction{}, fmt.Errorf("row has both debit and credit")
	}
	if rec[bankColBalance] != "" {
		txn.Balance, err = decimal.NewFromString(rec[bankColBalance])
		if err != nil {
			return model.StatementTransaction{}, fmt.Errorf("parsing balance %q: %w", rec[bankColBalance], err)
		}
		txn.HasBalance = true
	}
	return txn, nil
}
