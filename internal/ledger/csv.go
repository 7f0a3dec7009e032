package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/id"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// Header is the CSV header for ledger.csv. One row per posting; the
// transaction-level fields repeat on every row of the group.
const Header = "posting_id,date,payee,memo,tags,status,metadata,account_id,amount,is_business,gst_code,gst_rate,gst_amount,cleared,reconciliation_id"

const (
	numFields  = 15
	dateFormat = "2006-01-02"
	colID      = 0
	colDate    = 1
	colPayee   = 2
	colMemo    = 3
	colTags    = 4
	colStatus  = 5
	colMeta    = 6
	colAcctID  = 7
	colAmount  = 8
	colBiz     = 9
	colGSTCode = 10
	colGSTRate = 11
	colGSTAmt  = 12
	colCleared = 13
	colReconID = 14
)

// ReadTransactions reads all posting rows from a ledger.csv reader and
// regroups them into transactions, preserving row order.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txs []model.Transaction
	byID := make(map[string]int)
	for i, rec := range records[1:] {
		p, tx, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if idx, ok := byID[tx.ID]; ok {
			txs[idx].Postings = append(txs[idx].Postings, p)
			continue
		}
		tx.Postings = []model.Posting{p}
		byID[tx.ID] = len(txs)
		txs = append(txs, tx)
	}
	return txs, nil
}

// WriteTransactions writes transactions to a ledger.csv writer (including header).
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		for _, row := range MarshalTransaction(tx) {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
			}
		}
	}
	return cw.Error()
}

// AppendTransactions appends transactions to an existing ledger.csv writer (no header).
func AppendTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for _, tx := range txs {
		for _, row := range MarshalTransaction(tx) {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
			}
		}
	}
	return cw.Error()
}

// MarshalTransaction converts a Transaction to one CSV row per posting.
func MarshalTransaction(tx model.Transaction) [][]string {
	rows := make([][]string, 0, len(tx.Postings))
	for _, p := range tx.Postings {
		row := make([]string, numFields)
		row[colID] = p.ID
		row[colDate] = tx.Date.Format(dateFormat)
		row[colPayee] = tx.Payee
		row[colMemo] = tx.Memo
		row[colTags] = tx.Tags
		row[colStatus] = string(tx.Status)
		row[colMeta] = tx.Metadata
		row[colAcctID] = strconv.Itoa(p.AccountID)
		row[colAmount] = p.Amount.StringFixed(2)
		if p.IsBusiness {
			row[colBiz] = "true"
		}
		row[colGSTCode] = p.GSTCode
		if !p.GSTRate.IsZero() {
			row[colGSTRate] = p.GSTRate.String()
		}
		if !p.GSTAmount.IsZero() {
			row[colGSTAmt] = p.GSTAmount.StringFixed(2)
		}
		if p.Cleared {
			row[colCleared] = "true"
		}
		row[colReconID] = p.ReconciliationID
		rows = append(rows, row)
	}
	return rows
}

func unmarshalRow(record []string) (model.Posting, model.Transaction, error) {
	if len(record) != numFields {
		return model.Posting{}, model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Posting{}, model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Posting{}, model.Transaction{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Posting{}, model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var gstRate, gstAmount decimal.Decimal
	if record[colGSTRate] != "" {
		gstRate, err = decimal.NewFromString(record[colGSTRate])
		if err != nil {
			return model.Posting{}, model.Transaction{}, fmt.Errorf("parsing gst_rate %q: %w", record[colGSTRate], err)
		}
	}
	if record[colGSTAmt] != "" {
		gstAmount, err = decimal.NewFromString(record[colGSTAmt])
		if err != nil {
			return model.Posting{}, model.Transaction{}, fmt.Errorf("parsing gst_amount %q: %w", record[colGSTAmt], err)
		}
	}

	txID := id.TransactionGroup(record[colID])
	p := model.Posting{
		ID:               record[colID],
		TransactionID:    txID,
		AccountID:        accountID,
		Amount:           amount,
		IsBusiness:       record[colBiz] == "true",
		GSTCode:          record[colGSTCode],
		GSTRate:          gstRate,
		GSTAmount:        gstAmount,
		Cleared:          record[colCleared] == "true",
		ReconciliationID: record[colReconID],
	}
	tx := model.Transaction{
		ID:       txID,
		Date:     date,
		Payee:    record[colPayee],
		Memo:     record[colMemo],
		Tags:     record[colTags],
		Status:   model.TransactionStatus(record[colStatus]),
		Metadata: record[colMeta],
	}
	return p, tx, nil
}
