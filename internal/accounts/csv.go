package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tallybook-dev/tallybook/internal/model"
)

const (
	numFields   = 8
	colID       = 0
	colName     = 1
	colType     = 2
	colKind     = 3
	colBusiness = 4
	colGST      = 5
	colArchived = 6
	colDesc     = 7
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"account_id", "account_name", "account_type", "kind", "is_business_default", "default_has_gst", "archived", "description"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colKind] = string(acct.Kind)
	row[colBusiness] = marshalBool(acct.IsBusinessDefault)
	row[colGST] = marshalBool(acct.DefaultHasGST)
	row[colArchived] = marshalBool(acct.Archived)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	business, err := unmarshalBool(record[colBusiness])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing is_business_default %q: %w", record[colBusiness], err)
	}

	hasGST, err := unmarshalBool(record[colGST])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing default_has_gst %q: %w", record[colGST], err)
	}

	archived, err := unmarshalBool(record[colArchived])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing archived %q: %w", record[colArchived], err)
	}

	return model.Account{
		ID:                id,
		Name:              record[colName],
		Type:              model.AccountType(record[colType]),
		Kind:              model.AccountKind(record[colKind]),
		IsBusinessDefault: business,
		DefaultHasGST:     hasGST,
		Archived:          archived,
		Description:       record[colDesc],
	}, nil
}

func marshalBool(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func unmarshalBool(s string) (bool, error) {
	switch s {
	case "", "false":
		return false, nil
	case "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool %q", s)
	}
}
