package model

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// AccountKind distinguishes spending categories from real transfer targets.
type AccountKind string

const (
	AccountKindCategory AccountKind = "category"
	AccountKindTransfer AccountKind = "transfer"
)

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	ID                int
	Name              string
	Type              AccountType
	Kind              AccountKind
	IsBusinessDefault bool
	DefaultHasGST     bool
	Archived          bool
	Description       string
}
