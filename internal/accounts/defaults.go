package accounts

import "github.com/tallybook-dev/tallybook/internal/model"

// GST control account IDs used by the split convention.
const (
	GSTPaidID      = 1310
	GSTCollectedID = 2310
)

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "sole_trader":
		return soleTraderChart()
	default:
		return soleTraderChart()
	}
}

func soleTraderChart() []model.Account {
	return []model.Account{
		{ID: 1010, Name: "Everyday Account", Type: model.AccountTypeAsset, Kind: model.AccountKindTransfer, Description: "Primary transaction account"},
		{ID: 1020, Name: "Savings Account", Type: model.AccountTypeAsset, Kind: model.AccountKindTransfer, Description: "Savings account"},
		{ID: GSTPaidID, Name: "GST Paid", Type: model.AccountTypeAsset, Kind: model.AccountKindTransfer, IsBusinessDefault: true, Description: "Input tax credits"},
		{ID: 2010, Name: "Credit Card", Type: model.AccountTypeLiability, Kind: model.AccountKindTransfer, Description: "Business credit card"},
		{ID: GSTCollectedID, Name: "GST Collected", Type: model.AccountTypeLiability, Kind: model.AccountKindTransfer, IsBusinessDefault: true, Description: "GST owed to the ATO"},
		{ID: 3010, Name: "Owner's Equity", Type: model.AccountTypeEquity, Kind: model.AccountKindTransfer},
		{ID: 4010, Name: "Sales", Type: model.AccountTypeIncome, Kind: model.AccountKindCategory, IsBusinessDefault: true, DefaultHasGST: true},
		{ID: 4020, Name: "Interest Income", Type: model.AccountTypeIncome, Kind: model.AccountKindCategory},
		{ID: 5010, Name: "Advertising", Type: model.AccountTypeExpense, Kind: model.AccountKindCategory, IsBusinessDefault: true, DefaultHasGST: true},
		{ID: 5020, Name: "Software & Subscriptions", Type: model.AccountTypeExpense, Kind: model.AccountKindCategory, IsBusinessDefault: true, DefaultHasGST: true},
		{ID: 5030, Name: "Office Supplies", Type: model.AccountTypeExpense, Kind: model.AccountKindCategory, IsBusinessDefault: true, DefaultHasGST: true},
		{ID: 5040, Name: "Bank Fees", Type: model.AccountTypeExpense, Kind: model.AccountKindCategory, IsBusinessDefault: true},
		{ID: 5050, Name: "Groceries", Type: model.AccountTypeExpense, Kind: model.AccountKindCategory},
		{ID: 5060, Name: "Dining Out", Type: model.AccountTypeExpense, Kind: model.AccountKindCategory},
	}
}
