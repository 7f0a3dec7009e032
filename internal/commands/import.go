package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/importer"
	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/statement"
)

func newImportCommand() *cobra.Command {
	var (
		bookDir    string
		formatName string
		accountID  int
		categoryID int
		transferID int
		business   bool
		gstCode    string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import bank CSV exports into the ledger",
		Long: "Without arguments, lists CSV files waiting in import/. With a file and\n" +
			"a cash account, posts each row as a double-entry against the given\n" +
			"category or transfer account, applying the GST split when requested.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(bookDir, logLevel)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			if len(args) == 0 {
				return runImportList(b)
			}
			return runImportFile(b, args[0], formatName, accountID, categoryID, transferID, business, gstCode)
		},
	}

	cmd.Flags().StringVar(&bookDir, "book", ".", "book directory")
	cmd.Flags().StringVar(&formatName, "format", "bank-csv", "CSV parser format")
	cmd.Flags().IntVar(&accountID, "account", 0, "cash account the CSV belongs to")
	cmd.Flags().IntVar(&categoryID, "category", 0, "category account to post against")
	cmd.Flags().IntVar(&transferID, "transfer", 0, "transfer account to post against")
	cmd.Flags().BoolVar(&business, "business", false, "mark postings as business")
	cmd.Flags().StringVar(&gstCode, "gst-code", "", "GST code; enables the GST split")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")

	return cmd
}

func runImportList(b *book) error {
	files, err := importer.Scan(b.root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No CSV files in import/")
		return nil
	}
	for _, f := range files {
		fmt.Printf("  %s (%d bytes)\n", f.Name, f.Size)
	}
	return nil
}

func runImportFile(b *book, path, formatName string, accountID, categoryID, transferID int, business bool, gstCode string) error {
	if accountID == 0 {
		return fmt.Errorf("--account is required when importing a file")
	}

	parser := importer.DefaultRegistry().Get(formatName)
	if parser == nil {
		return fmt.Errorf("unknown import format %q", formatName)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, txn := range txns {
		category := categoryID
		if category == 0 && transferID == 0 {
			category = defaultCategory(b, txn.Description)
		}
		id, err := b.ledger.AddSplit(ledger.SplitParams{
			Date:            txn.Date,
			Payee:           txn.Description,
			Metadata:        txn.RawText,
			CashAccount:     accountID,
			Amount:          txn.SignedAmount(),
			CategoryAccount: category,
			TransferAccount: transferID,
			IsBusiness:      business,
			GSTCode:         gstCode,
			GSTRate:         decimal.NewFromFloat(b.cfg.GST.Rate),
		})
		if err != nil {
			return fmt.Errorf("posting %q: %w", txn.Description, err)
		}
		fmt.Printf("  %s  %s  %s\n", id, txn.Date.Format("2006-01-02"), txn.Description)
	}

	fmt.Printf("Imported %d transactions into account %d\n", len(txns), accountID)

	if abs, err := filepath.Abs(path); err == nil && filepath.Dir(abs) == filepath.Join(b.root, "import") {
		name := filepath.Base(abs)
		if err := importer.MarkProcessed(b.root, name); err != nil {
			return fmt.Errorf("archiving %s: %w", name, err)
		}
		fmt.Printf("Moved %s to import/processed/\n", name)
	}
	return nil
}

// defaultCategory picks an uncategorized-style bucket by debit/credit cue
// when the caller gives no category.
func defaultCategory(b *book, desc string) int {
	kind := "Dining Out"
	if !statement.IsDebit(desc) {
		kind = "Interest Income"
	}
	if acct, ok := b.accounts.ByName(kind); ok {
		return acct.ID
	}
	return 0
}
