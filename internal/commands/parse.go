package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/statement"
)

func newParseCommand() *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "parse <statement.txt>",
		Short: "Parse raw bank-statement text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			return runParse(string(data), formatName)
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "", "force a statement format instead of detecting")

	return cmd
}

func runParse(text, formatName string) error {
	var result statement.Result
	if formatName != "" {
		f := statement.FormatByName(formatName)
		if f == nil {
			return fmt.Errorf("unknown format %q", formatName)
		}
		info := f.ExtractInfo(text)
		txns := f.ExtractTransactions(text)
		result = statement.Result{
			Format:       f.Name(),
			Info:         info,
			Transactions: txns,
			Confidence:   statement.AssessConfidence(info, txns),
		}
	} else {
		result = statement.ParseStatement(text)
	}

	fmt.Printf("Format:     %s\n", result.Format)
	fmt.Printf("Confidence: %s\n", result.Confidence)
	if result.Info.AccountNumber != "" {
		fmt.Printf("Account:    %s\n", result.Info.AccountNumber)
	}
	if result.Info.HasPeriod {
		fmt.Printf("Period:     %s to %s\n",
			result.Info.PeriodStart.Format("2006-01-02"),
			result.Info.PeriodEnd.Format("2006-01-02"))
	}
	if result.Info.HasOpening {
		fmt.Printf("Opening:    %s\n", result.Info.OpeningBalance.StringFixed(2))
	}
	if result.Info.HasClosing {
		fmt.Printf("Closing:    %s\n", result.Info.ClosingBalance.StringFixed(2))
	}

	fmt.Printf("\n%d transactions:\n", len(result.Transactions))
	for _, txn := range result.Transactions {
		amount := txn.SignedAmount()
		line := fmt.Sprintf("  %s  %-40s %10s", txn.Date.Format("2006-01-02"), txn.Description, amount.StringFixed(2))
		if txn.HasBalance {
			line += fmt.Sprintf("  bal %s", txn.Balance.StringFixed(2))
		}
		fmt.Println(line)
	}
	return nil
}
