package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/gitops"
	"github.com/tallybook-dev/tallybook/internal/match"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/statement"
)

func newReconcileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Bank reconciliation sessions",
	}
	cmd.PersistentFlags().String("book", ".", "book directory")
	cmd.PersistentFlags().String("log-level", "info", "log level")

	cmd.AddCommand(newReconcileStartCommand())
	cmd.AddCommand(newReconcileMatchCommand())
	cmd.AddCommand(newReconcileMarkCommand())
	cmd.AddCommand(newReconcileUnmarkCommand())
	cmd.AddCommand(newReconcileStatusCommand())
	cmd.AddCommand(newReconcileLockCommand())
	cmd.AddCommand(newReconcileListCommand())
	return cmd
}

func openBookFromFlags(cmd *cobra.Command) (*book, error) {
	dir, _ := cmd.Flags().GetString("book")
	level, _ := cmd.Flags().GetString("log-level")
	return openBook(dir, level)
}

func newReconcileStartCommand() *cobra.Command {
	var (
		statementPath string
		accountID     int
		startStr      string
		endStr        string
		openingStr    string
		closingStr    string
		notes         string
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a reconciliation session for an account",
		Long: "Starts a session from explicit flags, or from a parsed statement file:\n" +
			"with --statement, the account is resolved through the bank_accounts\n" +
			"mapping in tallybook.yaml and the period and balances default to what\n" +
			"the statement carries. Explicit flags override statement values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			var info model.StatementInfo
			if statementPath != "" {
				data, err := os.ReadFile(statementPath)
				if err != nil {
					return fmt.Errorf("reading statement: %w", err)
				}
				info = statement.ParseStatement(string(data)).Info
			}

			if accountID == 0 {
				accountID = b.cfg.ResolveAccount(info.AccountNumber)
			}
			if accountID == 0 {
				return fmt.Errorf("--account is required; no bank_accounts entry matches the statement")
			}

			start, err := resolveSessionDate(startStr, "--start", info.PeriodStart, info.HasPeriod)
			if err != nil {
				return err
			}
			end, err := resolveSessionDate(endStr, "--end", info.PeriodEnd, info.HasPeriod)
			if err != nil {
				return err
			}
			opening, err := resolveSessionBalance(openingStr, "--opening", info.OpeningBalance, info.HasOpening)
			if err != nil {
				return err
			}
			closing, err := resolveSessionBalance(closingStr, "--closing", info.ClosingBalance, info.HasClosing)
			if err != nil {
				return err
			}

			rec, err := b.sessions.Start(accountID, start, end, opening, closing, notes)
			if err != nil {
				return err
			}

			audit(b, "start", rec.ID, rec.AccountID,
				fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")))
			fmt.Printf("Started reconciliation %s for account %d\n", rec.ID, accountID)
			return nil
		},
	}

	cmd.Flags().StringVar(&statementPath, "statement", "", "statement file to derive account, period and balances from")
	cmd.Flags().IntVar(&accountID, "account", 0, "ledger account to reconcile")
	cmd.Flags().StringVar(&startStr, "start", "", "statement period start, DD/MM/YYYY")
	cmd.Flags().StringVar(&endStr, "end", "", "statement period end, DD/MM/YYYY")
	cmd.Flags().StringVar(&openingStr, "opening", "", "statement opening balance")
	cmd.Flags().StringVar(&closingStr, "closing", "", "statement closing balance")
	cmd.Flags().StringVar(&notes, "notes", "", "session notes")

	return cmd
}

func resolveSessionDate(flagValue, flagName string, fromStatement time.Time, haveStatement bool) (time.Time, error) {
	if flagValue != "" {
		d, ok := statement.ParseDate(flagValue)
		if !ok {
			return time.Time{}, fmt.Errorf("invalid %s date %q", flagName, flagValue)
		}
		return d, nil
	}
	if haveStatement {
		return fromStatement, nil
	}
	return time.Time{}, fmt.Errorf("%s is required; the statement carries no period", flagName)
}

func resolveSessionBalance(flagValue, flagName string, fromStatement decimal.Decimal, haveStatement bool) (decimal.Decimal, error) {
	if flagValue != "" {
		d, err := decimal.NewFromString(flagValue)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid %s balance %q", flagName, flagValue)
		}
		return d, nil
	}
	if haveStatement {
		return fromStatement, nil
	}
	return decimal.Decimal{}, fmt.Errorf("%s is required; the statement carries no balances", flagName)
}

func newReconcileMatchCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "match <statement.txt>",
		Short: "Match a parsed statement against ledger transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			rec, err := b.sessions.Get(sessionID)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			parsed := statement.ParseStatement(string(data))
			fmt.Printf("Parsed %d lines (%s confidence, %s format)\n",
				len(parsed.Transactions), parsed.Confidence, parsed.Format)

			result, err := b.engine.MatchTransactions(rec.AccountID, parsed.Transactions,
				rec.StatementStartDate, rec.StatementEndDate)
			if err != nil {
				return err
			}

			printMatches(b, rec.AccountID, "Exact", result.ExactMatches)
			printMatches(b, rec.AccountID, "Probable", result.ProbableMatches)
			printMatches(b, rec.AccountID, "Possible", result.PossibleMatches)

			if len(result.UnmatchedStatement) > 0 {
				fmt.Printf("\nUnmatched statement lines (%d):\n", len(result.UnmatchedStatement))
				for _, s := range result.UnmatchedStatement {
					fmt.Printf("  %s  %-40s %10s\n", s.Date.Format("2006-01-02"), s.Description, s.SignedAmount().StringFixed(2))
				}
			}
			if len(result.UnmatchedLedger) > 0 {
				fmt.Printf("\nUnmatched ledger transactions (%d):\n", len(result.UnmatchedLedger))
				for _, tx := range result.UnmatchedLedger {
					fmt.Printf("  %s  %s  %-40s %10s\n", tx.ID, tx.Date.Format("2006-01-02"), tx.Payee, tx.PostingAmount(rec.AccountID).StringFixed(2))
				}
			}

			s := result.Summary
			fmt.Printf("\nStatement lines %d, matched %d, unmatched %d\n", s.TotalStatement, s.TotalMatched, s.TotalUnmatched)
			fmt.Printf("Statement %s / ledger %s / difference %s\n",
				s.StatementBalance.StringFixed(2), s.LedgerBalance.StringFixed(2), s.Difference.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "reconciliation session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func printMatches(b *book, accountID int, label string, matches []match.Candidate) {
	if len(matches) == 0 {
		return
	}
	fmt.Printf("\n%s matches (%d):\n", label, len(matches))
	for _, m := range matches {
		fmt.Printf("  %s  %-30s -> %s %-25s score %d\n",
			m.Statement.Date.Format("2006-01-02"), m.Statement.Description,
			m.Ledger.ID, m.Ledger.Payee, m.Score)
		for _, p := range m.Ledger.Postings {
			if p.AccountID == accountID {
				fmt.Printf("      posting %s  %s\n", p.ID, p.Amount.StringFixed(2))
			}
		}
	}
}

func newReconcileMarkCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "mark <posting-id>...",
		Short: "Reconcile postings under a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			if err := b.sessions.ReconcilePostings(sessionID, args); err != nil {
				return err
			}
			rec, err := b.sessions.Get(sessionID)
			if err != nil {
				return err
			}
			audit(b, "reconcile", sessionID, rec.AccountID, fmt.Sprintf("%d postings", len(args)))
			fmt.Printf("Reconciled %d postings\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "reconciliation session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newReconcileUnmarkCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "unmark <posting-id>...",
		Short: "Undo posting reconciliation under a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			if err := b.sessions.UnreconcilePostings(sessionID, args); err != nil {
				return err
			}
			rec, err := b.sessions.Get(sessionID)
			if err != nil {
				return err
			}
			audit(b, "unreconcile", sessionID, rec.AccountID, fmt.Sprintf("%d postings", len(args)))
			fmt.Printf("Unreconciled %d postings\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "reconciliation session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newReconcileStatusCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a session's balance picture",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			status, err := b.sessions.Status(sessionID)
			if err != nil {
				return err
			}

			fmt.Printf("Statement balance:    %s\n", status.StatementBalance.StringFixed(2))
			fmt.Printf("Cleared balance:      %s\n", status.ClearedBalance.StringFixed(2))
			fmt.Printf("Unreconciled amount:  %s (%d postings)\n", status.UnreconciledBalance.StringFixed(2), status.UnreconciledCount)
			fmt.Printf("Difference:           %s\n", status.Difference.StringFixed(2))
			if status.IsBalanced {
				fmt.Printf("Balanced: ready to lock (%d postings reconciled)\n", status.ReconciledCount)
			} else {
				fmt.Println("Not balanced")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "reconciliation session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newReconcileLockCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Lock a balanced session; locked sessions are immutable",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			rec, err := b.sessions.Get(sessionID)
			if err != nil {
				return err
			}
			if err := b.sessions.Lock(sessionID); err != nil {
				return err
			}
			audit(b, "lock", sessionID, rec.AccountID, "")

			if b.cfg.Git.AutoCommit && gitops.IsRepo(b.root) {
				msg := fmt.Sprintf("reconcile: lock account %d through %s", rec.AccountID,
					rec.StatementEndDate.Format("2006-01-02"))
				hash, err := gitops.CommitAll(b.root, msg, b.cfg.Git.AuthorName, b.cfg.Git.AuthorEmail)
				if err != nil {
					fmt.Fprintf(os.Stderr, "warning: git commit failed: %v\n", err)
				} else {
					fmt.Printf("Committed %s\n", hash)
				}
			}

			fmt.Printf("Locked reconciliation %s\n", sessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "reconciliation session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func newReconcileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reconciliation sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBookFromFlags(cmd)
			if err != nil {
				return err
			}
			defer b.log.Sync() //nolint:errcheck

			recs, err := b.sessions.List()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No reconciliations")
				return nil
			}
			for _, r := range recs {
				fmt.Printf("  %s  account %d  %s to %s  %s\n",
					r.ID, r.AccountID,
					r.StatementStartDate.Format("2006-01-02"),
					r.StatementEndDate.Format("2006-01-02"),
					r.Status)
			}
			return nil
		},
	}
}

func audit(b *book, action, sessionID string, accountID int, details string) {
	entry := auditlog.Entry{
		Timestamp:        time.Now().UTC(),
		Action:           action,
		ReconciliationID: sessionID,
		AccountID:        strconv.Itoa(accountID),
		Details:          details,
	}
	if err := auditlog.Append(b.root, []auditlog.Entry{entry}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write audit log: %v\n", err)
	}
}
