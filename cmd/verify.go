package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

var verifyAccount string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the database journal against stored balances",
	Long:  "Reloads the journal from the database, recomputes every account balance and compares it with the balances summed in SQL. Also runs the trial balance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		st, book, err := openBook(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if verifyAccount != "" {
			return verifyOne(ctx, st, book, verifyAccount)
		}

		drift, err := st.Verify(ctx, book)
		if err != nil {
			return err
		}
		tb, tbErr := book.TrialBalance()

		fmt.Printf("Database: %s\n", st.Path())
		fmt.Printf("Accounts: %d\n", countAccounts(book))
		fmt.Printf("Entries:  %d\n", book.EntryCount())
		if tb != nil {
			fmt.Printf("Trial balance: debits %s, credits %s\n",
				ledger.FormatAmount(tb.TotalDebit), ledger.FormatAmount(tb.TotalCredit))
		}

		if len(drift) > 0 {
			fmt.Printf("\n%-8s %15s %15s\n", "ACCOUNT", "STORED", "JOURNAL")
			for _, d := range drift {
				fmt.Printf("%-8s %15s %15s\n", d.AccountCode, formatSigned(d.Stored), formatSigned(d.Journal))
			}
			return fmt.Errorf("%d account balances drifted", len(drift))
		}
		if tbErr != nil {
			return tbErr
		}
		fmt.Println("\n  [OK]")
		return nil
	},
}

func countAccounts(book *ledger.Book) int {
	n := 0
	for range book.ListAccounts() {
		n++
	}
	return n
}

// verifyOne audits a single account straight from SQL.
func verifyOne(ctx context.Context, st *store.Store, book *ledger.Book, code string) error {
	acct, err := st.GetAccount(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", code, err)
	}
	stored, err := st.AccountBalance(ctx, code, time.Time{})
	if err != nil {
		return err
	}
	mem, err := book.BalanceOf(code, time.Time{})
	if err != nil {
		return err
	}
	entries, err := st.ListEntries(ctx, store.EntryFilter{AccountCode: code})
	if err != nil {
		return err
	}

	fmt.Printf("Account: %s %s (%s)\n", acct.Code, acct.Name, acct.Type)
	fmt.Printf("Entries: %d\n", len(entries))
	fmt.Printf("Stored:  %s\n", formatSigned(stored))
	fmt.Printf("Journal: %s\n", formatSigned(mem))
	if stored != mem {
		return fmt.Errorf("account %s drifted by %s", code, ledger.FormatAmount(stored-mem))
	}
	fmt.Println("\n  [OK]")
	return nil
}

func init() {
	verifyCmd.Flags().StringVar(&verifyAccount, "account", "", "Audit a single account")
	rootCmd.AddCommand(verifyCmd)
}
