package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:     "account",
	Aliases: []string{"acct"},
	Short:   "Manage the chart of accounts",
}

var acctNew struct {
	code, name, typ, category, description string
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := ledger.ParseAccountType(acctNew.typ)
		if err != nil {
			return err
		}
		created, err := client.New(flagServer).CreateAccount(cmd.Context(), ledger.Account{
			Code:        acctNew.code,
			Name:        acctNew.name,
			Type:        t,
			Category:    ledger.Category(acctNew.category),
			Description: acctNew.description,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account created: %s %s (%s / %s)\n", created.Code, created.Name, created.Type, created.Category)
		return nil
	},
}

var acctListType string

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts in chart order",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := client.New(flagServer).ListAccounts(cmd.Context(), acctListType)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(accounts) == 0 {
			fmt.Fprintln(out, "No accounts found.")
			return nil
		}
		const row = "%-8s %-30s %-10s %-24s %s\n"
		fmt.Fprintf(out, row, "CODE", "NAME", "TYPE", "CATEGORY", "NORMAL")
		for _, a := range accounts {
			fmt.Fprintf(out, row, a.Code, truncate(a.Name, 30), a.Type, a.Category, ledger.NormalBalance(a.Type))
		}
		fmt.Fprintf(out, "\n%d accounts\n", len(accounts))
		return nil
	},
}

var accountGetCmd = &cobra.Command{
	Use:   "get [code]",
	Short: "Show one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		acct, err := client.New(flagServer).GetAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printAccount(cmd.OutOrStdout(), acct)
		return nil
	},
}

func printAccount(w io.Writer, a *client.AccountDetail) {
	field := func(label, value string) {
		fmt.Fprintf(w, "%-13s%s\n", label+":", value)
	}
	field("Code", a.Code)
	field("Name", a.Name)
	field("Type", fmt.Sprintf("%s (normal %s)", a.Type, ledger.NormalBalance(a.Type)))
	field("Category", string(a.Category))
	if a.Description != "" {
		field("Description", a.Description)
	}
	if a.InUse {
		field("In use", "yes, type is fixed")
	} else {
		field("In use", "no")
	}
	field("Created", a.CreatedAt.Local().Format("2006-01-02 15:04"))
}

// updateAccount sends upd and reports the account's resulting type and
// category.
func updateAccount(cmd *cobra.Command, code string, upd client.AccountUpdate) error {
	acct, err := client.New(flagServer).UpdateAccount(cmd.Context(), code, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Account %s %q is now %s / %s\n", acct.Code, acct.Name, acct.Type, acct.Category)
	return nil
}

var accountRenameCmd = &cobra.Command{
	Use:   "rename [code] [name]",
	Short: "Rename an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateAccount(cmd, args[0], client.AccountUpdate{Name: &args[1]})
	},
}

var accountRecategorizeCmd = &cobra.Command{
	Use:   "recategorize [code] [category]",
	Short: "Move an account to another category of the same type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := ledger.Category(args[1])
		return updateAccount(cmd, args[0], client.AccountUpdate{Category: &category})
	},
}

var acctRetypeCategory string

var accountRetypeCmd = &cobra.Command{
	Use:   "retype [code] [type]",
	Short: "Change the type of an account with no posted entries",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		upd := client.AccountUpdate{Type: &args[1]}
		if acctRetypeCategory != "" {
			category := ledger.Category(acctRetypeCategory)
			upd.Category = &category
		}
		return updateAccount(cmd, args[0], upd)
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [code]",
	Short: "Delete an account with no posted entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.New(flagServer).DeleteAccount(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s deleted\n", args[0])
		return nil
	},
}

var acctBalanceAsOf string

var accountBalanceCmd = &cobra.Command{
	Use:   "balance [code]",
	Short: "Show an account's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := normalizeDate(acctBalanceAsOf)
		if err != nil {
			return err
		}
		bal, err := client.New(flagServer).GetAccountBalance(cmd.Context(), args[0], asOf)
		if err != nil {
			return err
		}

		when := "all entries"
		if asOf != "" {
			when = "as of " + asOf
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  (%s; raw %d pence, debit minus credit)\n", bal.AccountCode, bal.Formatted, when, bal.Balance)
		return nil
	},
}

func init() {
	f := accountCreateCmd.Flags()
	f.StringVar(&acctNew.code, "code", "", "Account code (e.g. 1300)")
	f.StringVar(&acctNew.name, "name", "", "Account name")
	f.StringVar(&acctNew.typ, "type", "", "Asset, Liability, Equity, Income or Expense")
	f.StringVar(&acctNew.category, "category", "", "Category allowed for the type")
	f.StringVar(&acctNew.description, "description", "", "Optional description")
	for _, name := range []string{"code", "name", "type", "category"} {
		accountCreateCmd.MarkFlagRequired(name)
	}

	accountListCmd.Flags().StringVar(&acctListType, "type", "", "Filter by account type")
	accountRetypeCmd.Flags().StringVar(&acctRetypeCategory, "category", "", "Category for the new type")
	accountBalanceCmd.Flags().StringVar(&acctBalanceAsOf, "as-of", "", "Only count entries on or before this date")

	accountCmd.AddCommand(
		accountCreateCmd,
		accountListCmd,
		accountGetCmd,
		accountRenameCmd,
		accountRecategorizeCmd,
		accountRetypeCmd,
		accountDeleteCmd,
		accountBalanceCmd,
	)
	rootCmd.AddCommand(accountCmd)
}
