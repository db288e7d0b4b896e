package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

var entryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"je"},
	Short:   "Post and inspect journal entries",
}

// entry post
var (
	entryDate        string
	entryDescription string
	entryVAT         string
	entryDebits      []string // format: "code:amount"
	entryCredits     []string
)

var entryPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced journal entry",
	Long: `Post a journal entry. Each --dr and --cr is formatted as "code:amount"
with the amount in pounds, e.g. --dr 1001:120.00 --cr 4001:100 --cr 2001:20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		c := client.New(flagServer)

		date, err := normalizeDate(entryDate)
		if err != nil {
			return err
		}
		req := client.NewEntry{
			Date:        date,
			Description: entryDescription,
			VATRate:     entryVAT,
		}
		for _, spec := range entryDebits {
			code, amount, err := splitLine(spec)
			if err != nil {
				return err
			}
			req.Lines = append(req.Lines, client.Line{AccountCode: code, Debit: amount})
		}
		for _, spec := range entryCredits {
			code, amount, err := splitLine(spec)
			if err != nil {
				return err
			}
			req.Lines = append(req.Lines, client.Line{AccountCode: code, Credit: amount})
		}

		posted, err := c.PostEntry(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Entry posted: #%d\n", posted.ID)
		printEntryLines(w, posted)
		return nil
	},
}

func splitLine(spec string) (code, amount string, err error) {
	code, amount, ok := strings.Cut(spec, ":")
	if !ok || code == "" || amount == "" {
		return "", "", fmt.Errorf("invalid line %q, expected code:amount", spec)
	}
	return code, amount, nil
}

// entry list
var (
	entryListAccount string
	entryListFrom    string
	entryListTo      string
	entryListLimit   int
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		c := client.New(flagServer)

		from, err := normalizeDate(entryListFrom)
		if err != nil {
			return err
		}
		to, err := normalizeDate(entryListTo)
		if err != nil {
			return err
		}
		entries, err := c.ListEntries(cmd.Context(), client.EntryQuery{
			Account: entryListAccount,
			From:    from,
			To:      to,
			Limit:   entryListLimit,
		})
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Fprintln(w, "No entries found.")
			return nil
		}

		fmt.Fprintf(w, "%-6s %-10s %-6s %12s %s\n", "ID", "DATE", "VAT", "AMOUNT", "DESCRIPTION")
		fmt.Fprintf(w, "%-6s %-10s %-6s %12s %s\n", "--", "----", "---", "------", "-----------")
		for _, e := range entries {
			fmt.Fprintf(w, "%-6d %-10s %-6s %12s %s\n",
				e.ID,
				e.Date.Format("2006-01-02"),
				e.VATRate,
				ledger.FormatAmount(e.TotalDebit()),
				truncate(e.Description, 40),
			)
		}
		return nil
	},
}

// entry get
var entryGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get journal entry details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		c := client.New(flagServer)

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		e, err := c.GetEntry(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "ID:          %d\n", e.ID)
		fmt.Fprintf(w, "Date:        %s\n", e.Date.Format("2006-01-02"))
		fmt.Fprintf(w, "Description: %s\n", e.Description)
		fmt.Fprintf(w, "VAT rate:    %s\n", e.VATRate)
		fmt.Fprintf(w, "Posted:      %s\n", e.PostedAt.Format("2006-01-02 15:04:05"))
		printEntryLines(w, e)
		return nil
	},
}

// entry reverse
var (
	reverseDate        string
	reverseDescription string
)

var entryReverseCmd = &cobra.Command{
	Use:   "reverse [id]",
	Short: "Post an entry that reverses an earlier one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		c := client.New(flagServer)

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		date, err := normalizeDate(reverseDate)
		if err != nil {
			return err
		}
		e, err := c.ReverseEntry(cmd.Context(), id, date, reverseDescription)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Entry #%d reversed by #%d\n", id, e.ID)
		printEntryLines(w, e)
		return nil
	},
}

func printEntryLines(w io.Writer, e *ledger.JournalEntry) {
	fmt.Fprintln(w, "Lines:")
	fmt.Fprintf(w, "  %-8s %12s %12s\n", "ACCOUNT", "DEBIT", "CREDIT")
	for _, l := range e.Lines {
		debit, credit := "", ""
		if l.Debit > 0 {
			debit = ledger.FormatAmount(l.Debit)
		}
		if l.Credit > 0 {
			credit = ledger.FormatAmount(l.Credit)
		}
		fmt.Fprintf(w, "  %-8s %12s %12s\n", l.AccountCode, debit, credit)
	}
}

func init() {
	entryPostCmd.Flags().StringVar(&entryDate, "date", "", "Entry date (default today)")
	entryPostCmd.Flags().StringVar(&entryDescription, "description", "", "Entry description")
	entryPostCmd.Flags().StringVar(&entryVAT, "vat", "0", "VAT rate: 0, 5, 20 or exempt")
	entryPostCmd.Flags().StringArrayVar(&entryDebits, "dr", nil, "Debit line code:amount (can be repeated)")
	entryPostCmd.Flags().StringArrayVar(&entryCredits, "cr", nil, "Credit line code:amount (can be repeated)")
	entryPostCmd.MarkFlagRequired("description")

	entryListCmd.Flags().StringVar(&entryListAccount, "account", "", "Only entries touching this account")
	entryListCmd.Flags().StringVar(&entryListFrom, "from", "", "Earliest entry date")
	entryListCmd.Flags().StringVar(&entryListTo, "to", "", "Latest entry date")
	entryListCmd.Flags().IntVar(&entryListLimit, "limit", 0, "Maximum number of entries")

	entryReverseCmd.Flags().StringVar(&reverseDate, "date", "", "Reversal date (default today)")
	entryReverseCmd.Flags().StringVar(&reverseDescription, "description", "", "Reversal description")

	entryCmd.AddCommand(entryPostCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryGetCmd)
	entryCmd.AddCommand(entryReverseCmd)

	rootCmd.AddCommand(entryCmd)
}
