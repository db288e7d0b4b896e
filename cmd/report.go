package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

var (
	reportPreset string
	reportFrom   string
	reportTo     string
	reportAsOf   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Financial reports",
}

var reportTrialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Show trial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		asOf, err := normalizeDate(reportAsOf)
		if err != nil {
			return err
		}
		tb, err := c.TrialBalance(cmd.Context(), asOf)
		if err != nil {
			return err
		}

		newReportPrinter(cmd).trialBalance(tb)
		return nil
	},
}

var reportPnLCmd = &cobra.Command{
	Use:     "pnl",
	Aliases: []string{"profit-and-loss"},
	Short:   "Show profit and loss for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		p, err := reportPeriod()
		if err != nil {
			return err
		}
		pl, err := c.ProfitAndLoss(cmd.Context(), p)
		if err != nil {
			return err
		}

		newReportPrinter(cmd).profitAndLoss(pl)
		return nil
	},
}

var reportVATCmd = &cobra.Command{
	Use:   "vat",
	Short: "Show VAT summary for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		p, err := reportPeriod()
		if err != nil {
			return err
		}
		vs, err := c.VATSummary(cmd.Context(), p)
		if err != nil {
			return err
		}

		newReportPrinter(cmd).vatSummary(vs)
		return nil
	},
}

var reportBalanceSheetCmd = &cobra.Command{
	Use:     "balance-sheet",
	Aliases: []string{"bs"},
	Short:   "Show balance sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		asOf, err := normalizeDate(reportAsOf)
		if err != nil {
			return err
		}
		bs, err := c.BalanceSheet(cmd.Context(), asOf)
		if err != nil {
			return err
		}

		newReportPrinter(cmd).balanceSheet(bs)
		return nil
	},
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show headline figures for a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)

		p, err := reportPeriod()
		if err != nil {
			return err
		}
		sum, err := c.Summary(cmd.Context(), p)
		if err != nil {
			return err
		}

		newReportPrinter(cmd).summary(sum)
		return nil
	},
}

func reportPeriod() (client.Period, error) {
	from, err := normalizeDate(reportFrom)
	if err != nil {
		return client.Period{}, err
	}
	to, err := normalizeDate(reportTo)
	if err != nil {
		return client.Period{}, err
	}
	return client.Period{Preset: reportPreset, From: from, To: to}, nil
}

// normalizeDate accepts any layout dateparse understands and returns it as
// YYYY-MM-DD. An empty string stays empty.
func normalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("unable to parse date %q", s)
	}
	return t.Format("2006-01-02"), nil
}

// reportWidth fits reports to the terminal, between 60 and 100 columns.
func reportWidth() int {
	w := 70
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if tw, _, err := term.GetSize(fd); err == nil {
			w = tw - 2
		}
	}
	return min(max(w, 60), 100)
}

// reportPrinter lays reports out in a fixed width on out.
type reportPrinter struct {
	out   io.Writer
	width int
}

func newReportPrinter(cmd *cobra.Command) *reportPrinter {
	return &reportPrinter{out: cmd.OutOrStdout(), width: reportWidth()}
}

func (p *reportPrinter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *reportPrinter) title(title, subtitle string) {
	p.printf("\n%s\n%s\n", center(title, p.width), center(strings.Repeat("=", 20), p.width))
	if subtitle != "" {
		p.printf("%s\n", center(subtitle, p.width))
	}
	p.printf("\n")
}

// rows prints one code/name/amount line per account under a heading.
func (p *reportPrinter) rows(heading string, codes, names []string, amounts []int64) {
	p.printf("  %s\n  %s\n", heading, strings.Repeat("─", p.width-4))
	for i := range codes {
		p.printf("  %-6s %-*s%15s\n", codes[i], p.width-24, truncate(names[i], p.width-26), formatSigned(amounts[i]))
	}
}

func (p *reportPrinter) total(label string, amount int64, rule string) {
	if rule != "" {
		p.printf("%*s%s\n", p.width-15, "", strings.Repeat(rule, 13))
	}
	p.printf("%-*s%15s\n", p.width-15, label, formatSigned(amount))
}

func (p *reportPrinter) balanced(ok bool) {
	if ok {
		p.printf("\n  [BALANCED]\n")
	} else {
		p.printf("\n  [UNBALANCED!]\n")
	}
}

func (p *reportPrinter) trialBalance(tb *ledger.TrialBalance) {
	subtitle := "all posted entries"
	if !tb.AsOf.IsZero() {
		subtitle = "as of " + tb.AsOf.Format("2006-01-02")
	}
	p.title("TRIAL BALANCE", subtitle)

	nameW := p.width - 42
	row := "  %-8s %-*s %15s %15s\n"
	p.printf(row, "CODE", nameW, "NAME", "DEBIT", "CREDIT")
	for _, l := range tb.Lines {
		var debit, credit string
		if l.Debit > 0 {
			debit = ledger.FormatAmount(l.Debit)
		}
		if l.Credit > 0 {
			credit = ledger.FormatAmount(l.Credit)
		}
		name := truncate(l.AccountName, nameW)
		if l.Contra {
			name = truncate(l.AccountName, nameW-2) + " *"
		}
		p.printf(row, l.AccountCode, nameW, name, debit, credit)
	}
	p.printf("  %s\n", strings.Repeat("─", p.width-4))
	p.printf(row, "", nameW, "TOTALS", ledger.FormatAmount(tb.TotalDebit), ledger.FormatAmount(tb.TotalCredit))
	p.balanced(tb.Balanced)
}

func (p *reportPrinter) profitAndLoss(pl *ledger.ProfitAndLoss) {
	p.title("PROFIT AND LOSS", pl.Period.String())

	section := func(heading string, lines []ledger.ProfitAndLossLine, label string, total int64) {
		codes, names, amounts := make([]string, len(lines)), make([]string, len(lines)), make([]int64, len(lines))
		for i, l := range lines {
			codes[i], names[i], amounts[i] = l.AccountCode, l.AccountName, l.Amount
		}
		p.rows(heading, codes, names, amounts)
		p.total(label, total, "─")
		p.printf("\n")
	}
	section("INCOME", pl.Income, "Total Income", pl.TotalIncome)
	section("EXPENSES", pl.Expenses, "Total Expenses", pl.TotalExpense)

	label := "Net Profit"
	if pl.NetProfit < 0 {
		label = "Net Loss"
	}
	p.total(label, pl.NetProfit, "═")
}

func (p *reportPrinter) vatSummary(vs *ledger.VATSummary) {
	p.title("VAT SUMMARY", vs.Period.String())

	descW := p.width - 56
	p.printf("  %-5s %-10s %-*s %-6s %-4s %12s %10s\n", "ENTRY", "DATE", descW, "DESCRIPTION", "KIND", "RATE", "NET", "VAT")
	for _, l := range vs.Lines {
		p.printf("  %-5d %-10s %-*s %-6s %-4s %12s %10s\n",
			l.EntryID, l.Date.Format("2006-01-02"), descW, truncate(l.Description, descW),
			l.Kind, l.Rate, formatSigned(l.Net), formatSigned(l.VAT))
	}
	p.printf("\n")

	p.total("Output VAT (payable)", vs.VATPayable, "─")
	p.total("Input VAT (receivable)", vs.VATReceivable, "")
	p.total("Net VAT due", vs.NetVATDue, "═")
}

func (p *reportPrinter) balanceSheet(bs *ledger.BalanceSheet) {
	p.title("BALANCE SHEET", "as of "+bs.AsOf.Format("2006-01-02"))

	section := func(heading string, lines []ledger.BalanceSheetLine, label string, total int64) {
		codes, names, amounts := make([]string, len(lines)), make([]string, len(lines)), make([]int64, len(lines))
		for i, l := range lines {
			codes[i], names[i], amounts[i] = l.AccountCode, l.AccountName, l.Balance
		}
		p.rows(heading, codes, names, amounts)
		p.total(label, total, "─")
		p.printf("\n")
	}
	section("ASSETS", bs.Assets, "Total Assets", bs.TotalAssets)
	section("LIABILITIES", bs.Liabilities, "Total Liabilities", bs.TotalLiabilities)
	section("EQUITY", bs.Equity, "Total Equity", bs.TotalEquity)

	p.total("Total L + E", bs.TotalLiabilitiesAndEquity, "═")
	p.balanced(bs.Balanced)
}

func (p *reportPrinter) summary(sum *ledger.Summary) {
	for _, f := range []struct {
		label string
		value string
	}{
		{"Period", sum.Period.String()},
		{"Total income", ledger.FormatMoney(sum.TotalIncome)},
		{"Total expenses", ledger.FormatMoney(sum.TotalExpenses)},
		{"Net profit", ledger.FormatMoney(sum.NetProfit)},
		{"VAT payable", ledger.FormatMoney(sum.VATPayable)},
		{"Entries", fmt.Sprint(sum.EntryCount)},
	} {
		p.printf("%-16s%s\n", f.label+":", f.value)
	}
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func formatSigned(amount int64) string {
	if amount < 0 {
		return "(" + ledger.FormatAmount(-amount) + ")"
	}
	return ledger.FormatAmount(amount)
}

func truncate(s string, n int) string {
	if len(s) <= n || n < 3 {
		return s
	}
	return s[:n-2] + ".."
}

func init() {
	for _, c := range []*cobra.Command{reportPnLCmd, reportVATCmd, reportSummaryCmd} {
		c.Flags().StringVar(&reportPreset, "preset", "", "current-month, current-quarter, current-year or last-year")
		c.Flags().StringVar(&reportFrom, "from", "", "Period start date")
		c.Flags().StringVar(&reportTo, "to", "", "Period end date (default today)")
	}
	for _, c := range []*cobra.Command{reportTrialCmd, reportBalanceSheetCmd} {
		c.Flags().StringVar(&reportAsOf, "as-of", "", "Only count entries on or before this date")
	}

	reportCmd.AddCommand(reportTrialCmd)
	reportCmd.AddCommand(reportPnLCmd)
	reportCmd.AddCommand(reportVATCmd)
	reportCmd.AddCommand(reportBalanceSheetCmd)
	reportCmd.AddCommand(reportSummaryCmd)

	rootCmd.AddCommand(reportCmd)
}
