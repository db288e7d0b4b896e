package tui

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type reportKind int

const (
	reportBalanceSheet reportKind = iota
	reportProfitAndLoss
	reportTrialBalance
	reportVAT
	reportSummary
)

var reportKinds = []reportKind{reportBalanceSheet, reportProfitAndLoss, reportTrialBalance, reportVAT, reportSummary}

func (k reportKind) String() string {
	switch k {
	case reportBalanceSheet:
		return "Balance Sheet"
	case reportProfitAndLoss:
		return "Profit & Loss"
	case reportTrialBalance:
		return "Trial Balance"
	case reportVAT:
		return "VAT"
	case reportSummary:
		return "Summary"
	}
	return ""
}

// periodic reports take a preset period; the others run as of today.
func (k reportKind) periodic() bool {
	return k == reportProfitAndLoss || k == reportVAT || k == reportSummary
}

var reportPresets = []string{
	ledger.PresetCurrentMonth,
	ledger.PresetCurrentQuarter,
	ledger.PresetCurrentYear,
	ledger.PresetLastYear,
}

type reportLoadedMsg struct {
	kind reportKind
	tb   *ledger.TrialBalance
	pl   *ledger.ProfitAndLoss
	vat  *ledger.VATSummary
	bs   *ledger.BalanceSheet
	sum  *ledger.Summary
	err  error
}

type reportsModel struct {
	kind    int
	preset  int
	loaded  reportLoadedMsg
	loading bool
	width   int
	height  int
}

func (m *reportsModel) current() reportKind {
	return reportKinds[m.kind]
}

func (m *reportsModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	kind := m.current()
	period := client.Period{Preset: reportPresets[m.preset]}
	return func() tea.Msg {
		ctx := context.Background()
		msg := reportLoadedMsg{kind: kind}
		switch kind {
		case reportBalanceSheet:
			msg.bs, msg.err = c.BalanceSheet(ctx, "")
		case reportProfitAndLoss:
			msg.pl, msg.err = c.ProfitAndLoss(ctx, period)
		case reportTrialBalance:
			msg.tb, msg.err = c.TrialBalance(ctx, "")
		case reportVAT:
			msg.vat, msg.err = c.VATSummary(ctx, period)
		case reportSummary:
			msg.sum, msg.err = c.Summary(ctx, period)
		}
		return msg
	}
}

func (m reportsModel) update(msg tea.Msg, c *client.Client) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		// Drop responses for a report the user has already moved away from.
		if msg.kind != m.current() {
			return m, nil
		}
		m.loading = false
		m.loaded = msg

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Right):
			m.kind = (m.kind + 1) % len(reportKinds)
			return m, m.init(c)
		case key.Matches(msg, keys.Left):
			m.kind = (m.kind - 1 + len(reportKinds)) % len(reportKinds)
			return m, m.init(c)
		case key.Matches(msg, keys.Period):
			if m.current().periodic() {
				m.preset = (m.preset + 1) % len(reportPresets)
				return m, m.init(c)
			}
		case key.Matches(msg, keys.Refresh):
			return m, m.init(c)
		}
	}
	return m, nil
}

func (m *reportsModel) view() string {
	var b strings.Builder

	var tabs []string
	for i, k := range reportKinds {
		if i == m.kind {
			tabs = append(tabs, selectedStyle.Render("["+k.String()+"]"))
		} else {
			tabs = append(tabs, dimStyle.Render(" "+k.String()+" "))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading " + m.current().String() + "...")
		return b.String()
	}

	w := m.width
	if w < 60 {
		w = 80
	}
	w = min(w, 110)

	switch {
	case m.loaded.bs != nil:
		b.WriteString(renderBalanceSheet(m.loaded.bs, w))
	case m.loaded.pl != nil:
		b.WriteString(renderProfitAndLoss(m.loaded.pl, w))
	case m.loaded.tb != nil:
		b.WriteString(renderTrialBalance(m.loaded.tb, w))
	case m.loaded.vat != nil:
		b.WriteString(renderVAT(m.loaded.vat, w))
	case m.loaded.sum != nil:
		b.WriteString(renderSummary(m.loaded.sum))
	}

	if m.loaded.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.loaded.err.Error()))
		if client.StatusCode(m.loaded.err) == http.StatusInternalServerError {
			b.WriteString("\n" + warnStyle.Render("  Posting is halted until the ledger is resumed."))
		}
	}

	help := "left/right: report  ctrl+r: refresh"
	if m.current().periodic() {
		help = "p: period  " + help
	}
	b.WriteString("\n\n" + dimStyle.Render("  "+help))
	return b.String()
}

func renderBalanceSheet(bs *ledger.BalanceSheet, w int) string {
	var b strings.Builder
	nameW := max(w-32, 10)

	b.WriteString(titleStyle.Render(centerStr("BALANCE SHEET", w)))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(centerStr("as of "+bs.AsOf.Format("2006-01-02"), w)))
	b.WriteString("\n\n")

	section := func(title string, lines []ledger.BalanceSheetLine, total int64) {
		b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render(title)))
		if len(lines) == 0 {
			b.WriteString(dimStyle.Render("    (no balances)") + "\n")
		}
		for _, l := range lines {
			b.WriteString(fmt.Sprintf("    %-6s %-*s %15s\n", l.AccountCode, nameW, clip(l.AccountName, nameW), formatAmt(l.Balance)))
		}
		b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("─", w-8)))
		b.WriteString(fmt.Sprintf("    %-*s %15s\n\n", nameW+7, "Total "+title, formatAmt(total)))
	}

	section("Assets", bs.Assets, bs.TotalAssets)
	section("Liabilities", bs.Liabilities, bs.TotalLiabilities)
	section("Equity", bs.Equity, bs.TotalEquity)

	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("═", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %15s\n", nameW+7, "Total L + E", formatAmt(bs.TotalLiabilitiesAndEquity)))
	b.WriteString("\n")
	b.WriteString(balancedBadge(bs.Balanced))
	return b.String()
}

func renderProfitAndLoss(pl *ledger.ProfitAndLoss, w int) string {
	var b strings.Builder
	nameW := max(w-32, 10)

	b.WriteString(titleStyle.Render(centerStr("PROFIT AND LOSS", w)))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(centerStr(pl.Period.String(), w)))
	b.WriteString("\n\n")

	section := func(title string, lines []ledger.ProfitAndLossLine, total int64) {
		b.WriteString(fmt.Sprintf("  %s\n", headerStyle.Render(title)))
		if len(lines) == 0 {
			b.WriteString(dimStyle.Render("    (no activity)") + "\n")
		}
		for _, l := range lines {
			b.WriteString(fmt.Sprintf("    %-6s %-*s %15s\n", l.AccountCode, nameW, clip(l.AccountName, nameW), formatAmt(l.Amount)))
		}
		b.WriteString(fmt.Sprintf("    %-*s %15s\n\n", nameW+7, "Total "+title, formatAmt(total)))
	}

	section("Income", pl.Income, pl.TotalIncome)
	section("Expenses", pl.Expenses, pl.TotalExpense)

	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("═", w-8)))
	line := fmt.Sprintf("    %-*s %15s", nameW+7, "Net Profit", formatAmt(pl.NetProfit))
	if pl.NetProfit < 0 {
		b.WriteString(errorStyle.Render(line))
	} else {
		b.WriteString(successStyle.Render(line))
	}
	return b.String()
}

func renderTrialBalance(tb *ledger.TrialBalance, w int) string {
	var b strings.Builder
	nameW := max(w-46, 10)

	b.WriteString(titleStyle.Render(centerStr("TRIAL BALANCE", w)))
	b.WriteString("\n")

	header := fmt.Sprintf("    %-6s %-*s %15s %15s", "CODE", nameW, "NAME", "DEBIT", "CREDIT")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	for _, l := range tb.Lines {
		debit, credit := "", ""
		if l.Debit > 0 {
			debit = ledger.FormatAmount(l.Debit)
		}
		if l.Credit > 0 {
			credit = ledger.FormatAmount(l.Credit)
		}
		line := fmt.Sprintf("    %-6s %-*s %15s %15s", l.AccountCode, nameW, clip(l.AccountName, nameW), debit, credit)
		if l.Contra {
			line = warnStyle.Render(line + "  contra")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(fmt.Sprintf("    %s\n", strings.Repeat("─", w-8)))
	b.WriteString(fmt.Sprintf("    %-*s %15s %15s\n\n", nameW+7, "Totals",
		ledger.FormatAmount(tb.TotalDebit), ledger.FormatAmount(tb.TotalCredit)))
	b.WriteString(balancedBadge(tb.Balanced))
	return b.String()
}

func renderVAT(vs *ledger.VATSummary, w int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(centerStr("VAT SUMMARY", w)))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(centerStr(vs.Period.String(), w)))
	b.WriteString("\n\n")

	if len(vs.Lines) == 0 {
		b.WriteString(dimStyle.Render("    No VAT-rated income or expenses in this period.") + "\n\n")
	} else {
		descW := max(w-62, 10)
		header := fmt.Sprintf("    %-5s %-10s %-*s %-6s %-6s %12s %10s", "ENTRY", "DATE", descW, "DESCRIPTION", "KIND", "RATE", "NET", "VAT")
		b.WriteString(headerStyle.Render(header))
		b.WriteString("\n")
		for _, l := range vs.Lines {
			b.WriteString(fmt.Sprintf("    %-5d %-10s %-*s %-6s %-6s %12s %10s\n",
				l.EntryID, l.Date.Format("2006-01-02"), descW, clip(l.Description, descW),
				l.Kind, vatLabel(l.Rate), formatAmt(l.Net), formatAmt(l.VAT)))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Output VAT:"), ledger.FormatMoney(vs.VATPayable)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Input VAT:"), ledger.FormatMoney(vs.VATReceivable)))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Net VAT due:"), ledger.FormatMoney(vs.NetVATDue)))
	return b.String()
}

func renderSummary(s *ledger.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Summary " + s.Period.String()))
	b.WriteString("\n")
	tiles := []struct {
		label string
		value string
	}{
		{"Total Income", ledger.FormatMoney(s.TotalIncome)},
		{"Total Expenses", ledger.FormatMoney(s.TotalExpenses)},
		{"Net Profit", ledger.FormatMoney(s.NetProfit)},
		{"VAT Payable", ledger.FormatMoney(s.VATPayable)},
		{"Entries", fmt.Sprint(s.EntryCount)},
	}
	var rendered []string
	for _, t := range tiles {
		rendered = append(rendered, boxStyle.Render(dimStyle.Render(t.label)+"\n"+selectedStyle.Render(t.value)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	return b.String()
}

func balancedBadge(ok bool) string {
	if ok {
		return successStyle.Render("    [BALANCED]")
	}
	return errorStyle.Render("    [UNBALANCED!]")
}

func formatAmt(amount int64) string {
	if amount < 0 {
		return "(" + ledger.FormatAmount(-amount) + ")"
	}
	return ledger.FormatAmount(amount)
}

func clip(s string, n int) string {
	if len(s) <= n || n < 3 {
		return s
	}
	return s[:n-2] + ".."
}

func centerStr(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
