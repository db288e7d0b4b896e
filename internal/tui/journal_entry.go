package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type jeStep int

const (
	jeStepDescription jeStep = iota
	jeStepDate
	jeStepVAT
	jeStepLineAccount
	jeStepLineSide
	jeStepLineAmount
	jeStepLineMore
	jeStepConfirm
)

type entryLine struct {
	accountCode string
	isDebit     bool
	amount      string // normalized pounds, "500.00"
	pence       int64
}

// signed is the line's effect on debits minus credits.
func (l entryLine) signed() int64 {
	if l.isDebit {
		return l.pence
	}
	return -l.pence
}

type accountsForJEMsg struct {
	accounts []ledger.Account
	err      error
}

type entryPostedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

const (
	moreAddLine = iota
	moreDone
)

type journalEntryModel struct {
	step        jeStep
	description textinput.Model
	date        textinput.Model
	vatIdx      int
	lines       []entryLine

	// line under construction
	accountInput textinput.Model
	amountInput  textinput.Model
	isDebit      bool
	moreCursor   int

	accounts []ledger.Account

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

func newJournalEntry() journalEntryModel {
	m := journalEntryModel{
		step:         jeStepDescription,
		description:  newInput("e.g. Cash sale", 100),
		date:         newInput("today, or 2025-03-31", 30),
		accountInput: newInput("e.g. 1001", 16),
		amountInput:  newInput("e.g. 120.00", 20),
		isDebit:      true,
	}
	m.description.Focus()
	return m
}

func (m *journalEntryModel) loadAccounts(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background(), "")
		return accountsForJEMsg{accounts: accounts, err: err}
	}
}

func (m journalEntryModel) update(msg tea.Msg, c *client.Client) (journalEntryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsForJEMsg:
		m.accounts = msg.accounts
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case entryPostedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = jeStepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Journal entry #%d posted", msg.entry.ID)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}
		switch m.step {
		case jeStepVAT:
			m.vatIdx = moveCursor(msg, m.vatIdx, len(ledger.AllVATRates))
			if key.Matches(msg, keys.Enter) {
				m.goTo(jeStepLineAccount)
			}
			return m, nil
		case jeStepLineSide:
			if key.Matches(msg, keys.Up, keys.Down) {
				m.isDebit = !m.isDebit
			}
			if key.Matches(msg, keys.Enter) {
				m.goTo(jeStepLineAmount)
			}
			return m, nil
		case jeStepLineMore:
			return m.updateLineMore(msg), nil
		case jeStepConfirm:
			return m.updateConfirm(msg, c)
		default:
			return m.updateText(msg)
		}
	}
	return m, nil
}

// input is the text field owned by the current step, if any.
func (m *journalEntryModel) input() *textinput.Model {
	switch m.step {
	case jeStepDescription:
		return &m.description
	case jeStepDate:
		return &m.date
	case jeStepLineAccount:
		return &m.accountInput
	case jeStepLineAmount:
		return &m.amountInput
	}
	return nil
}

// goTo moves focus to step, priming the line fields with suggestions that
// would balance the lines entered so far.
func (m *journalEntryModel) goTo(step jeStep) {
	if in := m.input(); in != nil {
		in.Blur()
	}
	m.err = nil
	m.step = step

	diff := m.difference()
	switch step {
	case jeStepLineAccount:
		m.accountInput.SetValue("")
	case jeStepLineSide:
		m.isDebit = diff <= 0
	case jeStepLineAmount:
		m.amountInput.SetValue("")
		if diff != 0 {
			m.amountInput.SetValue(ledger.FormatAmount(max(diff, -diff)))
		}
	case jeStepLineMore:
		m.moreCursor = moreAddLine
		if len(m.lines) >= 2 && diff == 0 {
			m.moreCursor = moreDone
		}
	}
	if in := m.input(); in != nil {
		in.Focus()
	}
}

// commit checks the current text step and records its value. The date is
// left for the server to parse; blank means today.
func (m *journalEntryModel) commit() error {
	switch m.step {
	case jeStepDescription:
		if strings.TrimSpace(m.description.Value()) == "" {
			return errors.New("description is required")
		}
	case jeStepLineAccount:
		code := strings.TrimSpace(m.accountInput.Value())
		if code == "" {
			return errors.New("account code is required")
		}
		if m.accounts != nil && m.accountName(code) == "" {
			return fmt.Errorf("unknown account %q", code)
		}
	case jeStepLineAmount:
		pence, err := ledger.ToMinorUnits(m.amountInput.Value())
		if err != nil {
			return err
		}
		if pence <= 0 {
			return errors.New("amount must be positive")
		}
		m.lines = append(m.lines, entryLine{
			accountCode: strings.TrimSpace(m.accountInput.Value()),
			isDebit:     m.isDebit,
			amount:      ledger.FormatAmount(pence),
			pence:       pence,
		})
	}
	return nil
}

func (m journalEntryModel) updateText(msg tea.KeyMsg) (journalEntryModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		if err := m.commit(); err != nil {
			m.err = err
			return m, nil
		}
		m.goTo(m.step + 1)
		return m, nil
	}
	var cmd tea.Cmd
	in := m.input()
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m journalEntryModel) updateLineMore(msg tea.KeyMsg) journalEntryModel {
	switch {
	case key.Matches(msg, keys.Up, keys.Down):
		m.moreCursor = 1 - m.moreCursor
	case key.Matches(msg, keys.Enter) && m.moreCursor == moreAddLine:
		m.goTo(jeStepLineAccount)
	case key.Matches(msg, keys.Enter):
		switch {
		case len(m.lines) < 2:
			m.err = errors.New("need at least 2 lines")
		case !m.isBalanced():
			m.err = errors.New("debits and credits do not balance")
		default:
			m.goTo(jeStepConfirm)
			return m
		}
		m.moreCursor = moreAddLine
	}
	return m
}

func (m journalEntryModel) updateConfirm(msg tea.KeyMsg, c *client.Client) (journalEntryModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		req := m.request()
		return m, func() tea.Msg {
			posted, err := c.PostEntry(context.Background(), req)
			return entryPostedMsg{entry: posted, err: err}
		}
	case "n", "N":
		m.cancelled = true
	}
	return m, nil
}

func (m *journalEntryModel) request() client.NewEntry {
	req := client.NewEntry{
		Date:        strings.TrimSpace(m.date.Value()),
		Description: strings.TrimSpace(m.description.Value()),
		VATRate:     string(ledger.AllVATRates[m.vatIdx]),
	}
	for _, l := range m.lines {
		line := client.Line{AccountCode: l.accountCode}
		if l.isDebit {
			line.Debit = l.amount
		} else {
			line.Credit = l.amount
		}
		req.Lines = append(req.Lines, line)
	}
	return req
}

// difference is total debits minus total credits so far.
func (m *journalEntryModel) difference() int64 {
	var diff int64
	for _, l := range m.lines {
		diff += l.signed()
	}
	return diff
}

func (m *journalEntryModel) isBalanced() bool {
	return m.difference() == 0
}

func (m *journalEntryModel) accountName(code string) string {
	for _, a := range m.accounts {
		if a.Code == code {
			return a.Name
		}
	}
	return ""
}

// renderLines draws the lines entered so far with running totals.
func (m *journalEntryModel) renderLines() string {
	var b strings.Builder
	var dr, cr int64
	b.WriteString(dimStyle.Render(fmt.Sprintf("    %-8s %-24s %12s %12s", "ACCOUNT", "NAME", "DEBIT", "CREDIT")) + "\n")
	for _, l := range m.lines {
		name := clip(m.accountName(l.accountCode), 24)
		if l.isDebit {
			dr += l.pence
			b.WriteString(debitStyle.Render(fmt.Sprintf("    %-8s %-24s %12s %12s", l.accountCode, name, l.amount, "")) + "\n")
		} else {
			cr += l.pence
			b.WriteString(creditStyle.Render(fmt.Sprintf("    %-8s %-24s %12s %12s", l.accountCode, name, "", l.amount)) + "\n")
		}
	}
	b.WriteString(fmt.Sprintf("    %-8s %-24s %12s %12s\n", "", "Total", ledger.FormatAmount(dr), ledger.FormatAmount(cr)))

	switch diff := dr - cr; {
	case diff == 0:
		b.WriteString(successStyle.Render("    balanced"))
	case diff > 0:
		b.WriteString(warnStyle.Render("    needs " + ledger.FormatMoney(diff) + " more credit"))
	default:
		b.WriteString(warnStyle.Render("    needs " + ledger.FormatMoney(-diff) + " more debit"))
	}
	return b.String()
}

func (m *journalEntryModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Journal Entry"))
	b.WriteString("\n")
	if d := strings.TrimSpace(m.description.Value()); d != "" && m.step > jeStepDescription {
		b.WriteString(subtitleStyle.Render("  "+d) + "\n")
	}
	b.WriteString("\n")

	if len(m.lines) > 0 && m.step != jeStepConfirm {
		b.WriteString(m.renderLines())
		b.WriteString("\n\n")
	}

	switch m.step {
	case jeStepDescription:
		b.WriteString("  Description  " + m.description.View() + "\n")

	case jeStepDate:
		b.WriteString("  Date  " + m.date.View() + "\n")

	case jeStepVAT:
		b.WriteString("  VAT rate\n\n")
		items := make([]string, len(ledger.AllVATRates))
		for i, r := range ledger.AllVATRates {
			items[i] = vatLabel(r)
		}
		choices(&b, items, m.vatIdx)

	case jeStepLineAccount:
		b.WriteString(fmt.Sprintf("  Line %d account  %s\n", len(m.lines)+1, m.accountInput.View()))
		typed := m.accountInput.Value()
		for _, a := range m.accounts {
			if strings.HasPrefix(a.Code, typed) {
				b.WriteString(dimStyle.Render(fmt.Sprintf("    %-8s %-28s %s", a.Code, clip(a.Name, 28), a.Type)) + "\n")
			}
		}

	case jeStepLineSide:
		code := m.accountInput.Value()
		b.WriteString(fmt.Sprintf("  %s %s\n\n", code, m.accountName(code)))
		cursor := 1
		if m.isDebit {
			cursor = 0
		}
		choices(&b, []string{"Debit (DR)", "Credit (CR)"}, cursor)

	case jeStepLineAmount:
		side := "DR"
		if !m.isDebit {
			side = "CR"
		}
		b.WriteString(fmt.Sprintf("  %s %s  £ %s\n", side, m.accountInput.Value(), m.amountInput.View()))

	case jeStepLineMore:
		done := "Review and post"
		switch {
		case len(m.lines) < 2:
			done += " (needs 2 lines)"
		case !m.isBalanced():
			done += " (unbalanced)"
		}
		choices(&b, []string{"Add another line", done}, m.moreCursor)

	case jeStepConfirm:
		date := strings.TrimSpace(m.date.Value())
		if date == "" {
			date = "today"
		}
		head := strings.Join([]string{
			labelStyle.Render("Date") + date,
			labelStyle.Render("VAT rate") + vatLabel(ledger.AllVATRates[m.vatIdx]),
		}, "\n")
		b.WriteString(boxStyle.Render(head + "\n\n" + m.renderLines()))
		b.WriteString("\n\n  Post this entry? It cannot be edited afterwards, only reversed. (y/n)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("  esc cancels"))
	return b.String()
}
