package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type entryDetailLoadedMsg struct {
	entry *ledger.JournalEntry
	err   error
}

type entryReversedMsg struct {
	original int64
	reversal *ledger.JournalEntry
	err      error
}

type entryDetailModel struct {
	entry          *ledger.JournalEntry
	loading        bool
	confirmReverse bool
	err            error
	width          int
}

func (m *entryDetailModel) init(c *client.Client, id int64) tea.Cmd {
	m.loading = true
	m.confirmReverse = false
	return func() tea.Msg {
		e, err := c.GetEntry(context.Background(), id)
		return entryDetailLoadedMsg{entry: e, err: err}
	}
}

func (m entryDetailModel) update(msg tea.Msg, c *client.Client) (entryDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entryDetailLoadedMsg:
		m.loading = false
		m.entry, m.err = msg.entry, msg.err

	case entryReversedMsg:
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case m.entry == nil:
		case m.confirmReverse:
			m.confirmReverse = false
			if msg.String() == "y" || msg.String() == "Y" {
				return m, m.reverse(c)
			}
		case key.Matches(msg, keys.Reverse):
			m.confirmReverse, m.err = true, nil
		}
	}
	return m, nil
}

// reverse posts a reversal of the shown entry dated today.
func (m *entryDetailModel) reverse(c *client.Client) tea.Cmd {
	id := m.entry.ID
	return func() tea.Msg {
		rev, err := c.ReverseEntry(context.Background(), id, "", "")
		return entryReversedMsg{original: id, reversal: rev, err: err}
	}
}

func (m *entryDetailModel) view() string {
	switch {
	case m.loading:
		return "Loading entry..."
	case m.entry == nil && m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	case m.entry == nil:
		return ""
	}

	e := m.entry
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Journal Entry #%d", e.ID)) + "\n")
	renderFields(&b, [][2]string{
		{"Date", e.Date.Format("2006-01-02")},
		{"Description", e.Description},
		{"VAT rate", vatLabel(e.VATRate)},
		{"Posted", e.PostedAt.Local().Format("2006-01-02 15:04:05")},
	})
	b.WriteString("\n")

	const row = "  %-4s %-10s %15s %15s"
	b.WriteString(headerStyle.Render(fmt.Sprintf(row, "", "ACCOUNT", "DEBIT", "CREDIT")) + "\n")
	for _, l := range e.Lines {
		if l.Debit > 0 {
			b.WriteString(debitStyle.Render(fmt.Sprintf(row, "DR", l.AccountCode, ledger.FormatAmount(l.Debit), "")) + "\n")
		} else {
			b.WriteString(creditStyle.Render(fmt.Sprintf(row, "CR", l.AccountCode, "", ledger.FormatAmount(l.Credit))) + "\n")
		}
	}
	b.WriteString(fmt.Sprintf(row, "", "Total", ledger.FormatAmount(e.TotalDebit()), ledger.FormatAmount(e.TotalCredit())) + "\n")

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}
	if m.confirmReverse {
		b.WriteString("\n" + warnStyle.Render(fmt.Sprintf("  Post a reversal of entry #%d dated today? (y/n)", e.ID)))
	}
	return b.String()
}

func vatLabel(r ledger.VATRate) string {
	switch r {
	case ledger.VATExempt:
		return "Exempt"
	case "", ledger.VATZero:
		return "0%"
	default:
		return string(r) + "%"
	}
}
