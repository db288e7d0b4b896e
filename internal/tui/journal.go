package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type entriesLoadedMsg struct {
	entries []ledger.JournalEntry
	err     error
}

// journalListModel shows the journal newest first.
type journalListModel struct {
	entries []ledger.JournalEntry
	cursor  int
	loading bool
	err     error
	width   int
	height  int
}

const journalRow = "%-6v %-10s %-5v %-6s %12s  %s"

func (m *journalListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		entries, err := c.ListEntries(context.Background(), client.EntryQuery{Newest: true})
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m journalListModel) update(msg tea.Msg) (journalListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.loading = false
		m.entries, m.err = msg.entries, msg.err
		m.cursor = min(m.cursor, max(len(m.entries)-1, 0))
	case tea.KeyMsg:
		m.cursor = moveCursor(msg, m.cursor, len(m.entries))
	}
	return m, nil
}

func (m *journalListModel) selectedID() int64 {
	if m.cursor < len(m.entries) {
		return m.entries[m.cursor].ID
	}
	return 0
}

func (m *journalListModel) view() string {
	switch {
	case m.loading:
		return "Loading journal..."
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	case len(m.entries) == 0:
		return dimStyle.Render("The journal is empty. Press 't' to post the first entry.")
	}

	rows := make([]string, len(m.entries))
	for i, e := range m.entries {
		rows[i] = fmt.Sprintf(journalRow, e.ID, e.Date.Format("2006-01-02"), len(e.Lines),
			vatLabel(e.VATRate), ledger.FormatAmount(e.TotalDebit()), clip(e.Description, 40))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Journal") + "\n")
	renderRows(&b, fmt.Sprintf(journalRow, "ID", "DATE", "LINES", "VAT", "AMOUNT", "DESCRIPTION"), rows, m.cursor, m.height-4)
	fmt.Fprintf(&b, "\n  %d entries", len(m.entries))
	return b.String()
}
