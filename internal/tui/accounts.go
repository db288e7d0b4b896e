package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type accountsLoadedMsg struct {
	accounts []ledger.Account
	err      error
}

// accountDeleteConfirmedMsg asks the App to delete code on the server.
type accountDeleteConfirmedMsg struct {
	code string
}

type accountDeletedMsg struct {
	code string
	err  error
}

// accountRenameRequestMsg asks the App to rename code on the server.
type accountRenameRequestMsg struct {
	code string
	name string
}

type accountRenamedMsg struct {
	code string
	err  error
}

const accountRow = "%-8s %-30s %-10s %-24s %s"

type accountListModel struct {
	accounts []ledger.Account
	filter   ledger.AccountType // empty shows every type
	cursor   int
	loading  bool
	err      error
	width    int
	height   int

	// inline prompts acting on target
	confirmDelete bool
	renaming      bool
	renameInput   textinput.Model
	target        string
}

func (m *accountListModel) init(c *client.Client) tea.Cmd {
	m.loading = true
	filter := string(m.filter)
	return func() tea.Msg {
		accounts, err := c.ListAccounts(context.Background(), filter)
		return accountsLoadedMsg{accounts: accounts, err: err}
	}
}

// nextFilter steps through each account type and then back to all.
func (m *accountListModel) nextFilter() {
	i := slices.Index(ledger.AllTypes, m.filter) + 1
	if i >= len(ledger.AllTypes) {
		m.filter = ""
		return
	}
	m.filter = ledger.AllTypes[i]
}

func (m accountListModel) update(msg tea.Msg, c *client.Client) (accountListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		m.loading = false
		m.accounts, m.err = msg.accounts, msg.err
		m.cursor = min(m.cursor, max(len(m.accounts)-1, 0))

	case accountDeletedMsg:
		m.confirmDelete, m.target = false, ""
		m.err = msg.err

	case accountRenamedMsg:
		m.renaming, m.target = false, ""
		m.err = msg.err

	case tea.KeyMsg:
		switch {
		case m.confirmDelete:
			return m.updateConfirmDelete(msg)
		case m.renaming:
			return m.updateRename(msg)
		default:
			return m.updateBrowse(msg, c)
		}
	}
	return m, nil
}

func (m accountListModel) updateConfirmDelete(msg tea.KeyMsg) (accountListModel, tea.Cmd) {
	code := m.target
	m.confirmDelete = false
	if msg.String() != "y" && msg.String() != "Y" {
		m.target = ""
		return m, nil
	}
	return m, func() tea.Msg { return accountDeleteConfirmedMsg{code: code} }
}

func (m accountListModel) updateRename(msg tea.KeyMsg) (accountListModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.renaming, m.target = false, ""
		return m, nil
	case key.Matches(msg, keys.Enter):
		name := strings.TrimSpace(m.renameInput.Value())
		if name == "" {
			m.err = errors.New("name is required")
			return m, nil
		}
		code := m.target
		return m, func() tea.Msg { return accountRenameRequestMsg{code: code, name: name} }
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m accountListModel) updateBrowse(msg tea.KeyMsg, c *client.Client) (accountListModel, tea.Cmd) {
	m.cursor = moveCursor(msg, m.cursor, len(m.accounts))

	code := m.selectedCode()
	switch {
	case key.Matches(msg, keys.Filter):
		m.nextFilter()
		m.cursor = 0
		return m, m.init(c)
	case key.Matches(msg, keys.Delete) && code != "":
		m.confirmDelete, m.target, m.err = true, code, nil
	case key.Matches(msg, keys.Rename) && code != "":
		m.renaming, m.target, m.err = true, code, nil
		m.renameInput = newInput("", 60)
		m.renameInput.SetValue(m.accounts[m.cursor].Name)
		m.renameInput.Focus()
	}
	return m, nil
}

func (m *accountListModel) selectedCode() string {
	if m.cursor < len(m.accounts) {
		return m.accounts[m.cursor].Code
	}
	return ""
}

func (m *accountListModel) view() string {
	if m.loading {
		return "Loading accounts..."
	}

	var b strings.Builder
	title := "Accounts"
	if m.filter != "" {
		title += " (" + string(m.filter) + ")"
	}
	b.WriteString(titleStyle.Render(title) + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if len(m.accounts) == 0 {
		b.WriteString(dimStyle.Render("No accounts to show. 'n' creates one, 'f' changes the type filter."))
		return b.String()
	}

	rows := make([]string, len(m.accounts))
	for i, a := range m.accounts {
		rows[i] = fmt.Sprintf(accountRow, a.Code, clip(a.Name, 30), a.Type, a.Category, ledger.NormalBalance(a.Type))
	}
	renderRows(&b, fmt.Sprintf(accountRow, "CODE", "NAME", "TYPE", "CATEGORY", "NORMAL"), rows, m.cursor, m.height-5)

	b.WriteString("\n")
	switch {
	case m.confirmDelete:
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Delete account %s? (y/n)", m.target)))
	case m.renaming:
		b.WriteString("  Rename " + m.target + ": " + m.renameInput.View())
	default:
		fmt.Fprintf(&b, "  %d accounts", len(m.accounts))
	}
	return b.String()
}
