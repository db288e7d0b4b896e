package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/simonvc/minibooks/internal/client"
)

type mode int

const (
	modeAccountList mode = iota
	modeAccountDetail
	modeJournalList
	modeEntryDetail
	modeReports
	modeWizard
	modeJournalEntry
)

// tab is one entry in the tab bar and the list mode it opens.
type tab struct {
	label string
	mode  mode
}

var tabs = []tab{
	{"Accounts", modeAccountList},
	{"Journal", modeJournalList},
	{"Reports", modeReports},
}

// chrome is the number of rows used by the tab bar, status and help lines.
const chrome = 6

type App struct {
	client        *client.Client
	business      string
	mode          mode
	tabIndex      int
	width, height int
	statusMsg     string

	accountList   accountListModel
	accountDetail accountDetailModel
	journalList   journalListModel
	entryDetail   entryDetailModel
	reports       reportsModel
	wizard        wizardModel
	journalEntry  journalEntryModel
}

// NewApp builds the terminal UI over an API client. business is shown in
// the tab bar.
func NewApp(c *client.Client, business string) *App {
	return &App{client: c, business: business, mode: modeAccountList}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.accountList.init(a.client),
		a.journalList.init(a.client),
		a.reports.init(a.client),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		a.resize(size.Width, size.Height)
		return a, nil
	}
	if cmd, handled := a.route(msg); handled {
		return a, cmd
	}
	if cmd, handled := a.modal(msg); handled {
		return a, cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := a.handleKey(k); handled {
			return a, cmd
		}
	}
	return a, a.delegate(msg)
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	body := h - chrome

	a.accountList.width, a.accountList.height = w, body
	a.journalList.width, a.journalList.height = w, body
	a.reports.width, a.reports.height = w, body
	a.accountDetail.width = w
	a.entryDetail.width = w
	a.wizard.width = w
	a.journalEntry.width = w
}

// route delivers async results to their sub-model whatever mode is active,
// and runs the client calls that list prompts ask for.
func (a *App) route(msg tea.Msg) (tea.Cmd, bool) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case accountsLoadedMsg:
		a.accountList, cmd = a.accountList.update(msg, a.client)
	case entriesLoadedMsg:
		a.journalList, cmd = a.journalList.update(msg)
	case reportLoadedMsg:
		a.reports, cmd = a.reports.update(msg, a.client)
	case accountDetailLoadedMsg:
		a.accountDetail, cmd = a.accountDetail.update(msg)
	case entryDetailLoadedMsg:
		a.entryDetail, cmd = a.entryDetail.update(msg, a.client)

	case entryReversedMsg:
		a.entryDetail, _ = a.entryDetail.update(msg, a.client)
		if msg.err == nil {
			a.statusMsg = fmt.Sprintf("Entry #%d reversed by #%d", msg.original, msg.reversal.ID)
			a.mode = modeJournalList
			cmd = a.refreshLedger()
		}

	case accountDeleteConfirmedMsg:
		c, code := a.client, msg.code
		cmd = func() tea.Msg {
			return accountDeletedMsg{code: code, err: c.DeleteAccount(context.Background(), code)}
		}
	case accountDeletedMsg:
		a.accountList, _ = a.accountList.update(msg, a.client)
		if msg.err == nil {
			a.statusMsg = "Account " + msg.code + " deleted"
			cmd = a.accountList.init(a.client)
		}

	case accountRenameRequestMsg:
		c, code, name := a.client, msg.code, msg.name
		cmd = func() tea.Msg {
			_, err := c.RenameAccount(context.Background(), code, name)
			return accountRenamedMsg{code: code, err: err}
		}
	case accountRenamedMsg:
		a.accountList, _ = a.accountList.update(msg, a.client)
		if msg.err == nil {
			a.statusMsg = "Account " + msg.code + " renamed"
			cmd = tea.Batch(a.accountList.init(a.client), a.reports.init(a.client))
		}

	default:
		return nil, false
	}
	return cmd, true
}

// modal gives forms and inline prompts every message until they finish.
func (a *App) modal(msg tea.Msg) (tea.Cmd, bool) {
	var cmd tea.Cmd
	switch {
	case a.mode == modeWizard:
		a.wizard, cmd = a.wizard.update(msg, a.client)
		switch {
		case a.wizard.done:
			a.mode, a.statusMsg = modeAccountList, a.wizard.statusMsg
			cmd = a.accountList.init(a.client)
		case a.wizard.cancelled:
			a.mode, a.statusMsg = modeAccountList, "Account creation cancelled"
		}

	case a.mode == modeJournalEntry:
		a.journalEntry, cmd = a.journalEntry.update(msg, a.client)
		switch {
		case a.journalEntry.done:
			a.mode, a.statusMsg = modeJournalList, a.journalEntry.statusMsg
			cmd = a.refreshLedger()
		case a.journalEntry.cancelled:
			a.mode, a.statusMsg = modeJournalList, "Journal entry cancelled"
		}

	case a.mode == modeAccountList && (a.accountList.renaming || a.accountList.confirmDelete):
		a.accountList, cmd = a.accountList.update(msg, a.client)

	case a.mode == modeEntryDetail && a.entryDetail.confirmReverse:
		a.entryDetail, cmd = a.entryDetail.update(msg, a.client)

	default:
		return nil, false
	}
	return cmd, true
}

// handleKey covers navigation shared by every list mode.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, keys.Tab):
		return a.switchTab(1), true
	case key.Matches(msg, keys.ShiftTab):
		return a.switchTab(-1), true

	case key.Matches(msg, keys.Escape):
		switch a.mode {
		case modeAccountDetail:
			a.mode = modeAccountList
		case modeEntryDetail:
			a.mode = modeJournalList
		}
		return nil, true

	case key.Matches(msg, keys.New) && a.mode == modeAccountList:
		a.mode = modeWizard
		a.wizard = newWizard()
		return nil, true

	case key.Matches(msg, keys.NewEntry) && (a.mode == modeAccountList || a.mode == modeJournalList):
		a.tabIndex = 1
		a.mode = modeJournalEntry
		a.journalEntry = newJournalEntry()
		return a.journalEntry.loadAccounts(a.client), true

	case key.Matches(msg, keys.Enter) && a.mode == modeAccountList:
		if code := a.accountList.selectedCode(); code != "" {
			a.mode = modeAccountDetail
			return a.accountDetail.init(a.client, code), true
		}
		return nil, true

	case key.Matches(msg, keys.Enter) && a.mode == modeJournalList:
		if id := a.journalList.selectedID(); id != 0 {
			a.mode = modeEntryDetail
			return a.entryDetail.init(a.client, id), true
		}
		return nil, true
	}
	return nil, false
}

func (a *App) delegate(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.mode {
	case modeAccountList:
		a.accountList, cmd = a.accountList.update(msg, a.client)
	case modeAccountDetail:
		a.accountDetail, cmd = a.accountDetail.update(msg)
	case modeJournalList:
		a.journalList, cmd = a.journalList.update(msg)
	case modeEntryDetail:
		a.entryDetail, cmd = a.entryDetail.update(msg, a.client)
	case modeReports:
		a.reports, cmd = a.reports.update(msg, a.client)
	}
	return cmd
}

// switchTab moves step tabs along (wrapping) and reloads the new tab.
func (a *App) switchTab(step int) tea.Cmd {
	a.tabIndex = (a.tabIndex + step + len(tabs)) % len(tabs)
	a.mode = tabs[a.tabIndex].mode
	a.statusMsg = ""

	switch a.mode {
	case modeAccountList:
		return a.accountList.init(a.client)
	case modeJournalList:
		return a.journalList.init(a.client)
	default:
		return a.reports.init(a.client)
	}
}

// refreshLedger reloads everything a new posting changes.
func (a *App) refreshLedger() tea.Cmd {
	return tea.Batch(a.journalList.init(a.client), a.reports.init(a.client))
}

func (a *App) View() string {
	bar := make([]string, 0, len(tabs)+1)
	inForm := a.mode == modeWizard || a.mode == modeJournalEntry
	for i, t := range tabs {
		if i == a.tabIndex && !inForm {
			bar = append(bar, activeTabStyle.Render(t.label))
		} else {
			bar = append(bar, inactiveTabStyle.Render(t.label))
		}
	}
	if a.business != "" {
		bar = append(bar, businessStyle.Render(a.business))
	}

	var content string
	switch a.mode {
	case modeAccountList:
		content = a.accountList.view()
	case modeAccountDetail:
		content = a.accountDetail.view()
	case modeJournalList:
		content = a.journalList.view()
	case modeEntryDetail:
		content = a.entryDetail.view()
	case modeReports:
		content = a.reports.view()
	case modeWizard:
		content = a.wizard.view()
	case modeJournalEntry:
		content = a.journalEntry.view()
	}

	var status string
	if a.statusMsg != "" {
		status = successStyle.Render(a.statusMsg)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, bar...),
		"",
		content,
		"",
		status,
		helpStyle.Render(a.help()),
	)
}

func (a *App) help() string {
	k := keys
	switch a.mode {
	case modeAccountList:
		return helpLine(k.Tab, k.Enter, k.New, k.Rename, k.Delete, k.Filter, k.NewEntry, k.Quit)
	case modeJournalList:
		return helpLine(k.Tab, k.Enter, k.NewEntry, k.Quit)
	case modeEntryDetail:
		return helpLine(k.Reverse, k.Escape, k.Quit)
	case modeReports:
		return helpLine(k.Tab, k.Left, k.Right, k.Period, k.Refresh, k.Quit)
	default:
		return helpLine(k.Escape, k.Quit)
	}
}
