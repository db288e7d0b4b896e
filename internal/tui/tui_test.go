package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestWizardBuildsAccount(t *testing.T) {
	m := newWizard()
	for _, msg := range []tea.Msg{
		down,  // Liability
		enter, // type
		down,  // Long-term Liabilities
		enter, // category
		typed("2600"), enter,
		typed("Director Loan"), enter,
		enter, // no description
	} {
		m, _ = m.update(msg, nil)
	}

	require.Equal(t, stepConfirm, m.step)
	assert.Equal(t, ledger.Account{
		Code:     "2600",
		Name:     "Director Loan",
		Type:     ledger.TypeLiability,
		Category: ledger.CategoryLongTermLiabilities,
	}, m.account())

	acct := m.account()
	assert.NoError(t, acct.Validate())
}

func TestWizardRequiresName(t *testing.T) {
	m := newWizard()
	for _, msg := range []tea.Msg{enter, enter, typed("1300"), enter, enter} {
		m, _ = m.update(msg, nil)
	}
	assert.Equal(t, stepName, m.step)
	assert.ErrorIs(t, m.err, ledger.ErrAccountNameRequired)

	m, _ = m.update(esc, nil)
	assert.True(t, m.cancelled)
}

func TestJournalEntryFormBalancesLines(t *testing.T) {
	m := newJournalEntry()
	m.accounts = []ledger.Account{
		{Code: "1001", Name: "Cash", Type: ledger.TypeAsset},
		{Code: "4001", Name: "Sales Revenue", Type: ledger.TypeIncome},
	}

	for _, msg := range []tea.Msg{
		typed("Cash sale"), enter,
		typed("2025-03-01"), enter,
		down, down, enter, // 20%
		typed("1001"), enter,
		enter, // debit suggested for the first line
		typed("120"), enter,
	} {
		m, _ = m.update(msg, nil)
	}
	require.Equal(t, jeStepLineMore, m.step)
	assert.Equal(t, int64(12000), m.difference())
	assert.Equal(t, 0, m.moreCursor)

	m, _ = m.update(enter, nil) // add another line
	m, _ = m.update(typed("4001"), nil)
	m, _ = m.update(enter, nil)
	assert.False(t, m.isDebit, "second line should default to credit")
	m, _ = m.update(enter, nil)
	assert.Equal(t, "120.00", m.amountInput.Value())
	m, _ = m.update(enter, nil)

	require.True(t, m.isBalanced())
	assert.Equal(t, 1, m.moreCursor)
	m, _ = m.update(enter, nil)
	require.Equal(t, jeStepConfirm, m.step)

	assert.Equal(t, client.NewEntry{
		Date:        "2025-03-01",
		Description: "Cash sale",
		VATRate:     "20",
		Lines: []client.Line{
			{AccountCode: "1001", Debit: "120.00"},
			{AccountCode: "4001", Credit: "120.00"},
		},
	}, m.request())
}

func TestJournalEntryRejectsUnknownAccount(t *testing.T) {
	m := newJournalEntry()
	m.accounts = []ledger.Account{{Code: "1001", Name: "Cash"}}
	for _, msg := range []tea.Msg{typed("x"), enter, enter, enter, typed("9999"), enter} {
		m, _ = m.update(msg, nil)
	}
	assert.Equal(t, jeStepLineAccount, m.step)
	assert.EqualError(t, m.err, `unknown account "9999"`)
}

func TestAccountFilterCycles(t *testing.T) {
	var m accountListModel
	var seen []ledger.AccountType
	for range len(ledger.AllTypes) + 1 {
		m.nextFilter()
		seen = append(seen, m.filter)
	}
	assert.Equal(t, append(append([]ledger.AccountType{}, ledger.AllTypes...), ""), seen)
}

func TestReportsCyclePresetsOnlyForPeriodReports(t *testing.T) {
	var m reportsModel
	p := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")}

	m, _ = m.update(p, nil)
	assert.Equal(t, 0, m.preset, "balance sheet has no period")

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyRight}, nil)
	assert.NotNil(t, cmd)
	assert.Equal(t, reportProfitAndLoss, m.current())

	m, _ = m.update(p, nil)
	assert.Equal(t, ledger.PresetCurrentQuarter, reportPresets[m.preset])

	// A late response for another report is ignored.
	m, _ = m.update(reportLoadedMsg{kind: reportBalanceSheet, bs: &ledger.BalanceSheet{}}, nil)
	assert.True(t, m.loading)
	m, _ = m.update(reportLoadedMsg{kind: reportProfitAndLoss, pl: &ledger.ProfitAndLoss{}}, nil)
	assert.False(t, m.loading)
	assert.Contains(t, m.view(), "PROFIT AND LOSS")
}

func TestAppTabs(t *testing.T) {
	app := NewApp(nil, "Acme Ltd")
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Contains(t, app.View(), "Acme Ltd")

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeJournalList, app.mode)
	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, modeReports, app.mode)
	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, modeJournalList, app.mode)

	app.Update(typed("t"))
	assert.Equal(t, modeJournalEntry, app.mode)
	app.Update(esc)
	assert.Equal(t, modeJournalList, app.mode)
	assert.Equal(t, "Journal entry cancelled", app.statusMsg)
}

func TestVisibleRangeFollowsCursor(t *testing.T) {
	start, end := visibleRange(0, 30, 10)
	assert.Equal(t, [2]int{0, 10}, [2]int{start, end})

	start, end = visibleRange(14, 30, 10)
	assert.Equal(t, [2]int{5, 15}, [2]int{start, end})

	start, end = visibleRange(2, 3, 10)
	assert.Equal(t, [2]int{0, 3}, [2]int{start, end})
}

func TestAccountCardRunsOnNormalSide(t *testing.T) {
	m := accountDetailModel{
		account: &client.AccountDetail{Account: ledger.Account{Code: "4001", Name: "Sales Revenue", Type: ledger.TypeIncome}},
		entries: []ledger.JournalEntry{
			{ID: 1, Description: "Sale", Lines: []ledger.Line{{AccountCode: "1001", Debit: 10000}, {AccountCode: "4001", Credit: 10000}}},
			{ID: 2, Description: "Refund", Lines: []ledger.Line{{AccountCode: "4001", Debit: 2500}, {AccountCode: "1001", Credit: 2500}}},
		},
	}
	card := m.ledgerCard()
	assert.Contains(t, card, "100.00")
	assert.Contains(t, card, "75.00")
	assert.NotContains(t, card, "(75.00)")
	assert.Contains(t, m.view(), "In use:")
}
