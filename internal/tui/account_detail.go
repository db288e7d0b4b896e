package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type accountDetailLoadedMsg struct {
	account *client.AccountDetail
	balance *client.BalanceResponse
	entries []ledger.JournalEntry
	err     error
}

// accountDetailModel is one account's properties and its ledger card.
type accountDetailModel struct {
	account *client.AccountDetail
	balance *client.BalanceResponse
	entries []ledger.JournalEntry
	loading bool
	err     error
	width   int
}

func (m *accountDetailModel) init(c *client.Client, code string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		ctx := context.Background()
		var msg accountDetailLoadedMsg
		if msg.account, msg.err = c.GetAccount(ctx, code); msg.err != nil {
			return msg
		}
		if msg.balance, msg.err = c.GetAccountBalance(ctx, code, ""); msg.err != nil {
			return msg
		}
		msg.entries, msg.err = c.ListAccountEntries(ctx, code)
		return msg
	}
}

func (m accountDetailModel) update(msg tea.Msg) (accountDetailModel, tea.Cmd) {
	if loaded, ok := msg.(accountDetailLoadedMsg); ok {
		m.loading = false
		m.account, m.balance, m.entries, m.err = loaded.account, loaded.balance, loaded.entries, loaded.err
	}
	return m, nil
}

// properties lists the account's fields as label/value pairs.
func (m *accountDetailModel) properties() [][2]string {
	a := m.account
	props := [][2]string{
		{"Type", string(a.Type)},
		{"Category", string(a.Category)},
		{"Normal side", ledger.NormalBalance(a.Type)},
	}
	if a.Description != "" {
		props = append(props, [2]string{"Description", a.Description})
	}
	if m.balance != nil {
		props = append(props, [2]string{"Balance", m.balance.Formatted})
	}
	if a.InUse {
		props = append(props, [2]string{"In use", "yes (type is fixed)"})
	} else {
		props = append(props, [2]string{"In use", "no (type can still change)"})
	}
	return props
}

// ledgerCard renders every posting to the account with a running balance
// on the account's normal side.
func (m *accountDetailModel) ledgerCard() string {
	code := m.account.Code
	sign := int64(1)
	if !ledger.DebitNormal(m.account.Type) {
		sign = -1
	}

	var b strings.Builder
	row := "  %-6v %-10s %-28s %12s %12s %12s"
	b.WriteString(headerStyle.Render(fmt.Sprintf(row, "ENTRY", "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")))
	b.WriteString("\n")

	var running int64
	for _, e := range m.entries {
		net := e.AmountFor(code)
		running += net * sign

		dr, cr, style := ledger.FormatAmount(net), "", debitStyle
		if net < 0 {
			dr, cr, style = "", ledger.FormatAmount(-net), creditStyle
		}
		line := fmt.Sprintf(row, e.ID, e.Date.Format("2006-01-02"), clip(e.Description, 28), dr, cr, formatAmt(running))
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}

func (m *accountDetailModel) view() string {
	switch {
	case m.loading:
		return "Loading account..."
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	case m.account == nil:
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s", m.account.Code, m.account.Name)))
	b.WriteString("\n")
	renderFields(&b, m.properties())
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(dimStyle.Render("  Nothing posted to this account yet."))
	} else {
		b.WriteString(m.ledgerCard())
	}
	return b.String()
}
