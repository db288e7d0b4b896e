package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/ledger"
)

type wizardStep int

const (
	stepType wizardStep = iota
	stepCategory
	stepCode
	stepName
	stepDescription
	stepConfirm
)

const wizardSteps = int(stepConfirm) + 1

type accountCreatedMsg struct {
	account *ledger.Account
	err     error
}

type wizardModel struct {
	step        wizardStep
	typeCursor  int
	catCursor   int
	code        textinput.Model
	name        textinput.Model
	description textinput.Model

	err       error
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

// newInput is a blurred text field with a placeholder and length limit.
func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func newWizard() wizardModel {
	return wizardModel{
		step:        stepType,
		code:        newInput("e.g. 1300", 16),
		name:        newInput("e.g. Petty Cash", 60),
		description: newInput("optional", 120),
	}
}

func (m wizardModel) accountType() ledger.AccountType {
	return ledger.AllTypes[m.typeCursor]
}

func (m wizardModel) category() ledger.Category {
	cats := ledger.CategoriesFor(m.accountType())
	if m.catCursor >= len(cats) {
		return ""
	}
	return cats[m.catCursor]
}

func (m wizardModel) account() ledger.Account {
	return ledger.Account{
		Code:        strings.TrimSpace(m.code.Value()),
		Name:        strings.TrimSpace(m.name.Value()),
		Type:        m.accountType(),
		Category:    m.category(),
		Description: strings.TrimSpace(m.description.Value()),
	}
}

func (m wizardModel) update(msg tea.Msg, c *client.Client) (wizardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case accountCreatedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.step = stepConfirm
			return m, nil
		}
		m.done = true
		m.statusMsg = fmt.Sprintf("Account %s created", msg.account.Code)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			m.cancelled = true
			return m, nil
		}
		switch m.step {
		case stepType:
			m.typeCursor = moveCursor(msg, m.typeCursor, len(ledger.AllTypes))
			if key.Matches(msg, keys.Enter) {
				m.catCursor = 0
				m.advance()
			}
			return m, nil
		case stepCategory:
			m.catCursor = moveCursor(msg, m.catCursor, len(ledger.CategoriesFor(m.accountType())))
			if key.Matches(msg, keys.Enter) {
				m.advance()
			}
			return m, nil
		case stepConfirm:
			return m.updateConfirm(msg, c)
		default:
			return m.updateText(msg)
		}
	}
	return m, nil
}

// moveCursor applies up/down to a cursor over n choices.
func moveCursor(msg tea.KeyMsg, cursor, n int) int {
	switch {
	case key.Matches(msg, keys.Up):
		return max(cursor-1, 0)
	case key.Matches(msg, keys.Down):
		return min(cursor+1, n-1)
	}
	return cursor
}

// input is the text field owned by the current step, if any.
func (m *wizardModel) input() *textinput.Model {
	switch m.step {
	case stepCode:
		return &m.code
	case stepName:
		return &m.name
	case stepDescription:
		return &m.description
	}
	return nil
}

// check validates the current step's field before moving on.
func (m *wizardModel) check() error {
	switch m.step {
	case stepCode:
		code := strings.TrimSpace(m.code.Value())
		if code == "" || strings.ContainsAny(code, " \t/") {
			return fmt.Errorf("%w: code must be non-empty without spaces or slashes", ledger.ErrInvalidAccountCode)
		}
	case stepName:
		if strings.TrimSpace(m.name.Value()) == "" {
			return ledger.ErrAccountNameRequired
		}
	}
	return nil
}

// advance moves to the next step, shifting focus between text fields.
func (m *wizardModel) advance() {
	if in := m.input(); in != nil {
		in.Blur()
	}
	m.err = nil
	m.step++
	if in := m.input(); in != nil {
		in.Focus()
	}
}

func (m wizardModel) updateText(msg tea.KeyMsg) (wizardModel, tea.Cmd) {
	if key.Matches(msg, keys.Enter) {
		if err := m.check(); err != nil {
			m.err = err
			return m, nil
		}
		m.advance()
		return m, nil
	}
	var cmd tea.Cmd
	in := m.input()
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m wizardModel) updateConfirm(msg tea.KeyMsg, c *client.Client) (wizardModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		acct := m.account()
		return m, func() tea.Msg {
			created, err := c.CreateAccount(context.Background(), acct)
			return accountCreatedMsg{account: created, err: err}
		}
	case "n", "N":
		m.cancelled = true
	}
	return m, nil
}

// choices renders a vertical picker with the cursor row highlighted.
func choices(b *strings.Builder, items []string, cursor int) {
	for i, item := range items {
		if i == cursor {
			b.WriteString(selectedStyle.Render("  ▸ "+item) + "\n")
			continue
		}
		b.WriteString("    " + item + "\n")
	}
}

func (m *wizardModel) view() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Account"))
	b.WriteString("  " + dimStyle.Render(fmt.Sprintf("step %d/%d", int(m.step)+1, wizardSteps)))
	b.WriteString("\n\n")

	t, cat := m.accountType(), m.category()
	switch m.step {
	case stepType:
		b.WriteString("  Account type\n\n")
		items := make([]string, len(ledger.AllTypes))
		for i, at := range ledger.AllTypes {
			items[i] = fmt.Sprintf("%-10s %s-normal", at, strings.ToLower(ledger.NormalBalance(at)))
		}
		choices(&b, items, m.typeCursor)

	case stepCategory:
		b.WriteString(subtitleStyle.Render("  "+string(t)) + "\n")
		b.WriteString("  Category\n\n")
		var items []string
		for _, c := range ledger.CategoriesFor(t) {
			items = append(items, string(c))
		}
		choices(&b, items, m.catCursor)

	case stepCode:
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %s / %s", t, cat)) + "\n")
		b.WriteString("  Code  " + m.code.View() + "\n")
		b.WriteString(m.chartHints())

	case stepName:
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %s  %s / %s", m.code.Value(), t, cat)) + "\n")
		b.WriteString("  Name  " + m.name.View() + "\n")

	case stepDescription:
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("  %s  %s", m.code.Value(), m.name.Value())) + "\n")
		b.WriteString("  Description (optional)  " + m.description.View() + "\n")

	case stepConfirm:
		a := m.account()
		rows := [][2]string{
			{"Code", a.Code},
			{"Name", a.Name},
			{"Type", string(a.Type)},
			{"Category", string(a.Category)},
			{"Normal balance", ledger.NormalBalance(a.Type)},
			{"Description", a.Description},
		}
		lines := make([]string, len(rows))
		for i, r := range rows {
			lines[i] = labelStyle.Render(r[0]) + r[1]
		}
		b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
		b.WriteString(hintBoxStyle.Render("The type is fixed once an entry posts to this account."))
		b.WriteString("\n\n  Create it? (y/n)\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  "+m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("  esc cancels"))
	return b.String()
}

// chartHints lists default-chart codes of the chosen type matching what
// has been typed so far, so new codes can slot into the numbering.
func (m *wizardModel) chartHints() string {
	var b strings.Builder
	typed := m.code.Value()
	b.WriteString("\n" + dimStyle.Render("  Standard "+strings.ToLower(string(m.accountType()))+" codes") + "\n")
	shown := 0
	for _, a := range ledger.DefaultChart {
		if a.Type != m.accountType() || !strings.HasPrefix(a.Code, typed) {
			continue
		}
		line := fmt.Sprintf("    %-6s %-28s %s", a.Code, a.Name, a.Category)
		if a.Category != m.category() {
			line = dimStyle.Render(line)
		}
		b.WriteString(line + "\n")
		shown++
	}
	if shown == 0 {
		b.WriteString(dimStyle.Render("    none start with "+typed) + "\n")
	}
	return b.String()
}
