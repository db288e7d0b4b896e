package ledger

import (
	"fmt"
	"time"
)

// Snapshot is an immutable view of the chart of accounts and a prefix of
// the journal. All reports are pure functions of a snapshot.
type Snapshot struct {
	Accounts []Account
	Entries  []JournalEntry
	// Version identifies the registry and journal state the snapshot was taken from.
	Version string
	TakenAt time.Time
}

// NewSnapshot builds a snapshot from explicit accounts and entries.
func NewSnapshot(accounts []Account, entries []JournalEntry) Snapshot {
	return Snapshot{Accounts: accounts, Entries: entries}
}

// balances returns the raw balance per account code over entries that pass keep.
func (s Snapshot) balances(keep func(JournalEntry) bool) map[string]int64 {
	out := make(map[string]int64, len(s.Accounts))
	for _, e := range s.Entries {
		if keep != nil && !keep(e) {
			continue
		}
		for _, l := range e.Lines {
			out[l.AccountCode] += l.Signed()
		}
	}
	return out
}

func onOrBefore(asOf time.Time) func(JournalEntry) bool {
	if asOf.IsZero() {
		return nil
	}
	cutoff := Day(asOf)
	return func(e JournalEntry) bool { return !e.Date.After(cutoff) }
}

// TrialBalanceLine is one account's net balance on its natural side.
type TrialBalanceLine struct {
	AccountCode   string      `json:"account_code"`
	AccountName   string      `json:"account_name"`
	AccountType   AccountType `json:"account_type"`
	Debit         int64       `json:"debit"`
	Credit        int64       `json:"credit"`
	NormalBalance string      `json:"normal_balance"`
	// Contra is set when the balance sits on the side opposite the type's normal balance.
	Contra bool `json:"contra,omitempty"`
}

type TrialBalance struct {
	AsOf        time.Time          `json:"as_of,omitzero"`
	Lines       []TrialBalanceLine `json:"lines"`
	TotalDebit  int64              `json:"total_debit"`
	TotalCredit int64              `json:"total_credit"`
	Balanced    bool               `json:"balanced"`
}

// BuildTrialBalance lists every account with a nonzero balance as of a date
// (zero asOf means all entries). Because every posted entry balances, the
// raw balances sum to zero and the two columns agree; a disagreement means
// the log is corrupt and is returned as ErrTrialBalanceMismatch alongside
// the report.
func BuildTrialBalance(s Snapshot, asOf time.Time) (*TrialBalance, error) {
	bal := s.balances(onOrBefore(asOf))
	tb := &TrialBalance{AsOf: asOf, Lines: []TrialBalanceLine{}}

	for _, a := range s.Accounts {
		b := bal[a.Code]
		if b == 0 {
			continue
		}
		line := TrialBalanceLine{
			AccountCode:   a.Code,
			AccountName:   a.Name,
			AccountType:   a.Type,
			NormalBalance: NormalBalance(a.Type),
		}
		if b > 0 {
			line.Debit = b
			tb.TotalDebit += b
		} else {
			line.Credit = -b
			tb.TotalCredit += -b
		}
		line.Contra = (b > 0) != DebitNormal(a.Type)
		tb.Lines = append(tb.Lines, line)
	}

	tb.Balanced = tb.TotalDebit == tb.TotalCredit
	if !tb.Balanced {
		return tb, fmt.Errorf("%w: debit %s, credit %s", ErrTrialBalanceMismatch,
			FormatAmount(tb.TotalDebit), FormatAmount(tb.TotalCredit))
	}
	return tb, nil
}

// ProfitAndLossLine is one Income or Expense account's activity in the period,
// positive in the account's natural direction.
type ProfitAndLossLine struct {
	AccountCode string      `json:"account_code"`
	AccountName string      `json:"account_name"`
	AccountType AccountType `json:"account_type"`
	Category    Category    `json:"category"`
	Amount      int64       `json:"amount"`
}

type ProfitAndLoss struct {
	Period       Period              `json:"period"`
	Income       []ProfitAndLossLine `json:"income"`
	Expenses     []ProfitAndLossLine `json:"expenses"`
	TotalIncome  int64               `json:"total_income"`
	TotalExpense int64               `json:"total_expense"`
	NetProfit    int64               `json:"net_profit"`
}

func BuildProfitAndLoss(s Snapshot, p Period) *ProfitAndLoss {
	bal := s.balances(func(e JournalEntry) bool { return p.Contains(e.Date) })
	pl := &ProfitAndLoss{Period: p, Income: []ProfitAndLossLine{}, Expenses: []ProfitAndLossLine{}}

	for _, a := range s.Accounts {
		b, ok := bal[a.Code]
		if !ok {
			continue
		}
		line := ProfitAndLossLine{AccountCode: a.Code, AccountName: a.Name, AccountType: a.Type, Category: a.Category}
		switch a.Type {
		case TypeIncome:
			line.Amount = -b
			pl.TotalIncome += line.Amount
			pl.Income = append(pl.Income, line)
		case TypeExpense:
			line.Amount = b
			pl.TotalExpense += line.Amount
			pl.Expenses = append(pl.Expenses, line)
		}
	}
	pl.NetProfit = pl.TotalIncome - pl.TotalExpense
	return pl
}

const (
	VATOutput = "output"
	VATInput  = "input"
)

// VATLine is the VAT inferred for one Income or Expense line of a
// VAT-rated entry. Net is VAT-exclusive and signed in the account's natural direction.
type VATLine struct {
	EntryID     int64     `json:"entry_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	AccountCode string    `json:"account_code"`
	Kind        string    `json:"kind"`
	Rate        VATRate   `json:"rate"`
	Net         int64     `json:"net"`
	VAT         int64     `json:"vat"`
}

type VATSummary struct {
	Period        Period    `json:"period"`
	Lines         []VATLine `json:"lines"`
	VATPayable    int64     `json:"vat_payable"`
	VATReceivable int64     `json:"vat_receivable"`
	NetVATDue     int64     `json:"net_vat_due"`
}

// BuildVATSummary infers output VAT from Income lines and input VAT from
// Expense lines of entries carrying a nonzero rate. VAT is not posted as
// its own line, so this is an approximation driven by account type.
func BuildVATSummary(s Snapshot, p Period) *VATSummary {
	types := make(map[string]AccountType, len(s.Accounts))
	for _, a := range s.Accounts {
		types[a.Code] = a.Type
	}

	vs := &VATSummary{Period: p, Lines: []VATLine{}}
	for _, e := range s.Entries {
		rate := e.VATRate.Percent()
		if rate == 0 || !p.Contains(e.Date) {
			continue
		}
		for _, l := range e.Lines {
			line := VATLine{
				EntryID:     e.ID,
				Date:        e.Date,
				Description: e.Description,
				AccountCode: l.AccountCode,
				Rate:        e.VATRate,
			}
			switch types[l.AccountCode] {
			case TypeIncome:
				line.Kind = VATOutput
				line.Net = -l.Signed()
				line.VAT = percentOf(line.Net, rate)
				vs.VATPayable += line.VAT
			case TypeExpense:
				line.Kind = VATInput
				line.Net = l.Signed()
				line.VAT = percentOf(line.Net, rate)
				vs.VATReceivable += line.VAT
			default:
				continue
			}
			vs.Lines = append(vs.Lines, line)
		}
	}
	vs.NetVATDue = vs.VATPayable - vs.VATReceivable
	return vs
}

// CurrentEarningsCode labels the computed equity line carrying unclosed
// Income and Expense balances on the balance sheet.
const CurrentEarningsCode = "P&L"

// BalanceSheetLine shows a balance positive in the account's natural direction.
type BalanceSheetLine struct {
	AccountCode string   `json:"account_code"`
	AccountName string   `json:"account_name"`
	Category    Category `json:"category"`
	Balance     int64    `json:"balance"`
}

type BalanceSheet struct {
	AsOf                      time.Time          `json:"as_of"`
	Assets                    []BalanceSheetLine `json:"assets"`
	Liabilities               []BalanceSheetLine `json:"liabilities"`
	Equity                    []BalanceSheetLine `json:"equity"`
	TotalAssets               int64              `json:"total_assets"`
	TotalLiabilities          int64              `json:"total_liabilities"`
	TotalEquity               int64              `json:"total_equity"`
	CurrentEarnings           int64              `json:"current_earnings"`
	TotalLiabilitiesAndEquity int64              `json:"total_liabilities_and_equity"`
	Balanced                  bool               `json:"balanced"`
}

// BuildBalanceSheet reports Asset, Liability and Equity balances as of a
// date. Income and Expense balances not yet closed to Retained Earnings
// appear as a single Current Period Earnings equity line. A mismatch
// between the two totals is returned as ErrBalanceSheetMismatch together
// with the report, never silently displayed.
func BuildBalanceSheet(s Snapshot, asOf time.Time) (*BalanceSheet, error) {
	bal := s.balances(onOrBefore(asOf))
	bs := &BalanceSheet{
		AsOf:        asOf,
		Assets:      []BalanceSheetLine{},
		Liabilities: []BalanceSheetLine{},
		Equity:      []BalanceSheetLine{},
	}

	var earnings int64
	for _, a := range s.Accounts {
		b, ok := bal[a.Code]
		if !ok {
			continue
		}
		line := BalanceSheetLine{AccountCode: a.Code, AccountName: a.Name, Category: a.Category}
		switch a.Type {
		case TypeAsset:
			line.Balance = b
			bs.TotalAssets += b
			bs.Assets = append(bs.Assets, line)
		case TypeLiability:
			line.Balance = -b
			bs.TotalLiabilities += -b
			bs.Liabilities = append(bs.Liabilities, line)
		case TypeEquity:
			line.Balance = -b
			bs.TotalEquity += -b
			bs.Equity = append(bs.Equity, line)
		case TypeIncome, TypeExpense:
			earnings += -b
		}
	}
	if earnings != 0 {
		bs.Equity = append(bs.Equity, BalanceSheetLine{
			AccountCode: CurrentEarningsCode,
			AccountName: "Current Period Earnings",
			Category:    CategoryRetainedEarnings,
			Balance:     earnings,
		})
		bs.TotalEquity += earnings
	}
	bs.CurrentEarnings = earnings
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities + bs.TotalEquity

	bs.Balanced = bs.TotalAssets == bs.TotalLiabilitiesAndEquity
	if !bs.Balanced {
		return bs, fmt.Errorf("%w: assets %s, liabilities and equity %s", ErrBalanceSheetMismatch,
			FormatAmount(bs.TotalAssets), FormatAmount(bs.TotalLiabilitiesAndEquity))
	}
	return bs, nil
}

// Summary holds the dashboard headline figures for a period.
type Summary struct {
	Period        Period `json:"period"`
	TotalIncome   int64  `json:"total_income"`
	TotalExpenses int64  `json:"total_expenses"`
	NetProfit     int64  `json:"net_profit"`
	VATPayable    int64  `json:"vat_payable"`
	EntryCount    int    `json:"entry_count"`
}

func BuildSummary(s Snapshot, p Period) *Summary {
	pl := BuildProfitAndLoss(s, p)
	vat := BuildVATSummary(s, p)
	sum := &Summary{
		Period:        p,
		TotalIncome:   pl.TotalIncome,
		TotalExpenses: pl.TotalExpense,
		NetProfit:     pl.NetProfit,
		VATPayable:    vat.NetVATDue,
	}
	for _, e := range s.Entries {
		if p.Contains(e.Date) {
			sum.EntryCount++
		}
	}
	return sum
}
