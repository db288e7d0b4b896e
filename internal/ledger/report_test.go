package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportAccounts = []Account{
	{Code: "1001", Name: "Cash", Type: TypeAsset, Category: CategoryCurrentAssets},
	{Code: "2001", Name: "VAT Payable", Type: TypeLiability, Category: CategoryCurrentLiabilities},
	{Code: "3001", Name: "Share Capital", Type: TypeEquity, Category: CategoryShareCapital},
	{Code: "4001", Name: "Sales", Type: TypeIncome, Category: CategoryRevenue},
	{Code: "5001", Name: "Rent", Type: TypeExpense, Category: CategoryOperatingExpenses},
}

func entry(id int64, on time.Time, rate VATRate, lines ...Line) JournalEntry {
	return JournalEntry{ID: id, Date: on, Description: "test", VATRate: rate, Lines: lines}
}

func TestTrialBalanceFlagsContraBalances(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 1, 1), VATZero,
			Line{AccountCode: "5001", Debit: 300},
			Line{AccountCode: "1001", Credit: 300}),
	})
	tb, err := BuildTrialBalance(snap, time.Time{})
	require.NoError(t, err)
	require.Len(t, tb.Lines, 2)

	assert.Equal(t, "1001", tb.Lines[0].AccountCode)
	assert.Equal(t, int64(300), tb.Lines[0].Credit)
	assert.Zero(t, tb.Lines[0].Debit)
	assert.True(t, tb.Lines[0].Contra)

	assert.Equal(t, "5001", tb.Lines[1].AccountCode)
	assert.False(t, tb.Lines[1].Contra)
}

func TestTrialBalanceAsOfExcludesLaterEntries(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 1, 1), VATZero,
			Line{AccountCode: "1001", Debit: 100}, Line{AccountCode: "4001", Credit: 100}),
		entry(2, date(2025, 2, 1), VATZero,
			Line{AccountCode: "1001", Debit: 50}, Line{AccountCode: "4001", Credit: 50}),
	})
	tb, err := BuildTrialBalance(snap, date(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(100), tb.TotalDebit)
}

func TestTrialBalanceDetectsCorruptLog(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 1, 1), VATZero, Line{AccountCode: "1001", Debit: 100}),
	})
	tb, err := BuildTrialBalance(snap, time.Time{})
	assert.ErrorIs(t, err, ErrTrialBalanceMismatch)
	require.NotNil(t, tb)
	assert.False(t, tb.Balanced)
}

func TestProfitAndLossRestrictsToPeriod(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2024, 12, 31), VATZero,
			Line{AccountCode: "1001", Debit: 999}, Line{AccountCode: "4001", Credit: 999}),
		entry(2, date(2025, 1, 1), VATZero,
			Line{AccountCode: "1001", Debit: 10000}, Line{AccountCode: "4001", Credit: 10000}),
		entry(3, date(2025, 1, 31), VATZero,
			Line{AccountCode: "5001", Debit: 4000}, Line{AccountCode: "1001", Credit: 4000}),
		entry(4, date(2025, 2, 1), VATZero,
			Line{AccountCode: "5001", Debit: 1}, Line{AccountCode: "1001", Credit: 1}),
	})
	p, err := NewPeriod(date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	pl := BuildProfitAndLoss(snap, p)
	assert.Equal(t, int64(10000), pl.TotalIncome)
	assert.Equal(t, int64(4000), pl.TotalExpense)
	assert.Equal(t, int64(6000), pl.NetProfit)
	require.Len(t, pl.Income, 1)
	require.Len(t, pl.Expenses, 1)
	assert.Equal(t, CategoryOperatingExpenses, pl.Expenses[0].Category)
}

func TestVATSummary(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 1, 5), VATStandard,
			Line{AccountCode: "1001", Debit: 10000}, Line{AccountCode: "4001", Credit: 10000}),
		entry(2, date(2025, 1, 6), VATReduced,
			Line{AccountCode: "5001", Debit: 2010}, Line{AccountCode: "1001", Credit: 2010}),
		entry(3, date(2025, 1, 7), VATExempt,
			Line{AccountCode: "1001", Debit: 500}, Line{AccountCode: "4001", Credit: 500}),
		entry(4, date(2025, 1, 8), VATZero,
			Line{AccountCode: "5001", Debit: 700}, Line{AccountCode: "1001", Credit: 700}),
	})
	p, err := NewPeriod(date(2025, 1, 1), date(2025, 3, 31))
	require.NoError(t, err)

	vs := BuildVATSummary(snap, p)
	require.Len(t, vs.Lines, 2)
	assert.Equal(t, VATOutput, vs.Lines[0].Kind)
	assert.Equal(t, int64(10000), vs.Lines[0].Net)
	assert.Equal(t, int64(2000), vs.VATPayable)
	assert.Equal(t, VATInput, vs.Lines[1].Kind)
	// 5% of 20.10 is 1.005, rounded half away from zero.
	assert.Equal(t, int64(101), vs.VATReceivable)
	assert.Equal(t, int64(1899), vs.NetVATDue)
}

func TestVATSummaryIgnoresEntriesOutsidePeriod(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 4, 1), VATStandard,
			Line{AccountCode: "1001", Debit: 10000}, Line{AccountCode: "4001", Credit: 10000}),
	})
	p, _ := NewPeriod(date(2025, 1, 1), date(2025, 3, 31))
	vs := BuildVATSummary(snap, p)
	assert.Empty(t, vs.Lines)
	assert.Zero(t, vs.NetVATDue)
}

func TestBalanceSheetIncludesLiabilities(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 1, 1), VATZero,
			Line{AccountCode: "1001", Debit: 12000},
			Line{AccountCode: "4001", Credit: 10000},
			Line{AccountCode: "2001", Credit: 2000}),
	})
	bs, err := BuildBalanceSheet(snap, date(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(12000), bs.TotalAssets)
	assert.Equal(t, int64(2000), bs.TotalLiabilities)
	assert.Equal(t, int64(10000), bs.TotalEquity)
	assert.Equal(t, int64(12000), bs.TotalLiabilitiesAndEquity)
}

func TestSummary(t *testing.T) {
	snap := NewSnapshot(reportAccounts, []JournalEntry{
		entry(1, date(2025, 1, 5), VATStandard,
			Line{AccountCode: "1001", Debit: 10000}, Line{AccountCode: "4001", Credit: 10000}),
		entry(2, date(2025, 1, 6), VATZero,
			Line{AccountCode: "5001", Debit: 4000}, Line{AccountCode: "1001", Credit: 4000}),
	})
	p, _ := NewPeriod(date(2025, 1, 1), date(2025, 1, 31))
	sum := BuildSummary(snap, p)
	assert.Equal(t, &Summary{
		Period:        p,
		TotalIncome:   10000,
		TotalExpenses: 4000,
		NetProfit:     6000,
		VATPayable:    2000,
		EntryCount:    2,
	}, sum)
}
