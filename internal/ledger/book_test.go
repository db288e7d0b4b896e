package ledger

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestBook opens an in-memory book with only Cash, Sales and Rent.
func newTestBook(t *testing.T) *Book {
	t.Helper()
	ctx := context.Background()
	b, err := Open(ctx, WithClock(fixedNow), WithChart(nil))
	require.NoError(t, err)

	for _, acct := range []Account{
		{Code: "1001", Name: "Cash", Type: TypeAsset, Category: CategoryCurrentAssets},
		{Code: "4001", Name: "Sales", Type: TypeIncome, Category: CategoryRevenue},
		{Code: "5001", Name: "Rent", Type: TypeExpense, Category: CategoryOperatingExpenses},
	} {
		_, err := b.RegisterAccount(ctx, acct)
		require.NoError(t, err)
	}
	return b
}

func sale(pence int64, on time.Time) JournalEntry {
	return JournalEntry{
		Date:        on,
		Description: "Cash sale",
		Lines: []Line{
			{AccountCode: "1001", Debit: pence},
			{AccountCode: "4001", Credit: pence},
		},
	}
}

func rent(pence int64, on time.Time) JournalEntry {
	return JournalEntry{
		Date:        on,
		Description: "Office rent",
		Lines: []Line{
			{AccountCode: "5001", Debit: pence},
			{AccountCode: "1001", Credit: pence},
		},
	}
}

func TestCashSaleScenario(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)

	id, err := b.PostEntry(ctx, sale(10000, date(2025, 3, 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	cash, err := b.BalanceOf("1001", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), cash)

	sales, err := b.BalanceOf("4001", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(-10000), sales)

	tb, err := b.TrialBalance()
	require.NoError(t, err)
	require.Len(t, tb.Lines, 2)
	assert.Equal(t, TrialBalanceLine{
		AccountCode: "1001", AccountName: "Cash", AccountType: TypeAsset,
		Debit: 10000, NormalBalance: "Debit",
	}, tb.Lines[0])
	assert.Equal(t, TrialBalanceLine{
		AccountCode: "4001", AccountName: "Sales", AccountType: TypeIncome,
		Credit: 10000, NormalBalance: "Credit",
	}, tb.Lines[1])
	assert.Equal(t, int64(10000), tb.TotalDebit)
	assert.Equal(t, tb.TotalDebit, tb.TotalCredit)
	assert.True(t, tb.Balanced)
}

func TestPostRejectsOneSidedEntry(t *testing.T) {
	b := newTestBook(t)
	_, err := b.PostEntry(context.Background(), JournalEntry{
		Lines: []Line{{AccountCode: "1001", Debit: 500}},
	})
	assert.ErrorIs(t, err, ErrUnbalancedEntry)
	assert.Equal(t, 0, b.journal.Len())
}

func TestPostRejectsEntryWhoseTotalsWrap(t *testing.T) {
	b := newTestBook(t)

	// 18446 lines of MaxAmount plus 744073709551716 is exactly 2^64 + 100,
	// which an int64 sum would wrap to 100.
	lines := make([]Line, 0, 18448)
	for range 18446 {
		lines = append(lines, Line{AccountCode: "1001", Debit: MaxAmount})
	}
	lines = append(lines,
		Line{AccountCode: "1001", Debit: 744_073_709_551_716},
		Line{AccountCode: "4001", Credit: 100},
	)

	_, err := b.PostEntry(context.Background(), JournalEntry{Date: date(2025, 3, 1), Lines: lines})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalancedEntry)
	assert.Equal(t, 0, b.journal.Len())

	tb, err := b.TrialBalance()
	require.NoError(t, err)
	assert.True(t, tb.Balanced)
	assert.Empty(t, tb.Lines)
}

func TestPostRejectsUnknownAccount(t *testing.T) {
	b := newTestBook(t)
	_, err := b.PostEntry(context.Background(), JournalEntry{
		Lines: []Line{
			{AccountCode: "9999", Debit: 500},
			{AccountCode: "4001", Credit: 500},
		},
	})
	assert.ErrorIs(t, err, ErrUnknownAccount)

	bal, err := b.BalanceOf("4001", time.Time{})
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestProfitAndLossScenario(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	_, err := b.PostEntry(ctx, sale(10000, date(2025, 3, 3)))
	require.NoError(t, err)
	_, err = b.PostEntry(ctx, rent(4000, date(2025, 3, 4)))
	require.NoError(t, err)

	p, err := b.Preset(PresetCurrentMonth)
	require.NoError(t, err)
	pl := b.ProfitAndLoss(p)
	assert.Equal(t, int64(10000), pl.TotalIncome)
	assert.Equal(t, int64(4000), pl.TotalExpense)
	assert.Equal(t, int64(6000), pl.NetProfit)
}

func TestReplayingAnEntryDoublesBalances(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	entry := sale(2500, date(2025, 3, 1))

	first, err := b.PostEntry(ctx, entry)
	require.NoError(t, err)
	second, err := b.PostEntry(ctx, entry)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	bal, err := b.BalanceOf("1001", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal)
}

func TestPostDefaultsDateAndStampsPostedAt(t *testing.T) {
	b := newTestBook(t)
	id, err := b.PostEntry(context.Background(), sale(100, time.Time{}))
	require.NoError(t, err)

	e, err := b.Entry(id)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 14), e.Date)
	assert.Equal(t, fixedNow(), e.PostedAt)
	assert.Equal(t, VATZero, e.VATRate)
}

func TestPostedEntriesAreNotShared(t *testing.T) {
	b := newTestBook(t)
	entry := sale(100, date(2025, 1, 1))
	id, err := b.PostEntry(context.Background(), entry)
	require.NoError(t, err)

	entry.Lines[0].Debit = 999
	got, err := b.Entry(id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.Lines[0].Debit)

	got.Lines[0].Debit = 777
	again, _ := b.Entry(id)
	assert.Equal(t, int64(100), again.Lines[0].Debit)
}

func TestBalanceAsOf(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	_, err := b.PostEntry(ctx, sale(1000, date(2025, 1, 10)))
	require.NoError(t, err)
	_, err = b.PostEntry(ctx, sale(500, date(2025, 2, 10)))
	require.NoError(t, err)

	bal, err := b.BalanceOf("1001", date(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)

	bal, err = b.BalanceOf("1001", date(2025, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), bal)

	_, err = b.BalanceOf("9999", time.Time{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUnusedAccountHasZeroBalance(t *testing.T) {
	b := newTestBook(t)
	bal, err := b.BalanceOf("5001", time.Time{})
	require.NoError(t, err)
	assert.Zero(t, bal)
	assert.Empty(t, slices.Collect(b.EntriesFor("5001")))
}

func TestEntriesForIsRestartableAndOrdered(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	for i := range 3 {
		_, err := b.PostEntry(ctx, sale(int64(100*(i+1)), date(2025, 1, i+1)))
		require.NoError(t, err)
	}
	_, err := b.PostEntry(ctx, rent(50, date(2025, 1, 5)))
	require.NoError(t, err)

	seq := b.EntriesFor("4001")
	var ids []int64
	for e := range seq {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Len(t, slices.Collect(seq), 3)
	assert.Len(t, slices.Collect(b.EntriesFor("1001")), 4)
}

func TestReverseEntry(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	id, err := b.PostEntry(ctx, sale(1200, date(2025, 3, 1)))
	require.NoError(t, err)

	rev, err := b.ReverseEntry(ctx, id, date(2025, 3, 2), "")
	require.NoError(t, err)

	e, err := b.Entry(rev)
	require.NoError(t, err)
	assert.Equal(t, "Reversal of entry 1: Cash sale", e.Description)
	bal, _ := b.BalanceOf("1001", time.Time{})
	assert.Zero(t, bal)

	_, err = b.ReverseEntry(ctx, 42, time.Time{}, "")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestChangeTypeAndDeleteBlockedAfterPosting(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	_, err := b.PostEntry(ctx, sale(100, date(2025, 1, 1)))
	require.NoError(t, err)

	assert.True(t, b.AccountInUse("1001"))
	_, err = b.ChangeAccountType(ctx, "1001", TypeExpense, CategoryOperatingExpenses)
	assert.ErrorIs(t, err, ErrAccountInUse)
	assert.ErrorIs(t, b.DeleteAccount(ctx, "4001"), ErrAccountInUse)
	require.NoError(t, b.DeleteAccount(ctx, "5001"))
}

func TestBalanceSheetBalancesWithCurrentEarnings(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	_, err := b.RegisterAccount(ctx, Account{Code: "3001", Name: "Share Capital", Type: TypeEquity, Category: CategoryShareCapital})
	require.NoError(t, err)

	_, err = b.PostEntry(ctx, JournalEntry{Date: date(2025, 1, 1), Description: "Capital", Lines: []Line{
		{AccountCode: "1001", Debit: 50000},
		{AccountCode: "3001", Credit: 50000},
	}})
	require.NoError(t, err)
	_, err = b.PostEntry(ctx, sale(10000, date(2025, 2, 1)))
	require.NoError(t, err)
	_, err = b.PostEntry(ctx, rent(4000, date(2025, 2, 2)))
	require.NoError(t, err)

	bs, err := b.BalanceSheet(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 3, 14), bs.AsOf)
	assert.Equal(t, int64(56000), bs.TotalAssets)
	assert.Equal(t, int64(6000), bs.CurrentEarnings)
	assert.Equal(t, bs.TotalAssets, bs.TotalLiabilitiesAndEquity)
	assert.True(t, bs.Balanced)
	require.Len(t, bs.Equity, 2)
	assert.Equal(t, CurrentEarningsCode, bs.Equity[1].AccountCode)

	early, err := b.BalanceSheet(date(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), early.TotalAssets)
	assert.Zero(t, early.CurrentEarnings)
}

func TestMismatchHaltsPosting(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	_, err := b.PostEntry(ctx, sale(100, date(2025, 1, 1)))
	require.NoError(t, err)

	// Simulate a corrupt log: an entry that bypassed validation.
	_, err = b.journal.Post(ctx, JournalEntry{Date: date(2025, 1, 2), Lines: []Line{{AccountCode: "1001", Debit: 1}}})
	require.NoError(t, err)

	_, err = b.BalanceSheet(time.Time{})
	require.ErrorIs(t, err, ErrBalanceSheetMismatch)

	_, err = b.PostEntry(ctx, sale(100, date(2025, 1, 3)))
	assert.ErrorIs(t, err, ErrLedgerHalted)
	assert.ErrorIs(t, err, ErrBalanceSheetMismatch)

	b.Resume()
	assert.NoError(t, b.Halted())
	_, err = b.PostEntry(ctx, sale(100, date(2025, 1, 3)))
	assert.NoError(t, err)
}

func TestSnapshotIsolatedFromLaterPosts(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	_, err := b.PostEntry(ctx, sale(100, date(2025, 1, 1)))
	require.NoError(t, err)

	snap := b.Snapshot()
	_, err = b.PostEntry(ctx, sale(100, date(2025, 1, 2)))
	require.NoError(t, err)

	assert.Len(t, snap.Entries, 1)
	assert.NotEqual(t, snap.Version, b.Version())
	tb, err := BuildTrialBalance(snap, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(100), tb.TotalDebit)
}

func TestConcurrentPostsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)

	const workers, perWorker = 8, 50
	ids := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := b.PostEntry(ctx, sale(1, date(2025, 1, 1)))
				if err == nil {
					ids <- id
				}
				_, _ = b.TrialBalance()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers*perWorker)
	for id := int64(1); id <= workers*perWorker; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}

	bal, _ := b.BalanceOf("1001", time.Time{})
	assert.Equal(t, int64(workers*perWorker), bal)
}

// randomEntry builds an entry over the test chart that may or may not balance.
func randomEntry(rng *rand.Rand) JournalEntry {
	accounts := []string{"1001", "4001", "5001", "9999"}
	n := 1 + rng.IntN(4)
	e := JournalEntry{Date: date(2025, time.Month(1+rng.IntN(12)), 1+rng.IntN(28))}
	for range n {
		amt := 1 + rng.Int64N(10000)
		l := Line{AccountCode: accounts[rng.IntN(len(accounts))]}
		if rng.IntN(2) == 0 {
			l.Debit = amt
		} else {
			l.Credit = amt
		}
		e.Lines = append(e.Lines, l)
	}
	// Balance about half of them.
	if rng.IntN(2) == 0 {
		diff := e.TotalDebit() - e.TotalCredit()
		switch {
		case diff > 0:
			e.Lines = append(e.Lines, Line{AccountCode: "1001", Credit: diff})
		case diff < 0:
			e.Lines = append(e.Lines, Line{AccountCode: "1001", Debit: -diff})
		}
	}
	return e
}

func TestRandomEntriesKeepLedgerConsistent(t *testing.T) {
	ctx := context.Background()
	b := newTestBook(t)
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		e := randomEntry(rng)
		balanced := e.TotalDebit() == e.TotalCredit()
		known := !e.Touches("9999")

		_, err := b.PostEntry(ctx, e)
		if balanced && known {
			require.NoError(t, err)
		} else {
			require.Error(t, err)
			assert.Equal(t, !balanced, errors.Is(err, ErrUnbalancedEntry))
			assert.Equal(t, !known, errors.Is(err, ErrUnknownAccount))
		}
	}

	tb, err := b.TrialBalance()
	require.NoError(t, err)
	assert.Equal(t, tb.TotalDebit, tb.TotalCredit)

	for _, code := range []string{"1001", "4001", "5001"} {
		var sum int64
		for e := range b.EntriesFor(code) {
			sum += e.AmountFor(code)
		}
		bal, err := b.BalanceOf(code, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, sum, bal, code)
	}

	_, err = b.BalanceSheet(date(2025, 12, 31))
	assert.NoError(t, err)
}

func TestOpenSeedsDefaultChart(t *testing.T) {
	b, err := Open(context.Background(), WithClock(fixedNow))
	require.NoError(t, err)
	assert.Len(t, slices.Collect(b.ListAccounts()), len(DefaultChart))

	vat, err := b.LookupAccount("2001")
	require.NoError(t, err)
	assert.Equal(t, TypeLiability, vat.Type)
	assert.Len(t, slices.Collect(b.AccountsByType(TypeAsset)), 5)
}

type memoryBackend struct {
	recordingWriter
	accounts []Account
	entries  []JournalEntry
}

func (m *memoryBackend) AppendEntry(_ context.Context, e JournalEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryBackend) LoadAccounts(context.Context) ([]Account, error) {
	return m.accounts, nil
}

func (m *memoryBackend) LoadEntries(context.Context) ([]JournalEntry, error) {
	return m.entries, nil
}

func TestOpenRestoresFromBackend(t *testing.T) {
	ctx := context.Background()
	be := &memoryBackend{}
	b, err := Open(ctx, WithClock(fixedNow), WithBackend(be))
	require.NoError(t, err)
	assert.Len(t, be.saved, len(DefaultChart))

	_, err = b.PostEntry(ctx, sale(300, date(2025, 2, 1)))
	require.NoError(t, err)
	require.Len(t, be.entries, 1)

	be.accounts = be.saved
	reopened, err := Open(ctx, WithClock(fixedNow), WithBackend(be))
	require.NoError(t, err)

	bal, err := reopened.BalanceOf("1001", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal)
	assert.True(t, reopened.AccountInUse("4001"))

	id, err := reopened.PostEntry(ctx, sale(1, date(2025, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}
