package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/server"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	now := func() time.Time { return time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC) }
	book, err := ledger.Open(context.Background(), ledger.WithClock(now))
	require.NoError(t, err)
	srv := server.New(book, "", server.Options{Quiet: true})
	t.Cleanup(func() { srv.Close() })
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestPingAndHealth(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)
	require.NoError(t, c.Ping(ctx))

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Zero(t, h.Entries)
}

func TestAccountsRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	created, err := c.CreateAccount(ctx, ledger.Account{
		Code: "1800", Name: "Deposits Paid", Type: ledger.TypeAsset, Category: ledger.CategoryCurrentAssets,
	})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = c.CreateAccount(ctx, ledger.Account{
		Code: "1800", Name: "Dup", Type: ledger.TypeAsset, Category: ledger.CategoryCurrentAssets,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error (409)")
	assert.Equal(t, http.StatusConflict, StatusCode(err))

	renamed, err := c.RenameAccount(ctx, "1800", "Rental Deposits")
	require.NoError(t, err)
	assert.Equal(t, "Rental Deposits", renamed.Name)

	cat := ledger.CategoryFixedAssets
	updated, err := c.UpdateAccount(ctx, "1800", AccountUpdate{Category: &cat})
	require.NoError(t, err)
	assert.Equal(t, cat, updated.Category)

	assets, err := c.ListAccounts(ctx, "asset")
	require.NoError(t, err)
	assert.Equal(t, "1800", assets[len(assets)-1].Code)

	require.NoError(t, c.DeleteAccount(ctx, "1800"))
	_, err = c.GetAccount(ctx, "1800")
	assert.ErrorContains(t, err, "server error (404)")
}

func TestEntriesAndReports(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	posted, err := c.PostEntry(ctx, NewEntry{
		Date:        "2025-06-02",
		Description: "Consulting invoice paid",
		VATRate:     "20",
		Lines: []Line{
			{AccountCode: "1100", Debit: "1,500.00"},
			{AccountCode: "4002", Credit: "1500"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), posted.Lines[0].Debit)

	_, err = c.PostEntry(ctx, NewEntry{Lines: []Line{{AccountCode: "1100", Debit: "5"}}})
	assert.ErrorContains(t, err, "server error (400)")

	got, err := c.GetEntry(ctx, posted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Consulting invoice paid", got.Description)

	bal, err := c.GetAccountBalance(ctx, "4002", "")
	require.NoError(t, err)
	assert.Equal(t, int64(-150000), bal.Balance)
	assert.Equal(t, "£1500.00", bal.Formatted)

	entries, err := c.ListAccountEntries(ctx, "1100")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	pl, err := c.ProfitAndLoss(ctx, Period{Preset: ledger.PresetCurrentQuarter})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), pl.NetProfit)

	vat, err := c.VATSummary(ctx, Period{From: "2025-06-01", To: "2025-06-30"})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), vat.VATPayable)

	tb, err := c.TrialBalance(ctx, "2025-06-30")
	require.NoError(t, err)
	assert.True(t, tb.Balanced)

	bs, err := c.BalanceSheet(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(150000), bs.TotalAssets)
	assert.True(t, bs.Balanced)

	sum, err := c.Summary(ctx, Period{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.EntryCount)

	rev, err := c.ReverseEntry(ctx, posted.ID, "", "")
	require.NoError(t, err)
	list, err := c.ListEntries(ctx, EntryQuery{Newest: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rev.ID, list[0].ID)

	chart, err := c.GetChart(ctx)
	require.NoError(t, err)
	assert.Len(t, chart, len(ledger.AllTypes))

	require.NoError(t, c.Resume(ctx))
}

func TestStatusCodeWithoutResponse(t *testing.T) {
	assert.Zero(t, StatusCode(errors.New("dial tcp: connection refused")))
	assert.Zero(t, StatusCode(nil))

	c := New("http://127.0.0.1:1")
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Zero(t, StatusCode(err))
}
