package ledger

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }

type recordingWriter struct {
	saved   []Account
	deleted []string
	fail    error
}

func (w *recordingWriter) SaveAccount(_ context.Context, acct Account) error {
	if w.fail != nil {
		return w.fail
	}
	w.saved = append(w.saved, acct)
	return nil
}

func (w *recordingWriter) DeleteAccount(_ context.Context, code string) error {
	if w.fail != nil {
		return w.fail
	}
	w.deleted = append(w.deleted, code)
	return nil
}

func cash() Account {
	return Account{Code: "1001", Name: "Cash", Type: TypeAsset, Category: CategoryCurrentAssets}
}

func TestRegisterAccount(t *testing.T) {
	ctx := context.Background()
	w := &recordingWriter{}
	r := NewRegistry(w, fixedNow)

	acct, err := r.Register(ctx, cash())
	require.NoError(t, err)
	assert.Equal(t, fixedNow(), acct.CreatedAt)
	assert.Len(t, w.saved, 1)

	got, err := r.Lookup("1001")
	require.NoError(t, err)
	assert.Equal(t, "Cash", got.Name)
	assert.True(t, r.Exists("1001"))
	assert.False(t, r.Exists("9999"))
}

func TestRegisterDuplicateCode(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil, fixedNow)
	_, err := r.Register(ctx, cash())
	require.NoError(t, err)

	dup := cash()
	dup.Name = "Petty Cash"
	_, err = r.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateAccountCode)

	got, _ := r.Lookup("1001")
	assert.Equal(t, "Cash", got.Name)
	assert.Equal(t, 1, r.Len())
}

func TestRegisterRejectsInvalidAccounts(t *testing.T) {
	tests := []struct {
		name string
		acct Account
		want error
	}{
		{"empty code", Account{Name: "X", Type: TypeAsset, Category: CategoryCurrentAssets}, ErrInvalidAccountCode},
		{"padded code", Account{Code: " 1001", Name: "X", Type: TypeAsset, Category: CategoryCurrentAssets}, ErrInvalidAccountCode},
		{"bad type", Account{Code: "1", Name: "X", Type: "Bogus", Category: CategoryCurrentAssets}, ErrInvalidAccountType},
		{"category of another type", Account{Code: "1", Name: "X", Type: TypeAsset, Category: CategoryRevenue}, ErrInvalidCategory},
		{"no name", Account{Code: "1", Type: TypeAsset, Category: CategoryCurrentAssets}, ErrAccountNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil, fixedNow)
			_, err := r.Register(context.Background(), tt.acct)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestRegisterWriterFailureLeavesRegistryUnchanged(t *testing.T) {
	boom := errors.New("disk full")
	r := NewRegistry(&recordingWriter{fail: boom}, fixedNow)
	_, err := r.Register(context.Background(), cash())
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.Exists("1001"))
	assert.Equal(t, uint64(0), r.Version())
}

func TestListPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil, fixedNow)
	for _, code := range []string{"5001", "1001", "4001"} {
		acct := DefaultChart[slices.IndexFunc(DefaultChart, func(a Account) bool { return a.Code == code })]
		_, err := r.Register(ctx, acct)
		require.NoError(t, err)
	}

	var got []string
	for a := range r.All() {
		got = append(got, a.Code)
	}
	assert.Equal(t, []string{"5001", "1001", "4001"}, got)

	var assets []string
	for a := range r.ByType(TypeAsset) {
		assets = append(assets, a.Code)
	}
	assert.Equal(t, []string{"1001"}, assets)
}

func TestRenameAndChangeCategory(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil, fixedNow)
	_, err := r.Register(ctx, cash())
	require.NoError(t, err)

	acct, err := r.Rename(ctx, "1001", "Cash in Hand")
	require.NoError(t, err)
	assert.Equal(t, "Cash in Hand", acct.Name)

	acct, err = r.Rename(ctx, "1001", "")
	require.NoError(t, err)
	assert.Equal(t, "", acct.Name)

	acct, err = r.ChangeCategory(ctx, "1001", CategoryFixedAssets)
	require.NoError(t, err)
	assert.Equal(t, CategoryFixedAssets, acct.Category)

	_, err = r.ChangeCategory(ctx, "1001", CategoryRevenue)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = r.Rename(ctx, "9999", "Nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestChangeTypeFrozenOnceUsed(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil, fixedNow)
	_, err := r.Register(ctx, cash())
	require.NoError(t, err)

	acct, err := r.ChangeType(ctx, "1001", TypeExpense, CategoryOperatingExpenses)
	require.NoError(t, err)
	assert.Equal(t, TypeExpense, acct.Type)

	r.markUsed(JournalEntry{Lines: []Line{{AccountCode: "1001", Debit: 1}}})
	_, err = r.ChangeType(ctx, "1001", TypeAsset, CategoryCurrentAssets)
	assert.ErrorIs(t, err, ErrAccountInUse)
}

func TestRemoveAccount(t *testing.T) {
	ctx := context.Background()
	w := &recordingWriter{}
	r := NewRegistry(w, fixedNow)
	_, err := r.Register(ctx, cash())
	require.NoError(t, err)
	sales := Account{Code: "4001", Name: "Sales", Type: TypeIncome, Category: CategoryRevenue}
	_, err = r.Register(ctx, sales)
	require.NoError(t, err)

	r.markUsed(JournalEntry{Lines: []Line{{AccountCode: "4001", Credit: 1}}})
	assert.ErrorIs(t, r.Remove(ctx, "4001"), ErrAccountInUse)

	require.NoError(t, r.Remove(ctx, "1001"))
	assert.Equal(t, []string{"1001"}, w.deleted)
	assert.False(t, r.Exists("1001"))
	assert.ErrorIs(t, r.Remove(ctx, "1001"), ErrAccountNotFound)
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType("liability")
	require.NoError(t, err)
	assert.Equal(t, TypeLiability, got)

	_, err = ParseAccountType("Revenue")
	assert.ErrorIs(t, err, ErrInvalidAccountType)
}

func TestDefaultChartIsValid(t *testing.T) {
	r := NewRegistry(nil, fixedNow)
	for _, acct := range DefaultChart {
		_, err := r.Register(context.Background(), acct)
		require.NoError(t, err, acct.Code)
	}
	for _, ref := range Reference() {
		assert.NotEmpty(t, ref.Categories, ref.Type)
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(nil, fixedNow)
	_, err := r.Register(ctx, cash())
	require.NoError(t, err)
	before := r.Version()

	name, bad := "Petty Cash", CategoryRevenue
	_, err = r.Apply(ctx, "1001", AccountChange{Name: &name, Category: &bad})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	acct, err := r.Lookup("1001")
	require.NoError(t, err)
	assert.Equal(t, "Cash", acct.Name)
	assert.Equal(t, CategoryCurrentAssets, acct.Category)
	assert.Equal(t, before, r.Version())

	expense := TypeExpense
	acct, err = r.Apply(ctx, "1001", AccountChange{Name: &name, Type: &expense, Category: ptr(CategoryOperatingExpenses)})
	require.NoError(t, err)
	assert.Equal(t, "Petty Cash", acct.Name)
	assert.Equal(t, TypeExpense, acct.Type)
	assert.Equal(t, CategoryOperatingExpenses, acct.Category)
	assert.Equal(t, before+1, r.Version())
}

func ptr[T any](v T) *T { return &v }
