package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"
)

// Backend is a durable home for the chart of accounts and the append-only
// journal. The sqlite store implements it.
type Backend interface {
	AccountWriter
	Appender
	LoadAccounts(ctx context.Context) ([]Account, error)
	LoadEntries(ctx context.Context) ([]JournalEntry, error)
}

// Book is the ledger context: it owns one Registry and one Journal and is
// the only way to mutate either. Mutations are serialized; reads are not.
type Book struct {
	writeMu  sync.Mutex
	registry *Registry
	journal  *Journal
	now      func() time.Time

	haltMu sync.RWMutex
	halted error
}

type Option func(*bookConfig)

type bookConfig struct {
	now     func() time.Time
	backend Backend
	chart   []Account
}

// WithClock sets the wall clock used for posting timestamps and default
// report dates.
func WithClock(now func() time.Time) Option {
	return func(c *bookConfig) { c.now = now }
}

// WithBackend makes every registry change and posting durable.
func WithBackend(b Backend) Option {
	return func(c *bookConfig) { c.backend = b }
}

// WithChart replaces the default seed chart. The seed is only applied when
// the backend holds no accounts yet.
func WithChart(chart []Account) Option {
	return func(c *bookConfig) { c.chart = chart }
}

// Open builds a Book. With a backend, existing accounts and entries are
// restored; an empty chart of accounts is seeded.
func Open(ctx context.Context, opts ...Option) (*Book, error) {
	cfg := bookConfig{now: time.Now, chart: DefaultChart}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		writer   AccountWriter
		appender Appender
		accounts []Account
		entries  []JournalEntry
	)
	if cfg.backend != nil {
		writer, appender = cfg.backend, cfg.backend
		var err error
		if accounts, err = cfg.backend.LoadAccounts(ctx); err != nil {
			return nil, fmt.Errorf("load accounts: %w", err)
		}
		if entries, err = cfg.backend.LoadEntries(ctx); err != nil {
			return nil, fmt.Errorf("load entries: %w", err)
		}
	}

	b := &Book{
		registry: NewRegistry(writer, cfg.now),
		journal:  NewJournal(appender),
		now:      cfg.now,
	}

	if len(accounts) == 0 {
		for _, acct := range cfg.chart {
			if _, err := b.registry.Register(ctx, acct); err != nil {
				return nil, fmt.Errorf("seed chart: %w", err)
			}
		}
	} else {
		// Restored accounts were validated when first registered; load
		// them without writing back.
		for _, acct := range accounts {
			b.registry.order = append(b.registry.order, acct.Code)
			b.registry.byCode[acct.Code] = acct
		}
		b.registry.version++
	}

	if err := b.journal.restore(entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		b.registry.markUsed(e)
	}
	return b, nil
}

// Today is the current calendar date according to the Book's clock.
func (b *Book) Today() time.Time {
	return Day(b.now())
}

func (b *Book) RegisterAccount(ctx context.Context, acct Account) (Account, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.registry.Register(ctx, acct)
}

func (b *Book) RenameAccount(ctx context.Context, code, name string) (Account, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.registry.Rename(ctx, code, name)
}

func (b *Book) ChangeAccountCategory(ctx context.Context, code string, category Category) (Account, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.registry.ChangeCategory(ctx, code, category)
}

func (b *Book) ChangeAccountType(ctx context.Context, code string, t AccountType, category Category) (Account, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.registry.ChangeType(ctx, code, t, category)
}

// UpdateAccount applies several account edits as one change.
func (b *Book) UpdateAccount(ctx context.Context, code string, ch AccountChange) (Account, error) {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.registry.Apply(ctx, code, ch)
}

func (b *Book) DeleteAccount(ctx context.Context, code string) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.registry.Remove(ctx, code)
}

func (b *Book) LookupAccount(code string) (Account, error) {
	return b.registry.Lookup(code)
}

// ListAccounts yields the chart of accounts in insertion order.
func (b *Book) ListAccounts() iter.Seq[Account] {
	return b.registry.All()
}

func (b *Book) AccountsByType(t AccountType) iter.Seq[Account] {
	return b.registry.ByType(t)
}

// AccountInUse reports whether any posted entry references the account.
func (b *Book) AccountInUse(code string) bool {
	return b.registry.InUse(code)
}

// PostEntry validates an entry against the chart of accounts and, only if
// it is valid, appends it to the journal. A zero date means today.
func (b *Book) PostEntry(ctx context.Context, entry JournalEntry) (int64, error) {
	if err := b.Halted(); err != nil {
		return 0, err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if entry.Date.IsZero() {
		entry.Date = b.now()
	}
	entry.Date = Day(entry.Date)
	if entry.VATRate == "" {
		entry.VATRate = VATZero
	}
	entry.PostedAt = b.now().UTC()

	valid, err := Validate(entry, b.registry)
	if err != nil {
		return 0, err
	}
	id, err := b.journal.Post(ctx, valid)
	if err != nil {
		return 0, err
	}
	b.registry.markUsed(valid)
	return id, nil
}

// ReverseEntry posts a new entry that cancels a posted one. Posted entries
// are never edited; this is the correction path.
func (b *Book) ReverseEntry(ctx context.Context, id int64, date time.Time, description string) (int64, error) {
	orig, err := b.journal.Entry(id)
	if err != nil {
		return 0, err
	}
	return b.PostEntry(ctx, orig.Reversal(date, description))
}

func (b *Book) Entry(id int64) (JournalEntry, error) {
	return b.journal.Entry(id)
}

func (b *Book) EntryCount() int {
	return b.journal.Len()
}

// Entries yields all posted entries in posting order.
func (b *Book) Entries() iter.Seq[JournalEntry] {
	return b.journal.Entries()
}

// EntriesFor yields the posted entries touching an account, in posting order.
func (b *Book) EntriesFor(code string) iter.Seq[JournalEntry] {
	return b.journal.EntriesFor(code)
}

// BalanceOf returns the raw (debit-positive) balance of an account. A zero
// asOf covers every posted entry.
func (b *Book) BalanceOf(code string, asOf time.Time) (int64, error) {
	if _, err := b.registry.Lookup(code); err != nil {
		return 0, err
	}
	if asOf.IsZero() {
		return b.journal.BalanceOf(code), nil
	}
	return b.journal.BalanceAsOf(code, asOf), nil
}

// Snapshot captures the chart of accounts and the posted entries at one
// point in time. Writes made afterwards are not visible in it.
func (b *Book) Snapshot() Snapshot {
	b.writeMu.Lock()
	accounts := slices.Collect(b.registry.All())
	entries := b.journal.prefix()
	version := fmt.Sprintf("%d.%d", b.registry.Version(), len(entries))
	b.writeMu.Unlock()

	return Snapshot{
		Accounts: accounts,
		Entries:  entries,
		Version:  version,
		TakenAt:  b.now().UTC(),
	}
}

// Version changes whenever an account changes or an entry is posted.
func (b *Book) Version() string {
	return fmt.Sprintf("%d.%d", b.registry.Version(), b.journal.Len())
}

// TrialBalance covers every posted entry.
func (b *Book) TrialBalance() (*TrialBalance, error) {
	return b.TrialBalanceAsOf(time.Time{})
}

func (b *Book) TrialBalanceAsOf(asOf time.Time) (*TrialBalance, error) {
	tb, err := BuildTrialBalance(b.Snapshot(), asOf)
	if err != nil {
		b.halt(err)
	}
	return tb, err
}

func (b *Book) ProfitAndLoss(p Period) *ProfitAndLoss {
	return BuildProfitAndLoss(b.Snapshot(), p)
}

func (b *Book) VATSummary(p Period) *VATSummary {
	return BuildVATSummary(b.Snapshot(), p)
}

// BalanceSheet reports as of a date; a zero date means today.
func (b *Book) BalanceSheet(asOf time.Time) (*BalanceSheet, error) {
	if asOf.IsZero() {
		asOf = b.Today()
	}
	bs, err := BuildBalanceSheet(b.Snapshot(), asOf)
	if err != nil {
		b.halt(err)
	}
	return bs, err
}

func (b *Book) Summary(p Period) *Summary {
	return BuildSummary(b.Snapshot(), p)
}

// Preset resolves a named report period against the Book's clock.
func (b *Book) Preset(name string) (Period, error) {
	return PresetPeriod(name, b.Today())
}

// Halted returns a non-nil error once a report has found the ledger
// inconsistent. Posting is refused until Resume is called.
func (b *Book) Halted() error {
	b.haltMu.RLock()
	defer b.haltMu.RUnlock()
	if b.halted == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrLedgerHalted, b.halted)
}

// Resume re-enables posting after an operator has investigated a halt.
func (b *Book) Resume() {
	b.haltMu.Lock()
	defer b.haltMu.Unlock()
	b.halted = nil
}

func (b *Book) halt(err error) {
	if !errors.Is(err, ErrBalanceSheetMismatch) && !errors.Is(err, ErrTrialBalanceMismatch) {
		return
	}
	b.haltMu.Lock()
	defer b.haltMu.Unlock()
	if b.halted == nil {
		b.halted = err
	}
}
