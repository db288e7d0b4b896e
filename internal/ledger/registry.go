package ledger

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"
)

// AccountWriter persists chart-of-accounts changes. The registry calls it
// before applying a change in memory, so a failed write changes nothing.
type AccountWriter interface {
	SaveAccount(ctx context.Context, acct Account) error
	DeleteAccount(ctx context.Context, code string) error
}

// Registry owns the chart of accounts.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	byCode  map[string]Account
	used    map[string]bool
	version uint64
	writer  AccountWriter
	now     func() time.Time
}

// NewRegistry creates an empty registry. writer may be nil.
func NewRegistry(writer AccountWriter, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		byCode: make(map[string]Account),
		used:   make(map[string]bool),
		writer: writer,
		now:    now,
	}
}

// Register validates and inserts a new account, returning the stored copy.
func (r *Registry) Register(ctx context.Context, acct Account) (Account, error) {
	if err := acct.Validate(); err != nil {
		return Account{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[acct.Code]; exists {
		return Account{}, fmt.Errorf("%w: %s", ErrDuplicateAccountCode, acct.Code)
	}
	if acct.CreatedAt.IsZero() {
		acct.CreatedAt = r.now().UTC()
	}
	if err := r.save(ctx, acct); err != nil {
		return Account{}, err
	}
	r.order = append(r.order, acct.Code)
	r.byCode[acct.Code] = acct
	r.version++
	return acct, nil
}

// AccountChange is a set of edits applied to one account together: either
// all of them take effect or none do. Nil fields are left alone.
type AccountChange struct {
	Name     *string
	Type     *AccountType
	Category *Category
}

// Rename sets an account's display name. Names carry no invariants, so
// any string is accepted.
func (r *Registry) Rename(ctx context.Context, code, newName string) (Account, error) {
	return r.Apply(ctx, code, AccountChange{Name: &newName})
}

// ChangeCategory moves an account to another category of the same type.
func (r *Registry) ChangeCategory(ctx context.Context, code string, category Category) (Account, error) {
	return r.Apply(ctx, code, AccountChange{Category: &category})
}

// ChangeType reclassifies an account that no posted entry references yet.
func (r *Registry) ChangeType(ctx context.Context, code string, t AccountType, category Category) (Account, error) {
	return r.Apply(ctx, code, AccountChange{Type: &t, Category: &category})
}

// Apply makes every edit in ch under one lock and one write. A type change
// keeps the current category unless ch names a new one.
func (r *Registry) Apply(ctx context.Context, code string, ch AccountChange) (Account, error) {
	return r.update(ctx, code, func(a *Account) error {
		category := a.Category
		if ch.Category != nil {
			category = *ch.Category
		}
		switch {
		case ch.Type != nil:
			if r.used[code] {
				return fmt.Errorf("%w: cannot change type of %s", ErrAccountInUse, code)
			}
			if !ValidType(*ch.Type) {
				return fmt.Errorf("%w: %q", ErrInvalidAccountType, *ch.Type)
			}
			if !ValidCategory(*ch.Type, category) {
				return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, category, *ch.Type)
			}
			a.Type = *ch.Type
		case !ValidCategory(a.Type, category):
			return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, category, a.Type)
		}
		a.Category = category
		if ch.Name != nil {
			a.Name = *ch.Name
		}
		return nil
	})
}

// Remove deletes an account that no posted entry references.
func (r *Registry) Remove(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byCode[code]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, code)
	}
	if r.used[code] {
		return fmt.Errorf("%w: cannot delete %s", ErrAccountInUse, code)
	}
	if r.writer != nil {
		if err := r.writer.DeleteAccount(ctx, code); err != nil {
			return fmt.Errorf("delete account %s: %w", code, err)
		}
	}
	delete(r.byCode, code)
	r.order = slices.DeleteFunc(r.order, func(c string) bool { return c == code })
	r.version++
	return nil
}

func (r *Registry) update(ctx context.Context, code string, fn func(*Account) error) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byCode[code]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, code)
	}
	if err := fn(&acct); err != nil {
		return Account{}, err
	}
	if err := acct.ValidateClassification(); err != nil {
		return Account{}, err
	}
	if err := r.save(ctx, acct); err != nil {
		return Account{}, err
	}
	r.byCode[code] = acct
	r.version++
	return acct, nil
}

func (r *Registry) save(ctx context.Context, acct Account) error {
	if r.writer == nil {
		return nil
	}
	if err := r.writer.SaveAccount(ctx, acct); err != nil {
		return fmt.Errorf("save account %s: %w", acct.Code, err)
	}
	return nil
}

// Lookup returns an account by code.
func (r *Registry) Lookup(code string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.byCode[code]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, code)
	}
	return acct, nil
}

// Exists reports whether an account code is registered.
func (r *Registry) Exists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok
}

// All yields every account in insertion order. Each iteration starts from
// the registry's current state.
func (r *Registry) All() iter.Seq[Account] {
	return func(yield func(Account) bool) {
		for _, acct := range r.list() {
			if !yield(acct) {
				return
			}
		}
	}
}

// ByType yields the accounts of one type in insertion order.
func (r *Registry) ByType(t AccountType) iter.Seq[Account] {
	return func(yield func(Account) bool) {
		for acct := range r.All() {
			if acct.Type == t && !yield(acct) {
				return
			}
		}
	}
}

// InUse reports whether a posted entry references the account.
func (r *Registry) InUse(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.used[code]
}

// Version changes whenever the chart of accounts changes.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// markUsed freezes the type of every account the entry references.
func (r *Registry) markUsed(entry JournalEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range entry.Lines {
		r.used[l.AccountCode] = true
	}
}

// list copies the accounts under the read lock.
func (r *Registry) list() []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byCode[code])
	}
	return out
}
