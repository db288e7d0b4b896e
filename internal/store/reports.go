package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
)

// AccountBalance sums the raw balance of an account directly in SQL, over
// entries dated on or before asOf (zero means all).
func (s *Store) AccountBalance(ctx context.Context, code string, asOf time.Time) (int64, error) {
	// Verify account exists
	if _, err := s.GetAccount(ctx, code); err != nil {
		return 0, err
	}

	cutoff := "9999-12-31"
	if !asOf.IsZero() {
		cutoff = asOf.Format(time.DateOnly)
	}

	var balance int64
	err := s.reader.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(l.debit - l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries j ON j.id = l.entry_id
		WHERE l.account_code = ? AND j.finalized = 1 AND j.entry_date <= ?`, code, cutoff,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("account balance: %w", err)
	}
	return balance, nil
}

// Balances returns the raw balance of every account with postings. It is
// computed independently of the in-memory journal and is used to audit it.
func (s *Store) Balances(ctx context.Context) (map[string]int64, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT l.account_code, COALESCE(SUM(l.debit - l.credit), 0) as balance
		FROM journal_lines l
		JOIN journal_entries j ON j.id = l.entry_id AND j.finalized = 1
		GROUP BY l.account_code`)
	if err != nil {
		return nil, fmt.Errorf("balances query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var code string
		var balance int64
		if err := rows.Scan(&code, &balance); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[code] = balance
	}
	return out, rows.Err()
}

// Drift is a disagreement between the stored and in-memory balance of one account.
type Drift struct {
	AccountCode string `json:"account_code"`
	Stored      int64  `json:"stored"`
	Journal     int64  `json:"journal"`
}

// Verify compares stored balances against a book opened from this store.
func (s *Store) Verify(ctx context.Context, book *ledger.Book) ([]Drift, error) {
	stored, err := s.Balances(ctx)
	if err != nil {
		return nil, err
	}

	var drift []Drift
	for acct := range book.ListAccounts() {
		mem, err := book.BalanceOf(acct.Code, time.Time{})
		if err != nil {
			return nil, err
		}
		if mem != stored[acct.Code] {
			drift = append(drift, Drift{AccountCode: acct.Code, Stored: stored[acct.Code], Journal: mem})
		}
		delete(stored, acct.Code)
	}
	for _, code := range slices.Sorted(maps.Keys(stored)) {
		drift = append(drift, Drift{AccountCode: code, Stored: stored[code]})
	}
	return drift, nil
}
