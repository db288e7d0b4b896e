package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/simonvc/minibooks/internal/ledger"
)

// AccountFilter narrows ListAccounts. The zero value matches everything.
type AccountFilter struct {
	Type ledger.AccountType
}

const accountColumns = `code, name, type, category, description, created_at`

// SaveAccount inserts a new account or updates an existing one in place,
// keeping its position in the chart. The schema refuses a type change once
// the account has journal lines. Names are not checked here; a renamed
// account may carry any name.
func (s *Store) SaveAccount(ctx context.Context, acct ledger.Account) error {
	if err := acct.ValidateClassification(); err != nil {
		return err
	}
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			category = excluded.category,
			description = excluded.description`,
		acct.Code, acct.Name, acct.Type, acct.Category, acct.Description, stamp(acct.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save account %s: %w", acct.Code, err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, code string) (*ledger.Account, error) {
	row := s.reader.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code = ?`, code)
	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, code)
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// LoadAccounts returns the whole chart in insertion order.
func (s *Store) LoadAccounts(ctx context.Context) ([]ledger.Account, error) {
	return s.ListAccounts(ctx, AccountFilter{})
}

func (s *Store) ListAccounts(ctx context.Context, filter AccountFilter) ([]ledger.Account, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE ? = '' OR type = ? ORDER BY rowid`,
		filter.Type, filter.Type)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// DeleteAccount removes an account that no journal line refers to.
func (s *Store) DeleteAccount(ctx context.Context, code string) error {
	var used bool
	err := s.writer.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM journal_lines WHERE account_code = ?)`, code).Scan(&used)
	if err != nil {
		return fmt.Errorf("check account use: %w", err)
	}
	if used {
		return fmt.Errorf("%w: %s", ledger.ErrAccountInUse, code)
	}

	res, err := s.writer.ExecContext(ctx, `DELETE FROM accounts WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, code)
	}
	return nil
}

func scanAccount(row rowScanner) (ledger.Account, error) {
	var (
		acct      ledger.Account
		createdAt string
	)
	if err := row.Scan(&acct.Code, &acct.Name, &acct.Type, &acct.Category, &acct.Description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return acct, err
		}
		return acct, fmt.Errorf("scan account: %w", err)
	}
	acct.CreatedAt = parseStamp(createdAt)
	return acct, nil
}
