package store

import (
	"context"
	"fmt"
)

// migrations holds the schema one version per element. The database's
// user_version records how many have been applied.
var migrations = [][]string{
	{
		// Chart of accounts. rowid order is insertion order.
		`CREATE TABLE IF NOT EXISTS accounts (
			code        TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			type        TEXT NOT NULL CHECK (type IN ('Asset','Liability','Income','Expense','Equity')),
			category    TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_type ON accounts(type)`,

		// Journal entries. id is the ledger's posting sequence number.
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id          INTEGER PRIMARY KEY,
			entry_date  TEXT NOT NULL,
			description TEXT NOT NULL,
			vat_rate    TEXT NOT NULL DEFAULT '0' CHECK (vat_rate IN ('0','5','20','exempt')),
			finalized   INTEGER NOT NULL DEFAULT 0,
			posted_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_date ON journal_entries(entry_date)`,

		`CREATE TABLE IF NOT EXISTS journal_lines (
			entry_id     INTEGER NOT NULL REFERENCES journal_entries(id),
			line_no      INTEGER NOT NULL,
			account_code TEXT NOT NULL REFERENCES accounts(code),
			debit        INTEGER NOT NULL DEFAULT 0 CHECK (debit >= 0),
			credit       INTEGER NOT NULL DEFAULT 0 CHECK (credit >= 0),
			CHECK ((debit = 0) != (credit = 0)),
			PRIMARY KEY (entry_id, line_no)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_lines_account ON journal_lines(account_code)`,

		// Trigger: prevent finalizing an entry whose lines do not balance
		`CREATE TRIGGER IF NOT EXISTS trg_check_balance
		BEFORE UPDATE OF finalized ON journal_entries
		WHEN NEW.finalized = 1
		BEGIN
			SELECT CASE
				WHEN NOT EXISTS (SELECT 1 FROM journal_lines WHERE entry_id = NEW.id)
				THEN RAISE(ABORT, 'journal entry has no lines')
				WHEN (SELECT SUM(debit) - SUM(credit) FROM journal_lines WHERE entry_id = NEW.id) != 0
				THEN RAISE(ABORT, 'journal entry debits do not equal credits')
			END;
		END`,

		// Trigger: finalized entries are immutable
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_update
		BEFORE UPDATE ON journal_entries
		WHEN OLD.finalized = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify a posted journal entry');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_entries_delete
		BEFORE DELETE ON journal_entries
		WHEN OLD.finalized = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove a posted journal entry');
		END`,

		// Trigger: prevent adding lines to finalized entries
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_insert
		BEFORE INSERT ON journal_lines
		WHEN (SELECT finalized FROM journal_entries WHERE id = NEW.entry_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot add lines to a posted journal entry');
		END`,

		// Trigger: prevent deleting lines from finalized entries
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_delete
		BEFORE DELETE ON journal_lines
		WHEN (SELECT finalized FROM journal_entries WHERE id = OLD.entry_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot remove lines from a posted journal entry');
		END`,

		// Trigger: prevent updating lines on finalized entries
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_update
		BEFORE UPDATE ON journal_lines
		WHEN (SELECT finalized FROM journal_entries WHERE id = OLD.entry_id) = 1
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify lines of a posted journal entry');
		END`,

		// Trigger: an account's type is frozen once a line references it
		`CREATE TRIGGER IF NOT EXISTS trg_account_type_frozen
		BEFORE UPDATE OF type ON accounts
		WHEN NEW.type != OLD.type
			AND EXISTS (SELECT 1 FROM journal_lines WHERE account_code = OLD.code)
		BEGIN
			SELECT RAISE(ABORT, 'account is referenced by posted entries');
		END`,
	},
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.writer.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than this build supports (%d)", version, len(migrations))
	}

	for v := version; v < len(migrations); v++ {
		if err := s.applyMigration(ctx, v+1, migrations[v]); err != nil {
			return fmt.Errorf("migration v%d: %w", v+1, err)
		}
	}
	return nil
}

// applyMigration runs one version's statements and bumps user_version in
// the same transaction.
func (s *Store) applyMigration(ctx context.Context, version int, stmts []string) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return tx.Commit()
}
