package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
)

type EntryFilter struct {
	AccountCode string
	From, To    time.Time
	Limit       int
	Offset      int
}

// AppendEntry writes a posted entry and its lines in one transaction. The
// entry is inserted unfinalized, its lines added, then finalized; the
// balance trigger fires on finalize, so a half-written entry never commits.
func (s *Store) AppendEntry(ctx context.Context, entry ledger.JournalEntry) error {
	if entry.ID <= 0 {
		return fmt.Errorf("append entry: missing sequence id")
	}
	vat := entry.VATRate
	if vat == "" {
		vat = ledger.VATZero
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO journal_entries (id, entry_date, description, vat_rate, posted_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Date.Format(time.DateOnly), entry.Description, vat, stamp(entry.PostedAt),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}

	for i, l := range entry.Lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO journal_lines (entry_id, line_no, account_code, debit, credit) VALUES (?, ?, ?, ?, ?)`,
			entry.ID, i+1, l.AccountCode, l.Debit, l.Credit,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", i+1, err)
		}
	}

	// Finalize - trigger fires to validate balance
	_, err = tx.ExecContext(ctx,
		`UPDATE journal_entries SET finalized = 1 WHERE id = ?`, entry.ID)
	if err != nil {
		return fmt.Errorf("finalize journal entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const entryColumns = `j.id, j.entry_date, j.description, j.vat_rate, j.posted_at`

// LoadEntries returns every finalized entry in sequence order.
func (s *Store) LoadEntries(ctx context.Context) ([]ledger.JournalEntry, error) {
	return s.ListEntries(ctx, EntryFilter{})
}

func (s *Store) GetEntry(ctx context.Context, id int64) (*ledger.JournalEntry, error) {
	e, err := scanEntry(s.reader.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries j WHERE j.id = ? AND j.finalized = 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", ledger.ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.linesByEntry(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	e.Lines = lines[id]
	return &e, nil
}

// ListEntries returns finalized entries in sequence order, optionally
// restricted to those touching one account or dated inside a range.
func (s *Store) ListEntries(ctx context.Context, filter EntryFilter) ([]ledger.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries j WHERE j.finalized = 1`
	args := []any{}

	if filter.AccountCode != "" {
		query += ` AND EXISTS (SELECT 1 FROM journal_lines l WHERE l.entry_id = j.id AND l.account_code = ?)`
		args = append(args, filter.AccountCode)
	}
	if !filter.From.IsZero() {
		query += ` AND j.entry_date >= ?`
		args = append(args, filter.From.Format(time.DateOnly))
	}
	if !filter.To.IsZero() {
		query += ` AND j.entry_date <= ?`
		args = append(args, filter.To.Format(time.DateOnly))
	}

	query += ` ORDER BY j.id`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var (
		entries []ledger.JournalEntry
		ids     []int64
	)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lines, err := s.linesByEntry(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].ID]
	}
	return entries, nil
}

// linesByEntry loads the lines of entries whose ids fall within the range
// of ids, keyed by entry id.
func (s *Store) linesByEntry(ctx context.Context, ids []int64) (map[int64][]ledger.Line, error) {
	lo, hi := ids[0], ids[len(ids)-1]
	rows, err := s.reader.QueryContext(ctx,
		`SELECT entry_id, account_code, debit, credit FROM journal_lines
		WHERE entry_id BETWEEN ? AND ?
		ORDER BY entry_id, line_no`,
		lo, hi,
	)
	if err != nil {
		return nil, fmt.Errorf("get journal lines: %w", err)
	}
	defer rows.Close()

	return scanLines(rows)
}

func scanEntry(row rowScanner) (ledger.JournalEntry, error) {
	var (
		e                   ledger.JournalEntry
		entryDate, postedAt string
	)
	if err := row.Scan(&e.ID, &entryDate, &e.Description, &e.VATRate, &postedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan journal entry: %w", err)
	}
	e.Date, _ = time.Parse(time.DateOnly, entryDate)
	e.PostedAt = parseStamp(postedAt)
	return e, nil
}

func scanLines(rows *sql.Rows) (map[int64][]ledger.Line, error) {
	out := make(map[int64][]ledger.Line)
	for rows.Next() {
		var id int64
		var l ledger.Line
		if err := rows.Scan(&id, &l.AccountCode, &l.Debit, &l.Credit); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		out[id] = append(out[id], l)
	}
	return out, rows.Err()
}
