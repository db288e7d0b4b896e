package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"time"

	"github.com/simonvc/minibooks/internal/ledger"
	_ "modernc.org/sqlite"
)

// Store keeps the chart of accounts and the journal in a single sqlite
// file. It satisfies ledger.Backend.
type Store struct {
	path   string
	writer *sql.DB
	reader *sql.DB
}

var _ ledger.Backend = (*Store)(nil)

var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// dsn builds a modernc connection string. Reader connections are opened
// query_only so that nothing but the single writer can change the books.
func dsn(path string, readOnly bool) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	if readOnly {
		q.Add("_pragma", "query_only(1)")
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if needed) the database at path and brings its
// schema up to date.
func Open(path string) (*Store, error) {
	writer, err := sql.Open("sqlite", dsn(path, false))
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	s := &Store{path: path, writer: writer}
	if err := s.migrate(context.Background()); err != nil {
		writer.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	// The reader pool is opened after migrating so WAL mode is already set.
	reader, err := sql.Open("sqlite", dsn(path, true))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())
	s.reader = reader

	return s, nil
}

// Path is the database file the store was opened on.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return errors.Join(s.writer.Close(), s.reader.Close())
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Timestamps are stored as RFC 3339 text in UTC.
func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseStamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
