package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// VATRate is the nominal VAT tag carried by a journal entry. It is
// informational: VAT is not posted as its own ledger line.
type VATRate string

const (
	VATZero     VATRate = "0"
	VATReduced  VATRate = "5"
	VATStandard VATRate = "20"
	VATExempt   VATRate = "exempt"
)

var AllVATRates = []VATRate{VATZero, VATReduced, VATStandard, VATExempt}

// ParseVATRate accepts "20", "20%", "exempt" and the empty string (zero rate).
func ParseVATRate(s string) (VATRate, error) {
	s = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return VATZero, nil
	}
	r := VATRate(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidVATRate, s)
	}
	return r, nil
}

// Valid reports whether r is one of the supported rate tags. The empty
// tag is treated as the zero rate.
func (r VATRate) Valid() bool {
	return r == "" || slices.Contains(AllVATRates, r)
}

// Percent returns the numeric rate; zero for exempt or zero-rated entries.
func (r VATRate) Percent() int64 {
	switch r {
	case VATReduced:
		return 5
	case VATStandard:
		return 20
	default:
		return 0
	}
}

// Line is one side of a journal entry. Exactly one of Debit or Credit is
// nonzero; amounts are in pence.
type Line struct {
	AccountCode string `json:"account_code"`
	Debit       int64  `json:"debit"`
	Credit      int64  `json:"credit"`
}

// Signed returns the line's raw ledger amount: debits positive, credits negative.
func (l Line) Signed() int64 {
	return l.Debit - l.Credit
}

type JournalEntry struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Lines       []Line    `json:"lines"`
	VATRate     VATRate   `json:"vat_rate"`
	PostedAt    time.Time `json:"posted_at"`
}

func (e *JournalEntry) TotalDebit() int64 {
	var total int64
	for _, l := range e.Lines {
		total += l.Debit
	}
	return total
}

func (e *JournalEntry) TotalCredit() int64 {
	var total int64
	for _, l := range e.Lines {
		total += l.Credit
	}
	return total
}

// Touches reports whether any line references the account.
func (e *JournalEntry) Touches(code string) bool {
	for _, l := range e.Lines {
		if l.AccountCode == code {
			return true
		}
	}
	return false
}

// AmountFor sums the signed amounts of every line on the account.
func (e *JournalEntry) AmountFor(code string) int64 {
	var total int64
	for _, l := range e.Lines {
		if l.AccountCode == code {
			total += l.Signed()
		}
	}
	return total
}

// Reversal returns an unposted entry that swaps every debit and credit.
func (e *JournalEntry) Reversal(date time.Time, description string) JournalEntry {
	if description == "" {
		description = fmt.Sprintf("Reversal of entry %d: %s", e.ID, e.Description)
	}
	lines := make([]Line, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = Line{AccountCode: l.AccountCode, Debit: l.Credit, Credit: l.Debit}
	}
	return JournalEntry{
		Date:        date,
		Description: description,
		Lines:       lines,
		VATRate:     e.VATRate,
	}
}

// clone copies the entry so the log never shares a Lines slice with callers.
func (e JournalEntry) clone() JournalEntry {
	e.Lines = slices.Clone(e.Lines)
	return e
}

// Day truncates t to a calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
