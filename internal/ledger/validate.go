package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// maxEntryTotal is the largest side total an entry may carry; balances
// are kept in int64 pence.
var maxEntryTotal = decimal.NewFromInt(math.MaxInt64)

// AccountChecker tests whether an account code exists in the chart of accounts.
type AccountChecker interface {
	Exists(code string) bool
}

// Validate checks a proposed entry against the chart of accounts without
// side effects. Every violation is reported; each can be matched with
// errors.Is against the sentinel errors.
func Validate(entry JournalEntry, accounts AccountChecker) (JournalEntry, error) {
	if len(entry.Lines) == 0 {
		return entry, ErrEmptyEntry
	}

	var errs []error
	if !entry.VATRate.Valid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidVATRate, entry.VATRate))
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i, l := range entry.Lines {
		if !accounts.Exists(l.AccountCode) {
			errs = append(errs, fmt.Errorf("%w: %q on line %d", ErrUnknownAccount, l.AccountCode, i+1))
		}

		switch {
		case l.Debit < 0 || l.Credit < 0:
			errs = append(errs, fmt.Errorf("%w: line %d has a negative amount", ErrMalformedLine, i+1))
			continue
		case l.Debit > MaxAmount || l.Credit > MaxAmount:
			errs = append(errs, fmt.Errorf("%w: line %d exceeds %d", ErrMalformedLine, i+1, MaxAmount))
			continue
		case (l.Debit == 0) == (l.Credit == 0):
			errs = append(errs, fmt.Errorf("%w: line %d (debit %d, credit %d)", ErrMalformedLine, i+1, l.Debit, l.Credit))
		}
		debits = debits.Add(decimal.NewFromInt(l.Debit))
		credits = credits.Add(decimal.NewFromInt(l.Credit))
	}

	if debits.GreaterThan(maxEntryTotal) || credits.GreaterThan(maxEntryTotal) {
		errs = append(errs, fmt.Errorf("%w: entry totals exceed %s", ErrMalformedLine, FormatAmount(math.MaxInt64)))
	}
	if !debits.Equal(credits) {
		errs = append(errs, fmt.Errorf("%w: debits %s != credits %s",
			ErrUnbalancedEntry, debits.Shift(-2).StringFixed(2), credits.Shift(-2).StringFixed(2)))
	}

	if len(errs) > 0 {
		return entry, errors.Join(errs...)
	}
	return entry, nil
}
