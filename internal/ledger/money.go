package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol is the display symbol for the ledger's single currency (GBP).
const CurrencySymbol = "£"

// MaxAmount bounds a single line amount (in pence). Entry totals are
// checked separately in Validate.
const MaxAmount int64 = 1_000_000_000_000_000

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal string like "10.50" or "£1,250" to pence.
// More than two decimal places is an error rather than a silent rounding.
func ToMinorUnits(amount string) (int64, error) {
	s := strings.TrimSpace(amount)
	s = strings.TrimPrefix(s, CurrencySymbol)
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	pence := d.Mul(hundred)
	if !pence.Equal(pence.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than 2 decimal places", ErrInvalidAmount, amount)
	}
	if pence.Abs().GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, amount)
	}
	return pence.IntPart(), nil
}

// FormatAmount converts pence to a display string. E.g. 1050 -> "10.50".
func FormatAmount(pence int64) string {
	return decimal.New(pence, -2).StringFixed(2)
}

// FormatMoney is FormatAmount with the currency symbol; negatives are
// shown in parentheses the way the reports print them.
func FormatMoney(pence int64) string {
	if pence < 0 {
		return "(" + CurrencySymbol + FormatAmount(-pence) + ")"
	}
	return CurrencySymbol + FormatAmount(pence)
}

// percentOf returns amount*rate/100 rounded half away from zero to the penny.
func percentOf(amount, rate int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(rate)).
		Div(hundred).
		Round(0).
		IntPart()
}
