package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codes map[string]bool

func (c codes) Exists(code string) bool { return c[code] }

var chartCodes = codes{"1001": true, "4001": true, "5001": true}

func TestValidateBalancedEntry(t *testing.T) {
	entry := JournalEntry{
		Description: "Cash sale",
		Lines: []Line{
			{AccountCode: "1001", Debit: 10000},
			{AccountCode: "4001", Credit: 10000},
		},
	}
	got, err := Validate(entry, chartCodes)
	require.NoError(t, err)
	assert.Equal(t, entry.Description, got.Description)
}

func TestValidateEmptyEntry(t *testing.T) {
	_, err := Validate(JournalEntry{Description: "nothing"}, chartCodes)
	assert.ErrorIs(t, err, ErrEmptyEntry)
}

func TestValidateUnbalanced(t *testing.T) {
	entry := JournalEntry{Lines: []Line{
		{AccountCode: "1001", Debit: 10000},
		{AccountCode: "4001", Credit: 9500},
	}}
	_, err := Validate(entry, chartCodes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalancedEntry)
	assert.NotErrorIs(t, err, ErrUnknownAccount)
}

func TestValidateUnknownAccount(t *testing.T) {
	entry := JournalEntry{Lines: []Line{
		{AccountCode: "9999", Debit: 100},
		{AccountCode: "4001", Credit: 100},
	}}
	_, err := Validate(entry, chartCodes)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.Contains(t, err.Error(), "9999")
}

func TestValidateMalformedLines(t *testing.T) {
	tests := []struct {
		name string
		line Line
	}{
		{"both zero", Line{AccountCode: "1001"}},
		{"both set", Line{AccountCode: "1001", Debit: 5, Credit: 5}},
		{"negative debit", Line{AccountCode: "1001", Debit: -5}},
		{"negative credit", Line{AccountCode: "1001", Credit: -5}},
		{"too large", Line{AccountCode: "1001", Debit: MaxAmount + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(JournalEntry{Lines: []Line{tt.line}}, chartCodes)
			assert.ErrorIs(t, err, ErrMalformedLine)
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	entry := JournalEntry{
		VATRate: "17",
		Lines: []Line{
			{AccountCode: "9999", Debit: 100},
			{AccountCode: "4001", Credit: 50},
			{AccountCode: "5001"},
		},
	}
	_, err := Validate(entry, chartCodes)
	require.Error(t, err)

	for _, want := range []error{ErrInvalidVATRate, ErrUnknownAccount, ErrMalformedLine, ErrUnbalancedEntry} {
		assert.True(t, errors.Is(err, want), "expected %v in %v", want, err)
	}
}

func TestValidateAcceptsVATRates(t *testing.T) {
	for _, rate := range append(AllVATRates, "") {
		entry := JournalEntry{VATRate: rate, Lines: []Line{
			{AccountCode: "5001", Debit: 100},
			{AccountCode: "1001", Credit: 100},
		}}
		_, err := Validate(entry, chartCodes)
		assert.NoError(t, err, "rate %q", rate)
	}
}

func TestValidateSameAccountBothSides(t *testing.T) {
	entry := JournalEntry{Lines: []Line{
		{AccountCode: "1001", Debit: 100},
		{AccountCode: "1001", Credit: 100},
	}}
	_, err := Validate(entry, chartCodes)
	assert.NoError(t, err)
}

func TestValidateTotalsBeyondInt64(t *testing.T) {
	// 9224 lines of MaxAmount sum past math.MaxInt64; a wrapping int64 sum
	// would make this look balanced against a small credit.
	const n = 9224
	lines := make([]Line, 0, n+2)
	for range n {
		lines = append(lines, Line{AccountCode: "1001", Debit: MaxAmount})
	}
	lines = append(lines,
		Line{AccountCode: "1001", Debit: 100},
		Line{AccountCode: "4001", Credit: 100},
	)

	_, err := Validate(JournalEntry{Lines: lines}, chartCodes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnbalancedEntry)
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.Contains(t, err.Error(), "entry totals exceed")
}

func TestValidateLargeBalancedEntry(t *testing.T) {
	entry := JournalEntry{Lines: []Line{
		{AccountCode: "1001", Debit: MaxAmount},
		{AccountCode: "1001", Debit: MaxAmount},
		{AccountCode: "4001", Credit: MaxAmount},
		{AccountCode: "4001", Credit: MaxAmount},
	}}
	_, err := Validate(entry, chartCodes)
	assert.NoError(t, err)
}

func TestValidateUnknownAccountOnMalformedLine(t *testing.T) {
	entry := JournalEntry{Lines: []Line{
		{AccountCode: "9999", Debit: -5},
		{AccountCode: "8888", Credit: MaxAmount + 1},
		{AccountCode: "4001", Credit: 100},
	}}
	_, err := Validate(entry, chartCodes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.Contains(t, err.Error(), `"9999" on line 1`)
	assert.Contains(t, err.Error(), `"8888" on line 2`)
}
