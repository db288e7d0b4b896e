package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10", 1000},
		{"10.5", 1050},
		{"10.50", 1050},
		{"£1,250.75", 125075},
		{" 0.01 ", 1},
		{"-3.20", -320},
	}
	for _, tt := range tests {
		got, err := ToMinorUnits(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestToMinorUnitsRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "1.005", "99999999999999999"} {
		_, err := ToMinorUnits(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "10.50", FormatAmount(1050))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "£1250.00", FormatMoney(125000))
	assert.Equal(t, "(£3.20)", FormatMoney(-320))
}

func TestParseVATRate(t *testing.T) {
	for in, want := range map[string]VATRate{
		"":       VATZero,
		"0":      VATZero,
		"5%":     VATReduced,
		" 20 ":   VATStandard,
		"Exempt": VATExempt,
	} {
		got, err := ParseVATRate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVATRate("17.5")
	assert.ErrorIs(t, err, ErrInvalidVATRate)
}

func TestPresetPeriod(t *testing.T) {
	today := date(2025, 8, 19)
	tests := []struct {
		preset     string
		start, end time.Time
	}{
		{PresetCurrentMonth, date(2025, 8, 1), date(2025, 8, 31)},
		{PresetCurrentQuarter, date(2025, 7, 1), date(2025, 9, 30)},
		{PresetCurrentYear, date(2025, 1, 1), date(2025, 12, 31)},
		{PresetLastYear, date(2024, 1, 1), date(2024, 12, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			p, err := PresetPeriod(tt.preset, today)
			require.NoError(t, err)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
		})
	}

	_, err := PresetPeriod("fortnight", today)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestNewPeriod(t *testing.T) {
	p, err := NewPeriod(time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC), date(2025, 1, 31))
	require.NoError(t, err)
	assert.True(t, p.Contains(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, p.Contains(date(2025, 2, 1)))
	assert.Equal(t, "2025-01-01 to 2025-01-31", p.String())

	_, err = NewPeriod(date(2025, 2, 1), date(2025, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}
