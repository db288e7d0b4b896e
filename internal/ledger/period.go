package ledger

import (
	"fmt"
	"time"
)

// Period is an inclusive range of calendar dates.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod normalizes both bounds to calendar dates and rejects an end
// before the start.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: Day(start), End: Day(end)}
	if p.End.Before(p.Start) {
		return Period{}, fmt.Errorf("%w: end %s before start %s",
			ErrInvalidPeriod, p.End.Format(time.DateOnly), p.Start.Format(time.DateOnly))
	}
	return p, nil
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	d := Day(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p Period) String() string {
	return p.Start.Format(time.DateOnly) + " to " + p.End.Format(time.DateOnly)
}

// Report period presets offered by the dashboard.
const (
	PresetCurrentMonth   = "current-month"
	PresetCurrentQuarter = "current-quarter"
	PresetCurrentYear    = "current-year"
	PresetLastYear       = "last-year"
)

var Presets = []string{PresetCurrentMonth, PresetCurrentQuarter, PresetCurrentYear, PresetLastYear}

// PresetPeriod resolves a named preset relative to today.
func PresetPeriod(preset string, today time.Time) (Period, error) {
	y, m, _ := today.Date()
	switch preset {
	case PresetCurrentMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: start, End: start.AddDate(0, 1, -1)}, nil
	case PresetCurrentQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start := time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: start, End: start.AddDate(0, 3, -1)}, nil
	case PresetCurrentYear:
		return yearPeriod(y), nil
	case PresetLastYear:
		return yearPeriod(y - 1), nil
	default:
		return Period{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidPeriod, preset)
	}
}

func yearPeriod(y int) Period {
	return Period{
		Start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}
