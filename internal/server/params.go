package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"

	"github.com/simonvc/minibooks/internal/ledger"
)

// parseDate accepts any common date layout ("2025-03-01", "2025/03/01",
// "March 1, 2025"). An empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ledger.ErrInvalidPeriod, s)
	}
	return ledger.Day(t), nil
}

// periodFromQuery reads ?preset= or ?from=&to=. With neither, the current
// month is used.
func (s *Server) periodFromQuery(r *http.Request) (ledger.Period, error) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" && to == "" {
		preset := q.Get("preset")
		if preset == "" {
			preset = ledger.PresetCurrentMonth
		}
		return s.book.Preset(preset)
	}

	start, err := parseDate(from)
	if err != nil {
		return ledger.Period{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return ledger.Period{}, err
	}
	if end.IsZero() {
		end = s.book.Today()
	}
	return ledger.NewPeriod(start, end)
}
