package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/patrickmn/go-cache"

	"github.com/simonvc/minibooks/internal/ledger"
)

// cached serves a report from the cache while the ledger is unchanged.
// Reports that fail are never cached.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, name string, build func() (any, error)) {
	key := name + "?" + r.URL.RawQuery + "@" + s.book.Version()
	if v, ok := s.reports.Get(key); ok {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, http.StatusOK, v)
		return
	}

	report, err := build()
	if err != nil {
		if errors.Is(err, ledger.ErrBalanceSheetMismatch) || errors.Is(err, ledger.ErrTrialBalanceMismatch) {
			log.Printf("ledger halted: %v", err)
		}
		fail(w, err)
		return
	}
	s.reports.Set(key, report, cache.DefaultExpiration)
	w.Header().Set("X-Cache", "miss")
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) trialBalance(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, "trial-balance", func() (any, error) {
		asOf, err := parseDate(r.URL.Query().Get("as_of"))
		if err != nil {
			return nil, err
		}
		return s.book.TrialBalanceAsOf(asOf)
	})
}

func (s *Server) profitAndLoss(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, "profit-and-loss", func() (any, error) {
		p, err := s.periodFromQuery(r)
		if err != nil {
			return nil, err
		}
		return s.book.ProfitAndLoss(p), nil
	})
}

func (s *Server) vatSummary(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, "vat", func() (any, error) {
		p, err := s.periodFromQuery(r)
		if err != nil {
			return nil, err
		}
		return s.book.VATSummary(p), nil
	})
}

func (s *Server) balanceSheet(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, "balance-sheet", func() (any, error) {
		asOf, err := parseDate(r.URL.Query().Get("as_of"))
		if err != nil {
			return nil, err
		}
		if asOf.IsZero() {
			asOf = s.book.Today()
		}
		return s.book.BalanceSheet(asOf)
	})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, "summary", func() (any, error) {
		p, err := s.periodFromQuery(r)
		if err != nil {
			return nil, err
		}
		return s.book.Summary(p), nil
	})
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Entries int    `json:"entries"`
	Halted  string `json:"halted,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: s.book.Version(), Entries: s.book.EntryCount()}
	if err := s.book.Halted(); err != nil {
		resp.Status = "halted"
		resp.Halted = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
