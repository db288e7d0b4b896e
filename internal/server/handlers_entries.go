package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/minibooks/internal/events"
	"github.com/simonvc/minibooks/internal/ledger"
)

// lineRequest carries amounts as decimal pound strings ("10.50").
type lineRequest struct {
	AccountCode string `json:"account_code"`
	Debit       string `json:"debit,omitempty"`
	Credit      string `json:"credit,omitempty"`
}

type postEntryRequest struct {
	Date        string        `json:"date,omitempty"`
	Description string        `json:"description"`
	VATRate     string        `json:"vat_rate,omitempty"`
	Lines       []lineRequest `json:"lines"`
}

type reverseEntryRequest struct {
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

func (req postEntryRequest) entry() (ledger.JournalEntry, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.JournalEntry{}, err
	}
	rate, err := ledger.ParseVATRate(req.VATRate)
	if err != nil {
		return ledger.JournalEntry{}, err
	}

	entry := ledger.JournalEntry{Date: date, Description: req.Description, VATRate: rate}
	var errs []error
	for i, l := range req.Lines {
		line := ledger.Line{AccountCode: l.AccountCode}
		if l.Debit != "" {
			if line.Debit, err = ledger.ToMinorUnits(l.Debit); err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
			}
		}
		if l.Credit != "" {
			if line.Credit, err = ledger.ToMinorUnits(l.Credit); err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", i+1, err))
			}
		}
		entry.Lines = append(entry.Lines, line)
	}
	return entry, errors.Join(errs...)
}

func (s *Server) postEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := req.entry()
	if err != nil {
		fail(w, err)
		return
	}

	id, err := s.book.PostEntry(r.Context(), entry)
	if err != nil {
		fail(w, err)
		return
	}
	s.writePosted(w, r, id)
}

func (s *Server) reverseEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id: "+chi.URLParam(r, "id"))
		return
	}

	var req reverseEntryRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	date, err := parseDate(req.Date)
	if err != nil {
		fail(w, err)
		return
	}

	rev, err := s.book.ReverseEntry(r.Context(), id, date, req.Description)
	if err != nil {
		fail(w, err)
		return
	}
	s.writePosted(w, r, rev)
}

func (s *Server) writePosted(w http.ResponseWriter, r *http.Request, id int64) {
	posted, err := s.book.Entry(id)
	if err != nil {
		fail(w, err)
		return
	}
	s.publish(events.TopicEntryPosted, events.NewEntryPosted(posted))
	writeJSON(w, http.StatusCreated, posted)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		fail(w, err)
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		fail(w, err)
		return
	}

	seq := s.book.Entries()
	if code := q.Get("account"); code != "" {
		seq = s.book.EntriesFor(code)
	}

	entries := []ledger.JournalEntry{}
	for e := range seq {
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && e.Date.After(to) {
			continue
		}
		entries = append(entries, e)
	}
	if q.Get("order") == "desc" {
		slices.Reverse(entries)
	}
	if limit, _ := strconv.Atoi(q.Get("limit")); limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid entry id: "+chi.URLParam(r, "id"))
		return
	}
	entry, err := s.book.Entry(id)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) resume(w http.ResponseWriter, r *http.Request) {
	if err := s.book.Halted(); err != nil {
		log.Printf("resuming posting after halt: %v", err)
	}
	s.book.Resume()
	writeJSON(w, http.StatusOK, map[string]any{"halted": false})
}
