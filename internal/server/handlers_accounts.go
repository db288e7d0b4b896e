package server

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/simonvc/minibooks/internal/events"
	"github.com/simonvc/minibooks/internal/ledger"
)

type createAccountRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Category    ledger.Category `json:"category"`
	Description string          `json:"description,omitempty"`
}

// updateAccountRequest changes whichever fields are set. A type change
// needs a category valid for the new type.
type updateAccountRequest struct {
	Name     *string          `json:"name,omitempty"`
	Type     *string          `json:"type,omitempty"`
	Category *ledger.Category `json:"category,omitempty"`
}

type accountResponse struct {
	ledger.Account
	InUse bool `json:"in_use"`
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := ledger.ParseAccountType(req.Type)
	if err != nil {
		fail(w, err)
		return
	}

	acct, err := s.book.RegisterAccount(r.Context(), ledger.Account{
		Code:        req.Code,
		Name:        req.Name,
		Type:        t,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		fail(w, err)
		return
	}
	s.publish(events.TopicAccountChanged, events.NewAccountChanged("created", acct))
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	seq := s.book.ListAccounts()
	if t := r.URL.Query().Get("type"); t != "" {
		at, err := ledger.ParseAccountType(t)
		if err != nil {
			fail(w, err)
			return
		}
		seq = s.book.AccountsByType(at)
	}

	accounts := slices.Collect(seq)
	if accounts == nil {
		accounts = []ledger.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	if acct, ok := s.pathAccount(w, r); ok {
		writeJSON(w, http.StatusOK, accountResponse{Account: acct, InUse: s.book.AccountInUse(acct.Code)})
	}
}

// balanceResponse reports the raw debit-minus-credit balance and the same
// figure on the account's normal side.
type balanceResponse struct {
	AccountCode string `json:"account_code"`
	Balance     int64  `json:"balance"`
	Natural     int64  `json:"natural"`
	Formatted   string `json:"formatted"`
}

func (s *Server) getAccountBalance(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.pathAccount(w, r)
	if !ok {
		return
	}
	asOf, err := parseDate(r.URL.Query().Get("as_of"))
	if err != nil {
		fail(w, err)
		return
	}
	balance, err := s.book.BalanceOf(acct.Code, asOf)
	if err != nil {
		fail(w, err)
		return
	}

	natural := balance
	if !ledger.DebitNormal(acct.Type) {
		natural = -balance
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		AccountCode: acct.Code,
		Balance:     balance,
		Natural:     natural,
		Formatted:   ledger.FormatMoney(natural),
	})
}

// accountChange converts the request into a single ledger edit so a bad
// field leaves the account untouched.
func (req updateAccountRequest) accountChange() (ledger.AccountChange, error) {
	ch := ledger.AccountChange{Name: req.Name, Category: req.Category}
	if req.Type != nil {
		t, err := ledger.ParseAccountType(*req.Type)
		if err != nil {
			return ch, err
		}
		ch.Type = &t
	}
	return ch, nil
}

func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.pathAccount(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ch, err := req.accountChange()
	if err != nil {
		fail(w, err)
		return
	}
	acct, err = s.book.UpdateAccount(r.Context(), acct.Code, ch)
	if err != nil {
		fail(w, err)
		return
	}
	s.publish(events.TopicAccountChanged, events.NewAccountChanged("updated", acct))
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.pathAccount(w, r)
	if !ok {
		return
	}
	if err := s.book.DeleteAccount(r.Context(), acct.Code); err != nil {
		fail(w, err)
		return
	}
	s.publish(events.TopicAccountChanged, events.NewAccountChanged("deleted", acct))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listAccountEntries(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.pathAccount(w, r)
	if !ok {
		return
	}
	entries := slices.Collect(s.book.EntriesFor(acct.Code))
	if entries == nil {
		entries = []ledger.JournalEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// pathAccount resolves the {code} URL parameter, answering 404 itself when
// no such account exists.
func (s *Server) pathAccount(w http.ResponseWriter, r *http.Request) (ledger.Account, bool) {
	code, err := url.PathUnescape(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account code: "+chi.URLParam(r, "code"))
		return ledger.Account{}, false
	}
	acct, err := s.book.LookupAccount(code)
	if err != nil {
		fail(w, err)
		return ledger.Account{}, false
	}
	return acct, true
}

func (s *Server) getChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledger.Reference())
}
