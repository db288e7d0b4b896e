package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/simonvc/minibooks/internal/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail writes err with the status its kind maps to. Server faults are
// logged since the client only sees the message.
func fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Printf("internal error: %v", err)
	}
	writeError(w, status, err.Error())
}

// decodeJSON reads the request body into v, answering 400 when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

var errorStatus = []struct {
	status int
	errs   []error
}{
	{http.StatusServiceUnavailable, []error{ledger.ErrLedgerHalted}},
	{http.StatusNotFound, []error{ledger.ErrAccountNotFound, ledger.ErrEntryNotFound}},
	{http.StatusConflict, []error{ledger.ErrDuplicateAccountCode, ledger.ErrAccountInUse}},
	{http.StatusBadRequest, []error{
		ledger.ErrUnbalancedEntry,
		ledger.ErrEmptyEntry,
		ledger.ErrMalformedLine,
		ledger.ErrUnknownAccount,
		ledger.ErrInvalidVATRate,
		ledger.ErrInvalidAmount,
		ledger.ErrInvalidAccountCode,
		ledger.ErrInvalidAccountType,
		ledger.ErrInvalidCategory,
		ledger.ErrAccountNameRequired,
		ledger.ErrInvalidPeriod,
	}},
}

// statusOf maps ledger errors to HTTP statuses. Anything unrecognised,
// report mismatches included, is a 500.
func statusOf(err error) int {
	for _, e := range errorStatus {
		for _, target := range e.errs {
			if errors.Is(err, target) {
				return e.status
			}
		}
	}
	return http.StatusInternalServerError
}
