package ledger

import "errors"

var (
	ErrDuplicateAccountCode = errors.New("account code already exists")
	ErrInvalidAccountCode   = errors.New("invalid account code")
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrInvalidCategory      = errors.New("category not allowed for account type")
	ErrAccountNameRequired  = errors.New("account name is required")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountInUse         = errors.New("account is referenced by posted entries")

	ErrEmptyEntry      = errors.New("journal entry has no lines")
	ErrMalformedLine   = errors.New("journal line must have exactly one of debit or credit")
	ErrUnknownAccount  = errors.New("journal line references unknown account")
	ErrUnbalancedEntry = errors.New("journal entry debits do not equal credits")
	ErrInvalidVATRate  = errors.New("invalid VAT rate")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEntryNotFound   = errors.New("journal entry not found")

	ErrInvalidPeriod        = errors.New("invalid period")
	ErrTrialBalanceMismatch = errors.New("trial balance debits do not equal credits")
	ErrBalanceSheetMismatch = errors.New("total assets do not equal liabilities plus equity")
	ErrLedgerHalted         = errors.New("ledger halted after invariant violation")
)
