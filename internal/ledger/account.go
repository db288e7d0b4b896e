package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type AccountType string

const (
	TypeAsset     AccountType = "Asset"
	TypeLiability AccountType = "Liability"
	TypeIncome    AccountType = "Income"
	TypeExpense   AccountType = "Expense"
	TypeEquity    AccountType = "Equity"
)

var AllTypes = []AccountType{
	TypeAsset,
	TypeLiability,
	TypeIncome,
	TypeExpense,
	TypeEquity,
}

type Category string

const (
	CategoryCurrentAssets    Category = "Current Assets"
	CategoryFixedAssets      Category = "Fixed Assets"
	CategoryIntangibleAssets Category = "Intangible Assets"

	CategoryCurrentLiabilities  Category = "Current Liabilities"
	CategoryLongTermLiabilities Category = "Long-term Liabilities"

	CategoryRevenue     Category = "Revenue"
	CategoryOtherIncome Category = "Other Income"

	CategoryOperatingExpenses      Category = "Operating Expenses"
	CategoryAdministrativeExpenses Category = "Administrative Expenses"
	CategoryFinanceCosts           Category = "Finance Costs"

	CategoryShareCapital     Category = "Share Capital"
	CategoryRetainedEarnings Category = "Retained Earnings"
)

// categoriesByType is the allowed category set for each account type.
var categoriesByType = map[AccountType][]Category{
	TypeAsset:     {CategoryCurrentAssets, CategoryFixedAssets, CategoryIntangibleAssets},
	TypeLiability: {CategoryCurrentLiabilities, CategoryLongTermLiabilities},
	TypeIncome:    {CategoryRevenue, CategoryOtherIncome},
	TypeExpense:   {CategoryOperatingExpenses, CategoryAdministrativeExpenses, CategoryFinanceCosts},
	TypeEquity:    {CategoryShareCapital, CategoryRetainedEarnings},
}

type Account struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Category    Category    `json:"category"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CategoriesFor returns the categories an account of type t may use.
func CategoriesFor(t AccountType) []Category {
	return slices.Clone(categoriesByType[t])
}

// ValidType reports whether t is one of the five account types.
func ValidType(t AccountType) bool {
	_, ok := categoriesByType[t]
	return ok
}

// ValidCategory reports whether c belongs to the allowed set for t.
func ValidCategory(t AccountType, c Category) bool {
	return slices.Contains(categoriesByType[t], c)
}

// ParseAccountType accepts any casing of a type name ("asset", "ASSET").
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AllTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
}

// DebitNormal reports whether accounts of type t increase on the debit side.
// Assets and Expenses are debit-normal; Liabilities, Equity and Income are credit-normal.
func DebitNormal(t AccountType) bool {
	return t == TypeAsset || t == TypeExpense
}

// NormalBalance returns "Debit" or "Credit" for the account type.
func NormalBalance(t AccountType) string {
	if DebitNormal(t) {
		return "Debit"
	}
	return "Credit"
}

// Validate checks all account invariants for a new registration.
func (a *Account) Validate() error {
	if err := a.ValidateClassification(); err != nil {
		return err
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrAccountNameRequired
	}
	return nil
}

// ValidateClassification checks the code, type and category. Edits to an
// existing account are held to this and nothing more.
func (a *Account) ValidateClassification() error {
	code := strings.TrimSpace(a.Code)
	if code == "" || code != a.Code || len(code) > 16 {
		return fmt.Errorf("%w: %q", ErrInvalidAccountCode, a.Code)
	}
	if !ValidType(a.Type) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, a.Type)
	}
	if !ValidCategory(a.Type, a.Category) {
		return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, a.Category, a.Type)
	}
	return nil
}
