package ledger

// DefaultChart is the seed chart of accounts for a UK small business.
var DefaultChart = []Account{
	// Assets (1xxx)
	{Code: "1001", Name: "Cash", Type: TypeAsset, Category: CategoryCurrentAssets, Description: "Cash on hand"},
	{Code: "1100", Name: "Bank Account - Main", Type: TypeAsset, Category: CategoryCurrentAssets, Description: "Primary business bank account"},
	{Code: "1200", Name: "Accounts Receivable", Type: TypeAsset, Category: CategoryCurrentAssets, Description: "Amounts owed by customers"},
	{Code: "1500", Name: "Office Equipment", Type: TypeAsset, Category: CategoryFixedAssets, Description: "Computers, furniture and equipment"},
	{Code: "1700", Name: "Software Licences", Type: TypeAsset, Category: CategoryIntangibleAssets},

	// Liabilities (2xxx)
	{Code: "2001", Name: "VAT Payable", Type: TypeLiability, Category: CategoryCurrentLiabilities, Description: "VAT owed to HMRC"},
	{Code: "2100", Name: "Accounts Payable", Type: TypeLiability, Category: CategoryCurrentLiabilities, Description: "Amounts owed to suppliers"},
	{Code: "2500", Name: "Bank Loan", Type: TypeLiability, Category: CategoryLongTermLiabilities},

	// Equity (3xxx)
	{Code: "3001", Name: "Share Capital", Type: TypeEquity, Category: CategoryShareCapital, Description: "Owner's capital contributions"},
	{Code: "3100", Name: "Retained Earnings", Type: TypeEquity, Category: CategoryRetainedEarnings},

	// Income (4xxx)
	{Code: "4001", Name: "Sales Revenue", Type: TypeIncome, Category: CategoryRevenue, Description: "Revenue from sales"},
	{Code: "4002", Name: "Service Revenue", Type: TypeIncome, Category: CategoryRevenue},
	{Code: "4100", Name: "Interest Income", Type: TypeIncome, Category: CategoryOtherIncome},

	// Expenses (5xxx)
	{Code: "5001", Name: "Rent Expense", Type: TypeExpense, Category: CategoryOperatingExpenses, Description: "Monthly office rent"},
	{Code: "5010", Name: "Utilities", Type: TypeExpense, Category: CategoryOperatingExpenses, Description: "Electricity, water, gas"},
	{Code: "5020", Name: "Salaries", Type: TypeExpense, Category: CategoryAdministrativeExpenses},
	{Code: "5030", Name: "Marketing", Type: TypeExpense, Category: CategoryOperatingExpenses},
	{Code: "5040", Name: "Office Supplies", Type: TypeExpense, Category: CategoryAdministrativeExpenses},
	{Code: "5050", Name: "Travel Expense", Type: TypeExpense, Category: CategoryOperatingExpenses},
	{Code: "5060", Name: "Phone & Internet", Type: TypeExpense, Category: CategoryOperatingExpenses},
	{Code: "5100", Name: "Bank Charges", Type: TypeExpense, Category: CategoryFinanceCosts},
}

// ChartReference describes the allowed type/category pairing for clients.
type ChartReference struct {
	Type          AccountType `json:"type"`
	NormalBalance string      `json:"normal_balance"`
	Categories    []Category  `json:"categories"`
}

// Reference returns the type/category table in AllTypes order.
func Reference() []ChartReference {
	ref := make([]ChartReference, 0, len(AllTypes))
	for _, t := range AllTypes {
		ref = append(ref, ChartReference{
			Type:          t,
			NormalBalance: NormalBalance(t),
			Categories:    CategoriesFor(t),
		})
	}
	return ref
}
