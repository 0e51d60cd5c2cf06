package core

import "errors"

// Tables of a user's ledger workbook. Every store backend creates all of
// them up front; the Summary sheet is a derived view and never holds rows.
const (
	TableExpenses = "Expenses"
	TableDebts    = "Debts"
	TableSavings  = "Savings"
	TableBudgets  = "Budgets"
	TableSummary  = "Summary"
)

// Suggested expense categories shown in the UI. Entries are free to use any
// category string; nothing enforces membership in this list.
var ExpenseCategories = []string{
	"Food & Dining", "Transportation", "Shopping", "Entertainment",
	"Bills & Utilities", "Healthcare", "Education", "Travel",
	"Groceries", "Rent/EMI", "Investment", "Other",
}

type (
	// ExpenseEntry is one row of the Expenses table. Date is stored as the
	// caller supplied it; amounts are plain floating-point numbers, the
	// currency symbol is presentation only.
	ExpenseEntry struct {
		Date          string  `json:"date"`
		Category      string  `json:"category"`
		Description   string  `json:"description"`
		Amount        float64 `json:"amount"`
		PaymentMethod string  `json:"payment_method"`
		Notes         string  `json:"notes"`
	}

	// DebtEntry is one row of the Debts table. Counterparty names the
	// creditor or debtor depending on Type.
	DebtEntry struct {
		Date         string  `json:"date"`
		Counterparty string  `json:"counterparty"`
		Type         string  `json:"type"`
		Amount       float64 `json:"amount"`
		Status       string  `json:"status"`
		DueDate      string  `json:"due_date"`
		Notes        string  `json:"notes"`
	}

	// SavingEntry is one row of the Savings table.
	SavingEntry struct {
		Date        string  `json:"date"`
		Type        string  `json:"type"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Goal        string  `json:"goal"`
		Notes       string  `json:"notes"`
	}

	// BudgetEntry is one row of the Budgets table. Remaining is derived
	// from BudgetAmount and SpentAmount at append time.
	BudgetEntry struct {
		Month        string  `json:"month"`
		Category     string  `json:"category"`
		BudgetAmount float64 `json:"budget_amount"`
		SpentAmount  float64 `json:"spent_amount"`
		Remaining    float64 `json:"remaining"`
	}
)

// Header rows, written once when a table is created and excluded from data
// iteration. Order matches the entry field order.
var (
	ExpenseHeader = []string{"Date", "Category", "Description", "Amount", "Payment Method", "Notes"}
	DebtHeader    = []string{"Date", "Creditor/Debtor", "Type", "Amount", "Status", "Due Date", "Notes"}
	SavingHeader  = []string{"Date", "Type", "Description", "Amount", "Goal", "Notes"}
	BudgetHeader  = []string{"Month", "Category", "Budget Amount", "Spent Amount", "Remaining"}
)

var (
	ErrEmptyUsername = errors.New("empty username")
	ErrEmptyPassword = errors.New("empty password")
	ErrEmptyDate     = errors.New("empty date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Present reports whether the entry counts as a data row. A row is present
// iff its first column (the date) is non-empty; readers skip everything else.
func (e ExpenseEntry) Present() bool { return e.Date != "" }

func (e DebtEntry) Present() bool { return e.Date != "" }

func (e SavingEntry) Present() bool { return e.Date != "" }

func (e BudgetEntry) Present() bool { return e.Month != "" }
