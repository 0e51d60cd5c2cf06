package http

import (
	"net/http"

	"khata/internal/core"
	applog "khata/internal/log"
)

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request, username string) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	date := parser.Get("date")
	if date == "" {
		BadRequestError("Date is required").Write(w)
		return
	}
	amount, err := core.ParseAmount(parser.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	entry := core.ExpenseEntry{
		Date:          date,
		Category:      parser.Get("category"),
		Description:   parser.Get("description"),
		Amount:        amount,
		PaymentMethod: parser.Get("payment_method"),
		Notes:         parser.Get("notes"),
	}

	if err := s.ledger.AddExpense(r.Context(), username, entry); err != nil {
		s.logger.ErrorContext(r.Context(), "Expense append failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to save expense").Write(w)
		return
	}
	CreatedResponse("Expense added successfully").Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, username string) {
	limit := ParseLimitParam(r.URL.Query())
	expenses, err := s.ledger.Expenses(r.Context(), username, limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense list failed",
			applog.FieldUsername, username, applog.FieldLimit, limit, applog.FieldError, err)
		InternalServerError("Failed to load expenses").Write(w)
		return
	}
	if expenses == nil {
		expenses = []core.ExpenseEntry{}
	}
	NewJSONResponse().Success(true).Field("expenses", expenses).Write(w)
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request, username string) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	date := parser.Get("date")
	if date == "" {
		BadRequestError("Date is required").Write(w)
		return
	}
	amount, err := core.ParseAmount(parser.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	entry := core.DebtEntry{
		Date:         date,
		Counterparty: parser.Get("counterparty"),
		Type:         parser.Get("type"),
		Amount:       amount,
		Status:       parser.Get("status"),
		DueDate:      parser.Get("due_date"),
		Notes:        parser.Get("notes"),
	}

	if err := s.ledger.AddDebt(r.Context(), username, entry); err != nil {
		s.logger.ErrorContext(r.Context(), "Debt append failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to save debt").Write(w)
		return
	}
	CreatedResponse("Debt added successfully").Write(w)
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request, username string) {
	debts, err := s.ledger.Debts(r.Context(), username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Debt list failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to load debts").Write(w)
		return
	}
	if debts == nil {
		debts = []core.DebtEntry{}
	}
	NewJSONResponse().Success(true).Field("debts", debts).Write(w)
}

func (s *Server) handleAddSaving(w http.ResponseWriter, r *http.Request, username string) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	date := parser.Get("date")
	if date == "" {
		BadRequestError("Date is required").Write(w)
		return
	}
	amount, err := core.ParseAmount(parser.Get("amount"))
	if err != nil {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	entry := core.SavingEntry{
		Date:        date,
		Type:        parser.Get("type"),
		Description: parser.Get("description"),
		Amount:      amount,
		Goal:        parser.Get("goal"),
		Notes:       parser.Get("notes"),
	}

	if err := s.ledger.AddSaving(r.Context(), username, entry); err != nil {
		s.logger.ErrorContext(r.Context(), "Saving append failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to save saving entry").Write(w)
		return
	}
	CreatedResponse("Saving added successfully").Write(w)
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request, username string) {
	savings, err := s.ledger.Savings(r.Context(), username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Saving list failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to load savings").Write(w)
		return
	}
	if savings == nil {
		savings = []core.SavingEntry{}
	}
	NewJSONResponse().Success(true).Field("savings", savings).Write(w)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request, username string) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	month := parser.Get("month")
	if month == "" {
		BadRequestError("Month is required").Write(w)
		return
	}
	budgetAmount, err := core.ParseAmount(parser.Get("budget_amount"))
	if err != nil {
		UnprocessableEntityError("Invalid budget amount").Write(w)
		return
	}
	spent := 0.0
	if v := parser.Get("spent_amount"); v != "" {
		spent, err = core.ParseAmount(v)
		if err != nil {
			UnprocessableEntityError("Invalid spent amount").Write(w)
			return
		}
	}

	entry := core.BudgetEntry{
		Month:        month,
		Category:     parser.Get("category"),
		BudgetAmount: budgetAmount,
		SpentAmount:  spent,
		Remaining:    budgetAmount - spent,
	}

	if err := s.ledger.AddBudget(r.Context(), username, entry); err != nil {
		s.logger.ErrorContext(r.Context(), "Budget append failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to save budget").Write(w)
		return
	}
	CreatedResponse("Budget added successfully").Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Success(true).Field("categories", core.ExpenseCategories).Write(w)
}
