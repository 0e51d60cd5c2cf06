package http

import (
	"net/http"

	"khata/internal/core"
	applog "khata/internal/log"
)

// statsPayload is SummaryStats plus rupee display strings.
type statsPayload struct {
	core.SummaryStats
	TotalExpensesDisplay string `json:"total_expenses_display"`
	TotalDebtsDisplay    string `json:"total_debts_display"`
	TotalSavingsDisplay  string `json:"total_savings_display"`
	NetBalanceDisplay    string `json:"net_balance_display"`
}

func buildStatsPayload(stats core.SummaryStats) statsPayload {
	return statsPayload{
		SummaryStats:         stats,
		TotalExpensesDisplay: formatINR(stats.TotalExpenses),
		TotalDebtsDisplay:    formatINR(stats.TotalDebts),
		TotalSavingsDisplay:  formatINR(stats.TotalSavings),
		NetBalanceDisplay:    formatINR(stats.NetBalance),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, username string) {
	stats, err := s.ledger.Summary(r.Context(), username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to compute summary").Write(w)
		return
	}
	NewJSONResponse().Success(true).Field("stats", buildStatsPayload(stats)).Write(w)
}

// handleDashboard bundles the stats, the five most recent expenses, and
// the category list into one response.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, username string) {
	stats, err := s.ledger.Summary(r.Context(), username)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to compute summary").Write(w)
		return
	}

	recent, err := s.ledger.Expenses(r.Context(), username, 5)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Recent expense list failed",
			applog.FieldUsername, username, applog.FieldError, err)
		InternalServerError("Failed to load recent expenses").Write(w)
		return
	}
	if recent == nil {
		recent = []core.ExpenseEntry{}
	}

	NewJSONResponse().
		Success(true).
		Field("stats", buildStatsPayload(stats)).
		Field("recent_expenses", recent).
		Field("categories", core.ExpenseCategories).
		Write(w)
}
