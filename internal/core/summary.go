package core

// SummaryStats holds the derived totals for a user's ledger. It is
// recomputed from the current entries on every read; nothing is cached.
type SummaryStats struct {
	TotalExpenses    float64            `json:"total_expenses"`
	TotalDebts       float64            `json:"total_debts"`
	TotalSavings     float64            `json:"total_savings"`
	NetBalance       float64            `json:"net_balance"`
	CategoryExpenses map[string]float64 `json:"category_expenses"`
}

// ComputeSummary aggregates entries into summary statistics. Rows whose
// first column is empty are skipped, matching what every store backend does
// on read. Category keys are taken verbatim, case included.
func ComputeSummary(expenses []ExpenseEntry, debts []DebtEntry, savings []SavingEntry) SummaryStats {
	stats := SummaryStats{
		CategoryExpenses: make(map[string]float64),
	}

	for _, e := range expenses {
		if !e.Present() {
			continue
		}
		stats.TotalExpenses += e.Amount
		if e.Category != "" {
			stats.CategoryExpenses[e.Category] += e.Amount
		}
	}
	for _, d := range debts {
		if !d.Present() {
			continue
		}
		stats.TotalDebts += d.Amount
	}
	for _, s := range savings {
		if !s.Present() {
			continue
		}
		stats.TotalSavings += s.Amount
	}

	stats.NetBalance = stats.TotalSavings - (stats.TotalExpenses + stats.TotalDebts)
	return stats
}

// ReverseExpenses returns a newest-first copy, optionally truncated to the
// limit most recent entries. limit <= 0 means no truncation.
func ReverseExpenses(in []ExpenseEntry, limit int) []ExpenseEntry {
	out := make([]ExpenseEntry, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// ReverseDebts returns a newest-first copy.
func ReverseDebts(in []DebtEntry) []DebtEntry {
	out := make([]DebtEntry, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
	}
	return out
}

// ReverseSavings returns a newest-first copy.
func ReverseSavings(in []SavingEntry) []SavingEntry {
	out := make([]SavingEntry, 0, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out = append(out, in[i])
	}
	return out
}
