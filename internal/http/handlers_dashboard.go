package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"savoo/internal/core"
)

// recentBudgetLimitCount bounds how many budget limits the summary echoes.
const recentBudgetLimitCount = 3

// summaryRange resolves the period key to an inclusive ISO date range
// ending today.
func summaryRange(period string, today core.Date) (start, end core.Date) {
	switch period {
	case "weekly":
		offset := (int(today.Weekday()) + 6) % 7
		start = today.AddDays(-offset)
	case "yearly":
		start = core.NewDate(today.Year(), 1, 1)
	default: // monthly
		start = core.NewDate(today.Year(), int(today.Month()), 1)
	}
	return start, today
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	today := core.DateOf(s.now())
	period := r.URL.Query().Get("period")
	start, end := summaryRange(period, today)

	income, expense, err := s.repo.SummaryTotals(r.Context(), user.ID, start.String(), end.String())
	if err != nil {
		s.internalError(w, r, "summary totals", err)
		return
	}
	top, err := s.repo.TopExpenseCategories(r.Context(), user.ID, start.String(), end.String(), core.TopCategoryLimit)
	if err != nil {
		s.internalError(w, r, "top categories", err)
		return
	}
	recentLimits, err := s.repo.RecentBudgetLimits(r.Context(), user.ID, recentBudgetLimitCount)
	if err != nil {
		s.internalError(w, r, "recent budget limits", err)
		return
	}

	topOut := make([]map[string]any, len(top))
	for i, c := range top {
		topOut[i] = map[string]any{"name": c.Name, "spent": c.Spent}
	}

	ok(w, http.StatusOK, "", map[string]any{
		"summary": map[string]any{
			"period_start":           start.String(),
			"period_end":             end.String(),
			"total_income":           income,
			"total_expense":          expense,
			"net_savings":            income - expense,
			"currency":               user.DefaultCurrency,
			"top_expense_categories": topOut,
			"recent_budget_limits":   recentLimits,
		},
	})
}

// handleExportAll streams the full transaction history as CSV.
func (s *Server) handleExportAll(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	txns, err := s.repo.ListTransactions(r.Context(), user.ID, "", "")
	if err != nil {
		s.internalError(w, r, "list transactions", err)
		return
	}
	categories, err := s.repo.ListCategories(r.Context(), user.ID)
	if err != nil {
		s.internalError(w, r, "list categories", err)
		return
	}
	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	filename := fmt.Sprintf("savoo-export-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"occurred_on", "type", "kind", "amount", "currency", "category", "note"})
	for _, t := range txns {
		category := ""
		if t.CategoryID != nil {
			category = categoryNames[*t.CategoryID]
			if category == "" {
				category = core.FallbackCategoryLabel
			}
		}
		cw.Write([]string{
			t.OccurredOn,
			t.Type,
			t.Kind,
			fmt.Sprintf("%.2f", t.Amount),
			t.Currency,
			category,
			t.Note,
		})
	}
	cw.Flush()
}
