package http

import (
	"savoo/internal/storage"
)

// Serialization helpers mapping storage rows onto the snake_case wire
// shapes the clients consume.

func userJSON(u storage.User) map[string]any {
	var incomeDay *int64
	if u.MonthlyIncomeDay != nil && *u.MonthlyIncomeDay > 0 {
		incomeDay = u.MonthlyIncomeDay
	}
	return map[string]any{
		"email":                   u.Email,
		"display_name":            u.DisplayName,
		"default_currency":        u.DefaultCurrency,
		"monthly_income":          u.MonthlyIncome,
		"monthly_income_currency": u.MonthlyIncomeCurrency,
		"monthly_income_day":      incomeDay,
	}
}

func categoryJSON(c storage.Category) map[string]any {
	return map[string]any{
		"id":       c.ID,
		"name":     c.Name,
		"type":     c.Type,
		"color":    c.Color,
		"icon_url": c.IconURL,
	}
}

func budgetTypeJSON(bt storage.BudgetType) map[string]any {
	return map[string]any{
		"id":   bt.ID,
		"name": bt.Name,
	}
}

// transactionJSON echoes the stored amount as the display amount; the
// server never converts currencies.
func transactionJSON(t storage.Transaction, budgetNames map[int64]string) map[string]any {
	body := map[string]any{
		"id":               t.ID,
		"type":             t.Type,
		"amount":           t.Amount,
		"currency":         t.Currency,
		"display_amount":   t.Amount,
		"display_currency": t.Currency,
		"note":             t.Note,
		"kind":             t.Kind,
		"category_id":      t.CategoryID,
		"budget_id":        t.BudgetID,
		"occurred_on":      t.OccurredOn,
	}
	if t.BudgetID != nil {
		body["budget_name"] = budgetNames[*t.BudgetID]
	}
	return body
}

func budgetJSON(ov storage.BudgetOverview, currency string) map[string]any {
	return map[string]any{
		"currency":          currency,
		"id":                ov.ID,
		"name":              ov.Name,
		"limit_amount":      ov.LimitAmount,
		"spent_amount":      ov.SpentAmount,
		"period":            ov.Period,
		"budget_type":       ov.BudgetType,
		"category_id":       ov.CategoryID,
		"start_date":        ov.StartDate,
		"end_date":          ov.EndDate,
		"remaining":         ov.Remaining,
		"transaction_count": ov.TransactionCount,
		"utilization":       ov.Utilization,
	}
}

func goalJSON(g storage.SavingsGoal) map[string]any {
	return map[string]any{
		"id":                 g.ID,
		"name":               g.Name,
		"target_amount":      g.TargetAmount,
		"current_amount":     g.CurrentAmount,
		"contributed_amount": g.ContributedAmount,
		"deadline":           g.Deadline,
		"category_id":        g.CategoryID,
		"is_active":          g.IsActive,
	}
}
