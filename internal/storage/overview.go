package storage

import (
	"context"
	"fmt"

	"savoo/internal/core"
)

// BudgetOverview is a budget with its computed aggregates for one point
// in time.
type BudgetOverview struct {
	Budget
	SpentAmount      float64
	Remaining        float64
	TransactionCount int
	Utilization      float64
}

// BudgetOverviews loads the user's budgets and computes spent amounts
// from expense transactions. A transaction counts toward a budget when
// it is explicitly linked; when a budget has no linked spending at all,
// unlinked transactions in its category fill in instead. The window is
// the budget's own start/end dates, defaulting to the current month.
func (r *SQLiteRepository) BudgetOverviews(ctx context.Context, userID int64, today core.Date) ([]BudgetOverview, error) {
	budgets, err := r.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT budget_id, category_id, amount, occurred_on
		 FROM transactions WHERE user_id = ? AND type = 'expense'`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expense transactions: %w", err)
	}
	defer rows.Close()

	type expense struct {
		budgetID   *int64
		categoryID *int64
		amount     float64
		occurredOn core.Date
	}
	var expenses []expense
	for rows.Next() {
		var e expense
		var occurred string
		if err := rows.Scan(&e.budgetID, &e.categoryID, &e.amount, &occurred); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		d, err := core.ParseDate(occurred)
		if err != nil {
			continue // unparseable rows are skipped, matching list behaviour
		}
		e.occurredOn = d
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	monthStart := core.NewDate(today.Year(), int(today.Month()), 1)
	monthEnd := core.EndOfMonth(today)

	out := make([]BudgetOverview, 0, len(budgets))
	for _, b := range budgets {
		start, end := monthStart, monthEnd
		if b.StartDate != nil {
			if d, err := core.ParseDate(*b.StartDate); err == nil {
				start = d
			}
		}
		if b.EndDate != nil {
			if d, err := core.ParseDate(*b.EndDate); err == nil {
				end = d
			}
		}

		var spent, fallbackSpent float64
		var count, fallbackCount int
		for _, e := range expenses {
			if e.occurredOn.Before(start.Time) || e.occurredOn.After(end.Time) {
				continue
			}
			switch {
			case e.budgetID != nil && *e.budgetID == b.ID:
				spent += e.amount
				count++
			case b.CategoryID != nil && e.budgetID == nil &&
				e.categoryID != nil && *e.categoryID == *b.CategoryID:
				fallbackSpent += e.amount
				fallbackCount++
			}
		}
		if spent == 0 && b.CategoryID != nil {
			spent = fallbackSpent
			count = fallbackCount
		}

		ov := BudgetOverview{
			Budget:           b,
			SpentAmount:      spent,
			Remaining:        b.LimitAmount - spent,
			TransactionCount: count,
		}
		if b.LimitAmount > 0 {
			ov.Utilization = spent / b.LimitAmount
		}
		out = append(out, ov)
	}
	return out, nil
}
