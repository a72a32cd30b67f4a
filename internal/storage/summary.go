package storage

import (
	"context"
	"fmt"

	"savoo/internal/core"
)

// SummaryTotals sums income and expense transactions over the inclusive
// ISO date range.
func (r *SQLiteRepository) SummaryTotals(ctx context.Context, userID int64, start, end string) (income, expense float64, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN type = 'income' THEN amount END), 0),
		        COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0)
		 FROM transactions WHERE user_id = ? AND occurred_on BETWEEN ? AND ?`,
		userID, start, end).Scan(&income, &expense)
	if err != nil {
		return 0, 0, fmt.Errorf("summary totals: %w", err)
	}
	return income, expense, nil
}

// TopExpenseCategories returns the biggest expense categories in the
// range, spend descending. Deleted categories aggregate under the
// fallback label.
func (r *SQLiteRepository) TopExpenseCategories(ctx context.Context, userID int64, start, end string, limit int) ([]core.CategorySpend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, COALESCE(SUM(t.amount), 0) AS spent
		 FROM transactions t LEFT JOIN categories c ON t.category_id = c.id
		 WHERE t.user_id = ? AND t.type = 'expense' AND t.occurred_on BETWEEN ? AND ?
		 GROUP BY c.name ORDER BY spent DESC LIMIT ?`,
		userID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("top expense categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategorySpend
	for rows.Next() {
		var name *string
		var spent float64
		if err := rows.Scan(&name, &spent); err != nil {
			return nil, fmt.Errorf("scan category spend: %w", err)
		}
		label := core.FallbackCategoryLabel
		if name != nil && *name != "" {
			label = *name
		}
		out = append(out, core.CategorySpend{Name: label, Spent: spent})
	}
	return out, rows.Err()
}
