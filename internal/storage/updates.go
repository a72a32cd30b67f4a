package storage

import (
	"context"
	"fmt"
	"strings"
)

// Partial-update helpers. Each Update struct uses nil to mean "leave the
// column alone"; the Clear flags set nullable foreign keys back to NULL.

type TransactionUpdate struct {
	CategoryID    *int64
	BudgetID      *int64
	ClearBudgetID bool
	Type          *string
	Kind          *string
	Amount        *float64
	Currency      *string
	Note          *string
	OccurredOn    *string
}

func (u TransactionUpdate) assignments() ([]string, []any) {
	var sets []string
	var args []any
	if u.CategoryID != nil {
		sets, args = append(sets, "category_id = ?"), append(args, *u.CategoryID)
	}
	if u.ClearBudgetID {
		sets = append(sets, "budget_id = NULL")
	} else if u.BudgetID != nil {
		sets, args = append(sets, "budget_id = ?"), append(args, *u.BudgetID)
	}
	if u.Type != nil {
		sets, args = append(sets, "type = ?"), append(args, *u.Type)
	}
	if u.Kind != nil {
		sets, args = append(sets, "kind = ?"), append(args, *u.Kind)
	}
	if u.Amount != nil {
		sets, args = append(sets, "amount = ?"), append(args, *u.Amount)
	}
	if u.Currency != nil {
		sets, args = append(sets, "currency = ?"), append(args, *u.Currency)
	}
	if u.Note != nil {
		sets, args = append(sets, "note = ?"), append(args, *u.Note)
	}
	if u.OccurredOn != nil {
		sets, args = append(sets, "occurred_on = ?"), append(args, *u.OccurredOn)
	}
	return sets, args
}

// Empty reports whether the update would change nothing.
func (u TransactionUpdate) Empty() bool {
	sets, _ := u.assignments()
	return len(sets) == 0
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID, id int64, u TransactionUpdate) error {
	sets, args := u.assignments()
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE transactions SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", ")),
		args...)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type CategoryUpdate struct {
	Name    *string
	Type    *string
	Color   *string
	IconURL *string
}

func (u CategoryUpdate) assignments() ([]string, []any) {
	var sets []string
	var args []any
	if u.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *u.Name)
	}
	if u.Type != nil {
		sets, args = append(sets, "type = ?"), append(args, *u.Type)
	}
	if u.Color != nil {
		sets, args = append(sets, "color = ?"), append(args, *u.Color)
	}
	if u.IconURL != nil {
		sets, args = append(sets, "icon_url = ?"), append(args, *u.IconURL)
	}
	return sets, args
}

func (u CategoryUpdate) Empty() bool {
	sets, _ := u.assignments()
	return len(sets) == 0
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID, id int64, u CategoryUpdate) error {
	sets, args := u.assignments()
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE categories SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", ")),
		args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type BudgetUpdate struct {
	Name        *string
	LimitAmount *float64
	Period      *string
	BudgetType  *string
	CategoryID  *int64
	StartDate   *string
	EndDate     *string
}

func (u BudgetUpdate) assignments() ([]string, []any) {
	var sets []string
	var args []any
	if u.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *u.Name)
	}
	if u.LimitAmount != nil {
		sets, args = append(sets, "limit_amount = ?"), append(args, *u.LimitAmount)
	}
	if u.Period != nil {
		sets, args = append(sets, "period = ?"), append(args, *u.Period)
	}
	if u.BudgetType != nil {
		sets, args = append(sets, "budget_type = ?"), append(args, *u.BudgetType)
	}
	if u.CategoryID != nil {
		sets, args = append(sets, "category_id = ?"), append(args, *u.CategoryID)
	}
	if u.StartDate != nil {
		sets, args = append(sets, "start_date = ?"), append(args, *u.StartDate)
	}
	if u.EndDate != nil {
		sets, args = append(sets, "end_date = ?"), append(args, *u.EndDate)
	}
	return sets, args
}

func (u BudgetUpdate) Empty() bool {
	sets, _ := u.assignments()
	return len(sets) == 0
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, userID, id int64, u BudgetUpdate) error {
	sets, args := u.assignments()
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE budgets SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", ")),
		args...)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type SavingsGoalUpdate struct {
	Name          *string
	TargetAmount  *float64
	CurrentAmount *float64
	Deadline      *string
	CategoryID    *int64
	IsActive      *bool
}

func (u SavingsGoalUpdate) assignments() ([]string, []any) {
	var sets []string
	var args []any
	if u.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *u.Name)
	}
	if u.TargetAmount != nil {
		sets, args = append(sets, "target_amount = ?"), append(args, *u.TargetAmount)
	}
	if u.CurrentAmount != nil {
		sets, args = append(sets, "current_amount = ?"), append(args, *u.CurrentAmount)
	}
	if u.Deadline != nil {
		sets, args = append(sets, "deadline = ?"), append(args, *u.Deadline)
	}
	if u.CategoryID != nil {
		sets, args = append(sets, "category_id = ?"), append(args, *u.CategoryID)
	}
	if u.IsActive != nil {
		sets, args = append(sets, "is_active = ?"), append(args, *u.IsActive)
	}
	return sets, args
}

func (u SavingsGoalUpdate) Empty() bool {
	sets, _ := u.assignments()
	return len(sets) == 0
}

func (r *SQLiteRepository) UpdateSavingsGoal(ctx context.Context, userID, id int64, u SavingsGoalUpdate) error {
	sets, args := u.assignments()
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id, userID)
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE savings_goals SET %s WHERE id = ? AND user_id = ?", strings.Join(sets, ", ")),
		args...)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentBudgetLimits returns the limit amounts of the most recently
// created budgets, newest first.
func (r *SQLiteRepository) RecentBudgetLimits(ctx context.Context, userID int64, limit int) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT limit_amount FROM budgets WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent budget limits: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("recent budget limits: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
