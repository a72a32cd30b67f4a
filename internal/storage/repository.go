// Package storage is the SQLite persistence layer. Dates and timestamps
// are stored as ISO-8601 TEXT columns, amounts as REAL, matching the
// wire format the API serves.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist or belongs to
// another user.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// User is a users row. Timestamp columns stay in their TEXT form.
type User struct {
	ID                    int64
	Email                 string
	PasswordHash          string
	DisplayName           string
	DefaultCurrency       string
	MonthlyIncome         *float64
	MonthlyIncomeCurrency string
	MonthlyIncomeDay      *int64
	SecurityQuestionKey   string
	SecurityAnswerHash    string
	ResetToken            *string
	ResetTokenExpiresAt   *string
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u User) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, display_name, default_currency, security_question_key, security_answer_hash)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.DisplayName, u.DefaultCurrency, u.SecurityQuestionKey, u.SecurityAnswerHash)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, display_name, default_currency,
		        monthly_income, monthly_income_currency, monthly_income_day,
		        security_question_key, security_answer_hash, reset_token, reset_token_expires_at
		 FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.DefaultCurrency,
			&u.MonthlyIncome, &u.MonthlyIncomeCurrency, &u.MonthlyIncomeDay,
			&u.SecurityQuestionKey, &u.SecurityAnswerHash, &u.ResetToken, &u.ResetTokenExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("user ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, userID int64, displayName, defaultCurrency string, monthlyIncome *float64, monthlyIncomeCurrency string, monthlyIncomeDay *int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, default_currency = ?, monthly_income = ?,
		        monthly_income_currency = ?, monthly_income_day = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		displayName, defaultCurrency, monthlyIncome, monthlyIncomeCurrency, monthlyIncomeDay, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login_at = CURRENT_TIMESTAMP WHERE id = ?", userID)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// SetResetToken stores a one-shot password reset token with its ISO
// expiry timestamp.
func (r *SQLiteRepository) SetResetToken(ctx context.Context, userID int64, token, expiresAt string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET reset_token = ?, reset_token_expires_at = ? WHERE id = ?",
		token, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password hash and burns any reset token.
func (r *SQLiteRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expires_at = NULL,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Category is a categories row.
type Category struct {
	ID      int64
	UserID  int64
	Name    string
	Type    string
	Color   string
	IconURL string
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name, type, color, icon_url FROM categories WHERE user_id = ? ORDER BY name ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.IconURL); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, type, color, icon_url) VALUES (?, ?, ?, ?, ?)",
		c.UserID, c.Name, c.Type, c.Color, c.IconURL)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BudgetType is a budget_types row.
type BudgetType struct {
	ID     int64
	UserID int64
	Name   string
}

func (r *SQLiteRepository) ListBudgetTypes(ctx context.Context, userID int64) ([]BudgetType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, name FROM budget_types WHERE user_id = ? ORDER BY name ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("list budget types: %w", err)
	}
	defer rows.Close()

	var out []BudgetType
	for rows.Next() {
		var bt BudgetType
		if err := rows.Scan(&bt.ID, &bt.UserID, &bt.Name); err != nil {
			return nil, fmt.Errorf("scan budget type: %w", err)
		}
		out = append(out, bt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateBudgetType(ctx context.Context, userID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO budget_types (user_id, name) VALUES (?, ?)", userID, name)
	if err != nil {
		return 0, fmt.Errorf("create budget type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget type id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteBudgetType(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM budget_types WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete budget type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Transaction is a transactions row. Note carries the raw note column;
// the server never decodes the nested payload.
type Transaction struct {
	ID         int64
	UserID     int64
	CategoryID *int64
	Type       string
	Amount     float64
	Currency   string
	Note       string
	Kind       string
	BudgetID   *int64
	OccurredOn string
}

// ListTransactions returns the user's transactions newest-first. start
// and end are inclusive ISO date bounds; either may be empty.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID int64, start, end string) ([]Transaction, error) {
	query := `SELECT id, user_id, category_id, type, amount, currency, note, kind, budget_id, occurred_on
		 FROM transactions WHERE user_id = ?`
	args := []any{userID}
	if start != "" {
		query += " AND occurred_on >= ?"
		args = append(args, start)
	}
	if end != "" {
		query += " AND occurred_on <= ?"
		args = append(args, end)
	}
	query += " ORDER BY occurred_on DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.Type, &t.Amount,
			&t.Currency, &t.Note, &t.Kind, &t.BudgetID, &t.OccurredOn); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, category_id, type, amount, currency, note, kind, budget_id, occurred_on)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.CategoryID, t.Type, t.Amount, t.Currency, t.Note, t.Kind, t.BudgetID, t.OccurredOn)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}
	return id, nil
}

// Budget is a budgets row before aggregate computation.
type Budget struct {
	ID             int64
	UserID         int64
	CategoryID     *int64
	Name           string
	LimitAmount    float64
	Period         string
	BudgetType     string
	StartDate      *string
	EndDate        *string
	LastNotifiedAt *string
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID int64) ([]Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, category_id, name, limit_amount, period, budget_type, start_date, end_date, last_notified_at
		 FROM budgets WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Name, &b.LimitAmount,
			&b.Period, &b.BudgetType, &b.StartDate, &b.EndDate, &b.LastNotifiedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b Budget) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category_id, name, limit_amount, period, budget_type, start_date, end_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Name, b.LimitAmount, b.Period, b.BudgetType, b.StartDate, b.EndDate)
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("budget id: %w", err)
	}
	return id, nil
}

// MarkBudgetNotified records when a budget alert last fired, so alerts
// stay capped at one per budget per day.
func (r *SQLiteRepository) MarkBudgetNotified(ctx context.Context, budgetID int64, timestamp string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE budgets SET last_notified_at = ? WHERE id = ?", timestamp, budgetID)
	if err != nil {
		return fmt.Errorf("mark budget notified: %w", err)
	}
	return nil
}

// SavingsGoal is a savings_goals row with its contribution sum.
type SavingsGoal struct {
	ID                int64
	UserID            int64
	Name              string
	TargetAmount      float64
	CurrentAmount     float64
	ContributedAmount float64
	Deadline          *string
	CategoryID        *int64
	IsActive          bool
}

func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context, userID int64) ([]SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.user_id, g.name, g.target_amount, g.current_amount,
		        COALESCE((SELECT SUM(c.amount) FROM savings_goal_contributions c WHERE c.goal_id = g.id), 0),
		        g.deadline, g.category_id, g.is_active
		 FROM savings_goals g WHERE g.user_id = ? ORDER BY g.created_at DESC, g.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var out []SavingsGoal
	for rows.Next() {
		var g SavingsGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount,
			&g.ContributedAmount, &g.Deadline, &g.CategoryID, &g.IsActive); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateSavingsGoal(ctx context.Context, g SavingsGoal) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (user_id, name, target_amount, current_amount, deadline, category_id, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline, g.CategoryID, g.IsActive)
	if err != nil {
		return 0, fmt.Errorf("create savings goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("savings goal id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM savings_goals WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddContribution appends a contribution, bumps the goal's running total,
// and deactivates the goal once it is fully funded. Returns the updated
// goal.
func (r *SQLiteRepository) AddContribution(ctx context.Context, userID, goalID int64, amount float64, note string) (SavingsGoal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return SavingsGoal{}, fmt.Errorf("begin contribution: %w", err)
	}
	defer tx.Rollback()

	var g SavingsGoal
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, name, target_amount, current_amount, deadline, category_id, is_active
		 FROM savings_goals WHERE id = ? AND user_id = ?`, goalID, userID).
		Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Deadline, &g.CategoryID, &g.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return SavingsGoal{}, ErrNotFound
	}
	if err != nil {
		return SavingsGoal{}, fmt.Errorf("load goal: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM savings_goal_contributions WHERE goal_id = ?",
		goalID).Scan(&g.ContributedAmount); err != nil {
		return SavingsGoal{}, fmt.Errorf("sum contributions: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO savings_goal_contributions (goal_id, amount, note) VALUES (?, ?, ?)",
		goalID, amount, note); err != nil {
		return SavingsGoal{}, fmt.Errorf("insert contribution: %w", err)
	}

	g.CurrentAmount += amount
	g.ContributedAmount += amount
	if g.CurrentAmount >= g.TargetAmount {
		g.IsActive = false
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, g.CurrentAmount, g.IsActive, goalID); err != nil {
		return SavingsGoal{}, fmt.Errorf("update goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SavingsGoal{}, fmt.Errorf("commit contribution: %w", err)
	}
	return g, nil
}
