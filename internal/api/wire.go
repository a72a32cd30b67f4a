package api

import (
	"savoo/internal/core"
)

// Wire shapes mirror the server's snake_case JSON. Mapping into core
// types happens here so the rest of the client never sees raw payloads.

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type userPayload struct {
	Email                 string   `json:"email"`
	DisplayName           string   `json:"display_name"`
	DefaultCurrency       string   `json:"default_currency"`
	MonthlyIncome         *float64 `json:"monthly_income"`
	MonthlyIncomeCurrency string   `json:"monthly_income_currency"`
	MonthlyIncomeDay      *int     `json:"monthly_income_day"`
}

func (u userPayload) toProfile() core.UserProfile {
	p := core.UserProfile{
		Email:                 u.Email,
		DisplayName:           u.DisplayName,
		DefaultCurrency:       u.DefaultCurrency,
		MonthlyIncomeCurrency: u.MonthlyIncomeCurrency,
	}
	if u.MonthlyIncome != nil {
		p.MonthlyIncome = *u.MonthlyIncome
	}
	if u.MonthlyIncomeDay != nil {
		p.IncomeDayOfMonth = *u.MonthlyIncomeDay
	}
	if p.MonthlyIncomeCurrency == "" {
		p.MonthlyIncomeCurrency = p.DefaultCurrency
	}
	return p
}

type categoryPayload struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Color   string `json:"color"`
	IconURL string `json:"icon_url"`
}

func (c categoryPayload) toCategory() core.Category {
	return core.Category{
		ID:      c.ID,
		Name:    c.Name,
		Type:    core.TransactionType(c.Type),
		Color:   c.Color,
		IconURL: c.IconURL,
	}
}

type budgetTypePayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type transactionPayload struct {
	ID              int64     `json:"id"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	DisplayAmount   *float64  `json:"display_amount"`
	DisplayCurrency string    `json:"display_currency"`
	Note            string    `json:"note"`
	Kind            string    `json:"kind"`
	CategoryID      *int64    `json:"category_id"`
	BudgetID        *int64    `json:"budget_id"`
	BudgetName      string    `json:"budget_name"`
	OccurredOn      core.Date `json:"occurred_on"`
}

func (t transactionPayload) toTransaction() core.Transaction {
	note := core.DecodeNotePayload(t.Note)
	return core.Transaction{
		ID:              t.ID,
		Title:           note.Title,
		Amount:          t.Amount,
		Type:            core.TransactionType(t.Type),
		Kind:            core.NormalizeKind(t.Kind),
		OccurredOn:      t.OccurredOn,
		Currency:        t.Currency,
		DisplayAmount:   t.DisplayAmount,
		DisplayCurrency: t.DisplayCurrency,
		Note:            note.Note,
		CategoryID:      t.CategoryID,
		BudgetID:        t.BudgetID,
		BudgetName:      t.BudgetName,
		AutoIncome:      note.AutoIncome,
	}
}

type budgetPayload struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	LimitAmount      float64   `json:"limit_amount"`
	SpentAmount      float64   `json:"spent_amount"`
	Period           string    `json:"period"`
	BudgetType       string    `json:"budget_type"`
	Currency         string    `json:"currency"`
	CategoryID       *int64    `json:"category_id"`
	StartDate        core.Date `json:"start_date"`
	EndDate          core.Date `json:"end_date"`
	Remaining        *float64  `json:"remaining"`
	TransactionCount int       `json:"transaction_count"`
}

func (b budgetPayload) toBudget() core.Budget {
	return core.Budget{
		ID:               b.ID,
		Name:             b.Name,
		LimitAmount:      b.LimitAmount,
		SpentAmount:      b.SpentAmount,
		Period:           core.BudgetPeriod(b.Period),
		BudgetType:       core.ParseBudgetTypeTag(b.BudgetType).Key(),
		Currency:         b.Currency,
		CategoryID:       b.CategoryID,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		RemainingAmount:  b.Remaining,
		TransactionCount: b.TransactionCount,
	}
}

type goalPayload struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	TargetAmount      float64   `json:"target_amount"`
	CurrentAmount     float64   `json:"current_amount"`
	ContributedAmount float64   `json:"contributed_amount"`
	Deadline          core.Date `json:"deadline"`
	CategoryID        *int64    `json:"category_id"`
	IsActive          bool      `json:"is_active"`
}

func (g goalPayload) toGoal() core.SavingsGoal {
	return core.SavingsGoal{
		ID:                g.ID,
		Name:              g.Name,
		TargetAmount:      g.TargetAmount,
		CurrentAmount:     g.CurrentAmount,
		ContributedAmount: g.ContributedAmount,
		Deadline:          g.Deadline,
		CategoryID:        g.CategoryID,
		IsActive:          g.IsActive,
	}
}

type summaryPayload struct {
	PeriodStart          core.Date `json:"period_start"`
	PeriodEnd            core.Date `json:"period_end"`
	TotalIncome          float64   `json:"total_income"`
	TotalExpense         float64   `json:"total_expense"`
	NetSavings           float64   `json:"net_savings"`
	Currency             string    `json:"currency"`
	TopExpenseCategories []struct {
		Name  string  `json:"name"`
		Spent float64 `json:"spent"`
	} `json:"top_expense_categories"`
}

func (s summaryPayload) toSummary() core.DashboardSummary {
	out := core.DashboardSummary{
		PeriodStart:  s.PeriodStart,
		PeriodEnd:    s.PeriodEnd,
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		NetSavings:   s.NetSavings,
		Currency:     s.Currency,
	}
	for _, c := range s.TopExpenseCategories {
		name := c.Name
		if name == "" {
			name = core.FallbackCategoryLabel
		}
		out.TopExpenseCategories = append(out.TopExpenseCategories, core.CategorySpend{
			Name:  name,
			Spent: c.Spent,
		})
	}
	return out
}
