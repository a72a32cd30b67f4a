// Package api is the REST client for the Savoo backend. It speaks the
// JSON success/message envelope convention, attaches HTTP Basic
// credentials after login, and maps failures onto the Error type so the
// state layer can tell authorization failures from everything else.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"savoo/internal/core"
)

// Client talks to one Savoo server on behalf of at most one user.
// It is not safe for concurrent use; the coordinator serializes calls.
type Client struct {
	baseURL string
	http    *http.Client

	email    string
	password string
}

// NewClient creates a client for the given base URL (no trailing slash
// required).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetCredentials installs the Basic auth identity used on subsequent
// requests. Login and Register call this on success.
func (c *Client) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

// ClearCredentials drops the stored identity (logout).
func (c *Client) ClearCredentials() {
	c.email = ""
	c.password = ""
}

// Email returns the identity of the logged-in user, if any.
func (c *Client) Email() string { return c.email }

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.email != "" {
		req.SetBasicAuth(c.email, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newDecodeError(resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return newDecodeError(resp.StatusCode)
	}
	if resp.StatusCode >= 400 || !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return newDecodeError(resp.StatusCode)
		}
	}
	return nil
}

// Login authenticates and installs the credentials on success.
func (c *Client) Login(ctx context.Context, email, password string) (core.UserProfile, error) {
	var resp struct {
		envelope
		User userPayload `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return core.UserProfile{}, err
	}
	c.SetCredentials(email, password)
	return resp.User.toProfile(), nil
}

// Register creates an account and installs the credentials on success.
func (c *Client) Register(ctx context.Context, email, password, displayName, questionKey, answer string) (core.UserProfile, error) {
	var resp struct {
		envelope
		User userPayload `json:"user"`
	}
	body := map[string]string{
		"email":                 email,
		"password":              password,
		"display_name":          displayName,
		"security_question_key": questionKey,
		"security_answer":       answer,
	}
	if err := c.do(ctx, http.MethodPost, "/register", body, &resp); err != nil {
		return core.UserProfile{}, err
	}
	c.SetCredentials(email, password)
	return resp.User.toProfile(), nil
}

// Logout tells the server and drops the local credentials regardless of
// the outcome.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.ClearCredentials()
	return err
}

// VerifySecurityAnswer starts a password reset; it returns the one-shot
// reset token.
func (c *Client) VerifySecurityAnswer(ctx context.Context, email, questionKey, answer string) (string, error) {
	var resp struct {
		envelope
		ResetToken string `json:"reset_token"`
	}
	body := map[string]string{
		"email":                 email,
		"security_question_key": questionKey,
		"security_answer":       answer,
	}
	if err := c.do(ctx, http.MethodPost, "/forgot-password/verify", body, &resp); err != nil {
		return "", err
	}
	return resp.ResetToken, nil
}

// ResetPassword completes a password reset with the token from
// VerifySecurityAnswer.
func (c *Client) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	body := map[string]string{
		"email":            email,
		"reset_token":      token,
		"new_password":     newPassword,
		"confirm_password": newPassword,
	}
	return c.do(ctx, http.MethodPost, "/forgot-password/reset", body, nil)
}

// Profile fetches the logged-in user's profile.
func (c *Client) Profile(ctx context.Context) (core.UserProfile, error) {
	var resp struct {
		envelope
		Profile userPayload `json:"profile"`
	}
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &resp); err != nil {
		return core.UserProfile{}, err
	}
	return resp.Profile.toProfile(), nil
}

// UpdateProfile saves profile settings. Email is the identity and never
// changes.
func (c *Client) UpdateProfile(ctx context.Context, p core.UserProfile) error {
	body := map[string]any{
		"display_name":            p.DisplayName,
		"default_currency":        p.DefaultCurrency,
		"monthly_income":          p.MonthlyIncome,
		"monthly_income_currency": p.MonthlyIncomeCurrency,
	}
	if p.IncomeDayOfMonth > 0 {
		body["monthly_income_day"] = p.IncomeDayOfMonth
	} else {
		body["monthly_income_day"] = nil
	}
	return c.do(ctx, http.MethodPut, "/profile", body, nil)
}

// Categories lists the user's categories.
func (c *Client) Categories(ctx context.Context) ([]core.Category, error) {
	var resp struct {
		envelope
		Categories []categoryPayload `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Category, len(resp.Categories))
	for i, p := range resp.Categories {
		out[i] = p.toCategory()
	}
	return out, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, cat core.Category) error {
	body := map[string]any{
		"name":     cat.Name,
		"type":     string(cat.Type),
		"color":    cat.Color,
		"icon_url": cat.IconURL,
	}
	return c.do(ctx, http.MethodPost, "/categories", body, nil)
}

// DeleteCategory removes a category by id.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/categories/"+strconv.FormatInt(id, 10), nil, nil)
}

// BudgetTypes lists the user-defined budget type tags.
func (c *Client) BudgetTypes(ctx context.Context) ([]core.BudgetType, error) {
	var resp struct {
		envelope
		BudgetTypes []budgetTypePayload `json:"budget_types"`
	}
	if err := c.do(ctx, http.MethodGet, "/budget-types", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.BudgetType, len(resp.BudgetTypes))
	for i, p := range resp.BudgetTypes {
		out[i] = core.BudgetType{ID: p.ID, Name: p.Name}
	}
	return out, nil
}

// CreateBudgetType adds a budget type tag.
func (c *Client) CreateBudgetType(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/budget-types", map[string]string{"name": name}, nil)
}

// DeleteBudgetType removes a budget type tag by id.
func (c *Client) DeleteBudgetType(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/budget-types/"+strconv.FormatInt(id, 10), nil, nil)
}

// Transactions fetches the full transaction list, mapping note payloads
// into titles and the auto-income marker.
func (c *Client) Transactions(ctx context.Context) ([]core.Transaction, error) {
	var resp struct {
		envelope
		Transactions []transactionPayload `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, len(resp.Transactions))
	for i, p := range resp.Transactions {
		out[i] = p.toTransaction()
	}
	return out, nil
}

// CreateTransaction submits a transaction, packing title/note/auto-income
// into the nested note payload.
func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) error {
	body := map[string]any{
		"amount":      t.Amount,
		"type":        string(t.Type),
		"kind":        string(t.Kind),
		"currency":    t.Currency,
		"occurred_on": t.OccurredOn.String(),
		"note": core.EncodeNotePayload(core.NotePayload{
			Title:      t.Title,
			Note:       t.Note,
			AutoIncome: t.AutoIncome,
		}),
	}
	if t.CategoryID != nil {
		body["category_id"] = *t.CategoryID
	}
	if t.BudgetID != nil {
		body["budget_id"] = *t.BudgetID
	}
	return c.do(ctx, http.MethodPost, "/transactions", body, nil)
}

// Budgets lists budgets with their server-computed aggregates.
func (c *Client) Budgets(ctx context.Context) ([]core.Budget, error) {
	var resp struct {
		envelope
		Budgets []budgetPayload `json:"budgets"`
	}
	path := "/budgets?email=" + url.QueryEscape(c.email)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Budget, len(resp.Budgets))
	for i, p := range resp.Budgets {
		out[i] = p.toBudget()
	}
	return out, nil
}

// CreateBudget adds a budget.
func (c *Client) CreateBudget(ctx context.Context, b core.Budget) error {
	body := map[string]any{
		"email":        c.email,
		"name":         b.Name,
		"limit_amount": b.LimitAmount,
		"period":       string(b.Period),
		"budget_type":  b.BudgetType,
		"currency":     b.Currency,
	}
	if b.CategoryID != nil {
		body["category_id"] = *b.CategoryID
	}
	if !b.StartDate.IsZero() {
		body["start_date"] = b.StartDate.String()
	}
	if !b.EndDate.IsZero() {
		body["end_date"] = b.EndDate.String()
	}
	return c.do(ctx, http.MethodPost, "/budgets", body, nil)
}

// SavingsGoals lists the user's savings goals.
func (c *Client) SavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	var resp struct {
		envelope
		Goals []goalPayload `json:"goals"`
	}
	path := "/savings-goals?email=" + url.QueryEscape(c.email)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.SavingsGoal, len(resp.Goals))
	for i, p := range resp.Goals {
		out[i] = p.toGoal()
	}
	return out, nil
}

// CreateSavingsGoal adds a goal.
func (c *Client) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) error {
	body := map[string]any{
		"email":         c.email,
		"name":          g.Name,
		"target_amount": g.TargetAmount,
		"is_active":     g.IsActive,
	}
	if g.CurrentAmount > 0 {
		body["current_amount"] = g.CurrentAmount
	}
	if !g.Deadline.IsZero() {
		body["deadline"] = g.Deadline.String()
	}
	if g.CategoryID != nil {
		body["category_id"] = *g.CategoryID
	}
	return c.do(ctx, http.MethodPost, "/savings-goals", body, nil)
}

// DeleteSavingsGoal removes a goal by id.
func (c *Client) DeleteSavingsGoal(ctx context.Context, id int64) error {
	path := "/savings-goals/" + strconv.FormatInt(id, 10) + "?email=" + url.QueryEscape(c.email)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// AddSavingsContribution appends a contribution to a goal.
func (c *Client) AddSavingsContribution(ctx context.Context, goalID int64, amount float64, note string) error {
	body := map[string]any{
		"email":  c.email,
		"amount": amount,
	}
	if note != "" {
		body["note"] = note
	}
	path := "/savings-goals/" + strconv.FormatInt(goalID, 10) + "/contributions"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// Summary fetches the server-computed dashboard summary for the period
// key (weekly, monthly, yearly).
func (c *Client) Summary(ctx context.Context, period string) (core.DashboardSummary, error) {
	var resp struct {
		envelope
		Summary *summaryPayload `json:"summary"`
	}
	path := "/dashboard/summary?email=" + url.QueryEscape(c.email) + "&period=" + url.QueryEscape(period)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return core.DashboardSummary{}, err
	}
	if resp.Summary == nil {
		return core.DashboardSummary{}, newDecodeError(http.StatusOK)
	}
	return resp.Summary.toSummary(), nil
}

// ExportAll downloads the full-account CSV export as a raw byte stream.
func (c *Client) ExportAll(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/export/all", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.email != "" {
		req.SetBasicAuth(c.email, c.password)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, &Error{Status: resp.StatusCode, Message: "export failed"}
	}
	return io.ReadAll(resp.Body)
}
