// Package state owns the in-memory application snapshot and sequences
// all remote calls. There is no ambient singleton: the UI holds a *Store,
// subscribes for change notifications, and reads snapshots.
package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"savoo/internal/api"
	"savoo/internal/core"
)

// API is the remote surface the store depends on. *api.Client satisfies
// it; tests substitute fakes.
type API interface {
	Login(ctx context.Context, email, password string) (core.UserProfile, error)
	Register(ctx context.Context, email, password, displayName, questionKey, answer string) (core.UserProfile, error)
	Logout(ctx context.Context) error

	Profile(ctx context.Context) (core.UserProfile, error)
	UpdateProfile(ctx context.Context, p core.UserProfile) error

	Categories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	BudgetTypes(ctx context.Context) ([]core.BudgetType, error)
	CreateBudgetType(ctx context.Context, name string) error
	DeleteBudgetType(ctx context.Context, id int64) error

	Transactions(ctx context.Context) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) error

	Budgets(ctx context.Context) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) error

	SavingsGoals(ctx context.Context) ([]core.SavingsGoal, error)
	CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) error
	DeleteSavingsGoal(ctx context.Context, id int64) error
	AddSavingsContribution(ctx context.Context, goalID int64, amount float64, note string) error

	Summary(ctx context.Context, period string) (core.DashboardSummary, error)
}

// Snapshot is the full fetched state at one moment. Collections are
// replaced wholesale after confirmed writes, never patched in place.
type Snapshot struct {
	Authenticated bool
	Profile       core.UserProfile
	Transactions  []core.Transaction
	Categories    []core.Category
	Budgets       []core.Budget
	BudgetTypes   []core.BudgetType
	SavingsGoals  []core.SavingsGoal
	Summary       core.DashboardSummary
	LastError     string
}

// Store coordinates refreshes and mutations against the remote API and
// notifies subscribers after each state change.
type Store struct {
	apiClient API
	prefs     *Prefs
	now       func() time.Time

	mu   sync.Mutex
	snap Snapshot

	subMu sync.Mutex
	subs  []func(Snapshot)

	// profile save debounce machine, see save.go
	saveState      saveState
	pendingProfile core.UserProfile
}

// NewStore creates a store around the given API client. prefs may be nil
// when no local preference persistence is wanted.
func NewStore(apiClient API, prefs *Prefs) *Store {
	return &Store{
		apiClient: apiClient,
		prefs:     prefs,
		now:       time.Now,
	}
}

// Subscribe registers fn to run after every state change. fn receives a
// copy of the snapshot and must not block.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	snap := s.Snapshot()
	s.subMu.Lock()
	subs := make([]func(Snapshot), len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Authenticated reports whether a user is logged in.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Authenticated
}

// LastError returns the most recent user-facing failure message.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.LastError
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.snap.LastError = msg
	s.mu.Unlock()
}

// fail records the failure and reports whether it forced a logout.
func (s *Store) fail(ctx context.Context, err error) bool {
	if api.IsAuthError(err) {
		slog.WarnContext(ctx, "Authorization failure, forcing logout", "error", err)
		s.ForceLogout(ctx)
		return true
	}
	s.setError(api.ErrorMessage(err))
	s.notify()
	return false
}

// Login authenticates, stores the profile, and runs a dashboard refresh.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	profile, err := s.apiClient.Login(ctx, email, password)
	if err != nil {
		s.setError(api.ErrorMessage(err))
		s.notify()
		return false
	}
	s.mu.Lock()
	s.snap = Snapshot{Authenticated: true, Profile: profile}
	s.mu.Unlock()
	if err := s.RefreshDashboard(ctx); err != nil {
		slog.WarnContext(ctx, "Initial dashboard refresh incomplete", "error", err)
	}
	s.notify()
	return true
}

// Register creates an account and enters the logged-in state.
func (s *Store) Register(ctx context.Context, email, password, displayName, questionKey, answer string) bool {
	profile, err := s.apiClient.Register(ctx, email, password, displayName, questionKey, answer)
	if err != nil {
		s.setError(api.ErrorMessage(err))
		s.notify()
		return false
	}
	s.mu.Lock()
	s.snap = Snapshot{Authenticated: true, Profile: profile}
	s.mu.Unlock()
	if err := s.RefreshDashboard(ctx); err != nil {
		slog.WarnContext(ctx, "Initial dashboard refresh incomplete", "error", err)
	}
	s.notify()
	return true
}

// Logout tells the server and clears the snapshot regardless of the
// server's answer.
func (s *Store) Logout(ctx context.Context) {
	if err := s.apiClient.Logout(ctx); err != nil {
		slog.WarnContext(ctx, "Logout request failed", "error", err)
	}
	s.clearSnapshot()
	s.notify()
}

// ForceLogout clears local state without a server round-trip. Used when
// the server already rejected the session.
func (s *Store) ForceLogout(ctx context.Context) {
	if c, ok := s.apiClient.(interface{ ClearCredentials() }); ok {
		c.ClearCredentials()
	}
	s.clearSnapshot()
	s.notify()
}

func (s *Store) clearSnapshot() {
	s.mu.Lock()
	s.snap = Snapshot{}
	s.saveState = saveIdle
	s.mu.Unlock()
}

// RefreshDashboard reloads every collection in sequence. A failure in one
// step never aborts the others; the first captured error is surfaced at
// the end unless an authorization failure forces a logout instead.
func (s *Store) RefreshDashboard(ctx context.Context) error {
	if !s.Authenticated() {
		return nil
	}

	var captured []error
	capture := func(step string, err error) {
		slog.WarnContext(ctx, "Dashboard refresh step failed", "step", step, "error", err)
		captured = append(captured, err)
	}

	if cats, err := s.apiClient.Categories(ctx); err != nil {
		capture("categories", err)
	} else {
		s.mu.Lock()
		s.snap.Categories = cats
		s.mu.Unlock()
	}

	if types, err := s.apiClient.BudgetTypes(ctx); err != nil {
		capture("budget_types", err)
	} else {
		s.mu.Lock()
		s.snap.BudgetTypes = types
		s.mu.Unlock()
	}

	transactionsLoaded := false
	if txns, err := s.apiClient.Transactions(ctx); err != nil {
		capture("transactions", err)
	} else {
		s.mu.Lock()
		s.snap.Transactions = txns
		s.mu.Unlock()
		transactionsLoaded = true
		if err := s.creditMonthlyIncome(ctx); err != nil {
			capture("income_credit", err)
		}
	}

	if budgets, err := s.apiClient.Budgets(ctx); err != nil {
		capture("budgets", err)
	} else {
		s.mu.Lock()
		s.snap.Budgets = budgets
		s.mu.Unlock()
	}

	if goals, err := s.apiClient.SavingsGoals(ctx); err != nil {
		capture("savings_goals", err)
	} else {
		s.mu.Lock()
		s.snap.SavingsGoals = goals
		s.mu.Unlock()
	}

	if summary, err := s.apiClient.Summary(ctx, "monthly"); err != nil {
		capture("summary", err)
		if transactionsLoaded {
			s.rebuildLocalSummary()
		}
	} else {
		s.mu.Lock()
		s.snap.Summary = summary
		s.mu.Unlock()
	}

	for _, err := range captured {
		if api.IsAuthError(err) {
			s.ForceLogout(ctx)
			return nil
		}
	}
	if len(captured) > 0 {
		s.setError(api.ErrorMessage(captured[0]))
		s.notify()
		return captured[0]
	}
	s.setError("")
	s.notify()
	return nil
}

// creditMonthlyIncome applies the automatic income rule against the
// freshly loaded transactions and submits at most one salary transaction.
func (s *Store) creditMonthlyIncome(ctx context.Context) error {
	s.mu.Lock()
	profile := s.snap.Profile
	txns := s.snap.Transactions
	s.mu.Unlock()

	credit, ok := core.PlanIncomeCredit(profile, txns, core.DateOf(s.now()))
	if !ok {
		return nil
	}
	slog.InfoContext(ctx, "Crediting monthly income",
		"amount", credit.Amount, "occurred_on", credit.OccurredOn.String())
	if err := s.apiClient.CreateTransaction(ctx, credit); err != nil {
		return err
	}
	txns, err := s.apiClient.Transactions(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap.Transactions = txns
	s.mu.Unlock()
	return nil
}

// rebuildLocalSummary recomputes the dashboard summary from loaded
// transactions when the server summary is unavailable.
func (s *Store) rebuildLocalSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := core.ComputeMonthSummary(s.snap.Transactions, s.snap.Categories, core.DateOf(s.now()))
	summary.Currency = s.snap.Profile.DefaultCurrency
	s.snap.Summary = summary
}

// AddTransaction validates, submits, and reloads transactions, budgets,
// and the summary.
func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) bool {
	if err := t.Validate(); err != nil {
		s.setError(err.Error())
		s.notify()
		return false
	}
	if err := s.apiClient.CreateTransaction(ctx, t); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadTransactions(ctx)
	s.reloadBudgets(ctx)
	s.reloadSummary(ctx)
	s.setError("")
	s.notify()
	return true
}

// CreateBudget submits a budget and reloads the budget list.
func (s *Store) CreateBudget(ctx context.Context, b core.Budget) bool {
	if err := b.Validate(); err != nil {
		s.setError(err.Error())
		s.notify()
		return false
	}
	if err := s.apiClient.CreateBudget(ctx, b); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadBudgets(ctx)
	s.setError("")
	s.notify()
	return true
}

// CreateSavingsGoal submits a goal and reloads the goal list.
func (s *Store) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) bool {
	if err := g.Validate(); err != nil {
		s.setError(err.Error())
		s.notify()
		return false
	}
	if err := s.apiClient.CreateSavingsGoal(ctx, g); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadGoals(ctx)
	s.setError("")
	s.notify()
	return true
}

// AddSavingsContribution appends a contribution, then reloads goals,
// transactions, and the summary (contributions create transactions
// server-side).
func (s *Store) AddSavingsContribution(ctx context.Context, goalID int64, amount float64, note string) bool {
	if amount <= 0 {
		s.setError(core.ErrInvalidAmount.Error())
		s.notify()
		return false
	}
	if err := s.apiClient.AddSavingsContribution(ctx, goalID, amount, note); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadGoals(ctx)
	s.reloadTransactions(ctx)
	s.reloadSummary(ctx)
	s.setError("")
	s.notify()
	return true
}

// DeleteSavingsGoal removes a goal and reloads the goal list.
func (s *Store) DeleteSavingsGoal(ctx context.Context, id int64) bool {
	if err := s.apiClient.DeleteSavingsGoal(ctx, id); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadGoals(ctx)
	s.setError("")
	s.notify()
	return true
}

// CreateExpenseCategory adds an expense category and reloads categories.
func (s *Store) CreateExpenseCategory(ctx context.Context, name, color string) bool {
	cat := core.Category{Name: name, Type: core.TypeExpense, Color: color}
	if err := cat.Validate(); err != nil {
		s.setError(err.Error())
		s.notify()
		return false
	}
	if err := s.apiClient.CreateCategory(ctx, cat); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadCategories(ctx)
	s.setError("")
	s.notify()
	return true
}

// DeleteCategory removes a category; transactions keep their weak
// reference and fall back to the generic label.
func (s *Store) DeleteCategory(ctx context.Context, id int64) bool {
	if err := s.apiClient.DeleteCategory(ctx, id); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadCategories(ctx)
	s.reloadSummary(ctx)
	s.setError("")
	s.notify()
	return true
}

// CreateBudgetType adds a budget type tag and reloads the tag list.
func (s *Store) CreateBudgetType(ctx context.Context, name string) bool {
	if name == "" {
		s.setError(core.ErrEmptyName.Error())
		s.notify()
		return false
	}
	if err := s.apiClient.CreateBudgetType(ctx, name); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadBudgetTypes(ctx)
	s.setError("")
	s.notify()
	return true
}

// DeleteBudgetType removes a budget type tag and reloads the tag list.
func (s *Store) DeleteBudgetType(ctx context.Context, id int64) bool {
	if err := s.apiClient.DeleteBudgetType(ctx, id); err != nil {
		s.fail(ctx, err)
		return false
	}
	s.reloadBudgetTypes(ctx)
	s.setError("")
	s.notify()
	return true
}

func (s *Store) reloadTransactions(ctx context.Context) {
	txns, err := s.apiClient.Transactions(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Reload transactions failed", "error", err)
		return
	}
	s.mu.Lock()
	s.snap.Transactions = txns
	s.mu.Unlock()
}

func (s *Store) reloadBudgets(ctx context.Context) {
	budgets, err := s.apiClient.Budgets(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Reload budgets failed", "error", err)
		return
	}
	s.mu.Lock()
	s.snap.Budgets = budgets
	s.mu.Unlock()
}

func (s *Store) reloadGoals(ctx context.Context) {
	goals, err := s.apiClient.SavingsGoals(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Reload savings goals failed", "error", err)
		return
	}
	s.mu.Lock()
	s.snap.SavingsGoals = goals
	s.mu.Unlock()
}

func (s *Store) reloadCategories(ctx context.Context) {
	cats, err := s.apiClient.Categories(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Reload categories failed", "error", err)
		return
	}
	s.mu.Lock()
	s.snap.Categories = cats
	s.mu.Unlock()
}

func (s *Store) reloadBudgetTypes(ctx context.Context) {
	types, err := s.apiClient.BudgetTypes(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Reload budget types failed", "error", err)
		return
	}
	s.mu.Lock()
	s.snap.BudgetTypes = types
	s.mu.Unlock()
}

func (s *Store) reloadSummary(ctx context.Context) {
	summary, err := s.apiClient.Summary(ctx, "monthly")
	if err != nil {
		slog.WarnContext(ctx, "Reload summary failed, rebuilding locally", "error", err)
		s.rebuildLocalSummary()
		return
	}
	s.mu.Lock()
	s.snap.Summary = summary
	s.mu.Unlock()
}

// VisibleBudgetTypes merges the built-in tags with the user's custom ones,
// dropping any key the user hid locally.
func (s *Store) VisibleBudgetTypes() []core.BudgetTypeTag {
	s.mu.Lock()
	custom := make([]core.BudgetType, len(s.snap.BudgetTypes))
	copy(custom, s.snap.BudgetTypes)
	s.mu.Unlock()

	var out []core.BudgetTypeTag
	for _, b := range core.BuiltinBudgetTypes() {
		tag := core.ParseBudgetTypeTag(string(b))
		if s.prefs != nil && s.prefs.IsBudgetTypeHidden(tag.Key()) {
			continue
		}
		out = append(out, tag)
	}
	for _, c := range custom {
		tag := core.ParseBudgetTypeTag(c.Name)
		if tag.IsBuiltin() {
			continue // already present from the builtin list
		}
		if s.prefs != nil && s.prefs.IsBudgetTypeHidden(tag.Key()) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// HideBudgetType hides a tag key locally; the server list is untouched.
func (s *Store) HideBudgetType(key string) error {
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.HideBudgetType(key); err != nil {
		return err
	}
	s.notify()
	return nil
}

// UnhideBudgetType reverses HideBudgetType.
func (s *Store) UnhideBudgetType(key string) error {
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.UnhideBudgetType(key); err != nil {
		return err
	}
	s.notify()
	return nil
}
