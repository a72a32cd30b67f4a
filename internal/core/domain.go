package core

import (
	"errors"
	"strings"
	"time"
)

// TransactionType distinguishes money coming in, going out, or moving
// between the user's own accounts.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
)

// TransactionKind is a free classification tag on top of the type.
type TransactionKind string

const (
	KindGeneral       TransactionKind = "general"
	KindHousehold     TransactionKind = "household"
	KindEntertainment TransactionKind = "entertainment"
	KindSavings       TransactionKind = "savings"
	KindTravel        TransactionKind = "travel"
	KindEducation     TransactionKind = "education"
	KindHealth        TransactionKind = "health"
	KindInvestment    TransactionKind = "investment"
	KindSalary        TransactionKind = "salary"
	KindBonus         TransactionKind = "bonus"
	KindGift          TransactionKind = "gift"
	KindOther         TransactionKind = "other"
)

// BudgetPeriod is the nominal cadence a budget limit covers.
type BudgetPeriod string

const (
	PeriodWeekly    BudgetPeriod = "weekly"
	PeriodMonthly   BudgetPeriod = "monthly"
	PeriodQuarterly BudgetPeriod = "quarterly"
	PeriodCustom    BudgetPeriod = "custom"
)

var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidPeriod   = errors.New("invalid budget period")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPayday   = errors.New("payday must be between 1 and 31")
	ErrInvalidCategory = errors.New("category type must be income or expense")
)

// Date is a calendar day without a time-of-day component. It marshals as
// an ISO-8601 date (2006-01-02) on the wire.
type Date struct {
	time.Time
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts an ISO date, tolerating a trailing time component.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// DaysInMonth returns the number of days in the given year+month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// EndOfMonth returns the last calendar day of d's month.
func EndOfMonth(d Date) Date {
	return NewDate(d.Year(), int(d.Month()), DaysInMonth(d.Year(), d.Month()))
}

// Transaction is a single recorded money movement. Instances are
// immutable once fetched; the server list is replaced wholesale on
// refresh.
type Transaction struct {
	ID              int64
	Title           string
	Amount          float64
	Type            TransactionType
	Kind            TransactionKind
	OccurredOn      Date
	Currency        string
	DisplayAmount   *float64
	DisplayCurrency string
	Note            string
	CategoryID      *int64
	BudgetID        *int64
	BudgetName      string
	AutoIncome      bool
}

// EffectiveAmount prefers the server-normalized display amount when the
// server supplied one.
func (t Transaction) EffectiveAmount() float64 {
	if t.DisplayAmount != nil {
		return *t.DisplayAmount
	}
	return t.Amount
}

func (t Transaction) Validate() error {
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TypeIncome, TypeExpense, TypeTransfer:
	default:
		return ErrInvalidType
	}
	return nil
}

// NormalizeKind maps unknown kind strings to the general bucket, mirroring
// the server's allow-list behaviour.
func NormalizeKind(raw string) TransactionKind {
	k := TransactionKind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case KindGeneral, KindHousehold, KindEntertainment, KindSavings,
		KindTravel, KindEducation, KindHealth, KindInvestment,
		KindSalary, KindBonus, KindGift, KindOther:
		return k
	}
	return KindGeneral
}

// Category classifies transactions. Transactions hold a weak reference:
// the category row may be deleted, display then falls back to a generic
// label.
type Category struct {
	ID      int64
	Name    string
	Type    TransactionType
	Color   string
	IconURL string
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Type != TypeIncome && c.Type != TypeExpense {
		return ErrInvalidCategory
	}
	return nil
}

// FallbackCategoryLabel is displayed for transactions whose category row
// no longer exists.
const FallbackCategoryLabel = "Uncategorized"

// BudgetType is a user-defined tag naming what a budget is for.
type BudgetType struct {
	ID   int64
	Name string
}

// Budget tracks spending against a limit. Spent, remaining, and
// transaction count are server-computed aggregates refreshed after every
// transaction mutation.
type Budget struct {
	ID               int64
	Name             string
	LimitAmount      float64
	SpentAmount      float64
	Period           BudgetPeriod
	BudgetType       string
	Currency         string
	CategoryID       *int64
	StartDate        Date
	EndDate          Date
	RemainingAmount  *float64
	TransactionCount int
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.LimitAmount <= 0 {
		return ErrInvalidAmount
	}
	switch b.Period {
	case PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodCustom:
	default:
		return ErrInvalidPeriod
	}
	return nil
}

// Progress is spent/limit clamped to [0, 1].
func (b Budget) Progress() float64 {
	if b.LimitAmount <= 0 {
		return 0
	}
	return clamp01(b.SpentAmount / b.LimitAmount)
}

// Remaining prefers the server-computed remaining amount and falls back
// to limit minus spent.
func (b Budget) Remaining() float64 {
	if b.RemainingAmount != nil {
		return *b.RemainingAmount
	}
	return b.LimitAmount - b.SpentAmount
}

// SavingsGoal accumulates contributions toward a target. Contributions
// are append-only increments; the server deactivates a fully funded goal.
type SavingsGoal struct {
	ID                int64
	Name              string
	TargetAmount      float64
	CurrentAmount     float64
	ContributedAmount float64
	Deadline          Date
	CategoryID        *int64
	IsActive          bool
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Progress is current/target clamped to [0, 1].
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return clamp01(g.CurrentAmount / g.TargetAmount)
}

// Remaining is floored at zero; overfunded goals report nothing left.
func (g SavingsGoal) Remaining() float64 {
	if rem := g.TargetAmount - g.CurrentAmount; rem > 0 {
		return rem
	}
	return 0
}

// UserProfile holds account settings. Email is the immutable key.
type UserProfile struct {
	Email                 string
	DisplayName           string
	DefaultCurrency       string
	MonthlyIncome         float64
	MonthlyIncomeCurrency string
	IncomeDayOfMonth      int // 0 when unset, otherwise 1-31
}

func (p UserProfile) Validate() error {
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	if p.MonthlyIncome < 0 {
		return ErrInvalidAmount
	}
	if p.IncomeDayOfMonth < 0 || p.IncomeDayOfMonth > 31 {
		return ErrInvalidPayday
	}
	return nil
}

// CategorySpend is a category name with its aggregated spend.
type CategorySpend struct {
	Name  string
	Spent float64
}

// DashboardSummary is derived, read-only state recomputed per refresh.
type DashboardSummary struct {
	PeriodStart          Date
	PeriodEnd            Date
	TotalIncome          float64
	TotalExpense         float64
	NetSavings           float64
	TopExpenseCategories []CategorySpend
	Currency             string
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
