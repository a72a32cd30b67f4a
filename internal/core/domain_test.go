package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		txn     Transaction
		wantErr error
	}{
		{"valid expense", Transaction{Amount: 10, Type: TypeExpense}, nil},
		{"zero amount", Transaction{Amount: 0, Type: TypeIncome}, ErrInvalidAmount},
		{"negative amount", Transaction{Amount: -5, Type: TypeExpense}, ErrInvalidAmount},
		{"unknown type", Transaction{Amount: 10, Type: "loan"}, ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.txn.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetProgress(t *testing.T) {
	tests := []struct {
		name   string
		budget Budget
		want   float64
	}{
		{"half spent", Budget{LimitAmount: 100, SpentAmount: 50}, 0.5},
		{"overspent clamps to one", Budget{LimitAmount: 100, SpentAmount: 250}, 1},
		{"nothing spent", Budget{LimitAmount: 100}, 0},
		{"zero limit", Budget{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.budget.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBudgetRemaining(t *testing.T) {
	server := 77.0
	b := Budget{LimitAmount: 100, SpentAmount: 40, RemainingAmount: &server}
	if got := b.Remaining(); got != 77 {
		t.Errorf("Remaining() = %v, want the server value 77", got)
	}
	b.RemainingAmount = nil
	if got := b.Remaining(); got != 60 {
		t.Errorf("Remaining() = %v, want limit-spent 60", got)
	}
}

func TestSavingsGoalRemainingFloorsAtZero(t *testing.T) {
	g := SavingsGoal{TargetAmount: 100, CurrentAmount: 130}
	if got := g.Remaining(); got != 0 {
		t.Errorf("Remaining() = %v, want 0 for an overfunded goal", got)
	}
	if got := g.Progress(); got != 1 {
		t.Errorf("Progress() = %v, want clamp to 1", got)
	}
}

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		raw  string
		want TransactionKind
	}{
		{"salary", KindSalary},
		{"  Travel ", KindTravel},
		{"mystery", KindGeneral},
		{"", KindGeneral},
	}
	for _, tt := range tests {
		if got := NormalizeKind(tt.raw); got != tt.want {
			t.Errorf("NormalizeKind(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{"plain date", "2024-06-15", NewDate(2024, 6, 15), false},
		{"timestamp tail tolerated", "2024-06-15T10:30:00", NewDate(2024, 6, 15), false},
		{"garbage", "next tuesday", Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && !got.Equal(tt.want.Time) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	if got := DaysInMonth(2024, 2); got != 29 {
		t.Errorf("February 2024 = %d days, want 29", got)
	}
	if got := DaysInMonth(2023, 2); got != 28 {
		t.Errorf("February 2023 = %d days, want 28", got)
	}
	if got := DaysInMonth(2024, 6); got != 30 {
		t.Errorf("June = %d days, want 30", got)
	}
}

func TestBudgetTypeTag(t *testing.T) {
	tests := []struct {
		raw         string
		wantBuiltin bool
		wantLabel   string
	}{
		{"groceries", true, "Groceries"},
		{"Household", true, "Household"},
		{"", true, "Custom"},
		{"wedding fund", false, "Wedding fund"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			tag := ParseBudgetTypeTag(tt.raw)
			if tag.IsBuiltin() != tt.wantBuiltin {
				t.Errorf("IsBuiltin() = %v, want %v", tag.IsBuiltin(), tt.wantBuiltin)
			}
			if tag.Label() != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", tag.Label(), tt.wantLabel)
			}
		})
	}
}
