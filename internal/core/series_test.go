package core

import (
	"testing"
)

func expenseOn(d Date, amount float64) Transaction {
	return Transaction{Type: TypeExpense, Amount: amount, OccurredOn: d}
}

func TestBucketStart_Idempotent(t *testing.T) {
	dates := []Date{
		NewDate(2024, 1, 1),
		NewDate(2024, 2, 29),
		NewDate(2024, 6, 15),
		NewDate(2024, 12, 31),
		NewDate(2025, 3, 9), // a Sunday
	}
	intervals := []Interval{IntervalDaily, IntervalWeekly, IntervalMonthly}

	for _, interval := range intervals {
		for _, d := range dates {
			once := BucketStart(d, interval)
			twice := BucketStart(once, interval)
			if !once.Equal(twice.Time) {
				t.Errorf("BucketStart not idempotent for %s/%s: %s != %s", interval, d, once, twice)
			}
		}
	}
}

func TestBucketStart_Weekly_MondayStart(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		want Date
	}{
		{"monday maps to itself", NewDate(2024, 6, 10), NewDate(2024, 6, 10)},
		{"wednesday maps back to monday", NewDate(2024, 6, 12), NewDate(2024, 6, 10)},
		{"sunday maps back six days", NewDate(2024, 6, 16), NewDate(2024, 6, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BucketStart(tt.in, IntervalWeekly)
			if !got.Equal(tt.want.Time) {
				t.Errorf("BucketStart(%s, weekly) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestBucketStart_Monthly(t *testing.T) {
	got := BucketStart(NewDate(2024, 2, 29), IntervalMonthly)
	if want := NewDate(2024, 2, 1); !got.Equal(want.Time) {
		t.Errorf("BucketStart monthly = %s, want %s", got, want)
	}
}

func TestDateRange_ClampTo(t *testing.T) {
	today := NewDate(2024, 6, 15)
	tests := []struct {
		name      string
		rng       DateRange
		wantStart Date
		wantEnd   Date
	}{
		{
			name:      "fully in the past is untouched",
			rng:       DateRange{Start: NewDate(2024, 6, 1), End: NewDate(2024, 6, 10)},
			wantStart: NewDate(2024, 6, 1),
			wantEnd:   NewDate(2024, 6, 10),
		},
		{
			name:      "end in the future clamps to today",
			rng:       DateRange{Start: NewDate(2024, 6, 1), End: NewDate(2024, 7, 1)},
			wantStart: NewDate(2024, 6, 1),
			wantEnd:   today,
		},
		{
			name:      "both in the future collapse to today",
			rng:       DateRange{Start: NewDate(2024, 7, 1), End: NewDate(2024, 7, 10)},
			wantStart: today,
			wantEnd:   today,
		},
		{
			name:      "inverted range collapses onto start",
			rng:       DateRange{Start: NewDate(2024, 6, 10), End: NewDate(2024, 6, 1)},
			wantStart: NewDate(2024, 6, 10),
			wantEnd:   NewDate(2024, 6, 10),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rng.ClampTo(today)
			if !got.Start.Equal(tt.wantStart.Time) || !got.End.Equal(tt.wantEnd.Time) {
				t.Errorf("ClampTo = [%s, %s], want [%s, %s]", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if got.End.After(today.Time) || got.Start.After(today.Time) {
				t.Error("clamped range reaches past today")
			}
			if got.End.Before(got.Start.Time) {
				t.Error("clamped range is inverted")
			}
		})
	}
}

func TestBuildSeries_PerPeriodDaily(t *testing.T) {
	today := NewDate(2024, 6, 20)
	rng := DateRange{Start: NewDate(2024, 6, 1), End: NewDate(2024, 6, 5)}
	txns := []Transaction{
		expenseOn(NewDate(2024, 6, 1), 100),
		expenseOn(NewDate(2024, 6, 3), 50),
	}

	s := BuildSeries(txns, rng, IntervalDaily, ModePerPeriod, today)

	want := []float64{100, 0, 50, 0, 0}
	if len(s.Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(s.Points), len(want))
	}
	for i, w := range want {
		if s.Points[i].Value != w {
			t.Errorf("point %d = %v, want %v", i, s.Points[i].Value, w)
		}
		if s.Points[i].Index != i {
			t.Errorf("point %d has index %d", i, s.Points[i].Index)
		}
	}
	if s.RangeTotal != 150 {
		t.Errorf("RangeTotal = %v, want 150", s.RangeTotal)
	}
	if s.PeriodCount != 5 {
		t.Errorf("PeriodCount = %d, want 5", s.PeriodCount)
	}
}

func TestBuildSeries_CumulativeDaily(t *testing.T) {
	today := NewDate(2024, 6, 20)
	rng := DateRange{Start: NewDate(2024, 6, 1), End: NewDate(2024, 6, 5)}
	txns := []Transaction{
		expenseOn(NewDate(2024, 6, 1), 100),
		expenseOn(NewDate(2024, 6, 3), 50),
	}

	s := BuildSeries(txns, rng, IntervalDaily, ModeCumulative, today)

	want := []float64{100, 100, 150, 150, 150}
	for i, w := range want {
		if s.Points[i].Value != w {
			t.Errorf("point %d = %v, want %v", i, s.Points[i].Value, w)
		}
	}
	if s.FinalValue != 150 {
		t.Errorf("FinalValue = %v, want 150", s.FinalValue)
	}
	if s.RangeTotal != 150 {
		t.Errorf("RangeTotal = %v, want 150", s.RangeTotal)
	}

	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Value < s.Points[i-1].Value {
			t.Errorf("cumulative series decreases at point %d", i)
		}
	}
}

func TestBuildSeries_PerPeriodSumEqualsRangeTotal(t *testing.T) {
	today := NewDate(2024, 6, 30)
	rng := DateRange{Start: NewDate(2024, 5, 1), End: NewDate(2024, 6, 30)}
	txns := []Transaction{
		expenseOn(NewDate(2024, 5, 2), 12.5),
		expenseOn(NewDate(2024, 5, 17), 80),
		expenseOn(NewDate(2024, 6, 1), 3),
		expenseOn(NewDate(2024, 6, 29), 44.25),
	}

	for _, interval := range []Interval{IntervalDaily, IntervalWeekly, IntervalMonthly} {
		s := BuildSeries(txns, rng, interval, ModePerPeriod, today)
		sum := 0.0
		for _, p := range s.Points {
			sum += p.Value
		}
		if sum != s.RangeTotal {
			t.Errorf("%s: sum of per-period values %v != RangeTotal %v", interval, sum, s.RangeTotal)
		}
		if s.RangeTotal != 139.75 {
			t.Errorf("%s: RangeTotal = %v, want 139.75", interval, s.RangeTotal)
		}
	}
}

func TestBuildSeries_EmptyInput(t *testing.T) {
	today := NewDate(2024, 6, 20)
	rng := DateRange{Start: NewDate(2024, 6, 1), End: NewDate(2024, 6, 10)}

	s := BuildSeries(nil, rng, IntervalDaily, ModePerPeriod, today)

	if len(s.Points) != 10 {
		t.Fatalf("got %d points, want one per timeline bucket (10)", len(s.Points))
	}
	for i, p := range s.Points {
		if p.Value != 0 {
			t.Errorf("point %d = %v, want 0", i, p.Value)
		}
	}
	if s.RangeTotal != 0 {
		t.Errorf("RangeTotal = %v, want 0", s.RangeTotal)
	}
}

func TestBuildSeries_IgnoresOutOfRange(t *testing.T) {
	today := NewDate(2024, 6, 20)
	rng := DateRange{Start: NewDate(2024, 6, 5), End: NewDate(2024, 6, 10)}
	txns := []Transaction{
		expenseOn(NewDate(2024, 6, 4), 70),  // just before
		expenseOn(NewDate(2024, 6, 11), 30), // just after
		expenseOn(NewDate(2024, 6, 7), 10),
	}

	s := BuildSeries(txns, rng, IntervalDaily, ModePerPeriod, today)
	if s.RangeTotal != 10 {
		t.Errorf("RangeTotal = %v, want only the in-range amount 10", s.RangeTotal)
	}
}

func TestBuildSeries_SingleBucketPadding(t *testing.T) {
	today := NewDate(2024, 6, 20)
	rng := DateRange{Start: NewDate(2024, 6, 7), End: NewDate(2024, 6, 7)}
	txns := []Transaction{expenseOn(NewDate(2024, 6, 7), 42)}

	s := BuildSeries(txns, rng, IntervalDaily, ModePerPeriod, today)

	if len(s.Points) != 2 {
		t.Fatalf("got %d points, want a padded pair", len(s.Points))
	}
	if s.Points[0].Value != 42 || s.Points[1].Value != 42 {
		t.Errorf("padded point must duplicate the sole value, got %v and %v", s.Points[0].Value, s.Points[1].Value)
	}
	if s.PeriodCount != 1 {
		t.Errorf("PeriodCount = %d, want 1 (padding is not a period)", s.PeriodCount)
	}
	if s.RangeTotal != 42 || s.FinalValue != 42 {
		t.Errorf("RangeTotal/FinalValue = %v/%v, want 42/42", s.RangeTotal, s.FinalValue)
	}
}

func TestBuildSeries_UsesDisplayAmount(t *testing.T) {
	today := NewDate(2024, 6, 20)
	rng := DateRange{Start: NewDate(2024, 6, 1), End: NewDate(2024, 6, 2)}
	display := 25.0
	txns := []Transaction{
		{Type: TypeExpense, Amount: 100, DisplayAmount: &display, OccurredOn: NewDate(2024, 6, 1)},
	}

	s := BuildSeries(txns, rng, IntervalDaily, ModePerPeriod, today)
	if s.RangeTotal != 25 {
		t.Errorf("RangeTotal = %v, want the display amount 25", s.RangeTotal)
	}
}

func TestBudgetExpenses(t *testing.T) {
	b1, b2 := int64(1), int64(2)
	txns := []Transaction{
		{Type: TypeExpense, BudgetID: &b1, Amount: 10},
		{Type: TypeExpense, BudgetID: &b2, Amount: 20},
		{Type: TypeIncome, BudgetID: &b1, Amount: 30},
		{Type: TypeExpense, Amount: 40},
	}

	got := BudgetExpenses(txns, b1)
	if len(got) != 1 || got[0].Amount != 10 {
		t.Errorf("BudgetExpenses picked %d transactions, want exactly the budget-1 expense", len(got))
	}
}
