package core

import "testing"

func TestComputeMonthSummary(t *testing.T) {
	today := NewDate(2024, 6, 20)
	groceries, fun := int64(1), int64(2)
	categories := []Category{
		{ID: groceries, Name: "Groceries", Type: TypeExpense},
		{ID: fun, Name: "Entertainment", Type: TypeExpense},
	}
	txns := []Transaction{
		{Type: TypeIncome, Amount: 3000, OccurredOn: NewDate(2024, 6, 15)},
		{Type: TypeExpense, Amount: 200, CategoryID: &groceries, OccurredOn: NewDate(2024, 6, 16)},
		{Type: TypeExpense, Amount: 120, CategoryID: &fun, OccurredOn: NewDate(2024, 6, 17)},
		// Outside the current month: ignored.
		{Type: TypeExpense, Amount: 999, CategoryID: &groceries, OccurredOn: NewDate(2024, 5, 31)},
		// Transfers never hit the totals.
		{Type: TypeTransfer, Amount: 500, OccurredOn: NewDate(2024, 6, 18)},
	}

	s := ComputeMonthSummary(txns, categories, today)

	if !s.PeriodStart.Equal(NewDate(2024, 6, 1).Time) || !s.PeriodEnd.Equal(NewDate(2024, 6, 30).Time) {
		t.Errorf("period = [%s, %s], want the whole of June", s.PeriodStart, s.PeriodEnd)
	}
	if s.TotalIncome != 3000 {
		t.Errorf("TotalIncome = %v, want 3000", s.TotalIncome)
	}
	if s.TotalExpense != 320 {
		t.Errorf("TotalExpense = %v, want 320", s.TotalExpense)
	}
	if s.NetSavings != 2680 {
		t.Errorf("NetSavings = %v, want 2680", s.NetSavings)
	}
	if len(s.TopExpenseCategories) != 2 {
		t.Fatalf("got %d top categories, want 2", len(s.TopExpenseCategories))
	}
	if s.TopExpenseCategories[0].Name != "Groceries" || s.TopExpenseCategories[0].Spent != 200 {
		t.Errorf("top category = %+v, want Groceries/200", s.TopExpenseCategories[0])
	}
}

func TestComputeMonthSummary_DeletedCategoryFallsBack(t *testing.T) {
	today := NewDate(2024, 6, 20)
	gone := int64(99)
	txns := []Transaction{
		{Type: TypeExpense, Amount: 50, CategoryID: &gone, OccurredOn: NewDate(2024, 6, 2)},
	}

	s := ComputeMonthSummary(txns, nil, today)
	if len(s.TopExpenseCategories) != 1 || s.TopExpenseCategories[0].Name != FallbackCategoryLabel {
		t.Errorf("deleted category should fall back to %q, got %+v", FallbackCategoryLabel, s.TopExpenseCategories)
	}
}

func TestComputeMonthSummary_TopFiveCap(t *testing.T) {
	today := NewDate(2024, 6, 20)
	var categories []Category
	var txns []Transaction
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, name := range names {
		id := int64(i + 1)
		categories = append(categories, Category{ID: id, Name: name, Type: TypeExpense})
		cid := id
		txns = append(txns, Transaction{
			Type:       TypeExpense,
			Amount:     float64(100 - i*10),
			CategoryID: &cid,
			OccurredOn: NewDate(2024, 6, 5),
		})
	}

	s := ComputeMonthSummary(txns, categories, today)
	if len(s.TopExpenseCategories) != TopCategoryLimit {
		t.Fatalf("got %d categories, want the cap of %d", len(s.TopExpenseCategories), TopCategoryLimit)
	}
	for i := 1; i < len(s.TopExpenseCategories); i++ {
		if s.TopExpenseCategories[i].Spent > s.TopExpenseCategories[i-1].Spent {
			t.Error("top categories are not sorted by spend descending")
		}
	}
}
