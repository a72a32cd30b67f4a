package core

import "sort"

// TopCategoryLimit caps the number of expense categories reported by a
// summary.
const TopCategoryLimit = 5

// ComputeMonthSummary derives a dashboard summary for today's calendar
// month from already-loaded transactions. It is the local fallback used
// when the server summary is unavailable: income/expense totals, net
// savings, and the top expense categories by spend, descending, capped
// at TopCategoryLimit. Ties keep their first-seen order.
func ComputeMonthSummary(transactions []Transaction, categories []Category, today Date) DashboardSummary {
	start := NewDate(today.Year(), int(today.Month()), 1)
	end := EndOfMonth(today)
	rng := DateRange{Start: start, End: end}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	summary := DashboardSummary{PeriodStart: start, PeriodEnd: end}
	spent := make(map[string]float64)
	var order []string

	for _, t := range transactions {
		if t.OccurredOn.IsZero() || !rng.Contains(t.OccurredOn) {
			continue
		}
		amount := t.EffectiveAmount()
		switch t.Type {
		case TypeIncome:
			summary.TotalIncome += amount
		case TypeExpense:
			summary.TotalExpense += amount
			label := FallbackCategoryLabel
			if t.CategoryID != nil {
				if name, ok := names[*t.CategoryID]; ok {
					label = name
				}
			}
			if _, seen := spent[label]; !seen {
				order = append(order, label)
			}
			spent[label] += amount
		}
	}
	summary.NetSavings = summary.TotalIncome - summary.TotalExpense

	// Stable sort keeps insertion order for equal spends.
	sort.SliceStable(order, func(i, j int) bool {
		return spent[order[i]] > spent[order[j]]
	})
	if len(order) > TopCategoryLimit {
		order = order[:TopCategoryLimit]
	}
	for _, name := range order {
		summary.TopExpenseCategories = append(summary.TopExpenseCategories, CategorySpend{
			Name:  name,
			Spent: spent[name],
		})
	}

	return summary
}
