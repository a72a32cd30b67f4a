package core

// AutoIncomeTitle names the synthetic salary transaction created by the
// monthly income credit rule.
const AutoIncomeTitle = "Monthly income"

// PlanIncomeCredit decides whether a salary credit must be created for
// the current month. It returns the transaction to submit and true, or a
// zero transaction and false when nothing is due:
//
//   - the profile has no payday or no positive monthly income,
//   - the payday (clamped to the month's length) has not arrived yet, or
//   - an auto-income transaction already exists this month.
//
// The decision is pure; the caller submits the transaction and reloads.
func PlanIncomeCredit(profile UserProfile, transactions []Transaction, today Date) (Transaction, bool) {
	if profile.IncomeDayOfMonth < 1 || profile.MonthlyIncome <= 0 {
		return Transaction{}, false
	}

	day := profile.IncomeDayOfMonth
	if max := DaysInMonth(today.Year(), today.Month()); day > max {
		day = max
	}
	scheduled := NewDate(today.Year(), int(today.Month()), day)
	if today.Before(scheduled.Time) {
		return Transaction{}, false
	}

	for _, t := range transactions {
		if t.Type != TypeIncome || !t.AutoIncome {
			continue
		}
		if t.OccurredOn.Year() == today.Year() && t.OccurredOn.Month() == today.Month() {
			// Already credited this month.
			return Transaction{}, false
		}
	}

	currency := profile.MonthlyIncomeCurrency
	if currency == "" {
		currency = profile.DefaultCurrency
	}

	return Transaction{
		Title:      AutoIncomeTitle,
		Amount:     profile.MonthlyIncome,
		Type:       TypeIncome,
		Kind:       KindSalary,
		Currency:   currency,
		OccurredOn: scheduled,
		AutoIncome: true,
	}, true
}
