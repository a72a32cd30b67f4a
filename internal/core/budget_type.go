package core

import "strings"

// BuiltinBudgetType enumerates the fixed budget type keys shipped with
// every account. User-created types live alongside them as free-form
// strings, so lookups go through BudgetTypeTag instead of the raw enum.
type BuiltinBudgetType string

const (
	BudgetTypeHousehold     BuiltinBudgetType = "household"
	BudgetTypeEntertainment BuiltinBudgetType = "entertainment"
	BudgetTypeGroceries     BuiltinBudgetType = "groceries"
	BudgetTypeTravel        BuiltinBudgetType = "travel"
	BudgetTypeSavings       BuiltinBudgetType = "savings"
	BudgetTypeHealth        BuiltinBudgetType = "health"
	BudgetTypeEducation     BuiltinBudgetType = "education"
	BudgetTypeCustom        BuiltinBudgetType = "custom"
)

// BuiltinBudgetTypes lists the built-in keys in display order.
func BuiltinBudgetTypes() []BuiltinBudgetType {
	return []BuiltinBudgetType{
		BudgetTypeHousehold,
		BudgetTypeEntertainment,
		BudgetTypeGroceries,
		BudgetTypeTravel,
		BudgetTypeSavings,
		BudgetTypeHealth,
		BudgetTypeEducation,
		BudgetTypeCustom,
	}
}

// BudgetTypeTag is the tagged variant over budget type strings: either a
// known built-in key or a user-defined custom name.
type BudgetTypeTag struct {
	builtin BuiltinBudgetType
	custom  string
}

// ParseBudgetTypeTag classifies a raw budget type string. Empty input
// maps to the custom built-in.
func ParseBudgetTypeTag(raw string) BudgetTypeTag {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return BudgetTypeTag{builtin: BudgetTypeCustom}
	}
	for _, bt := range BuiltinBudgetTypes() {
		if name == string(bt) {
			return BudgetTypeTag{builtin: bt}
		}
	}
	return BudgetTypeTag{custom: name}
}

// IsBuiltin reports whether the tag names one of the fixed keys.
func (t BudgetTypeTag) IsBuiltin() bool { return t.custom == "" }

// Key returns the canonical string stored on a budget.
func (t BudgetTypeTag) Key() string {
	if t.custom != "" {
		return t.custom
	}
	return string(t.builtin)
}

// Label renders the display name. Built-in keys get curated labels,
// custom names are title-cased as-is.
func (t BudgetTypeTag) Label() string {
	switch t.builtin {
	case BudgetTypeHousehold:
		return "Household"
	case BudgetTypeEntertainment:
		return "Entertainment"
	case BudgetTypeGroceries:
		return "Groceries"
	case BudgetTypeTravel:
		return "Travel"
	case BudgetTypeSavings:
		return "Savings"
	case BudgetTypeHealth:
		return "Health"
	case BudgetTypeEducation:
		return "Education"
	case BudgetTypeCustom:
		return "Custom"
	}
	if t.custom == "" {
		return "Custom"
	}
	return strings.ToUpper(t.custom[:1]) + t.custom[1:]
}
