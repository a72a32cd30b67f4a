package storage

import (
	"context"
	"fmt"
)

type categoryTemplate struct {
	name    string
	color   string
	iconURL string
}

// defaultExpenseCategories seeds every new account so the first
// transaction form is not an empty dropdown.
var defaultExpenseCategories = []categoryTemplate{
	{"Groceries", "#27ae60", "https://img.icons8.com/color/96/ingredients.png"},
	{"Restaurants & cafes", "#e67e22", "https://img.icons8.com/color/96/restaurant.png"},
	{"Transport", "#2980b9", "https://img.icons8.com/color/96/car.png"},
	{"Housing & bills", "#8e44ad", "https://img.icons8.com/color/96/home.png"},
	{"Entertainment", "#f39c12", "https://img.icons8.com/color/96/popcorn.png"},
	{"Health & beauty", "#d35400", "https://img.icons8.com/color/96/spa.png"},
	{"Education", "#16a085", "https://img.icons8.com/color/96/graduation-cap.png"},
	{"Travel", "#1abc9c", "https://img.icons8.com/color/96/around-the-globe.png"},
	{"Gifts", "#c0392b", "https://img.icons8.com/color/96/gift.png"},
	{"Hobby & sport", "#9b59b6", "https://img.icons8.com/color/96/dumbbell.png"},
}

// SeedDefaultCategories inserts the starter expense categories, skipping
// names the user already has. Safe to call more than once.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context, userID int64) error {
	existing, err := r.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		if c.Type == "expense" {
			have[c.Name] = true
		}
	}
	for _, tpl := range defaultExpenseCategories {
		if have[tpl.name] {
			continue
		}
		if _, err := r.CreateCategory(ctx, Category{
			UserID:  userID,
			Name:    tpl.name,
			Type:    "expense",
			Color:   tpl.color,
			IconURL: tpl.iconURL,
		}); err != nil {
			return fmt.Errorf("seed category %s: %w", tpl.name, err)
		}
	}
	return nil
}
