package alerts

import (
	"encoding/json"
	"time"
)

// BudgetAlertMessage is published when a budget crosses the alert
// threshold. Consumers get the full snapshot so they never need a
// database round-trip to render a notification.
type BudgetAlertMessage struct {
	BudgetID    int64     `json:"budget_id"`
	UserID      int64     `json:"user_id"`
	BudgetName  string    `json:"budget_name"`
	SpentAmount float64   `json:"spent_amount"`
	LimitAmount float64   `json:"limit_amount"`
	Utilization float64   `json:"utilization"`
	OverLimit   bool      `json:"over_limit"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage stamps the message with the current time.
func NewBudgetAlertMessage(budgetID, userID int64, name string, spent, limit float64) *BudgetAlertMessage {
	m := &BudgetAlertMessage{
		BudgetID:    budgetID,
		UserID:      userID,
		BudgetName:  name,
		SpentAmount: spent,
		LimitAmount: limit,
		OverLimit:   spent > limit,
		Timestamp:   time.Now(),
	}
	if limit > 0 {
		m.Utilization = spent / limit
	}
	return m
}

// ToJSON converts the message to JSON bytes.
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON creates a message from JSON bytes.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
