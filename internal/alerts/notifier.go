package alerts

import (
	"context"
	"log/slog"
	"time"

	"savoo/internal/core"
	"savoo/internal/storage"
)

// AlertThreshold is the budget utilization at which an alert fires.
const AlertThreshold = 0.9

// Publisher abstracts the AMQP client so the notifier can be tested
// without a broker.
type Publisher interface {
	PublishBudgetAlert(ctx context.Context, msg *BudgetAlertMessage) error
}

// Notifier checks budget utilization after spending changes and publishes
// at most one alert per budget per day.
type Notifier struct {
	repo      *storage.SQLiteRepository
	publisher Publisher
	now       func() time.Time
}

func NewNotifier(repo *storage.SQLiteRepository, publisher Publisher) *Notifier {
	return &Notifier{repo: repo, publisher: publisher, now: time.Now}
}

// CheckBudgets evaluates all of the user's budgets and fires alerts for
// the ones at or over the threshold. Publish failures are logged, never
// returned: spending writes must not fail because the broker is down.
func (n *Notifier) CheckBudgets(ctx context.Context, userID int64) error {
	today := core.DateOf(n.now())
	overviews, err := n.repo.BudgetOverviews(ctx, userID, today)
	if err != nil {
		return err
	}
	for _, ov := range overviews {
		n.maybeAlert(ctx, ov, today)
	}
	return nil
}

// CheckAllBudgets runs the threshold check for every account. The
// periodic sweep uses it to catch budgets that crossed the line without
// a new transaction, for example when a window rolls over.
func (n *Notifier) CheckAllBudgets(ctx context.Context) error {
	userIDs, err := n.repo.UserIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range userIDs {
		if err := n.CheckBudgets(ctx, id); err != nil {
			slog.WarnContext(ctx, "budget sweep failed for user", "user_id", id, "error", err)
		}
	}
	return nil
}

func (n *Notifier) maybeAlert(ctx context.Context, ov storage.BudgetOverview, today core.Date) {
	if ov.LimitAmount <= 0 {
		return
	}
	overLimit := ov.SpentAmount > ov.LimitAmount
	if ov.Utilization < AlertThreshold && !overLimit {
		return
	}
	if alreadyNotifiedToday(ov.LastNotifiedAt, today) {
		return
	}

	if n.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping budget alert",
			"budget_id", ov.ID)
	} else {
		msg := NewBudgetAlertMessage(ov.ID, ov.UserID, ov.Name, ov.SpentAmount, ov.LimitAmount)
		if err := n.publisher.PublishBudgetAlert(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish budget alert",
				"budget_id", ov.ID, "error", err)
			return
		}
	}

	stamp := n.now().UTC().Format(time.RFC3339)
	if err := n.repo.MarkBudgetNotified(ctx, ov.ID, stamp); err != nil {
		slog.ErrorContext(ctx, "Failed to record budget alert",
			"budget_id", ov.ID, "error", err)
	}
}

// alreadyNotifiedToday compares the date prefix of the stored timestamp
// with today's ISO date.
func alreadyNotifiedToday(lastNotified *string, today core.Date) bool {
	if lastNotified == nil || len(*lastNotified) < 10 {
		return false
	}
	return (*lastNotified)[:10] == today.String()
}
