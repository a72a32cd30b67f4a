package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"savoo/internal/core"
	"savoo/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	start, end := dateParam(r, "start_date"), dateParam(r, "end_date")
	txns, err := s.repo.ListTransactions(r.Context(), user.ID, start, end)
	if err != nil {
		s.internalError(w, r, "list transactions", err)
		return
	}

	budgetNames := map[int64]string{}
	if budgets, err := s.repo.ListBudgets(r.Context(), user.ID); err == nil {
		for _, b := range budgets {
			budgetNames[b.ID] = b.Name
		}
	}

	out := make([]map[string]any, len(txns))
	for i, t := range txns {
		out[i] = transactionJSON(t, budgetNames)
	}
	ok(w, http.StatusOK, "", map[string]any{"transactions": out})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount     float64 `json:"amount"`
		Type       string  `json:"type"`
		Kind       string  `json:"kind"`
		Currency   string  `json:"currency"`
		Note       string  `json:"note"`
		OccurredOn string  `json:"occurred_on"`
		CategoryID *int64  `json:"category_id"`
		BudgetID   *int64  `json:"budget_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Amount <= 0 {
		fail(w, http.StatusBadRequest, "Amount must be positive.")
		return
	}
	switch req.Type {
	case "income", "expense", "transfer":
	default:
		fail(w, http.StatusBadRequest, "Transaction type must be income, expense, or transfer.")
		return
	}
	occurred, err := core.ParseDate(req.OccurredOn)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid transaction date.")
		return
	}

	user := currentUser(r)
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = user.DefaultCurrency
	}

	id, err := s.repo.CreateTransaction(r.Context(), storage.Transaction{
		UserID:     user.ID,
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Amount:     req.Amount,
		Currency:   currency,
		Note:       req.Note,
		Kind:       string(core.NormalizeKind(req.Kind)),
		BudgetID:   req.BudgetID,
		OccurredOn: occurred.String(),
	})
	if err != nil {
		s.internalError(w, r, "create transaction", err)
		return
	}

	// Spending changed: re-check budget thresholds. Never fails the write.
	if req.Type == "expense" {
		s.recheckBudgets(r, user.ID)
	}

	ok(w, http.StatusCreated, "Transaction recorded.", map[string]any{"id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid transaction id.")
		return
	}

	var req struct {
		Amount     *float64        `json:"amount"`
		Type       *string         `json:"type"`
		Kind       *string         `json:"kind"`
		Currency   *string         `json:"currency"`
		Note       *string         `json:"note"`
		OccurredOn *string         `json:"occurred_on"`
		CategoryID *int64          `json:"category_id"`
		BudgetID   json.RawMessage `json:"budget_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var upd storage.TransactionUpdate
	upd.CategoryID = req.CategoryID
	if req.Amount != nil {
		if *req.Amount <= 0 {
			fail(w, http.StatusBadRequest, "Amount must be positive.")
			return
		}
		upd.Amount = req.Amount
	}
	if req.Type != nil {
		switch *req.Type {
		case "income", "expense", "transfer":
		default:
			fail(w, http.StatusBadRequest, "Transaction type must be income, expense, or transfer.")
			return
		}
		upd.Type = req.Type
	}
	if req.Kind != nil {
		kind := string(core.NormalizeKind(*req.Kind))
		upd.Kind = &kind
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if currency == "" {
			currency = currentUser(r).DefaultCurrency
		}
		upd.Currency = &currency
	}
	upd.Note = req.Note
	if req.OccurredOn != nil {
		occurred, err := core.ParseDate(*req.OccurredOn)
		if err != nil {
			fail(w, http.StatusBadRequest, "Invalid transaction date.")
			return
		}
		iso := occurred.String()
		upd.OccurredOn = &iso
	}

	// budget_id distinguishes absent (leave), null/zero (unlink), and a
	// concrete id (relink).
	if len(req.BudgetID) > 0 {
		var budgetID *int64
		if err := json.Unmarshal(req.BudgetID, &budgetID); err != nil {
			fail(w, http.StatusBadRequest, "Invalid budget id.")
			return
		}
		if budgetID == nil || *budgetID <= 0 {
			upd.ClearBudgetID = true
		} else {
			upd.BudgetID = budgetID
		}
	}

	if upd.Empty() {
		fail(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	user := currentUser(r)
	if err := s.repo.UpdateTransaction(r.Context(), user.ID, id, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Transaction not found.")
			return
		}
		s.internalError(w, r, "update transaction", err)
		return
	}

	s.recheckBudgets(r, user.ID)
	ok(w, http.StatusOK, "Transaction updated.", nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid transaction id.")
		return
	}
	user := currentUser(r)
	if err := s.repo.DeleteTransaction(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Transaction not found.")
			return
		}
		s.internalError(w, r, "delete transaction", err)
		return
	}
	ok(w, http.StatusOK, "Transaction deleted.", nil)
}

func (s *Server) recheckBudgets(r *http.Request, userID int64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CheckBudgets(r.Context(), userID); err != nil {
		slog.WarnContext(r.Context(), "Budget alert check failed",
			"user_id", userID, "error", err)
	}
}

// dateParam reads a query parameter and keeps it only when it parses as
// an ISO date.
func dateParam(r *http.Request, name string) string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return ""
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return ""
	}
	return d.String()
}
