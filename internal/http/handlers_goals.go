package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"savoo/internal/core"
	"savoo/internal/storage"
)

func (s *Server) handleListSavingsGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.repo.ListSavingsGoals(r.Context(), currentUser(r).ID)
	if err != nil {
		s.internalError(w, r, "list savings goals", err)
		return
	}
	out := make([]map[string]any, len(goals))
	for i, g := range goals {
		out[i] = goalJSON(g)
	}
	ok(w, http.StatusOK, "", map[string]any{"goals": out})
}

func (s *Server) handleCreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string   `json:"name"`
		TargetAmount  *float64 `json:"target_amount"`
		CurrentAmount float64  `json:"current_amount"`
		Deadline      string   `json:"deadline"`
		CategoryID    *int64   `json:"category_id"`
		IsActive      *bool    `json:"is_active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || req.TargetAmount == nil {
		fail(w, http.StatusBadRequest, "Goal name and target amount are required.")
		return
	}
	if *req.TargetAmount <= 0 {
		fail(w, http.StatusBadRequest, "Target amount must be positive.")
		return
	}
	if req.CurrentAmount < 0 {
		fail(w, http.StatusBadRequest, "Current amount cannot be negative.")
		return
	}

	g := storage.SavingsGoal{
		UserID:        currentUser(r).ID,
		Name:          name,
		TargetAmount:  *req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		CategoryID:    req.CategoryID,
		IsActive:      req.IsActive == nil || *req.IsActive,
	}
	if d, err := core.ParseDate(req.Deadline); err == nil {
		deadline := d.String()
		g.Deadline = &deadline
	}

	id, err := s.repo.CreateSavingsGoal(r.Context(), g)
	if err != nil {
		s.internalError(w, r, "create savings goal", err)
		return
	}
	ok(w, http.StatusCreated, "Savings goal created.", map[string]any{"id": id})
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid goal id.")
		return
	}

	var req struct {
		Name          *string  `json:"name"`
		TargetAmount  *float64 `json:"target_amount"`
		CurrentAmount *float64 `json:"current_amount"`
		Deadline      *string  `json:"deadline"`
		CategoryID    *int64   `json:"category_id"`
		IsActive      *bool    `json:"is_active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var upd storage.SavingsGoalUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name != "" {
			upd.Name = &name
		}
	}
	if req.TargetAmount != nil {
		if *req.TargetAmount <= 0 {
			fail(w, http.StatusBadRequest, "Target amount must be positive.")
			return
		}
		upd.TargetAmount = req.TargetAmount
	}
	if req.CurrentAmount != nil {
		if *req.CurrentAmount < 0 {
			fail(w, http.StatusBadRequest, "Current amount cannot be negative.")
			return
		}
		upd.CurrentAmount = req.CurrentAmount
	}
	if req.Deadline != nil {
		if d, err := core.ParseDate(*req.Deadline); err == nil {
			deadline := d.String()
			upd.Deadline = &deadline
		}
	}
	upd.CategoryID = req.CategoryID
	upd.IsActive = req.IsActive

	if upd.Empty() {
		fail(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	if err := s.repo.UpdateSavingsGoal(r.Context(), currentUser(r).ID, id, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Savings goal not found.")
			return
		}
		s.internalError(w, r, "update savings goal", err)
		return
	}
	ok(w, http.StatusOK, "Savings goal updated.", nil)
}

func (s *Server) handleDeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid goal id.")
		return
	}
	if err := s.repo.DeleteSavingsGoal(r.Context(), currentUser(r).ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Savings goal not found.")
			return
		}
		s.internalError(w, r, "delete savings goal", err)
		return
	}
	ok(w, http.StatusOK, "Savings goal deleted.", nil)
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	goalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid goal id.")
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
		Note   string  `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Amount <= 0 {
		fail(w, http.StatusBadRequest, "Contribution amount must be positive.")
		return
	}

	user := currentUser(r)
	goal, err := s.repo.AddContribution(r.Context(), user.ID, goalID, req.Amount, strings.TrimSpace(req.Note))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Savings goal not found.")
			return
		}
		s.internalError(w, r, "add contribution", err)
		return
	}

	// Contributions also show up in the ledger as savings transactions.
	occurred := core.DateOf(s.now()).String()
	if _, err := s.repo.CreateTransaction(r.Context(), storage.Transaction{
		UserID:     user.ID,
		CategoryID: goal.CategoryID,
		Type:       "expense",
		Amount:     req.Amount,
		Currency:   user.DefaultCurrency,
		Note:       req.Note,
		Kind:       "savings",
		OccurredOn: occurred,
	}); err != nil {
		s.internalError(w, r, "record contribution transaction", err)
		return
	}

	ok(w, http.StatusCreated, "Contribution added.", map[string]any{"goal": goalJSON(goal)})
}
