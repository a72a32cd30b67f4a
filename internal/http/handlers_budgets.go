package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"savoo/internal/core"
	"savoo/internal/storage"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	overviews, err := s.repo.BudgetOverviews(r.Context(), user.ID, core.DateOf(s.now()))
	if err != nil {
		s.internalError(w, r, "budget overviews", err)
		return
	}

	out := make([]map[string]any, len(overviews))
	for i, ov := range overviews {
		out[i] = budgetJSON(ov, user.DefaultCurrency)
	}
	ok(w, http.StatusOK, "", map[string]any{"budgets": out})
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		LimitAmount *float64 `json:"limit_amount"`
		Period      string   `json:"period"`
		BudgetType  string   `json:"budget_type"`
		CategoryID  *int64   `json:"category_id"`
		StartDate   string   `json:"start_date"`
		EndDate     string   `json:"end_date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || req.LimitAmount == nil {
		fail(w, http.StatusBadRequest, "Budget name and limit are required.")
		return
	}
	if *req.LimitAmount <= 0 {
		fail(w, http.StatusBadRequest, "Budget limit must be positive.")
		return
	}
	period := req.Period
	if period == "" {
		period = "monthly"
	}
	switch period {
	case "weekly", "monthly", "quarterly", "custom":
	default:
		fail(w, http.StatusBadRequest, "Invalid budget period.")
		return
	}

	budgetType := core.ParseBudgetTypeTag(req.BudgetType).Key()

	b := storage.Budget{
		UserID:      currentUser(r).ID,
		CategoryID:  req.CategoryID,
		Name:        name,
		LimitAmount: *req.LimitAmount,
		Period:      period,
		BudgetType:  budgetType,
	}
	if d, err := core.ParseDate(req.StartDate); err == nil {
		start := d.String()
		b.StartDate = &start
	}
	if d, err := core.ParseDate(req.EndDate); err == nil {
		end := d.String()
		b.EndDate = &end
	}

	id, err := s.repo.CreateBudget(r.Context(), b)
	if err != nil {
		s.internalError(w, r, "create budget", err)
		return
	}
	ok(w, http.StatusCreated, "Budget created.", map[string]any{"id": id})
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid budget id.")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		LimitAmount *float64 `json:"limit_amount"`
		Period      *string  `json:"period"`
		BudgetType  *string  `json:"budget_type"`
		CategoryID  *int64   `json:"category_id"`
		StartDate   *string  `json:"start_date"`
		EndDate     *string  `json:"end_date"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var upd storage.BudgetUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			fail(w, http.StatusBadRequest, "Budget name and limit are required.")
			return
		}
		upd.Name = &name
	}
	if req.LimitAmount != nil {
		if *req.LimitAmount <= 0 {
			fail(w, http.StatusBadRequest, "Budget limit must be positive.")
			return
		}
		upd.LimitAmount = req.LimitAmount
	}
	if req.Period != nil {
		switch *req.Period {
		case "weekly", "monthly", "quarterly", "custom":
		default:
			fail(w, http.StatusBadRequest, "Invalid budget period.")
			return
		}
		upd.Period = req.Period
	}
	if req.BudgetType != nil {
		budgetType := core.ParseBudgetTypeTag(*req.BudgetType).Key()
		upd.BudgetType = &budgetType
	}
	upd.CategoryID = req.CategoryID
	if req.StartDate != nil {
		if d, err := core.ParseDate(*req.StartDate); err == nil {
			start := d.String()
			upd.StartDate = &start
		}
	}
	if req.EndDate != nil {
		if d, err := core.ParseDate(*req.EndDate); err == nil {
			end := d.String()
			upd.EndDate = &end
		}
	}

	if upd.Empty() {
		fail(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	user := currentUser(r)
	if err := s.repo.UpdateBudget(r.Context(), user.ID, id, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Budget not found.")
			return
		}
		s.internalError(w, r, "update budget", err)
		return
	}

	// A tighter limit may put the budget over its threshold right away.
	s.recheckBudgets(r, user.ID)
	ok(w, http.StatusOK, "Budget updated.", nil)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid budget id.")
		return
	}
	if err := s.repo.DeleteBudget(r.Context(), currentUser(r).ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Budget not found.")
			return
		}
		s.internalError(w, r, "delete budget", err)
		return
	}
	ok(w, http.StatusOK, "Budget deleted.", nil)
}
