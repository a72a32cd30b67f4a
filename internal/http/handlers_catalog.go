package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"savoo/internal/storage"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.repo.ListCategories(r.Context(), currentUser(r).ID)
	if err != nil {
		s.internalError(w, r, "list categories", err)
		return
	}
	out := make([]map[string]any, len(cats))
	for i, c := range cats {
		out[i] = categoryJSON(c)
	}
	ok(w, http.StatusOK, "", map[string]any{"categories": out})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Color   string `json:"color"`
		IconURL string `json:"icon_url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		fail(w, http.StatusBadRequest, "Category name is required.")
		return
	}
	if req.Type != "income" && req.Type != "expense" {
		fail(w, http.StatusBadRequest, "Category type must be income or expense.")
		return
	}
	color := req.Color
	if color == "" {
		color = "#2ecc71"
	}

	id, err := s.repo.CreateCategory(r.Context(), storage.Category{
		UserID:  currentUser(r).ID,
		Name:    name,
		Type:    req.Type,
		Color:   color,
		IconURL: req.IconURL,
	})
	if err != nil {
		s.internalError(w, r, "create category", err)
		return
	}
	ok(w, http.StatusCreated, "Category created.", map[string]any{"id": id})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	var req struct {
		Name    *string `json:"name"`
		Type    *string `json:"type"`
		Color   *string `json:"color"`
		IconURL *string `json:"icon_url"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var upd storage.CategoryUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			fail(w, http.StatusBadRequest, "Category name is required.")
			return
		}
		upd.Name = &name
	}
	if req.Type != nil {
		if *req.Type != "income" && *req.Type != "expense" {
			fail(w, http.StatusBadRequest, "Category type must be income or expense.")
			return
		}
		upd.Type = req.Type
	}
	upd.Color = req.Color
	upd.IconURL = req.IconURL

	if upd.Empty() {
		fail(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	if err := s.repo.UpdateCategory(r.Context(), currentUser(r).ID, id, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Category not found.")
			return
		}
		s.internalError(w, r, "update category", err)
		return
	}
	ok(w, http.StatusOK, "Category updated.", nil)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid category id.")
		return
	}
	if err := s.repo.DeleteCategory(r.Context(), currentUser(r).ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Category not found.")
			return
		}
		s.internalError(w, r, "delete category", err)
		return
	}
	ok(w, http.StatusOK, "Category deleted.", nil)
}

func (s *Server) handleListBudgetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.repo.ListBudgetTypes(r.Context(), currentUser(r).ID)
	if err != nil {
		s.internalError(w, r, "list budget types", err)
		return
	}
	out := make([]map[string]any, len(types))
	for i, bt := range types {
		out[i] = budgetTypeJSON(bt)
	}
	ok(w, http.StatusOK, "", map[string]any{"budget_types": out})
}

func (s *Server) handleCreateBudgetType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		fail(w, http.StatusBadRequest, "Budget type name is required.")
		return
	}

	id, err := s.repo.CreateBudgetType(r.Context(), currentUser(r).ID, name)
	if err != nil {
		// The unique constraint is the only expected failure here.
		fail(w, http.StatusConflict, "A budget type with this name already exists.")
		return
	}
	ok(w, http.StatusCreated, "Budget type created.", map[string]any{"id": id})
}

func (s *Server) handleDeleteBudgetType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "Invalid budget type id.")
		return
	}
	if err := s.repo.DeleteBudgetType(r.Context(), currentUser(r).ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "Budget type not found.")
			return
		}
		s.internalError(w, r, "delete budget type", err)
		return
	}
	ok(w, http.StatusOK, "Budget type deleted.", nil)
}
