package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ok(w, http.StatusOK, "", map[string]any{"profile": userJSON(currentUser(r))})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName           string   `json:"display_name"`
		DefaultCurrency       string   `json:"default_currency"`
		MonthlyIncome         *float64 `json:"monthly_income"`
		MonthlyIncomeCurrency string   `json:"monthly_income_currency"`
		MonthlyIncomeDay      *int64   `json:"monthly_income_day"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.MonthlyIncome != nil && *req.MonthlyIncome < 0 {
		fail(w, http.StatusBadRequest, "Monthly income cannot be negative.")
		return
	}
	if req.MonthlyIncomeDay != nil && (*req.MonthlyIncomeDay < 1 || *req.MonthlyIncomeDay > 31) {
		fail(w, http.StatusBadRequest, "Income day must be between 1 and 31.")
		return
	}

	user := currentUser(r)
	currency := strings.ToUpper(strings.TrimSpace(req.DefaultCurrency))
	if currency == "" {
		currency = user.DefaultCurrency
	}
	incomeCurrency := strings.ToUpper(strings.TrimSpace(req.MonthlyIncomeCurrency))
	if incomeCurrency == "" {
		incomeCurrency = currency
	}

	err := s.repo.UpdateUserProfile(r.Context(), user.ID,
		strings.TrimSpace(req.DisplayName), currency,
		req.MonthlyIncome, incomeCurrency, req.MonthlyIncomeDay)
	if err != nil {
		s.internalError(w, r, "update profile", err)
		return
	}

	updated, err := s.repo.UserByEmail(r.Context(), user.Email)
	if err != nil {
		s.internalError(w, r, "reload user", err)
		return
	}
	ok(w, http.StatusOK, "Profile saved.", map[string]any{"profile": userJSON(updated)})
}
