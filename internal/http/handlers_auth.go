package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"savoo/internal/storage"
)

// resetTokenTTL bounds how long a password reset token stays valid.
const resetTokenTTL = 15 * time.Minute

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email               string `json:"email"`
		Password            string `json:"password"`
		DisplayName         string `json:"display_name"`
		SecurityQuestionKey string `json:"security_question_key"`
		SecurityAnswer      string `json:"security_answer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	email := normalizeEmail(req.Email)
	answer := strings.TrimSpace(req.SecurityAnswer)

	if !isValidEmail(email) {
		fail(w, http.StatusBadRequest, "Please provide a valid email address.")
		return
	}
	if !isStrongPassword(req.Password) {
		fail(w, http.StatusBadRequest, "Password must be at least 6 characters with a letter and a digit.")
		return
	}
	if !isSecurityQuestionValid(req.SecurityQuestionKey) {
		fail(w, http.StatusBadRequest, "Pick a security question from the list.")
		return
	}
	if len(answer) < 3 {
		fail(w, http.StatusBadRequest, "The security answer must be at least 3 characters.")
		return
	}

	if _, err := s.repo.UserByEmail(r.Context(), email); err == nil {
		fail(w, http.StatusConflict, "An account with this email already exists.")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.internalError(w, r, "lookup user", err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, r, "hash password", err)
		return
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(strings.ToLower(answer)), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, r, "hash answer", err)
		return
	}

	userID, err := s.repo.CreateUser(r.Context(), storage.User{
		Email:               email,
		PasswordHash:        string(passwordHash),
		DisplayName:         strings.TrimSpace(req.DisplayName),
		DefaultCurrency:     "PLN",
		SecurityQuestionKey: req.SecurityQuestionKey,
		SecurityAnswerHash:  string(answerHash),
	})
	if err != nil {
		s.internalError(w, r, "create user", err)
		return
	}

	if err := s.repo.SeedDefaultCategories(r.Context(), userID); err != nil {
		// The account exists; starter categories are a convenience.
		slog.WarnContext(r.Context(), "Failed to seed default categories",
			"user_id", userID, "error", err)
	}

	user, err := s.repo.UserByEmail(r.Context(), email)
	if err != nil {
		s.internalError(w, r, "reload user", err)
		return
	}
	ok(w, http.StatusCreated, "Account created.", map[string]any{"user": userJSON(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.repo.UserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		fail(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		fail(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	if err := s.repo.TouchLastLogin(r.Context(), user.ID); err != nil {
		slog.WarnContext(r.Context(), "Failed to record login time",
			"user_id", user.ID, "error", err)
	}
	ok(w, http.StatusOK, "Logged in.", map[string]any{"user": userJSON(user)})
}

// handleLogout only confirms; Basic auth is stateless so there is no
// session to destroy server-side.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	ok(w, http.StatusOK, "Logged out.", nil)
}

func (s *Server) handleForgotPasswordVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email               string `json:"email"`
		SecurityQuestionKey string `json:"security_question_key"`
		SecurityAnswer      string `json:"security_answer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	email := normalizeEmail(req.Email)
	answer := strings.TrimSpace(req.SecurityAnswer)

	if !isValidEmail(email) {
		fail(w, http.StatusBadRequest, "Please provide a valid email address.")
		return
	}
	if !isSecurityQuestionValid(req.SecurityQuestionKey) {
		fail(w, http.StatusBadRequest, "Pick a security question from the list.")
		return
	}
	if answer == "" {
		fail(w, http.StatusBadRequest, "Provide the answer to your security question.")
		return
	}

	user, err := s.repo.UserByEmail(r.Context(), email)
	if err != nil || user.SecurityQuestionKey == "" {
		fail(w, http.StatusNotFound, "No account found or no security question configured.")
		return
	}
	if user.SecurityQuestionKey != req.SecurityQuestionKey {
		fail(w, http.StatusBadRequest, "The chosen question does not match the configured one.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.SecurityAnswerHash), []byte(strings.ToLower(answer))) != nil {
		fail(w, http.StatusBadRequest, "Incorrect security answer.")
		return
	}

	token := generateResetToken()
	expiresAt := s.now().UTC().Add(resetTokenTTL).Format(time.RFC3339)
	if err := s.repo.SetResetToken(r.Context(), user.ID, token, expiresAt); err != nil {
		s.internalError(w, r, "store reset token", err)
		return
	}

	ok(w, http.StatusOK, "Answer accepted. You can set a new password.", map[string]any{
		"reset_token":      token,
		"token_expires_at": expiresAt,
	})
}

func (s *Server) handleForgotPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email"`
		ResetToken      string `json:"reset_token"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	email := normalizeEmail(req.Email)
	token := strings.TrimSpace(req.ResetToken)

	if !isValidEmail(email) {
		fail(w, http.StatusBadRequest, "Please provide a valid email address.")
		return
	}
	if token == "" {
		fail(w, http.StatusBadRequest, "Missing reset token.")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		fail(w, http.StatusBadRequest, "Passwords must match.")
		return
	}
	if !isStrongPassword(req.NewPassword) {
		fail(w, http.StatusBadRequest, "The new password does not meet the complexity rules.")
		return
	}

	user, err := s.repo.UserByEmail(r.Context(), email)
	if err != nil || user.ResetToken == nil {
		fail(w, http.StatusBadRequest, "Invalid reset token or account.")
		return
	}
	if *user.ResetToken != token {
		fail(w, http.StatusBadRequest, "The reset token does not match.")
		return
	}
	if expired(user.ResetTokenExpiresAt, s.now()) {
		fail(w, http.StatusBadRequest, "The reset token has expired. Please try again.")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.internalError(w, r, "hash password", err)
		return
	}
	if err := s.repo.UpdatePassword(r.Context(), user.ID, string(passwordHash)); err != nil {
		s.internalError(w, r, "update password", err)
		return
	}

	ok(w, http.StatusOK, "Password updated. You can log in now.", nil)
}

// expired treats missing or unparseable expiry timestamps as expired.
func expired(expiresAt *string, now time.Time) bool {
	if expiresAt == nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, *expiresAt)
	if err != nil {
		return true
	}
	return t.Before(now.UTC())
}

func generateResetToken() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:32]
	}
	return hex.EncodeToString(bytes)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, step string, err error) {
	slog.ErrorContext(r.Context(), "Request failed", "step", step, "error", err)
	fail(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
