package http

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"savoo/internal/storage"
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	letterDigit  = regexp.MustCompile(`^(?:.*[A-Za-z].*[0-9]|.*[0-9].*[A-Za-z]).*$`)
)

// securityQuestions is the fixed set a user can pick from at
// registration; the key is what the database stores.
var securityQuestions = map[string]string{
	"pet_name":         "What is the name of your pet?",
	"childhood_friend": "What is the name of your best childhood friend?",
	"birth_city":       "In which city was your mother born?",
	"favorite_teacher": "What is the name of your favorite teacher?",
	"first_school":     "What was the name of your first school?",
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isStrongPassword requires at least 6 characters with both a letter and
// a digit.
func isStrongPassword(password string) bool {
	return len(password) >= 6 && letterDigit.MatchString(password)
}

func isSecurityQuestionValid(key string) bool {
	_, ok := securityQuestions[key]
	return ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type currentUserKey struct{}

// authed resolves the HTTP Basic credentials against the users table and
// stores the user in the request context.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, password, okAuth := r.BasicAuth()
		if !okAuth {
			w.Header().Set("WWW-Authenticate", `Basic realm="savoo"`)
			fail(w, http.StatusUnauthorized, "Authentication required.")
			return
		}

		user, err := s.repo.UserByEmail(r.Context(), normalizeEmail(email))
		if err != nil {
			fail(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			fail(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey{}, user)
		next(w, r.WithContext(ctx))
	}
}

func currentUser(r *http.Request) storage.User {
	u, _ := r.Context().Value(currentUserKey{}).(storage.User)
	return u
}
