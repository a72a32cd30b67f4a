// Package http is the REST surface of the Savoo API: JSON request and
// response bodies with the success/message envelope, HTTP Basic
// authentication, and per-IP rate limiting on mutating endpoints.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"savoo/internal/alerts"
	"savoo/internal/storage"
)

type Server struct {
	http.Server

	repo        *storage.SQLiteRepository
	notifier    *alerts.Notifier
	rateLimiter *rateLimiter
	now         func() time.Time
}

// NewServer wires routes and middleware, returning a ready-to-run
// server. notifier may be nil when budget alerts are disabled.
func NewServer(addr string, repo *storage.SQLiteRepository, notifier *alerts.Notifier) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		repo:        repo,
		notifier:    notifier,
		rateLimiter: newRateLimiter(60, time.Minute),
		now:         time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /register", s.with(s.handleRegister))
	mux.HandleFunc("POST /login", s.with(s.handleLogin))
	mux.HandleFunc("POST /forgot-password/verify", s.with(s.handleForgotPasswordVerify))
	mux.HandleFunc("POST /forgot-password/reset", s.with(s.handleForgotPasswordReset))

	mux.HandleFunc("POST /logout", s.with(s.authed(s.handleLogout)))
	mux.HandleFunc("GET /profile", s.with(s.authed(s.handleGetProfile)))
	mux.HandleFunc("PUT /profile", s.with(s.authed(s.handleUpdateProfile)))

	mux.HandleFunc("GET /categories", s.with(s.authed(s.handleListCategories)))
	mux.HandleFunc("POST /categories", s.with(s.authed(s.handleCreateCategory)))
	mux.HandleFunc("PUT /categories/{id}", s.with(s.authed(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /categories/{id}", s.with(s.authed(s.handleDeleteCategory)))

	mux.HandleFunc("GET /budget-types", s.with(s.authed(s.handleListBudgetTypes)))
	mux.HandleFunc("POST /budget-types", s.with(s.authed(s.handleCreateBudgetType)))
	mux.HandleFunc("DELETE /budget-types/{id}", s.with(s.authed(s.handleDeleteBudgetType)))

	mux.HandleFunc("GET /transactions", s.with(s.authed(s.handleListTransactions)))
	mux.HandleFunc("POST /transactions", s.with(s.authed(s.handleCreateTransaction)))
	mux.HandleFunc("PUT /transactions/{id}", s.with(s.authed(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /transactions/{id}", s.with(s.authed(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /budgets", s.with(s.authed(s.handleListBudgets)))
	mux.HandleFunc("POST /budgets", s.with(s.authed(s.handleCreateBudget)))
	mux.HandleFunc("PUT /budgets/{id}", s.with(s.authed(s.handleUpdateBudget)))
	mux.HandleFunc("DELETE /budgets/{id}", s.with(s.authed(s.handleDeleteBudget)))

	mux.HandleFunc("GET /savings-goals", s.with(s.authed(s.handleListSavingsGoals)))
	mux.HandleFunc("POST /savings-goals", s.with(s.authed(s.handleCreateSavingsGoal)))
	mux.HandleFunc("PUT /savings-goals/{id}", s.with(s.authed(s.handleUpdateSavingsGoal)))
	mux.HandleFunc("DELETE /savings-goals/{id}", s.with(s.authed(s.handleDeleteSavingsGoal)))
	mux.HandleFunc("POST /savings-goals/{id}/contributions", s.with(s.authed(s.handleAddContribution)))

	mux.HandleFunc("GET /dashboard/summary", s.with(s.authed(s.handleDashboardSummary)))
	mux.HandleFunc("GET /export/all", s.with(s.authed(s.handleExportAll)))

	return s
}

// with adds security headers, rate limiting on mutations, and request
// logging around a handler.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			fail(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

// responseWriter captures the status code for the completion log line.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// rateLimiter is a fixed-window per-IP counter.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	windows  map[string]time.Time
	counters map[string]int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:    limit,
		window:   window,
		windows:  make(map[string]time.Time),
		counters: make(map[string]int),
	}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if start, ok := rl.windows[clientIP]; !ok || now.Sub(start) > rl.window {
		rl.windows[clientIP] = now
		rl.counters[clientIP] = 0
	}
	if rl.counters[clientIP] >= rl.limit {
		return false
	}
	rl.counters[clientIP]++
	return true
}
