package api

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"savoo/internal/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL), srv
}

func TestLoginSuccessInstallsCredentials(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"ok","user":{"email":"a@b.c","display_name":"Ada","default_currency":"EUR","monthly_income":2500,"monthly_income_day":10}}`))
	})

	profile, err := client.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if profile.Email != "a@b.c" {
		t.Errorf("Email = %q, want a@b.c", profile.Email)
	}
	if profile.MonthlyIncome != 2500 {
		t.Errorf("MonthlyIncome = %v, want 2500", profile.MonthlyIncome)
	}
	if profile.IncomeDayOfMonth != 10 {
		t.Errorf("IncomeDayOfMonth = %d, want 10", profile.IncomeDayOfMonth)
	}
	if profile.MonthlyIncomeCurrency != "EUR" {
		t.Errorf("MonthlyIncomeCurrency = %q, want EUR (default fallback)", profile.MonthlyIncomeCurrency)
	}
	if client.Email() != "a@b.c" {
		t.Errorf("credentials not installed after login")
	}
}

func TestLoginFailureLeavesClientLoggedOut(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	})

	_, err := client.Login(context.Background(), "a@b.c", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "Invalid email or password" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if !IsAuthError(err) {
		t.Error("IsAuthError() = false, want true")
	}
	if client.Email() != "" {
		t.Error("credentials installed after failed login")
	}
}

func TestDoSendsBasicAuth(t *testing.T) {
	var gotAuth string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"categories":[]}`))
	})
	client.SetCredentials("a@b.c", "secret")

	if _, err := client.Categories(context.Background()); err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("a@b.c:secret"))
	if gotAuth != want {
		t.Errorf("Authorization = %q, want %q", gotAuth, want)
	}
}

func TestSuccessFalseWithOKStatusIsError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"Budget name already exists"}`))
	})

	err := client.CreateBudgetType(context.Background(), "travel")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Message != "Budget name already exists" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.IsAuth() {
		t.Error("IsAuth() = true for a 200 response")
	}
}

func TestMalformedBodyIsDecodeError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	})

	_, err := client.Transactions(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.Message != decodeErrorMessage {
		t.Errorf("Message = %q, want %q", apiErr.Message, decodeErrorMessage)
	}
}

func TestTransactionsDecodeNotePayload(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"transactions":[
			{"id":1,"type":"income","amount":2500,"currency":"EUR","kind":"salary","occurred_on":"2026-08-10","note":"{\"title\":\"Monthly income\",\"auto_income\":true}"},
			{"id":2,"type":"expense","amount":12.5,"currency":"EUR","kind":"mystery","occurred_on":"2026-08-11","note":"plain text note"}
		]}`))
	})

	txns, err := client.Transactions(context.Background())
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("len = %d, want 2", len(txns))
	}
	if !txns[0].AutoIncome || txns[0].Title != "Monthly income" {
		t.Errorf("auto income marker not decoded: %+v", txns[0])
	}
	if txns[1].Title != "plain text note" {
		t.Errorf("plain note title = %q", txns[1].Title)
	}
	if txns[1].Kind != "general" {
		t.Errorf("unknown kind normalized to %q, want general", txns[1].Kind)
	}
}

func TestCreateTransactionEncodesNotePayload(t *testing.T) {
	var gotBody string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"success":true}`))
	})
	client.SetCredentials("a@b.c", "s")

	tx := core.Transaction{
		Title:      "Monthly income",
		Amount:     2500,
		Type:       core.TypeIncome,
		Kind:       core.KindSalary,
		Currency:   "EUR",
		OccurredOn: core.NewDate(2026, 8, 10),
		AutoIncome: true,
	}
	if err := client.CreateTransaction(context.Background(), tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if !strings.Contains(gotBody, `\"auto_income\":true`) {
		t.Errorf("body missing encoded auto_income marker: %s", gotBody)
	}
	if !strings.Contains(gotBody, `"occurred_on":"2026-08-10"`) {
		t.Errorf("body missing ISO date: %s", gotBody)
	}
}

func TestBudgetsSendEmailQueryParam(t *testing.T) {
	var gotEmail string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotEmail = r.URL.Query().Get("email")
		w.Write([]byte(`{"success":true,"budgets":[{"id":7,"name":"Groceries","limit_amount":400,"spent_amount":120,"period":"monthly","budget_type":"groceries","currency":"EUR","remaining":280,"transaction_count":4}]}`))
	})
	client.SetCredentials("a@b.c", "s")

	budgets, err := client.Budgets(context.Background())
	if err != nil {
		t.Fatalf("Budgets() error = %v", err)
	}
	if gotEmail != "a@b.c" {
		t.Errorf("email query = %q, want a@b.c", gotEmail)
	}
	if len(budgets) != 1 || budgets[0].Remaining() != 280 {
		t.Errorf("budget mapping wrong: %+v", budgets)
	}
}

func TestSummaryFallsBackCategoryLabel(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"summary":{"period_start":"2026-08-01","period_end":"2026-08-31","total_income":2500,"total_expense":800,"net_savings":1700,"currency":"EUR","top_expense_categories":[{"name":"","spent":300},{"name":"Food","spent":200}]}}`))
	})
	client.SetCredentials("a@b.c", "s")

	sum, err := client.Summary(context.Background(), "monthly")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if sum.TopExpenseCategories[0].Name != "Uncategorized" {
		t.Errorf("empty category name = %q, want Uncategorized", sum.TopExpenseCategories[0].Name)
	}
	if sum.NetSavings != 1700 {
		t.Errorf("NetSavings = %v, want 1700", sum.NetSavings)
	}
}

func TestLogoutClearsCredentialsEvenOnError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"boom"}`))
	})
	client.SetCredentials("a@b.c", "s")

	if err := client.Logout(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if client.Email() != "" {
		t.Error("credentials still set after logout")
	}
}

func TestErrorMessageFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api error with message", &Error{Status: 400, Message: "Amount must be positive"}, "Amount must be positive"},
		{"api error without message", &Error{Status: 500}, "Something went wrong. Please try again."},
		{"plain error", errors.New("dial tcp: refused"), "Something went wrong. Please try again."},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
