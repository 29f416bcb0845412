package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felipetaua/finan/internal/auth"
	"github.com/felipetaua/finan/internal/onboarding"
	"github.com/felipetaua/finan/internal/services"
	"github.com/felipetaua/finan/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "finan.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tokens := auth.NewTokenIssuer(testSecret, time.Hour)
	srv := NewServer(Config{Port: "0", RateLimitPerMinute: 10000}, Deps{
		Finance:    services.NewFinanceService(st, nil),
		Challenges: services.NewChallengeService(st),
		Auth:       auth.NewService(st, tokens, nil, time.Minute),
		Tokens:     tokens,
		Onboarding: onboarding.NewRegistry(time.Minute),
		Store:      st,
	})
	t.Cleanup(func() {
		srv.apiLimiter.Stop()
		srv.authLimiter.Stop()
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, srv *Server, email string) sessionJSON {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name:     "Ana",
		Email:    email,
		Password: "segredo-forte",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[sessionJSON](t, rec)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	session := registerUser(t, srv, "ana@example.com")
	if session.Token == "" || session.User.ID == "" {
		t.Fatalf("expected token and user, got %+v", session)
	}
	if session.User.Provider != "password" {
		t.Fatalf("unexpected provider %q", session.User.Provider)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name: "Ana", Email: "ana@example.com", Password: "segredo-forte",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email: "ana@example.com", Password: "senha-errada!",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email: "ANA@example.com", Password: "segredo-forte",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions/", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bogus token, got %d", rec.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	session := registerUser(t, srv, "ana@example.com")
	token := session.Token

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions/", token, addTransactionRequest{
		Type:        "expense",
		Amount:      "123,45",
		Category:    "Alimentação",
		Description: "mercado",
		Date:        "2024-03-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[transactionJSON](t, rec)
	if created.AmountCents != 12345 {
		t.Fatalf("expected 12345 cents, got %d", created.AmountCents)
	}
	if created.Date != "2024-03-15" {
		t.Fatalf("unexpected date %q", created.Date)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if list := decodeBody[[]transactionJSON](t, rec); len(list) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(list))
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/transactions/"+created.ID+"/amount", token, editAmountRequest{Amount: "200,00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if edited := decodeBody[transactionJSON](t, rec); edited.AmountCents != 20000 {
		t.Fatalf("expected 20000 cents after edit, got %d", edited.AmountCents)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "ana@example.com").Token

	tests := []struct {
		name string
		req  addTransactionRequest
	}{
		{"bad type", addTransactionRequest{Type: "transfer", Amount: "10,00", Category: "x", Description: "y", Date: "2024-03-15"}},
		{"bad amount", addTransactionRequest{Type: "expense", Amount: "-5", Category: "x", Description: "y", Date: "2024-03-15"}},
		{"bad date", addTransactionRequest{Type: "expense", Amount: "10,00", Category: "x", Description: "y", Date: "ontem"}},
		{"empty description", addTransactionRequest{Type: "expense", Amount: "10,00", Category: "x", Description: "  ", Date: "2024-03-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/transactions/", token, tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "ana@example.com").Token

	seed := []addTransactionRequest{
		{Type: "income", Amount: "5000,00", Category: "Salário", Description: "salário", Date: "2024-03-01"},
		{Type: "expense", Amount: "1500,00", Category: "Moradia", Description: "aluguel", Date: "2024-03-05"},
		{Type: "expense", Amount: "500,00", Category: "Alimentação", Description: "mercado", Date: "2024-03-10"},
		// Outside the window.
		{Type: "expense", Amount: "999,00", Category: "Lazer", Description: "viagem", Date: "2024-04-02"},
	}
	for _, req := range seed {
		if rec := doJSON(t, srv, http.MethodPost, "/api/transactions/", token, req); rec.Code != http.StatusCreated {
			t.Fatalf("seed: expected 201, got %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/summary?year=2024&month=3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := decodeBody[summaryJSON](t, rec)
	if summary.TotalIncomeCents != 500_000 {
		t.Fatalf("expected income 500000, got %d", summary.TotalIncomeCents)
	}
	if summary.TotalExpensesCents != 200_000 {
		t.Fatalf("expected expenses 200000, got %d", summary.TotalExpensesCents)
	}
	if summary.SavingsCents != 300_000 {
		t.Fatalf("expected savings 300000, got %d", summary.SavingsCents)
	}
	if summary.PercentSpent != 40 || summary.PercentLeft != 60 {
		t.Fatalf("unexpected percentages %+v", summary)
	}
	if len(summary.ByCategory) != 2 || summary.ByCategory[0].Category != "Moradia" {
		t.Fatalf("unexpected category breakdown %+v", summary.ByCategory)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=2024&month=13", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad month: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/dashboard?year=2024&month=3", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", rec.Code)
	}
	dashboard := decodeBody[dashboardJSON](t, rec)
	if dashboard.BalanceCents != 200_100 {
		t.Fatalf("expected all-time balance 200100, got %d", dashboard.BalanceCents)
	}
	if len(dashboard.Recent) != 4 {
		t.Fatalf("expected 4 recent movements, got %d", len(dashboard.Recent))
	}
}

func TestOnboardingFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/onboarding/start", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d", rec.Code)
	}
	start := decodeBody[map[string]any](t, rec)
	sessionID, _ := start["session"].(string)
	if sessionID == "" {
		t.Fatalf("expected session id, got %v", start)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/onboarding/"+sessionID+"/step1", "",
		map[string]string{"objetivo": "economizar"})
	if rec.Code != http.StatusOK {
		t.Fatalf("step: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/onboarding/"+sessionID+"/step9", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown step: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/onboarding/nao-existe/step1", "", map[string]string{})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name:              "Ana",
		Email:             "ana@example.com",
		Password:          "segredo-forte",
		OnboardingSession: sessionID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	session := decodeBody[sessionJSON](t, rec)
	if !strings.Contains(string(session.User.Onboarding), "economizar") {
		t.Fatalf("expected onboarding answers on the account, got %s", session.User.Onboarding)
	}
}

func TestChallengeEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "ana@example.com").Token

	rec := doJSON(t, srv, http.MethodGet, "/api/challenges/templates", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("templates: expected 200, got %d", rec.Code)
	}
	templates := decodeBody[[]templateJSON](t, rec)
	if len(templates) != 4 {
		t.Fatalf("expected 4 templates, got %d", len(templates))
	}
	if templates[0].GoalCents != 100_000 {
		t.Fatalf("unexpected first template %+v", templates[0])
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/challenges/", token, startChallengeRequest{TemplateID: "guardando-dinheiro"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	challenge := decodeBody[challengeJSON](t, rec)
	if challenge.GoalCents != 100_000 || challenge.Status != "active" {
		t.Fatalf("unexpected challenge %+v", challenge)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/challenges/", token, startChallengeRequest{TemplateID: "nao-existe"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown template: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/challenges/%s/contribute", challenge.ID), token,
		contributeRequest{Amount: "250,00", Direction: "add"})
	if rec.Code != http.StatusOK {
		t.Fatalf("contribute: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[challengeJSON](t, rec)
	if updated.CurrentCents != 25_000 || updated.Percent != 25 {
		t.Fatalf("unexpected progress %+v", updated)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/challenges/%s/contribute", challenge.ID), token,
		contributeRequest{Amount: "100,00", Direction: "withdraw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d", rec.Code)
	}
	if updated = decodeBody[challengeJSON](t, rec); updated.CurrentCents != 15_000 {
		t.Fatalf("expected 15000 after withdraw, got %d", updated.CurrentCents)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/challenges/%s/contribute", challenge.ID), token,
		contributeRequest{Amount: "100,00", Direction: "sideways"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad direction: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/challenges/%s/contribute", challenge.ID), token,
		contributeRequest{Amount: "100,00"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing direction: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/challenges/"+challenge.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/challenges/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if list := decodeBody[[]challengeJSON](t, rec); len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}

func TestMeEndpoint(t *testing.T) {
	srv := newTestServer(t)
	session := registerUser(t, srv, "ana@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/me", session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	me := decodeBody[userJSON](t, rec)
	if me.ID != session.User.ID || me.XP != 0 {
		t.Fatalf("unexpected profile %+v", me)
	}
}

func TestUserScoping(t *testing.T) {
	srv := newTestServer(t)
	ana := registerUser(t, srv, "ana@example.com")
	bia := registerUser(t, srv, "bia@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions/", ana.Token, addTransactionRequest{
		Type: "expense", Amount: "10,00", Category: "Lazer", Description: "café", Date: "2024-03-15",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d", rec.Code)
	}
	created := decodeBody[transactionJSON](t, rec)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions/"+created.ID, bia.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user read: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/transactions/"+created.ID, bia.Token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user delete: expected 404, got %d", rec.Code)
	}
}
