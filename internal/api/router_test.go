package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/appiso/access-control/internal/api/handler"
	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/service"
	"github.com/appiso/access-control/internal/infrastructure/db/sqlite"
	"github.com/appiso/access-control/internal/infrastructure/lock"
	"github.com/appiso/access-control/internal/infrastructure/security"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := sqlite.NewTestDB(t)
	log := zerolog.Nop()

	hasher, err := security.NewHasher(security.AlgorithmBcrypt, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	tokens, err := service.NewTokenService("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}

	accounts := sqlite.NewAccountRepository(db)
	employees := sqlite.NewEmployeeRepository(db)
	auth := service.NewAuthService(accounts, lock.NewStriped(0), hasher, tokens, domain.DefaultLockoutPolicy(), log)

	seeds := []service.AccountSeed{
		{Username: "security.admin", Password: "Admin#2024", Role: domain.RoleAdminSecurity},
		{Username: "manager.general", Password: "Manager#2024", Role: domain.RoleManager},
	}
	if err := service.NewSeeder(auth, accounts, employees, log).Seed(context.Background(), seeds, service.DefaultEmployees); err != nil {
		t.Fatalf("seed: %v", err)
	}

	router := NewRouter(Dependencies{
		Auth:       auth,
		Employees:  service.NewEmployeeService(employees, log),
		Tokens:     tokens,
		Authorizer: service.NewAuthorizer(),
		Probes:     []handler.Dependency{sqlite.NewPinger(db)},
		Logger:     log,
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token, body string) (int, map[string]any) {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec.Code, resp
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	code, resp := s.do(http.MethodPost, "/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if code != http.StatusOK {
		s.t.Fatalf("login %s: expected 200, got %d (%v)", username, code, resp)
	}
	token, _ := resp["token"].(string)
	return token
}

func TestRouter_ManagerReadsSalary(t *testing.T) {
	s := newTestServer(t)
	token := s.login("manager.general", "Manager#2024")

	code, resp := s.do(http.MethodGet, "/employees/1/salary", token, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", code, resp)
	}
	if resp["name"] != "Pepito Perez" || resp["salary"] != float64(3500000) {
		t.Fatalf("unexpected body: %v", resp)
	}

	code, _ = s.do(http.MethodGet, "/employees/99/salary", token, "")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestRouter_AdminSecurityCannotReadSalary(t *testing.T) {
	s := newTestServer(t)
	token := s.login("security.admin", "Admin#2024")

	code, _ := s.do(http.MethodGet, "/employees/1/salary", token, "")
	if code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRouter_MissingOrBadToken(t *testing.T) {
	s := newTestServer(t)

	for _, token := range []string{"", "not-a-jwt"} {
		code, _ := s.do(http.MethodGet, "/employees/1/salary", token, "")
		if code != http.StatusUnauthorized {
			t.Errorf("token %q: expected 401, got %d", token, code)
		}
	}
}

func TestRouter_Me(t *testing.T) {
	s := newTestServer(t)
	token := s.login("manager.general", "Manager#2024")

	code, resp := s.do(http.MethodGet, "/me", token, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if resp["user"] != "manager.general" || resp["role"] != "Manager" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestRouter_AccountLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("security.admin", "Admin#2024")

	code, created := s.do(http.MethodPost, "/users", admin, `{"username":"hr.lead","password":"HrLead#2024","role":"HR"}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", code, created)
	}

	code, _ = s.do(http.MethodPost, "/users", admin, `{"username":"hr.lead","password":"HrLead#2024","role":"HR"}`)
	if code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", code)
	}

	hr := s.login("hr.lead", "HrLead#2024")
	if code, _ := s.do(http.MethodGet, "/employees/1/salary", hr, ""); code != http.StatusOK {
		t.Fatalf("HR should read salaries, got %d", code)
	}
	if code, _ := s.do(http.MethodPost, "/users", hr, `{"username":"x","password":"Whatever#1","role":"Agent"}`); code != http.StatusForbidden {
		t.Fatalf("HR must not manage users, got %d", code)
	}

	id, _ := created["id"].(string)
	if code, _ := s.do(http.MethodPatch, "/users/"+id+"/deactivate", admin, ""); code != http.StatusOK {
		t.Fatalf("expected 200 on deactivate, got %d", code)
	}
	if code, _ := s.do(http.MethodPost, "/login", "", `{"username":"hr.lead","password":"HrLead#2024"}`); code != http.StatusUnauthorized {
		t.Fatalf("deactivated account must not log in, got %d", code)
	}
	if code, _ := s.do(http.MethodPatch, "/users/9999/deactivate", admin, ""); code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", code)
	}
}

func TestRouter_LockoutIsIndistinguishable(t *testing.T) {
	s := newTestServer(t)

	_, unknown := s.do(http.MethodPost, "/login", "", `{"username":"ghost","password":"x"}`)
	for i := 0; i < 3; i++ {
		s.do(http.MethodPost, "/login", "", `{"username":"manager.general","password":"wrong"}`)
	}
	code, locked := s.do(http.MethodPost, "/login", "", `{"username":"manager.general","password":"Manager#2024"}`)

	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 while locked, got %d", code)
	}
	if locked["error"] != unknown["error"] {
		t.Fatalf("locked and unknown responses differ: %v vs %v", locked, unknown)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	if code, _ := s.do(http.MethodGet, "/health", "", ""); code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", code)
	}
	if code, resp := s.do(http.MethodGet, "/health/ready", "", ""); code != http.StatusOK {
		t.Fatalf("expected 200 from /health/ready, got %d (%v)", code, resp)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "access_control_") {
		t.Fatalf("expected access_control metrics, got %d", rec.Code)
	}
}

func TestRouter_EmptyPasswordCountsTowardLockout(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 3; i++ {
		if code, _ := s.do(http.MethodPost, "/login", "", `{"username":"manager.general","password":""}`); code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, code)
		}
	}
	if code, _ := s.do(http.MethodPost, "/login", "", `{"username":"manager.general","password":"Manager#2024"}`); code != http.StatusUnauthorized {
		t.Fatalf("expected account locked after empty passwords, got %d", code)
	}
}
