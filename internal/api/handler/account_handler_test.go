package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/core/domain"
)

func newValidatingEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAccountHandler_Create_Success(t *testing.T) {
	e := newValidatingEcho()
	stub := &stubAuthService{
		createFn: func(ctx context.Context, username, password string, role domain.Role) (*domain.AccountSummary, error) {
			if username != "hr.lead" || role != domain.RoleHR {
				t.Fatalf("unexpected args: %s %s", username, role)
			}
			return &domain.AccountSummary{ID: "5", Username: username, Role: role}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/users", `{"username":"hr.lead","password":"Str0ngPass!","role":"HR"}`)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["id"] != "5" || resp["username"] != "hr.lead" || resp["role"] != "HR" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if _, ok := resp["password"]; ok {
		t.Fatal("password must not be echoed")
	}
}

func TestAccountHandler_Create_Duplicate(t *testing.T) {
	e := newValidatingEcho()
	stub := &stubAuthService{
		createFn: func(ctx context.Context, username, password string, role domain.Role) (*domain.AccountSummary, error) {
			return nil, domain.ErrAccountExists
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newJSONContext(e, http.MethodPost, "/users", `{"username":"alice","password":"Str0ngPass!","role":"Agent"}`)
	_ = handler.Create(c)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_Validation(t *testing.T) {
	e := newValidatingEcho()
	handler := NewAccountHandler(&stubAuthService{
		createFn: func(ctx context.Context, username, password string, role domain.Role) (*domain.AccountSummary, error) {
			t.Fatal("service must not be called for invalid input")
			return nil, nil
		},
	})

	for _, body := range []string{
		`{"password":"Str0ngPass!","role":"Agent"}`,
		`{"username":"alice","password":"short","role":"Agent"}`,
		`{"username":"alice","password":"Str0ngPass!","role":"Admin"}`,
		`{"username":"alice","password":"Str0ngPass!","role":"hr"}`,
		`not json`,
	} {
		c, rec := newJSONContext(e, http.MethodPost, "/users", body)
		_ = handler.Create(c)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAccountHandler_Deactivate(t *testing.T) {
	e := echo.New()
	handler := NewAccountHandler(&stubAuthService{
		deactivateFn: func(ctx context.Context, id string) error {
			if id != "5" {
				return domain.ErrAccountNotFound
			}
			return nil
		},
	})

	c, rec := newJSONContext(e, http.MethodPatch, "/users/5/deactivate", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := handler.Deactivate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newJSONContext(e, http.MethodPatch, "/users/9/deactivate", "")
	c.SetParamNames("id")
	c.SetParamValues("9")
	_ = handler.Deactivate(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
