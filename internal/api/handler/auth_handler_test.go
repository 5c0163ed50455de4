package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubUserService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.Username != "alice" || in.Password != "secret123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, Username: in.Username, Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newContext(http.MethodPost, "/signup", `{"email":"alice@example.com","username":"alice","password":"secret123"}`, "")
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] != "User created successfully" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["role"] != "user" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	stub := &stubUserService{
		signupFn: func(context.Context, ports.SignupInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	cases := []string{
		`{"email":"not-an-email","username":"alice","password":"secret123"}`,
		`{"email":"alice@example.com","password":"secret123"}`,
		`{"email":"alice@example.com","username":"alice","password":"123"}`,
	}
	for _, body := range cases {
		c, _ := newContext(http.MethodPost, "/signup", body, "")
		if err := h.Signup(c); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubUserService{}, nil)

	c, _ := newContext(http.MethodPost, "/signup", "not-json", "")
	err := h.Signup(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Signup_ProviderRejects(t *testing.T) {
	stub := &stubUserService{
		signupFn: func(context.Context, ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrSignupRejected
		},
	}
	h := NewAuthHandler(stub, nil)

	c, _ := newContext(http.MethodPost, "/signup", `{"email":"a@b.co","username":"a","password":"secret123"}`, "")
	if err := h.Signup(c); !errors.Is(err, domain.ErrSignupRejected) {
		t.Fatalf("expected ErrSignupRejected, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	users := &stubUserService{
		meFn: func(_ context.Context, userID string) (*domain.User, error) {
			return &domain.User{ID: userID, Username: "alice", Role: domain.RoleAdmin}, nil
		},
	}
	passwords := &stubPasswords{
		loginFn: func(_ context.Context, email, password string) (string, *ports.Identity, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return "token123", &ports.Identity{UserID: "u1", Email: email}, nil
		},
	}
	h := NewAuthHandler(users, passwords)

	c, rec := newContext(http.MethodPost, "/login", `{"email":"alice@example.com","password":"secret"}`, "")
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["id"] != "u1" || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	passwords := &stubPasswords{
		loginFn: func(context.Context, string, string) (string, *ports.Identity, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(&stubUserService{}, passwords)

	c, _ := newContext(http.MethodPost, "/login", `{"email":"alice@example.com","password":"bad"}`, "")
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_Disabled(t *testing.T) {
	h := NewAuthHandler(&stubUserService{}, nil)

	c, _ := newContext(http.MethodPost, "/login", `{"email":"alice@example.com","password":"x"}`, "")
	var he *echo.HTTPError
	if err := h.Login(c); !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a password authenticator, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubUserService{
		meFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID == "ghost" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: userID, Username: "alice"}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newContext(http.MethodGet, "/user", "", "u1")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodGet, "/user", "", "ghost")
	if err := h.Me(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	c, _ = newContext(http.MethodGet, "/user", "", "")
	var he *echo.HTTPError
	if err := h.Me(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %v", err)
	}
}

func TestAuthHandler_MakeAdmin(t *testing.T) {
	stub := &stubUserService{
		promoteFn: func(_ context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email, Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAuthHandler(stub, nil)

	c, rec := newContext(http.MethodPost, "/admin/make-admin", `{"email":"alice@example.com"}`, "")
	if err := h.MakeAdmin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp userMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "User role updated to admin" || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
