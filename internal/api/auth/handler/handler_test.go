package authHandler

import (
	"PostureIQ/internal/api/auth"
	authService "PostureIQ/internal/api/auth/service"
	"PostureIQ/internal/middleware"
	jwtPkg "PostureIQ/pkg/jwt"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type fakeUserDomain struct {
	registered []auth.CreateUserRequest
	deleted    []string
	err        error
}

func (f *fakeUserDomain) RegisterUser(_ context.Context, req auth.CreateUserRequest) (auth.UserResponse, error) {
	if f.err != nil {
		return auth.UserResponse{}, f.err
	}
	f.registered = append(f.registered, req)
	return auth.UserResponse{ID: "01J0USER", Username: req.Username, Email: req.Email}, nil
}

func (f *fakeUserDomain) GetByID(_ context.Context, id string) (auth.UserResponse, error) {
	return auth.UserResponse{ID: id, Username: "alice", Email: "alice@example.com"}, nil
}

func (f *fakeUserDomain) DeleteUser(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAuthDomain struct{}

func (fakeAuthDomain) Login(_ context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error) {
	if req.Password != "correct-horse" {
		return auth.LoginUserResponse{}, auth.ErrInvalidCredentials
	}
	token, _, err := jwtPkg.Sign(map[string]interface{}{
		"id": "01J0USER", "username": req.Username, "email": "alice@example.com",
	}, time.Hour)
	return auth.LoginUserResponse{AccessToken: token, ExpiresInHour: 1}, err
}

type fakeService struct {
	users *fakeUserDomain
}

func (f fakeService) User() authService.UserDomain { return f.users }
func (f fakeService) Auth() authService.AuthDomain { return fakeAuthDomain{} }

func newTestApp(t *testing.T, users *fakeUserDomain) *fiber.App {
	t.Helper()
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	t.Setenv("APP_ENV", "test")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	h := New(logger, fakeService{users: users}, validator.New(), middleware.New(logger))
	h.Start(app.Group("/api/v1"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestHandleRegister(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		status   int
		contains string
	}{
		{
			name:     "created",
			body:     `{"username":"alice","email":"alice@example.com","password":"correct-horse","confirm_password":"correct-horse"}`,
			status:   http.StatusCreated,
			contains: `"username":"alice"`,
		},
		{
			name:     "password mismatch",
			body:     `{"username":"alice","email":"alice@example.com","password":"correct-horse","confirm_password":"other-horse"}`,
			status:   http.StatusBadRequest,
			contains: "must match Password",
		},
		{
			name:     "short username",
			body:     `{"username":"al","email":"alice@example.com","password":"correct-horse","confirm_password":"correct-horse"}`,
			status:   http.StatusBadRequest,
			contains: "VALIDATION_ERROR",
		},
		{
			name:     "duplicate",
			body:     `{"username":"alice","email":"alice@example.com","password":"correct-horse","confirm_password":"correct-horse"}`,
			svcErr:   auth.ErrUsernameOrEmailTaken,
			status:   http.StatusConflict,
			contains: "Username or email already in use.",
		},
		{
			name:   "malformed json",
			body:   `{"username":`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, &fakeUserDomain{err: tt.svcErr})
			resp, body := doJSON(t, app, "POST", "/api/v1/users", tt.body, nil)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			if !strings.Contains(body, tt.contains) {
				t.Errorf("body %s missing %q", body, tt.contains)
			}
		})
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	app := newTestApp(t, &fakeUserDomain{})

	resp, body := doJSON(t, app, "POST", "/api/v1/auth/login", `{"username":"alice","password":"correct-horse"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == jwtPkg.SessionCookie {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("session cookie = %+v", session)
	}

	resp, body = doJSON(t, app, "GET", "/api/v1/users/me", "", map[string]string{"Cookie": "session=" + session.Value})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"id":"01J0USER"`) {
		t.Errorf("GET /users/me with cookie: %d %s", resp.StatusCode, body)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	app := newTestApp(t, &fakeUserDomain{})

	resp, body := doJSON(t, app, "POST", "/api/v1/auth/login", `{"username":"alice","password":"nope"}`, nil)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Invalid username or password.") {
		t.Errorf("got %d %s", resp.StatusCode, body)
	}
}

func TestDeleteMe(t *testing.T) {
	users := &fakeUserDomain{}
	app := newTestApp(t, users)

	resp, _ := doJSON(t, app, "DELETE", "/api/v1/users/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous delete status = %d, want 401", resp.StatusCode)
	}

	token, _, err := jwtPkg.Sign(map[string]interface{}{"id": "01J0USER", "username": "alice", "email": "a@b.c"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	resp, _ = doJSON(t, app, "DELETE", "/api/v1/users/me", "", map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
	if len(users.deleted) != 1 || users.deleted[0] != "01J0USER" {
		t.Errorf("deleted = %v", users.deleted)
	}
}
