package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"mesada/internal/domain/identity"
	"mesada/internal/domain/profile"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/middleware"
)

// MockGateway implements AuthGateway for testing
type MockGateway struct {
	SignInFunc         func(ctx context.Context, email, password string) identity.Result
	SignUpFunc         func(ctx context.Context, email, password, name string) identity.Result
	SignOutFunc        func(ctx context.Context, accessToken string) identity.Result
	RefreshFunc        func(ctx context.Context, refreshToken string) identity.Result
	ChangePasswordFunc func(ctx context.Context, ident identity.Identity, current, next string) identity.Result
}

func (m *MockGateway) SignIn(ctx context.Context, email, password string) identity.Result {
	return m.SignInFunc(ctx, email, password)
}

func (m *MockGateway) SignUp(ctx context.Context, email, password, name string) identity.Result {
	return m.SignUpFunc(ctx, email, password, name)
}

func (m *MockGateway) SignOut(ctx context.Context, accessToken string) identity.Result {
	return m.SignOutFunc(ctx, accessToken)
}

func (m *MockGateway) Refresh(ctx context.Context, refreshToken string) identity.Result {
	return m.RefreshFunc(ctx, refreshToken)
}

func (m *MockGateway) ChangePassword(ctx context.Context, ident identity.Identity, current, next string) identity.Result {
	return m.ChangePasswordFunc(ctx, ident, current, next)
}

func successResult(email string) identity.Result {
	return identity.Result{
		Success:  true,
		Identity: &identity.Identity{ID: uuid.New(), Email: email},
		Credential: &identity.Credential{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	}
}

func TestHandleSignUp(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		result         identity.Result
		expectedStatus int
		expectCookie   bool
	}{
		{
			name:           "Success",
			body:           `{"email":"ana@example.com","password":"secret1","name":"Ana"}`,
			result:         successResult("ana@example.com"),
			expectedStatus: http.StatusCreated,
			expectCookie:   true,
		},
		{
			name:           "Validation Error",
			body:           `{"email":"ana","password":"secret1","name":"Ana"}`,
			result:         identity.Result{Error: apperr.NewValidationError("email", "is invalid")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Profile Step Failed",
			body:           `{"email":"ana@example.com","password":"secret1","name":"Ana"}`,
			result:         identity.Result{Error: apperr.Step("insert profile", errors.New("db down"))},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Email Taken",
			body:           `{"email":"ana@example.com","password":"secret1","name":"Ana"}`,
			result:         identity.Result{Error: apperr.Step("create identity", identity.ErrEmailTaken)},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Invalid Body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &MockGateway{
				SignUpFunc: func(ctx context.Context, email, password, name string) identity.Result {
					return tt.result
				},
			}
			handler := NewAuthHandler(gw)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			handler.HandleSignUp(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}

			hasCookie := false
			for _, c := range rr.Result().Cookies() {
				if c.Name == middleware.AccessTokenCookie && c.Value == "access" {
					hasCookie = true
				}
			}
			if hasCookie != tt.expectCookie {
				t.Errorf("access cookie set = %v, want %v", hasCookie, tt.expectCookie)
			}
		})
	}
}

func TestHandleSignIn(t *testing.T) {
	gw := &MockGateway{
		SignInFunc: func(ctx context.Context, email, password string) identity.Result {
			if password != "right" {
				return identity.Result{Error: identity.ErrInvalidCredentials}
			}
			return successResult(email)
		},
	}
	handler := NewAuthHandler(gw)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", bytes.NewBufferString(`{"email":"a@b.com","password":"right"}`))
	rr := httptest.NewRecorder()
	handler.HandleSignIn(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp AuthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.AccessToken != "access" || resp.RefreshToken != "refresh" || resp.User.Email != "a@b.com" {
		t.Errorf("unexpected response: %+v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/signin", bytes.NewBufferString(`{"email":"a@b.com","password":"wrong"}`))
	rr = httptest.NewRecorder()
	handler.HandleSignIn(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/signin", nil)
	rr = httptest.NewRecorder()
	handler.HandleSignIn(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}
}

func TestHandleSignOut(t *testing.T) {
	var revoked string
	gw := &MockGateway{
		SignOutFunc: func(ctx context.Context, accessToken string) identity.Result {
			revoked = accessToken
			return identity.Result{Success: true}
		},
	}
	handler := NewAuthHandler(gw)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rr := httptest.NewRecorder()
	handler.HandleSignOut(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if revoked != "tok-1" {
		t.Errorf("revoked token = %q", revoked)
	}

	var nav Navigation
	json.NewDecoder(rr.Body).Decode(&nav)
	if nav.Route != ScreenSignIn {
		t.Errorf("route after sign-out = %q, want sign-in", nav.Route)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil)
	rr = httptest.NewRecorder()
	handler.HandleSignOut(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rr.Code)
	}
}

func TestHandleRefresh(t *testing.T) {
	gw := &MockGateway{
		RefreshFunc: func(ctx context.Context, refreshToken string) identity.Result {
			if refreshToken == "" {
				return identity.Result{Error: apperr.NewValidationError("refresh_token", "is required")}
			}
			if refreshToken == "revoked" {
				return identity.Result{Error: identity.ErrSessionRevoked}
			}
			return successResult("a@b.com")
		},
	}
	handler := NewAuthHandler(gw)

	tests := []struct {
		body string
		want int
	}{
		{`{"refresh_token":"ok"}`, http.StatusOK},
		{`{"refresh_token":"revoked"}`, http.StatusUnauthorized},
		{`{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		handler.HandleRefresh(rr, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(tt.body)))
		if rr.Code != tt.want {
			t.Errorf("body %s: status = %d, want %d", tt.body, rr.Code, tt.want)
		}
	}
}

func TestHandleChangePassword(t *testing.T) {
	var got identity.Identity
	gw := &MockGateway{
		ChangePasswordFunc: func(ctx context.Context, ident identity.Identity, current, next string) identity.Result {
			got = ident
			return identity.Result{Success: true, Identity: &ident}
		},
	}
	handler := NewAuthHandler(gw)

	body := `{"current_password":"padrao1","new_password":"minhasenha"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/password", bytes.NewBufferString(body))
	req = withSession(req, testSession(childID, profile.RoleChild, nil))
	rr := httptest.NewRecorder()
	handler.HandleChangePassword(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if got.ID != childID {
		t.Errorf("changed password of %s, want %s", got.ID, childID)
	}

	rr = httptest.NewRecorder()
	handler.HandleChangePassword(rr, httptest.NewRequest(http.MethodPost, "/api/auth/password", bytes.NewBufferString(body)))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no session status = %d, want 401", rr.Code)
	}
}
