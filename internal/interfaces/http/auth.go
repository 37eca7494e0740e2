package http

import (
	"context"
	"net/http"
	"time"

	"mesada/internal/domain/identity"
	"mesada/internal/shared/middleware"
)

// AuthGateway is the part of identity.Gateway the auth screens use.
type AuthGateway interface {
	SignIn(ctx context.Context, email, password string) identity.Result
	SignUp(ctx context.Context, email, password, name string) identity.Result
	SignOut(ctx context.Context, accessToken string) identity.Result
	Refresh(ctx context.Context, refreshToken string) identity.Result
	ChangePassword(ctx context.Context, ident identity.Identity, currentPassword, newPassword string) identity.Result
}

type AuthHandler struct {
	gateway AuthGateway
}

func NewAuthHandler(gateway AuthGateway) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AuthResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresAt    time.Time          `json:"expires_at"`
	User         *identity.Identity `json:"user"`
}

// HandleSignUp handles POST /api/auth/signup
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.respond(w, r, http.StatusCreated, h.gateway.SignUp(r.Context(), req.Email, req.Password, req.Name))
}

// HandleSignIn handles POST /api/auth/signin
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.respond(w, r, http.StatusOK, h.gateway.SignIn(r.Context(), req.Email, req.Password))
}

// HandleRefresh handles POST /api/auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.respond(w, r, http.StatusOK, h.gateway.Refresh(r.Context(), req.RefreshToken))
}

// HandleSignOut handles POST /api/auth/signout. The client is sent back
// to the sign-in screen.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := middleware.BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res := h.gateway.SignOut(r.Context(), token)
	if !res.Success {
		handleError(w, r, res.Error)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, NavigationFor(nil))
}

// HandleChangePassword handles POST /api/auth/password
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res := h.gateway.ChangePassword(r.Context(), sess.Identity, req.CurrentPassword, req.NewPassword)
	if !res.Success {
		handleError(w, r, res.Error)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, res identity.Result) {
	if !res.Success {
		handleError(w, r, res.Error)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    res.Credential.AccessToken,
		Path:     "/",
		Expires:  res.Credential.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, status, AuthResponse{
		AccessToken:  res.Credential.AccessToken,
		RefreshToken: res.Credential.RefreshToken,
		ExpiresAt:    res.Credential.ExpiresAt,
		User:         res.Identity,
	})
}
