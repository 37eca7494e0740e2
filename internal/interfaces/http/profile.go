package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"mesada/internal/domain/profile"
)

type ProfileService interface {
	Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (*profile.Profile, error)
}

// ProfileRefresher reloads the cached profile of a user's sessions.
type ProfileRefresher interface {
	RefreshProfile(ctx context.Context, userID uuid.UUID)
}

type ProfileHandler struct {
	profiles ProfileService
	sessions ProfileRefresher
}

func NewProfileHandler(profiles ProfileService, sessions ProfileRefresher) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, sessions: sessions}
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// HandleProfile handles GET and PATCH /api/profile
func (h *ProfileHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := h.profiles.Get(r.Context(), sess.Identity.ID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case http.MethodPatch:
		var req UpdateProfileRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := h.profiles.Rename(r.Context(), sess.Identity.ID, req.Name)
		if err != nil {
			handleError(w, r, err)
			return
		}
		h.sessions.RefreshProfile(r.Context(), sess.Identity.ID)
		writeJSON(w, http.StatusOK, p)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
