package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mesada/internal/domain/profile"
)

// MockProfileService implements ProfileService for testing
type MockProfileService struct {
	GetFunc    func(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	RenameFunc func(ctx context.Context, id uuid.UUID, name string) (*profile.Profile, error)
}

func (m *MockProfileService) Get(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return m.GetFunc(ctx, id)
}

func (m *MockProfileService) Rename(ctx context.Context, id uuid.UUID, name string) (*profile.Profile, error) {
	return m.RenameFunc(ctx, id, name)
}

type recordingRefresher struct {
	refreshed []uuid.UUID
}

func (r *recordingRefresher) RefreshProfile(ctx context.Context, userID uuid.UUID) {
	r.refreshed = append(r.refreshed, userID)
}

func TestHandleProfile(t *testing.T) {
	svc := &MockProfileService{
		GetFunc: func(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
			return &profile.Profile{ID: id, Name: "Ana", Role: profile.RoleResponsible}, nil
		},
		RenameFunc: func(ctx context.Context, id uuid.UUID, name string) (*profile.Profile, error) {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, profile.ErrNameRequired
			}
			return &profile.Profile{ID: id, Name: name, Role: profile.RoleResponsible}, nil
		},
	}
	sessions := &recordingRefresher{}
	handler := NewProfileHandler(svc, sessions)
	sess := testSession(parentID, profile.RoleResponsible, nil)

	rr := httptest.NewRecorder()
	handler.HandleProfile(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/profile", nil), sess))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := withSession(httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewBufferString(`{"name":" Ana Maria "}`)), sess)
	handler.HandleProfile(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("PATCH status = %d", rr.Code)
	}
	var p profile.Profile
	json.NewDecoder(rr.Body).Decode(&p)
	if p.Name != "Ana Maria" {
		t.Errorf("name = %q", p.Name)
	}
	if len(sessions.refreshed) != 1 || sessions.refreshed[0] != parentID {
		t.Errorf("refreshed = %v, want [%s]", sessions.refreshed, parentID)
	}

	rr = httptest.NewRecorder()
	req = withSession(httptest.NewRequest(http.MethodPatch, "/api/profile", bytes.NewBufferString(`{"name":"  "}`)), sess)
	handler.HandleProfile(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rr.Code)
	}
	if len(sessions.refreshed) != 1 {
		t.Error("failed rename must not refresh sessions")
	}
}
