package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mesada/internal/domain/child"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/identity"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/notification"
	"mesada/internal/shared/apperr"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantStep   string
	}{
		{"validation", apperr.NewValidationError("amount", "must be greater than zero"), http.StatusBadRequest, ""},
		{"device type", notification.ErrInvalidDeviceType, http.StatusBadRequest, ""},
		{"bad credentials", identity.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{"forbidden goal", goal.ErrForbidden, http.StatusForbidden, ""},
		{"forbidden child", child.ErrForbidden, http.StatusForbidden, ""},
		{"missing medal", medal.ErrMedalNotFound, http.StatusNotFound, ""},
		{"wrapped not found", fmt.Errorf("load: %w", goal.ErrGoalNotFound), http.StatusNotFound, ""},
		{"prize twice", medal.ErrPrizeAlreadyGranted, http.StatusConflict, ""},
		{"not approved", goal.ErrGoalNotApproved, http.StatusConflict, ""},
		{"email taken inside step", apperr.Step("create identity", identity.ErrEmailTaken), http.StatusConflict, ""},
		{"remote failure", apperr.Step("insert profile", errors.New("connection reset")), http.StatusInternalServerError, "insert profile"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Error == "" {
				t.Error("expected error message")
			}
			if body.Step != tt.wantStep {
				t.Errorf("step = %q, want %q", body.Step, tt.wantStep)
			}
		})
	}
}

func TestHandleError_ValidationMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	handleError(rr, httptest.NewRequest(http.MethodGet, "/", nil), apperr.NewValidationError("title", "is required"))

	var body ErrorResponse
	json.NewDecoder(rr.Body).Decode(&body)
	if body.Error != "title: is required" {
		t.Errorf("error = %q", body.Error)
	}
}
