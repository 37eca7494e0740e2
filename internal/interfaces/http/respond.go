package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"mesada/internal/domain/child"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/identity"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/notification"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
	"mesada/internal/session"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/logger"
	"mesada/internal/shared/money"
)

const maxBodySize = 1 << 20 // 1 MiB

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Step  string `json:"step,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return sess, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

var (
	forbiddenErrors = []error{child.ErrForbidden, goal.ErrForbidden, medal.ErrForbidden}
	notFoundErrors  = []error{
		child.ErrChildNotFound,
		goal.ErrGoalNotFound,
		medal.ErrMedalNotFound,
		profile.ErrProfileNotFound,
		transaction.ErrTransactionNotFound,
		notification.ErrNotificationNotFound,
	}
	conflictErrors = []error{
		medal.ErrPrizeAlreadyGranted,
		goal.ErrGoalNotApproved,
		goal.ErrGoalCompleted,
		goal.ErrNothingToRelease,
		goal.ErrGoalChanged,
		identity.ErrEmailTaken,
	}
	badRequestErrors = []error{
		notification.ErrInvalidDeviceType,
		notification.ErrInvalidToken,
		money.ErrInvalidAmount,
		money.ErrNonPositiveAmount,
		profile.ErrNameRequired,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// handleError maps a domain error to its HTTP status. Remote failures are
// reported with the name of the step that failed.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *apperr.ValidationError
	var se *apperr.StepError

	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case isAny(err, badRequestErrors):
		writeError(w, http.StatusBadRequest, err.Error())
	case identity.IsAuthError(err):
		writeError(w, http.StatusUnauthorized, err.Error())
	case isAny(err, forbiddenErrors):
		writeError(w, http.StatusForbidden, err.Error())
	case isAny(err, notFoundErrors):
		writeError(w, http.StatusNotFound, err.Error())
	case isAny(err, conflictErrors):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &se):
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("step", se.Step).Str("path", r.URL.Path).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: se.Step + " failed", Step: se.Step})
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
