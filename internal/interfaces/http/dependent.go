package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/child"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/money"
)

type DependentService interface {
	List(ctx context.Context, parentID uuid.UUID) ([]*child.Child, error)
	Add(ctx context.Context, params child.AddParams) (*child.Child, error)
	Update(ctx context.Context, parentID, childID uuid.UUID, params child.UpdateParams) (*child.Child, error)
	Remove(ctx context.Context, parentID, childID uuid.UUID) error
}

// DependentHandler serves the dependents screen. Every route sits behind
// RequireGuardian.
type DependentHandler struct {
	dependents DependentService
}

func NewDependentHandler(dependents DependentService) *DependentHandler {
	return &DependentHandler{dependents: dependents}
}

type AddDependentRequest struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Password           string  `json:"password,omitempty"`
	AllowanceAmount    *string `json:"allowance_amount,omitempty"`
	AllowanceFrequency *string `json:"allowance_frequency,omitempty"`
}

type UpdateDependentRequest struct {
	Name               *string `json:"name,omitempty"`
	AllowanceAmount    *string `json:"allowance_amount,omitempty"`
	AllowanceFrequency *string `json:"allowance_frequency,omitempty"`
}

// HandleDependents handles GET and POST /api/dependents
func (h *DependentHandler) HandleDependents(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := h.dependents.List(r.Context(), sess.Identity.ID)
		if err != nil {
			handleError(w, r, err)
			return
		}
		if list == nil {
			list = []*child.Child{}
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var req AddDependentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		amount, err := parseAllowance(req.AllowanceAmount)
		if err != nil {
			handleError(w, r, err)
			return
		}

		c, err := h.dependents.Add(r.Context(), child.AddParams{
			ParentID:           sess.Identity.ID,
			Name:               req.Name,
			Email:              req.Email,
			Password:           req.Password,
			AllowanceAmount:    amount,
			AllowanceFrequency: toFrequency(req.AllowanceFrequency),
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleDependentByID handles PATCH and DELETE /api/dependents/{id}
func (h *DependentHandler) HandleDependentByID(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	childID, ok := pathID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req UpdateDependentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		amount, err := parseAllowance(req.AllowanceAmount)
		if err != nil {
			handleError(w, r, err)
			return
		}

		c, err := h.dependents.Update(r.Context(), sess.Identity.ID, childID, child.UpdateParams{
			Name:               req.Name,
			AllowanceAmount:    amount,
			AllowanceFrequency: toFrequency(req.AllowanceFrequency),
		})
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	case http.MethodDelete:
		if err := h.dependents.Remove(r.Context(), sess.Identity.ID, childID); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// parseAllowance accepts "0" to clear an allowance; any other value must
// be a positive amount.
func parseAllowance(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	if *raw == "0" || *raw == "0,00" || *raw == "0.00" {
		zero := decimal.Zero
		return &zero, nil
	}
	amount, err := money.ParseAmount(*raw)
	if err != nil {
		return nil, apperr.NewValidationError("allowance_amount", err.Error())
	}
	return &amount, nil
}

func toFrequency(raw *string) *child.Frequency {
	if raw == nil {
		return nil
	}
	f := child.Frequency(*raw)
	return &f
}
