package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/access"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/transaction"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/money"
)

type GoalService interface {
	Create(ctx context.Context, callerID uuid.UUID, callerIsChild bool, params goal.CreateParams) (*goal.Goal, error)
	Approve(ctx context.Context, parentID, goalID uuid.UUID) (*goal.Goal, error)
	Contribute(ctx context.Context, childID, goalID uuid.UUID, amount decimal.Decimal) (*goal.Goal, error)
	ReleaseFunds(ctx context.Context, parentID, goalID uuid.UUID) (*goal.Goal, *transaction.Transaction, error)
}

type GoalHandler struct {
	goals GoalService
}

func NewGoalHandler(goals GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

type CreateGoalRequest struct {
	Title        string `json:"title"`
	TargetAmount string `json:"target_amount"`
	// ChildID is required when a guardian creates the goal.
	ChildID string `json:"child_id,omitempty"`
}

type AmountRequest struct {
	Amount string `json:"amount"`
}

type ReleaseResponse struct {
	Goal        access.GoalProgress      `json:"goal"`
	Transaction *transaction.Transaction `json:"transaction"`
}

func withProgress(g *goal.Goal) access.GoalProgress {
	return access.GoalProgress{Goal: g, Progress: g.Progress()}
}

// HandleGoals handles GET and POST /api/goals
func (h *GoalHandler) HandleGoals(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		goals, err := sess.Accessor.Goals(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		out := make([]access.GoalProgress, 0, len(goals))
		for _, g := range goals {
			out = append(out, withProgress(g))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req CreateGoalRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		target, err := money.ParseAmount(req.TargetAmount)
		if err != nil {
			handleError(w, r, apperr.NewValidationError("target_amount", err.Error()))
			return
		}

		params := goal.CreateParams{Title: req.Title, TargetAmount: target}
		if req.ChildID != "" {
			params.ChildID, err = uuid.Parse(req.ChildID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid child_id")
				return
			}
		}

		g, err := h.goals.Create(r.Context(), sess.Identity.ID, !sess.IsGuardian(), params)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, withProgress(g))

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleApprove handles POST /api/goals/{id}/approve
func (h *GoalHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}

	g, err := h.goals.Approve(r.Context(), sess.Identity.ID, goalID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withProgress(g))
}

// HandleContribute handles POST /api/goals/{id}/contribute
func (h *GoalHandler) HandleContribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		handleError(w, r, apperr.NewValidationError("amount", err.Error()))
		return
	}

	g, err := h.goals.Contribute(r.Context(), sess.Identity.ID, goalID, amount)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, withProgress(g))
}

// HandleRelease handles POST /api/goals/{id}/release
func (h *GoalHandler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	goalID, ok := pathID(w, r)
	if !ok {
		return
	}

	g, income, err := h.goals.ReleaseFunds(r.Context(), sess.Identity.ID, goalID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReleaseResponse{Goal: withProgress(g), Transaction: income})
}
