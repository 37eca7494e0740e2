package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/medal"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/money"
)

type PrizeGranter interface {
	GrantPrize(ctx context.Context, parentID, medalID uuid.UUID, amount decimal.Decimal) (*medal.Medal, error)
}

type MedalHandler struct {
	medals PrizeGranter
}

func NewMedalHandler(medals PrizeGranter) *MedalHandler {
	return &MedalHandler{medals: medals}
}

// HandleMedals handles GET /api/medals
func (h *MedalHandler) HandleMedals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	medals, err := sess.Accessor.Medals(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if medals == nil {
		medals = []*medal.Medal{}
	}
	writeJSON(w, http.StatusOK, medals)
}

// HandlePrize handles POST /api/medals/{id}/prize
func (h *MedalHandler) HandlePrize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	medalID, ok := pathID(w, r)
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

	m, err := h.medals.GrantPrize(r.Context(), sess.Identity.ID, medalID, amount)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
