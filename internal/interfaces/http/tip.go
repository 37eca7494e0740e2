package http

import (
	"context"
	"net/http"

	"mesada/internal/domain/transaction"
)

type TipSource interface {
	GetTips(ctx context.Context, txs []*transaction.Transaction) []string
}

type TipHandler struct {
	tips TipSource
}

func NewTipHandler(tips TipSource) *TipHandler {
	return &TipHandler{tips: tips}
}

type TipsResponse struct {
	Tips []string `json:"tips"`
}

// HandleTips handles GET /api/tips. It answers 200 even when the tip
// function is unavailable.
func (h *TipHandler) HandleTips(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	txs, err := sess.Accessor.Transactions(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TipsResponse{Tips: h.tips.GetTips(r.Context(), txs)})
}
