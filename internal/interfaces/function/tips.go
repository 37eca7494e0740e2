// Package function serves the generate-financial-tips endpoint.
package function

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"mesada/internal/domain/tip"
	"mesada/internal/domain/transaction"
)

const maxBodySize = 1 << 20 // 1 MiB

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

type TipGenerator interface {
	GenerateTips(ctx context.Context, txs []*transaction.Transaction) ([]string, error)
}

// TipsHandler answers {transactions} with {tips}, or {error} on failure.
type TipsHandler struct {
	generator TipGenerator
	log       zerolog.Logger
}

func NewTipsHandler(generator TipGenerator, log zerolog.Logger) *TipsHandler {
	return &TipsHandler{generator: generator, log: log}
}

func (h *TipsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, tip.Response{Error: "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req tip.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, tip.Response{Error: "invalid request body"})
		return
	}

	tips, err := h.generator.GenerateTips(r.Context(), req.Transactions)
	if err != nil {
		h.log.Error().Err(err).Int("transactions", len(req.Transactions)).Msg("Tip generation failed")
		msg := "failed to generate tips"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "tip generation timed out"
		}
		writeJSON(w, http.StatusInternalServerError, tip.Response{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, tip.Response{Tips: tips})
}

func writeJSON(w http.ResponseWriter, status int, resp tip.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
