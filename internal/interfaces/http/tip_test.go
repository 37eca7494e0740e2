package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
)

type stubTips struct {
	got []*transaction.Transaction
}

func (s *stubTips) GetTips(ctx context.Context, txs []*transaction.Transaction) []string {
	s.got = txs
	return []string{"Guarde 10% da mesada."}
}

func TestHandleTips(t *testing.T) {
	own := []*transaction.Transaction{{ID: uuid.New(), UserID: childID}}
	acc := &MockAccessor{
		TransactionsFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
			return own, nil
		},
	}
	tips := &stubTips{}
	handler := NewTipHandler(tips)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/tips", nil), testSession(childID, profile.RoleChild, acc))
	rr := httptest.NewRecorder()
	handler.HandleTips(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(tips.got) != 1 || tips.got[0].ID != own[0].ID {
		t.Errorf("tips computed over %v, want the scoped transactions", tips.got)
	}
	var resp TipsResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Tips) != 1 {
		t.Errorf("tips = %v", resp.Tips)
	}
}
