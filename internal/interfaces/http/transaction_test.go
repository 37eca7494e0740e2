package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
	"mesada/internal/shared/apperr"
)

// MockTransactionCreator implements TransactionCreator for testing
type MockTransactionCreator struct {
	CreateFunc func(ctx context.Context, params transaction.CreateParams, receipt *transaction.Receipt) (*transaction.Transaction, error)
}

func (m *MockTransactionCreator) Create(ctx context.Context, params transaction.CreateParams, receipt *transaction.Receipt) (*transaction.Transaction, error) {
	return m.CreateFunc(ctx, params, receipt)
}

func echoCreator(t *testing.T, seen *transaction.CreateParams, receiptBody *string) *MockTransactionCreator {
	return &MockTransactionCreator{
		CreateFunc: func(ctx context.Context, params transaction.CreateParams, receipt *transaction.Receipt) (*transaction.Transaction, error) {
			*seen = params
			if receipt != nil && receiptBody != nil {
				b, err := io.ReadAll(receipt.Body)
				if err != nil {
					t.Fatalf("read receipt: %v", err)
				}
				*receiptBody = receipt.Filename + ":" + string(b)
			}
			if err := params.Validate(); err != nil {
				return nil, err
			}
			return &transaction.Transaction{ID: uuid.New(), UserID: params.UserID, Amount: params.Amount, Type: params.Type}, nil
		},
	}
}

func TestHandleTransactions_CreateJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		amount string
	}{
		{"expense with comma", `{"description":"Lanche","amount":"12,50","type":"expense","expense_date":"2026-03-04"}`, http.StatusCreated, "12.5"},
		{"income in reais", `{"description":"Mesada","amount":"R$ 1.234,56","type":"INCOME"}`, http.StatusCreated, "1234.56"},
		{"not a number", `{"description":"Lanche","amount":"doze","type":"expense"}`, http.StatusBadRequest, ""},
		{"bad date", `{"description":"Lanche","amount":"1","type":"expense","expense_date":"04/03/2026"}`, http.StatusBadRequest, ""},
		{"bad type", `{"description":"Lanche","amount":"1","type":"gift"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen transaction.CreateParams
			handler := NewTransactionHandler(echoCreator(t, &seen, nil))
			handler.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }

			req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req = withSession(req, testSession(childID, profile.RoleChild, nil))
			rr := httptest.NewRecorder()
			handler.HandleTransactions(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.amount != "" {
				if !seen.Amount.Equal(decimal.RequireFromString(tt.amount)) {
					t.Errorf("amount = %s, want %s", seen.Amount, tt.amount)
				}
				if seen.UserID != childID {
					t.Errorf("user = %s, want %s", seen.UserID, childID)
				}
				if seen.ExpenseDate.Hour() != 0 {
					t.Errorf("expense date should be a day, got %s", seen.ExpenseDate)
				}
			}
		})
	}
}

func TestHandleTransactions_CreateMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("description", "Material escolar")
	mw.WriteField("amount", "45,90")
	mw.WriteField("type", "expense")
	mw.WriteField("category", " Escola ")
	part, _ := mw.CreateFormFile("receipt", "nota.jpg")
	part.Write([]byte("jpeg-bytes"))
	mw.Close()

	var seen transaction.CreateParams
	var receipt string
	handler := NewTransactionHandler(echoCreator(t, &seen, &receipt))

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = withSession(req, testSession(parentID, profile.RoleResponsible, nil))
	rr := httptest.NewRecorder()
	handler.HandleTransactions(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if receipt != "nota.jpg:jpeg-bytes" {
		t.Errorf("receipt = %q", receipt)
	}
	if seen.Category == nil || *seen.Category != "Escola" {
		t.Errorf("category = %v", seen.Category)
	}
	if seen.Location != nil {
		t.Errorf("location should be unset, got %q", *seen.Location)
	}
}

func TestHandleTransactions_UploadFailure(t *testing.T) {
	creator := &MockTransactionCreator{
		CreateFunc: func(ctx context.Context, params transaction.CreateParams, receipt *transaction.Receipt) (*transaction.Transaction, error) {
			return nil, apperr.Step("upload receipt", errors.New("bucket unavailable"))
		},
	}
	handler := NewTransactionHandler(creator)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(`{"description":"x","amount":"1","type":"expense"}`))
	req = withSession(req, testSession(parentID, profile.RoleResponsible, nil))
	rr := httptest.NewRecorder()
	handler.HandleTransactions(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body ErrorResponse
	json.NewDecoder(rr.Body).Decode(&body)
	if body.Step != "upload receipt" {
		t.Errorf("step = %q", body.Step)
	}
}

func TestHandleTransactions_List(t *testing.T) {
	older := &transaction.Transaction{ID: uuid.New(), ExpenseDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := &transaction.Transaction{ID: uuid.New(), ExpenseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)}
	acc := &MockAccessor{
		TransactionsFunc: func(ctx context.Context) ([]*transaction.Transaction, error) {
			return []*transaction.Transaction{older, newer}, nil
		},
	}
	handler := NewTransactionHandler(&MockTransactionCreator{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), testSession(parentID, profile.RoleResponsible, acc))
	rr := httptest.NewRecorder()
	handler.HandleTransactions(rr, req)

	var list []transaction.Transaction
	json.NewDecoder(rr.Body).Decode(&list)
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Errorf("expected most recent first, got %+v", list)
	}
}
