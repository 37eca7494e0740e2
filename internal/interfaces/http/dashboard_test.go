package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mesada/internal/access"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
)

func TestHandleDashboard(t *testing.T) {
	acc := &MockAccessor{
		ScopeValue: access.ScopeFamily,
		OverviewFunc: func(ctx context.Context) (*access.Overview, error) {
			return &access.Overview{
				Scope:        access.ScopeFamily,
				TotalBalance: decimal.NewFromInt(780),
				Members: []access.Member{
					{ID: parentID, Role: profile.RoleResponsible, Balance: decimal.NewFromInt(750)},
					{ID: childID, Role: profile.RoleChild, Balance: decimal.NewFromInt(30)},
				},
			}, nil
		},
	}
	handler := NewDashboardHandler()

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), testSession(parentID, profile.RoleResponsible, acc))
	rr := httptest.NewRecorder()
	handler.HandleDashboard(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var ov access.Overview
	json.NewDecoder(rr.Body).Decode(&ov)
	if !ov.TotalBalance.Equal(decimal.NewFromInt(780)) || len(ov.Members) != 2 {
		t.Errorf("unexpected overview: %+v", ov)
	}
}

func TestHandleDashboard_Unauthenticated(t *testing.T) {
	rr := httptest.NewRecorder()
	NewDashboardHandler().HandleDashboard(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestHandleBudget(t *testing.T) {
	var gotMonth time.Time
	acc := &MockAccessor{
		BudgetFunc: func(ctx context.Context, month time.Time) (*transaction.MonthlySummary, error) {
			gotMonth = month
			if month.Year() == 1999 {
				return nil, errors.New("db down")
			}
			return &transaction.MonthlySummary{Month: month.Format("2006-01")}, nil
		},
	}
	handler := NewDashboardHandler()
	handler.now = func() time.Time { return time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		query     string
		status    int
		wantMonth string
	}{
		{"", http.StatusOK, "2026-05"},
		{"?month=2026-02", http.StatusOK, "2026-02"},
		{"?month=fevereiro", http.StatusBadRequest, ""},
		{"?month=1999-01", http.StatusInternalServerError, "1999-01"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			gotMonth = time.Time{}
			req := withSession(httptest.NewRequest(http.MethodGet, "/api/budget"+tt.query, nil), testSession(childID, profile.RoleChild, acc))
			rr := httptest.NewRecorder()
			handler.HandleBudget(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.wantMonth != "" && gotMonth.Format("2006-01") != tt.wantMonth {
				t.Errorf("month = %s, want %s", gotMonth.Format("2006-01"), tt.wantMonth)
			}
		})
	}
}
