package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/access"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
)

// MockGoalService implements GoalService for testing
type MockGoalService struct {
	CreateFunc       func(ctx context.Context, callerID uuid.UUID, callerIsChild bool, params goal.CreateParams) (*goal.Goal, error)
	ApproveFunc      func(ctx context.Context, parentID, goalID uuid.UUID) (*goal.Goal, error)
	ContributeFunc   func(ctx context.Context, childID, goalID uuid.UUID, amount decimal.Decimal) (*goal.Goal, error)
	ReleaseFundsFunc func(ctx context.Context, parentID, goalID uuid.UUID) (*goal.Goal, *transaction.Transaction, error)
}

func (m *MockGoalService) Create(ctx context.Context, callerID uuid.UUID, callerIsChild bool, params goal.CreateParams) (*goal.Goal, error) {
	return m.CreateFunc(ctx, callerID, callerIsChild, params)
}

func (m *MockGoalService) Approve(ctx context.Context, parentID, goalID uuid.UUID) (*goal.Goal, error) {
	return m.ApproveFunc(ctx, parentID, goalID)
}

func (m *MockGoalService) Contribute(ctx context.Context, childID, goalID uuid.UUID, amount decimal.Decimal) (*goal.Goal, error) {
	return m.ContributeFunc(ctx, childID, goalID, amount)
}

func (m *MockGoalService) ReleaseFunds(ctx context.Context, parentID, goalID uuid.UUID) (*goal.Goal, *transaction.Transaction, error) {
	return m.ReleaseFundsFunc(ctx, parentID, goalID)
}

func sampleGoal(current, target string) *goal.Goal {
	return &goal.Goal{
		ID:            uuid.New(),
		ChildID:       childID,
		ParentID:      parentID,
		Title:         "Bicicleta",
		TargetAmount:  decimal.RequireFromString(target),
		CurrentAmount: decimal.RequireFromString(current),
		Status:        goal.StatusActive,
		IsApproved:    true,
	}
}

func TestHandleGoals_List(t *testing.T) {
	acc := &MockAccessor{
		GoalsFunc: func(ctx context.Context) ([]*goal.Goal, error) {
			return []*goal.Goal{sampleGoal("25", "100")}, nil
		},
	}
	handler := NewGoalHandler(&MockGoalService{})

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/goals", nil), testSession(childID, profile.RoleChild, acc))
	rr := httptest.NewRecorder()
	handler.HandleGoals(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var goals []access.GoalProgress
	if err := json.NewDecoder(rr.Body).Decode(&goals); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(goals) != 1 || goals[0].Progress != 25 {
		t.Errorf("unexpected goals: %+v", goals)
	}
}

func TestHandleGoals_Create(t *testing.T) {
	tests := []struct {
		name          string
		sessionID     uuid.UUID
		role          profile.Role
		body          string
		expectedChild bool
		expectedCalls int
		expectedCode  int
	}{
		{
			name:          "Child creates own goal",
			sessionID:     childID,
			role:          profile.RoleChild,
			body:          `{"title":"Bicicleta","target_amount":"150,00"}`,
			expectedChild: true,
			expectedCalls: 1,
			expectedCode:  http.StatusCreated,
		},
		{
			name:          "Parent creates goal for child",
			sessionID:     parentID,
			role:          profile.RoleResponsible,
			body:          `{"title":"Bicicleta","target_amount":"150","child_id":"` + childID.String() + `"}`,
			expectedCalls: 1,
			expectedCode:  http.StatusCreated,
		},
		{
			name:         "Invalid amount",
			sessionID:    childID,
			role:         profile.RoleChild,
			body:         `{"title":"Bicicleta","target_amount":"abc"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Zero amount",
			sessionID:    childID,
			role:         profile.RoleChild,
			body:         `{"title":"Bicicleta","target_amount":"0"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Invalid child id",
			sessionID:    parentID,
			role:         profile.RoleResponsible,
			body:         `{"title":"Bicicleta","target_amount":"10","child_id":"x"}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			svc := &MockGoalService{
				CreateFunc: func(ctx context.Context, callerID uuid.UUID, callerIsChild bool, params goal.CreateParams) (*goal.Goal, error) {
					calls++
					if callerID != tt.sessionID {
						t.Errorf("callerID = %s, want %s", callerID, tt.sessionID)
					}
					if callerIsChild != tt.expectedChild {
						t.Errorf("callerIsChild = %v, want %v", callerIsChild, tt.expectedChild)
					}
					if !params.TargetAmount.Equal(decimal.NewFromInt(150)) {
						t.Errorf("target = %s, want 150", params.TargetAmount)
					}
					g := sampleGoal("0", "150")
					g.IsApproved = !callerIsChild
					return g, nil
				},
			}
			handler := NewGoalHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/goals", bytes.NewBufferString(tt.body))
			req = withSession(req, testSession(tt.sessionID, tt.role, nil))
			rr := httptest.NewRecorder()
			handler.HandleGoals(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("status = %d, want %d: %s", rr.Code, tt.expectedCode, rr.Body.String())
			}
			if calls != tt.expectedCalls {
				t.Errorf("Create called %d times, want %d", calls, tt.expectedCalls)
			}
		})
	}
}

func TestHandleContribute(t *testing.T) {
	g := sampleGoal("90", "100")
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{"success", g.ID.String(), `{"amount":"10"}`, nil, http.StatusOK},
		{"not approved", g.ID.String(), `{"amount":"10"}`, goal.ErrGoalNotApproved, http.StatusConflict},
		{"other child's goal", g.ID.String(), `{"amount":"10"}`, goal.ErrForbidden, http.StatusForbidden},
		{"negative amount", g.ID.String(), `{"amount":"-5"}`, nil, http.StatusBadRequest},
		{"bad id", "nope", `{"amount":"10"}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockGoalService{
				ContributeFunc: func(ctx context.Context, cID, goalID uuid.UUID, amount decimal.Decimal) (*goal.Goal, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					done := *g
					done.CurrentAmount = done.CurrentAmount.Add(amount)
					done.Status = goal.StatusCompleted
					return &done, nil
				},
			}
			handler := NewGoalHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/goals/"+tt.path+"/contribute", bytes.NewBufferString(tt.body))
			req.SetPathValue("id", tt.path)
			req = withSession(req, testSession(childID, profile.RoleChild, nil))
			rr := httptest.NewRecorder()
			handler.HandleContribute(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.status == http.StatusOK {
				var resp access.GoalProgress
				json.NewDecoder(rr.Body).Decode(&resp)
				if resp.Progress != 100 || resp.Status != goal.StatusCompleted {
					t.Errorf("unexpected goal: %+v", resp)
				}
			}
		})
	}
}

func TestHandleRelease(t *testing.T) {
	g := sampleGoal("40", "100")
	svc := &MockGoalService{
		ReleaseFundsFunc: func(ctx context.Context, pID, goalID uuid.UUID) (*goal.Goal, *transaction.Transaction, error) {
			if pID != parentID {
				return nil, nil, goal.ErrForbidden
			}
			released := *g
			released.CurrentAmount = decimal.Zero
			released.Status = goal.StatusCompleted
			return &released, &transaction.Transaction{UserID: childID, Amount: g.CurrentAmount, Type: transaction.TypeIncome}, nil
		},
	}
	handler := NewGoalHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/goals/"+g.ID.String()+"/release", nil)
	req.SetPathValue("id", g.ID.String())
	req = withSession(req, testSession(parentID, profile.RoleResponsible, nil))
	rr := httptest.NewRecorder()
	handler.HandleRelease(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp ReleaseResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Transaction.Type != transaction.TypeIncome || !resp.Transaction.Amount.Equal(decimal.NewFromInt(40)) {
		t.Errorf("unexpected transaction: %+v", resp.Transaction)
	}
	if !resp.Goal.CurrentAmount.IsZero() {
		t.Errorf("current amount = %s, want 0", resp.Goal.CurrentAmount)
	}
}

func TestHandleApprove(t *testing.T) {
	g := sampleGoal("0", "100")
	g.IsApproved = false
	svc := &MockGoalService{
		ApproveFunc: func(ctx context.Context, pID, goalID uuid.UUID) (*goal.Goal, error) {
			if goalID != g.ID {
				return nil, goal.ErrGoalNotFound
			}
			approved := *g
			approved.IsApproved = true
			return &approved, nil
		},
	}
	handler := NewGoalHandler(svc)

	for _, tc := range []struct {
		id   string
		want int
	}{
		{g.ID.String(), http.StatusOK},
		{uuid.NewString(), http.StatusNotFound},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/goals/"+tc.id+"/approve", nil)
		req.SetPathValue("id", tc.id)
		req = withSession(req, testSession(parentID, profile.RoleResponsible, nil))
		rr := httptest.NewRecorder()
		handler.HandleApprove(rr, req)
		if rr.Code != tc.want {
			t.Errorf("approve %s: status = %d, want %d", tc.id, rr.Code, tc.want)
		}
	}
}
