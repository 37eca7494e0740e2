package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mesada/internal/access"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/identity"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
	"mesada/internal/session"
)

// MockAccessor implements access.Accessor for testing
type MockAccessor struct {
	ScopeValue       access.Scope
	MembersFunc      func(ctx context.Context) ([]access.Member, error)
	TransactionsFunc func(ctx context.Context) ([]*transaction.Transaction, error)
	GoalsFunc        func(ctx context.Context) ([]*goal.Goal, error)
	MedalsFunc       func(ctx context.Context) ([]*medal.Medal, error)
	OverviewFunc     func(ctx context.Context) (*access.Overview, error)
	BudgetFunc       func(ctx context.Context, month time.Time) (*transaction.MonthlySummary, error)
}

func (m *MockAccessor) Scope() access.Scope { return m.ScopeValue }

func (m *MockAccessor) Members(ctx context.Context) ([]access.Member, error) {
	if m.MembersFunc != nil {
		return m.MembersFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccessor) Transactions(ctx context.Context) ([]*transaction.Transaction, error) {
	if m.TransactionsFunc != nil {
		return m.TransactionsFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccessor) Goals(ctx context.Context) ([]*goal.Goal, error) {
	if m.GoalsFunc != nil {
		return m.GoalsFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccessor) Medals(ctx context.Context) ([]*medal.Medal, error) {
	if m.MedalsFunc != nil {
		return m.MedalsFunc(ctx)
	}
	return nil, nil
}

func (m *MockAccessor) Overview(ctx context.Context) (*access.Overview, error) {
	if m.OverviewFunc != nil {
		return m.OverviewFunc(ctx)
	}
	return &access.Overview{}, nil
}

func (m *MockAccessor) Budget(ctx context.Context, month time.Time) (*transaction.MonthlySummary, error) {
	if m.BudgetFunc != nil {
		return m.BudgetFunc(ctx, month)
	}
	return &transaction.MonthlySummary{}, nil
}

var (
	parentID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	childID  = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testSession(id uuid.UUID, role profile.Role, acc access.Accessor) *session.Session {
	if acc == nil {
		acc = &MockAccessor{}
	}
	return &session.Session{
		Identity: identity.Identity{ID: id, Email: id.String()[:4] + "@example.com"},
		Profile:  &profile.Profile{ID: id, Name: "User", Role: role},
		Accessor: acc,
	}
}

func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(session.WithSession(r.Context(), sess))
}
