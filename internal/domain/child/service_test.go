package child

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mesada/internal/domain/identity"
	"mesada/internal/domain/profile"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/logger"
)

type mockRepo struct {
	CreateFunc       func(ctx context.Context, p profile.CreateParams, c *Child) (*Child, error)
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*Child, error)
	ListByParentFunc func(ctx context.Context, parentID uuid.UUID) ([]*Child, error)
	UpdateFunc       func(ctx context.Context, id uuid.UUID, params UpdateParams) (*Child, error)
}

func (m *mockRepo) Create(ctx context.Context, p profile.CreateParams, c *Child) (*Child, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p, c)
	}
	return c, nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Child, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrChildNotFound
}

func (m *mockRepo) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*Child, error) {
	if m.ListByParentFunc != nil {
		return m.ListByParentFunc(ctx, parentID)
	}
	return nil, nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Child, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, params)
	}
	return &Child{ID: id}, nil
}

type mockAccounts struct {
	CreateUserFunc func(ctx context.Context, email, password string) (*identity.Identity, error)
	deleted        []uuid.UUID
	deleteErr      error
}

func (m *mockAccounts) CreateUser(ctx context.Context, email, password string) (*identity.Identity, error) {
	return m.CreateUserFunc(ctx, email, password)
}

func (m *mockAccounts) DeleteUser(ctx context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

type mockRemover struct {
	removed []uuid.UUID
	err     error
}

func (m *mockRemover) DeleteUserAndData(ctx context.Context, userID uuid.UUID) error {
	m.removed = append(m.removed, userID)
	return m.err
}

func TestService_Add_DefaultPassword(t *testing.T) {
	parentID := uuid.New()
	childID := uuid.New()
	var usedPassword string
	accounts := &mockAccounts{
		CreateUserFunc: func(ctx context.Context, email, password string) (*identity.Identity, error) {
			usedPassword = password
			return &identity.Identity{ID: childID, Email: email}, nil
		},
	}
	var gotProfile profile.CreateParams
	repo := &mockRepo{
		CreateFunc: func(ctx context.Context, p profile.CreateParams, c *Child) (*Child, error) {
			gotProfile = p
			return c, nil
		},
	}

	allowance := decimal.RequireFromString("30")
	weekly := FrequencyWeekly
	svc := NewService(repo, accounts, &mockRemover{}, nil, "troque123", logger.Nop())

	c, err := svc.Add(context.Background(), AddParams{
		ParentID:           parentID,
		Name:               " Bia ",
		Email:              "Bia@Example.com",
		AllowanceAmount:    &allowance,
		AllowanceFrequency: &weekly,
	})
	require.NoError(t, err)

	assert.Equal(t, "troque123", usedPassword)
	assert.True(t, gotProfile.PasswordResetRequired)
	assert.Equal(t, profile.RoleChild, gotProfile.Role)
	assert.Equal(t, "bia@example.com", gotProfile.Email)
	assert.Equal(t, childID, c.ID)
	assert.Equal(t, parentID, c.ParentID)
	assert.Equal(t, "Bia", c.Name)
	assert.True(t, c.Allowance().Equal(allowance))
}

func TestService_Add_ExplicitPasswordNoReset(t *testing.T) {
	accounts := &mockAccounts{
		CreateUserFunc: func(ctx context.Context, email, password string) (*identity.Identity, error) {
			return &identity.Identity{ID: uuid.New(), Email: email}, nil
		},
	}
	var gotProfile profile.CreateParams
	repo := &mockRepo{
		CreateFunc: func(ctx context.Context, p profile.CreateParams, c *Child) (*Child, error) {
			gotProfile = p
			return c, nil
		},
	}

	_, err := NewService(repo, accounts, &mockRemover{}, nil, "", logger.Nop()).Add(context.Background(), AddParams{
		ParentID: uuid.New(), Name: "Caio", Email: "caio@example.com", Password: "segredo1",
	})
	require.NoError(t, err)
	assert.False(t, gotProfile.PasswordResetRequired)
}

func TestService_Add_Validation(t *testing.T) {
	accounts := &mockAccounts{
		CreateUserFunc: func(ctx context.Context, email, password string) (*identity.Identity, error) {
			t.Fatal("identity must not be created for invalid input")
			return nil, nil
		},
	}
	svc := NewService(&mockRepo{}, accounts, &mockRemover{}, nil, "", logger.Nop())
	bad := FrequencyMonthly + "ly"

	tests := []AddParams{
		{ParentID: uuid.New(), Name: "", Email: "a@b.com", Password: "123456"},
		{ParentID: uuid.New(), Name: "Ana", Email: "not-an-email", Password: "123456"},
		{ParentID: uuid.New(), Name: "Ana", Email: "a@b.com", AllowanceFrequency: &bad, Password: "123456"},
		{ParentID: uuid.New(), Name: "Ana", Email: "a@b.com"},
	}
	for _, p := range tests {
		_, err := svc.Add(context.Background(), p)
		assert.True(t, apperr.IsValidationError(err), "params %+v: got %v", p, err)
	}
}

func TestService_Add_CompensatesIdentity(t *testing.T) {
	childID := uuid.New()
	accounts := &mockAccounts{
		CreateUserFunc: func(ctx context.Context, email, password string) (*identity.Identity, error) {
			return &identity.Identity{ID: childID, Email: email}, nil
		},
	}
	repo := &mockRepo{
		CreateFunc: func(ctx context.Context, p profile.CreateParams, c *Child) (*Child, error) {
			return nil, errors.New("insert failed")
		},
	}

	_, err := NewService(repo, accounts, &mockRemover{}, nil, "troque123", logger.Nop()).Add(context.Background(), AddParams{
		ParentID: uuid.New(), Name: "Bia", Email: "bia@example.com",
	})

	var step *apperr.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, "insert dependent", step.Step)
	assert.Equal(t, []uuid.UUID{childID}, accounts.deleted)
}

func TestService_Remove(t *testing.T) {
	parentID := uuid.New()
	childID := uuid.New()
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*Child, error) {
			return &Child{ID: id, ParentID: parentID}, nil
		},
	}
	remover := &mockRemover{}
	svc := NewService(repo, nil, remover, nil, "", logger.Nop())

	require.NoError(t, svc.Remove(context.Background(), parentID, childID))
	assert.Equal(t, []uuid.UUID{childID}, remover.removed)

	err := svc.Remove(context.Background(), uuid.New(), childID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Len(t, remover.removed, 1)
}

type recordingListener struct {
	changes []identity.Change
}

func (l *recordingListener) OnChange(ctx context.Context, change identity.Change) {
	l.changes = append(l.changes, change)
}

func TestService_Remove_EndsDependentSessions(t *testing.T) {
	parentID := uuid.New()
	childID := uuid.New()
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*Child, error) {
			return &Child{ID: id, ParentID: parentID}, nil
		},
	}
	sessions := &recordingListener{}
	svc := NewService(repo, nil, &mockRemover{}, sessions, "", logger.Nop())

	require.NoError(t, svc.Remove(context.Background(), parentID, childID))
	require.Len(t, sessions.changes, 1)
	assert.Equal(t, identity.EventAccountDeleted, sessions.changes[0].Event)
	assert.Equal(t, childID, sessions.changes[0].Identity.ID)
}

func TestService_Remove_FailureKeepsSessions(t *testing.T) {
	parentID := uuid.New()
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*Child, error) {
			return &Child{ID: id, ParentID: parentID}, nil
		},
	}
	sessions := &recordingListener{}
	remover := &mockRemover{err: errors.New("rpc failed")}
	svc := NewService(repo, nil, remover, sessions, "", logger.Nop())

	err := svc.Remove(context.Background(), parentID, uuid.New())
	var step *apperr.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, "delete dependent", step.Step)
	assert.Empty(t, sessions.changes)
}

func TestService_Update_Forbidden(t *testing.T) {
	repo := &mockRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*Child, error) {
			return &Child{ID: id, ParentID: uuid.New()}, nil
		},
		UpdateFunc: func(ctx context.Context, id uuid.UUID, params UpdateParams) (*Child, error) {
			t.Fatal("update must not run for another parent's dependent")
			return nil, nil
		},
	}
	name := "Novo"

	_, err := NewService(repo, nil, &mockRemover{}, nil, "", logger.Nop()).Update(context.Background(), uuid.New(), uuid.New(), UpdateParams{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTotalAllowance(t *testing.T) {
	children := []*Child{
		{AllowanceAmount: decimal.NewNullDecimal(decimal.RequireFromString("25.50"))},
		{},
		{AllowanceAmount: decimal.NewNullDecimal(decimal.RequireFromString("10"))},
	}
	assert.True(t, TotalAllowance(children).Equal(decimal.RequireFromString("35.50")))
	assert.True(t, (*Child)(nil).Allowance().IsZero())
}
