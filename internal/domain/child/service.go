package child

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mesada/internal/domain/identity"
	"mesada/internal/domain/profile"
	"mesada/internal/shared/apperr"
)

// Service manages a guardian's dependents.
type Service struct {
	repo            Repository
	accounts        Accounts
	remover         AccountRemover
	sessions        identity.Listener
	defaultPassword string
	log             zerolog.Logger
}

// NewService creates the dependents service. sessions is told when a
// dependent's account is deleted and may be nil.
func NewService(repo Repository, accounts Accounts, remover AccountRemover, sessions identity.Listener, defaultPassword string, log zerolog.Logger) *Service {
	return &Service{
		repo:            repo,
		accounts:        accounts,
		remover:         remover,
		sessions:        sessions,
		defaultPassword: defaultPassword,
		log:             log,
	}
}

func (s *Service) List(ctx context.Context, parentID uuid.UUID) ([]*Child, error) {
	return s.repo.ListByParent(ctx, parentID)
}

// Get returns a dependent owned by parentID.
func (s *Service) Get(ctx context.Context, parentID, childID uuid.UUID) (*Child, error) {
	c, err := s.repo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if c.ParentID != parentID {
		return nil, ErrForbidden
	}
	return c, nil
}

// Add creates the dependent's identity, then its profile and children row.
// The identity is deleted again if the rows cannot be written. When no
// password is given the configured default is used and the dependent must
// change it on first sign-in.
func (s *Service) Add(ctx context.Context, params AddParams) (*Child, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(strings.ToLower(params.Email))
	if err := params.Validate(); err != nil {
		return nil, err
	}

	password := params.Password
	resetRequired := false
	if password == "" {
		if s.defaultPassword == "" {
			return nil, apperr.NewValidationError("password", "is required")
		}
		password = s.defaultPassword
		resetRequired = true
	}

	ident, err := s.accounts.CreateUser(ctx, params.Email, password)
	if err != nil {
		return nil, apperr.Step("create identity", err)
	}

	c := &Child{
		ID:                 ident.ID,
		ParentID:           params.ParentID,
		Name:               params.Name,
		AllowanceFrequency: params.AllowanceFrequency,
	}
	if params.AllowanceAmount != nil {
		c.AllowanceAmount.Decimal = *params.AllowanceAmount
		c.AllowanceAmount.Valid = true
	}

	created, err := s.repo.Create(ctx, profile.CreateParams{
		ID:                    ident.ID,
		Name:                  params.Name,
		Email:                 ident.Email,
		Role:                  profile.RoleChild,
		PasswordResetRequired: resetRequired,
	}, c)
	if err != nil {
		if delErr := s.accounts.DeleteUser(ctx, ident.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("user_id", ident.ID.String()).Msg("Failed to delete orphaned dependent identity")
		}
		return nil, apperr.Step("insert dependent", err)
	}

	return created, nil
}

func (s *Service) Update(ctx context.Context, parentID, childID uuid.UUID, params UpdateParams) (*Child, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, parentID, childID); err != nil {
		return nil, err
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		params.Name = &name
	}
	return s.repo.Update(ctx, childID, params)
}

// Remove deletes the dependent and all its data, then ends the dependent's
// sessions.
func (s *Service) Remove(ctx context.Context, parentID, childID uuid.UUID) error {
	if _, err := s.Get(ctx, parentID, childID); err != nil {
		return err
	}
	if err := s.remover.DeleteUserAndData(ctx, childID); err != nil {
		return apperr.Step("delete dependent", err)
	}
	if s.sessions != nil {
		s.sessions.OnChange(ctx, identity.Change{
			Event:    identity.EventAccountDeleted,
			Identity: &identity.Identity{ID: childID},
		})
	}
	return nil
}
