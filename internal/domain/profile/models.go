package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleResponsible Role = "responsible"
	RoleChild       Role = "child"
)

// DefaultSignUpRole is assigned to every self-registered account.
const DefaultSignUpRole = RoleResponsible

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidRole     = errors.New("role must be 'admin', 'responsible' or 'child'")
	ErrNameRequired    = errors.New("name is required")
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleResponsible, RoleChild:
		return true
	}
	return false
}

// IsGuardian reports whether the role manages dependents.
func (r Role) IsGuardian() bool {
	return r == RoleAdmin || r == RoleResponsible
}

type Profile struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Role                  Role      `json:"role"`
	PasswordResetRequired bool      `json:"password_reset_required"`
	CreatedAt             time.Time `json:"created_at"`
}

type CreateParams struct {
	ID                    uuid.UUID
	Name                  string
	Email                 string
	Role                  Role
	PasswordResetRequired bool
}

func (p CreateParams) Validate() error {
	if p.ID == uuid.Nil {
		return errors.New("profile id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Email == "" {
		return errors.New("email is required")
	}
	if !p.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}
