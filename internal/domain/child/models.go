package child

import (
	"errors"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/shared/apperr"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

var (
	ErrChildNotFound    = errors.New("dependent not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrInvalidFrequency = errors.New("frequency must be 'weekly', 'biweekly' or 'monthly'")
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// Child links a dependent identity to its parent.
type Child struct {
	ID                 uuid.UUID           `json:"id"`
	ParentID           uuid.UUID           `json:"parent_id"`
	Name               string              `json:"name"`
	AllowanceAmount    decimal.NullDecimal `json:"allowance_amount"`
	AllowanceFrequency *Frequency          `json:"allowance_frequency"`
}

// Allowance returns the configured allowance, or zero.
func (c *Child) Allowance() decimal.Decimal {
	if c == nil || !c.AllowanceAmount.Valid {
		return decimal.Zero
	}
	return c.AllowanceAmount.Decimal
}

// TotalAllowance sums the allowances of children.
func TotalAllowance(children []*Child) decimal.Decimal {
	total := decimal.Zero
	for _, c := range children {
		total = total.Add(c.Allowance())
	}
	return total
}

// IDs returns the ids of children in order.
func IDs(children []*Child) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids
}

type AddParams struct {
	ParentID           uuid.UUID
	Name               string
	Email              string
	Password           string
	AllowanceAmount    *decimal.Decimal
	AllowanceFrequency *Frequency
}

func (p AddParams) Validate() error {
	if p.ParentID == uuid.Nil {
		return errors.New("valid parent ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperr.NewValidationError("name", "is required")
	}
	if err := checkmail.ValidateFormat(p.Email); err != nil {
		return apperr.NewValidationError("email", "is invalid")
	}
	return validateAllowance(p.AllowanceAmount, p.AllowanceFrequency)
}

type UpdateParams struct {
	Name               *string
	AllowanceAmount    *decimal.Decimal
	AllowanceFrequency *Frequency
}

func (p UpdateParams) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.NewValidationError("name", "is required")
	}
	return validateAllowance(p.AllowanceAmount, p.AllowanceFrequency)
}

func validateAllowance(amount *decimal.Decimal, freq *Frequency) error {
	if amount != nil && amount.IsNegative() {
		return apperr.NewValidationError("allowance_amount", "must not be negative")
	}
	if freq != nil && !freq.Valid() {
		return apperr.NewValidationError("allowance_frequency", ErrInvalidFrequency.Error())
	}
	return nil
}
