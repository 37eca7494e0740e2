package medal

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrMedalNotFound       = errors.New("medal not found")
	ErrForbidden           = errors.New("access forbidden")
	ErrPrizeAlreadyGranted = errors.New("prize already granted for this medal")
)

// Medal is created by the database when a goal completes.
type Medal struct {
	ID          uuid.UUID           `json:"id"`
	ChildID     uuid.UUID           `json:"child_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	AchievedAt  time.Time           `json:"achieved_at"`
	PrizeAmount decimal.NullDecimal `json:"prize_amount"`
}

func (m *Medal) HasPrize() bool {
	return m.PrizeAmount.Valid
}
