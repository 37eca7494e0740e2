package goal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/shared/apperr"
	"mesada/internal/shared/money"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrForbidden        = errors.New("access forbidden")
	ErrGoalNotApproved  = errors.New("goal is waiting for approval")
	ErrGoalCompleted    = errors.New("goal is already completed")
	ErrNothingToRelease = errors.New("goal has no saved amount to release")
	ErrGoalChanged      = errors.New("goal was changed by another request")
)

type Goal struct {
	ID            uuid.UUID       `json:"id"`
	ChildID       uuid.UUID       `json:"child_id"`
	ParentID      uuid.UUID       `json:"parent_id"`
	Title         string          `json:"title"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Status        Status          `json:"status"`
	IsApproved    bool            `json:"is_approved"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Progress is the saved share of the target, capped at 100.
func (g *Goal) Progress() float64 {
	return money.Progress(g.CurrentAmount, g.TargetAmount)
}

// Contribute adds amount to the saved total. The goal completes once the
// total reaches the target and never reverts to active.
func (g *Goal) Contribute(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.NewValidationError("amount", "must be greater than zero")
	}
	if !g.IsApproved {
		return ErrGoalNotApproved
	}
	if g.Status == StatusCompleted {
		return ErrGoalCompleted
	}

	g.CurrentAmount = g.CurrentAmount.Add(amount)
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Status = StatusCompleted
	}
	return nil
}

// Release empties the goal and returns the amount that was saved.
func (g *Goal) Release() (decimal.Decimal, error) {
	if !g.CurrentAmount.IsPositive() {
		return decimal.Zero, ErrNothingToRelease
	}
	released := g.CurrentAmount
	g.CurrentAmount = decimal.Zero
	g.Status = StatusCompleted
	return released, nil
}

type CreateParams struct {
	ChildID      uuid.UUID
	Title        string
	TargetAmount decimal.Decimal
}

func (p CreateParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return apperr.NewValidationError("title", "is required")
	}
	if !p.TargetAmount.IsPositive() {
		return apperr.NewValidationError("target_amount", "must be greater than zero")
	}
	return nil
}
