package goal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/child"
	"mesada/internal/domain/transaction"
	"mesada/internal/shared/apperr"
	"mesada/internal/shared/messages"
	"mesada/internal/shared/money"
)

// Notifier delivers an in-app notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg messages.MessageText) error
}

// ChildLookup resolves a dependent by id.
type ChildLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*child.Child, error)
}

type Service struct {
	repo     Repository
	children ChildLookup
	notifier Notifier
	texts    *messages.Messages
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, children ChildLookup, notifier Notifier, texts *messages.Messages, log zerolog.Logger) *Service {
	if texts == nil {
		texts = messages.Default()
	}
	return &Service{
		repo:     repo,
		children: children,
		notifier: notifier,
		texts:    texts,
		log:      log,
		now:      time.Now,
	}
}

// Create registers a goal. A child's own goal waits for parent approval;
// a guardian creating a goal for one of their dependents approves it at once.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, callerIsChild bool, params CreateParams) (*Goal, error) {
	params.Title = strings.TrimSpace(params.Title)
	if callerIsChild {
		params.ChildID = callerID
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.ChildID == uuid.Nil {
		return nil, apperr.NewValidationError("child_id", "is required")
	}

	c, err := s.children.GetByID(ctx, params.ChildID)
	if err != nil {
		return nil, err
	}
	if !callerIsChild && c.ParentID != callerID {
		return nil, ErrForbidden
	}

	g, err := s.repo.Create(ctx, &Goal{
		ID:            uuid.New(),
		ChildID:       c.ID,
		ParentID:      c.ParentID,
		Title:         params.Title,
		TargetAmount:  params.TargetAmount,
		CurrentAmount: decimal.Zero,
		Status:        StatusActive,
		IsApproved:    !callerIsChild,
	})
	if err != nil {
		return nil, err
	}

	if callerIsChild {
		s.notify(ctx, g.ParentID, s.texts.GoalPendingApproval.Format(c.Name, g.Title))
	}
	return g, nil
}

// Approve marks a dependent's goal as approved by its parent.
func (s *Service) Approve(ctx context.Context, parentID, goalID uuid.UUID) (*Goal, error) {
	g, err := s.repo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g.ParentID != parentID {
		return nil, ErrForbidden
	}
	if g.IsApproved {
		return g, nil
	}

	approved, err := s.repo.Approve(ctx, goalID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, approved.ChildID, s.texts.GoalApproved.Format(approved.Title))
	return approved, nil
}

// Contribute moves amount from the child's balance into the goal, recorded
// as an expense tagged with the goal.
func (s *Service) Contribute(ctx context.Context, childID, goalID uuid.UUID, amount decimal.Decimal) (*Goal, error) {
	g, err := s.repo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g.ChildID != childID {
		return nil, ErrForbidden
	}

	previous := g.CurrentAmount
	if err := g.Contribute(amount); err != nil {
		return nil, err
	}

	gid := g.ID
	category := transaction.CategorySavings
	_, err = s.repo.ApplyMovement(ctx, g, previous, transaction.CreateParams{
		UserID:      g.ChildID,
		Description: "Economia para meta: " + g.Title,
		Amount:      amount,
		Category:    &category,
		Type:        transaction.TypeExpense,
		ExpenseDate: s.today(),
		GoalID:      &gid,
	})
	if err != nil {
		return nil, err
	}

	if g.Status == StatusCompleted {
		msg := s.texts.GoalCompleted.Format(g.Title, money.FormatBRL(g.CurrentAmount))
		s.notify(ctx, g.ChildID, msg)
		s.notify(ctx, g.ParentID, msg)
	}
	return g, nil
}

// ReleaseFunds pays the saved amount back to the child as income and closes
// the goal.
func (s *Service) ReleaseFunds(ctx context.Context, parentID, goalID uuid.UUID) (*Goal, *transaction.Transaction, error) {
	g, err := s.repo.GetByID(ctx, goalID)
	if err != nil {
		return nil, nil, err
	}
	if g.ParentID != parentID {
		return nil, nil, ErrForbidden
	}

	previous := g.CurrentAmount
	released, err := g.Release()
	if err != nil {
		return nil, nil, err
	}

	gid := g.ID
	category := transaction.CategorySavings
	income, err := s.repo.ApplyMovement(ctx, g, previous, transaction.CreateParams{
		UserID:      g.ChildID,
		Description: "Resgate da meta: " + g.Title,
		Amount:      released,
		Category:    &category,
		Type:        transaction.TypeIncome,
		ExpenseDate: s.today(),
		GoalID:      &gid,
	})
	if err != nil {
		return nil, nil, err
	}

	s.notify(ctx, g.ChildID, s.texts.FundsReleased.Format(money.FormatBRL(released), g.Title))
	return g, income, nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, msg messages.MessageText) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, msg); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to send goal notification")
	}
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
