package medal

import (
	"context"
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

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, msg messages.MessageText) error
}

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
	return &Service{repo: repo, children: children, notifier: notifier, texts: texts, log: log, now: time.Now}
}

// GrantPrize pays amount from the parent to the child for a medal. A medal
// can be rewarded only once.
func (s *Service) GrantPrize(ctx context.Context, parentID, medalID uuid.UUID, amount decimal.Decimal) (*Medal, error) {
	if !amount.IsPositive() {
		return nil, apperr.NewValidationError("amount", "must be greater than zero")
	}

	m, err := s.repo.GetByID(ctx, medalID)
	if err != nil {
		return nil, err
	}
	c, err := s.children.GetByID(ctx, m.ChildID)
	if err != nil {
		return nil, err
	}
	if c.ParentID != parentID {
		return nil, ErrForbidden
	}
	if m.HasPrize() {
		return nil, ErrPrizeAlreadyGranted
	}

	y, mo, d := s.now().Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	category := transaction.CategoryPrize
	debit := transaction.CreateParams{
		UserID:      parentID,
		Description: "Prêmio para " + c.Name + ": " + m.Name,
		Amount:      amount,
		Category:    &category,
		Type:        transaction.TypeExpense,
		ExpenseDate: day,
	}
	credit := transaction.CreateParams{
		UserID:      m.ChildID,
		Description: "Prêmio da medalha: " + m.Name,
		Amount:      amount,
		Category:    &category,
		Type:        transaction.TypeIncome,
		ExpenseDate: day,
	}

	if err := s.repo.GrantPrize(ctx, m.ID, amount, debit, credit); err != nil {
		return nil, err
	}
	m.PrizeAmount = decimal.NewNullDecimal(amount)

	if s.notifier != nil {
		msg := s.texts.PrizeGranted.Format(money.FormatBRL(amount), m.Name)
		if err := s.notifier.Notify(ctx, m.ChildID, msg); err != nil {
			s.log.Warn().Err(err).Str("medal_id", m.ID.String()).Msg("Failed to send prize notification")
		}
	}
	return m, nil
}
