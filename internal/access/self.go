package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/child"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
)

// SelfAccessor reads only the caller's own rows.
type SelfAccessor struct {
	userID  uuid.UUID
	name    string
	role    profile.Role
	readers Readers
}

func (a *SelfAccessor) Scope() Scope {
	return ScopeSelf
}

// allowance is zero for users without a children row.
func (a *SelfAccessor) allowance(ctx context.Context) (decimal.Decimal, error) {
	c, err := a.readers.Children.GetByID(ctx, a.userID)
	if errors.Is(err, child.ErrChildNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load allowance: %w", err)
	}
	return c.Allowance(), nil
}

func (a *SelfAccessor) self() []uuid.UUID {
	return []uuid.UUID{a.userID}
}

func (a *SelfAccessor) Members(ctx context.Context) ([]Member, error) {
	allowance, err := a.allowance(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := a.readers.Transactions.ListByUsers(ctx, a.self())
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return []Member{member(a.userID, a.name, a.role, allowance, txs)}, nil
}

func (a *SelfAccessor) Transactions(ctx context.Context) ([]*transaction.Transaction, error) {
	txs, err := a.readers.Transactions.ListByUsers(ctx, a.self())
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	transaction.SortRecent(txs)
	return txs, nil
}

func (a *SelfAccessor) Goals(ctx context.Context) ([]*goal.Goal, error) {
	return a.readers.Goals.ListByChildren(ctx, a.self())
}

func (a *SelfAccessor) Medals(ctx context.Context) ([]*medal.Medal, error) {
	return a.readers.Medals.ListByChildren(ctx, a.self())
}

func (a *SelfAccessor) Overview(ctx context.Context) (*Overview, error) {
	allowance, err := a.allowance(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := a.readers.Transactions.ListByUsers(ctx, a.self())
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	goals, err := a.readers.Goals.ListByChildren(ctx, a.self())
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	members := []Member{member(a.userID, a.name, a.role, allowance, txs)}
	return buildOverview(ScopeSelf, members, txs, goals), nil
}

func (a *SelfAccessor) Budget(ctx context.Context, month time.Time) (*transaction.MonthlySummary, error) {
	txs, err := a.readers.Transactions.ListByUsers(ctx, a.self())
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	summary := transaction.SummarizeMonth(txs, month)
	return &summary, nil
}
