package access

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mesada/internal/domain/child"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
)

// FamilyAccessor reads a guardian's own rows plus those of their dependents.
type FamilyAccessor struct {
	owner   *profile.Profile
	readers Readers
}

func (a *FamilyAccessor) Scope() Scope {
	return ScopeFamily
}

// family loads the dependents first, then the transactions of everyone in
// the family.
func (a *FamilyAccessor) family(ctx context.Context) ([]*child.Child, []*transaction.Transaction, error) {
	children, err := a.readers.Children.ListByParent(ctx, a.owner.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dependents: %w", err)
	}

	ids := append([]uuid.UUID{a.owner.ID}, child.IDs(children)...)
	txs, err := a.readers.Transactions.ListByUsers(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return children, txs, nil
}

func (a *FamilyAccessor) members(children []*child.Child, txs []*transaction.Transaction) []Member {
	// The guardian funds every allowance.
	owner := member(a.owner.ID, a.owner.Name, a.owner.Role, child.TotalAllowance(children).Neg(), transaction.ForUser(txs, a.owner.ID))

	members := []Member{owner}
	for _, c := range children {
		members = append(members, member(c.ID, c.Name, profile.RoleChild, c.Allowance(), transaction.ForUser(txs, c.ID)))
	}
	return members
}

func (a *FamilyAccessor) Members(ctx context.Context) ([]Member, error) {
	children, txs, err := a.family(ctx)
	if err != nil {
		return nil, err
	}
	return a.members(children, txs), nil
}

func (a *FamilyAccessor) Transactions(ctx context.Context) ([]*transaction.Transaction, error) {
	_, txs, err := a.family(ctx)
	if err != nil {
		return nil, err
	}
	transaction.SortRecent(txs)
	return txs, nil
}

func (a *FamilyAccessor) Goals(ctx context.Context) ([]*goal.Goal, error) {
	children, err := a.readers.Children.ListByParent(ctx, a.owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependents: %w", err)
	}
	if len(children) == 0 {
		return []*goal.Goal{}, nil
	}
	return a.readers.Goals.ListByChildren(ctx, child.IDs(children))
}

func (a *FamilyAccessor) Medals(ctx context.Context) ([]*medal.Medal, error) {
	children, err := a.readers.Children.ListByParent(ctx, a.owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependents: %w", err)
	}
	if len(children) == 0 {
		return []*medal.Medal{}, nil
	}
	return a.readers.Medals.ListByChildren(ctx, child.IDs(children))
}

func (a *FamilyAccessor) Overview(ctx context.Context) (*Overview, error) {
	children, txs, err := a.family(ctx)
	if err != nil {
		return nil, err
	}

	goals := []*goal.Goal{}
	if len(children) > 0 {
		goals, err = a.readers.Goals.ListByChildren(ctx, child.IDs(children))
		if err != nil {
			return nil, fmt.Errorf("failed to load goals: %w", err)
		}
	}

	return buildOverview(ScopeFamily, a.members(children, txs), txs, goals), nil
}

func (a *FamilyAccessor) Budget(ctx context.Context, month time.Time) (*transaction.MonthlySummary, error) {
	_, txs, err := a.family(ctx)
	if err != nil {
		return nil, err
	}
	summary := transaction.SummarizeMonth(txs, month)
	return &summary, nil
}
