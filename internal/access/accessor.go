// Package access selects which rows a signed-in user may read and derives
// balances from them. The implementation is chosen once per session from
// the user's role.
package access

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mesada/internal/domain/child"
	"mesada/internal/domain/goal"
	"mesada/internal/domain/medal"
	"mesada/internal/domain/profile"
	"mesada/internal/domain/transaction"
)

type Scope string

const (
	ScopeFamily Scope = "family"
	ScopeSelf   Scope = "self"
)

// RecentLimit is how many transactions the overview lists.
const RecentLimit = 10

type Accessor interface {
	Scope() Scope
	Members(ctx context.Context) ([]Member, error)
	Transactions(ctx context.Context) ([]*transaction.Transaction, error)
	Goals(ctx context.Context) ([]*goal.Goal, error)
	Medals(ctx context.Context) ([]*medal.Medal, error)
	Overview(ctx context.Context) (*Overview, error)
	Budget(ctx context.Context, month time.Time) (*transaction.MonthlySummary, error)
}

type ChildReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*child.Child, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*child.Child, error)
}

type TransactionReader interface {
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) ([]*transaction.Transaction, error)
}

type GoalReader interface {
	ListByChildren(ctx context.Context, childIDs []uuid.UUID) ([]*goal.Goal, error)
}

type MedalReader interface {
	ListByChildren(ctx context.Context, childIDs []uuid.UUID) ([]*medal.Medal, error)
}

// Readers bundles the stores an accessor reads from.
type Readers struct {
	Children     ChildReader
	Transactions TransactionReader
	Goals        GoalReader
	Medals       MedalReader
}

// Member is one person in scope with their derived balance.
type Member struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Role      profile.Role    `json:"role"`
	Allowance decimal.Decimal `json:"allowance"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Balance   decimal.Decimal `json:"balance"`
}

type GoalProgress struct {
	*goal.Goal
	Progress float64 `json:"progress"`
}

type Overview struct {
	Scope              Scope                      `json:"scope"`
	Members            []Member                   `json:"members"`
	TotalBalance       decimal.Decimal            `json:"total_balance"`
	RecentTransactions []*transaction.Transaction `json:"recent_transactions"`
	Goals              []GoalProgress             `json:"goals"`
}

// New returns the family accessor for guardians and the self-only accessor
// for children or when the profile is unknown.
func New(userID uuid.UUID, p *profile.Profile, readers Readers) Accessor {
	if p != nil && p.Role.IsGuardian() {
		return &FamilyAccessor{owner: p, readers: readers}
	}
	self := &SelfAccessor{userID: userID, role: profile.RoleChild, readers: readers}
	if p != nil {
		self.name = p.Name
		self.role = p.Role
	}
	return self
}

func buildOverview(scope Scope, members []Member, txs []*transaction.Transaction, goals []*goal.Goal) *Overview {
	total := decimal.Zero
	for _, m := range members {
		total = total.Add(m.Balance)
	}

	progress := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		progress = append(progress, GoalProgress{Goal: g, Progress: g.Progress()})
	}

	return &Overview{
		Scope:              scope,
		Members:            members,
		TotalBalance:       total,
		RecentTransactions: transaction.Recent(txs, RecentLimit),
		Goals:              progress,
	}
}

func member(id uuid.UUID, name string, role profile.Role, allowance decimal.Decimal, txs []*transaction.Transaction) Member {
	totals := transaction.Summarize(txs)
	return Member{
		ID:        id,
		Name:      name,
		Role:      role,
		Allowance: allowance,
		Income:    totals.Income,
		Expense:   totals.Expense,
		Balance:   allowance.Add(totals.Net()),
	}
}
