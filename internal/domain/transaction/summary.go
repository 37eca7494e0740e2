package transaction

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel groups expenses without a category.
const UncategorizedLabel = "Outros"

type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net is income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

func Summarize(txs []*Transaction) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case TypeIncome:
			totals.Income = totals.Income.Add(tx.Amount)
		case TypeExpense:
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
	}
	return totals
}

// Balance is allowance + Σincome − Σexpense over txs.
func Balance(allowance decimal.Decimal, txs []*Transaction) decimal.Decimal {
	return allowance.Add(Summarize(txs).Net())
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

type MonthlySummary struct {
	Month      string          `json:"month"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	Net        decimal.Decimal `json:"net"`
	Categories []CategoryTotal `json:"categories"`
	Count      int             `json:"count"`
}

// InMonth keeps the transactions whose expense date falls in month.
func InMonth(txs []*Transaction, month time.Time) []*Transaction {
	y, m, _ := month.Date()
	var out []*Transaction
	for _, tx := range txs {
		ty, tm, _ := tx.ExpenseDate.Date()
		if ty == y && tm == m {
			out = append(out, tx)
		}
	}
	return out
}

// SummarizeMonth totals one month and groups its expenses by category,
// largest first.
func SummarizeMonth(txs []*Transaction, month time.Time) MonthlySummary {
	monthTxs := InMonth(txs, month)
	totals := Summarize(monthTxs)

	byCategory := make(map[string]decimal.Decimal)
	for _, tx := range monthTxs {
		if tx.Type != TypeExpense {
			continue
		}
		cat := UncategorizedLabel
		if tx.Category != nil && *tx.Category != "" {
			cat = *tx.Category
		}
		byCategory[cat] = byCategory[cat].Add(tx.Amount)
	}

	categories := make([]CategoryTotal, 0, len(byCategory))
	for cat, amount := range byCategory {
		categories = append(categories, CategoryTotal{Category: cat, Amount: amount})
	}
	sort.Slice(categories, func(i, j int) bool {
		if c := categories[i].Amount.Cmp(categories[j].Amount); c != 0 {
			return c > 0
		}
		return categories[i].Category < categories[j].Category
	})

	return MonthlySummary{
		Month:      month.Format("2006-01"),
		Income:     totals.Income,
		Expense:    totals.Expense,
		Net:        totals.Net(),
		Categories: categories,
		Count:      len(monthTxs),
	}
}

// SortRecent orders txs most recent first, by expense date then creation time.
func SortRecent(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].ExpenseDate.Equal(txs[j].ExpenseDate) {
			return txs[i].ExpenseDate.After(txs[j].ExpenseDate)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// Recent returns at most n transactions, most recent first, without
// reordering the input.
func Recent(txs []*Transaction, n int) []*Transaction {
	out := make([]*Transaction, len(txs))
	copy(out, txs)
	SortRecent(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ForUser filters txs owned by userID.
func ForUser(txs []*Transaction, userID uuid.UUID) []*Transaction {
	var out []*Transaction
	for _, tx := range txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}
