package storage

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/crypto"
	"fintrack/internal/log"
)

// BudgetStore owns the category-to-ceiling mapping. "No budget configured"
// and "budget of zero" are deliberately the same thing.
type BudgetStore struct {
	store   *store[core.Budget]
	budgets []core.Budget
}

// OpenBudgets loads the budget file.
func OpenBudgets(path string, box *crypto.Box, logger *log.Logger) (*BudgetStore, error) {
	s := newStore(path, box,
		func() []core.Budget { return nil },
		nil,
		logger)
	budgets, err := s.load()
	if err != nil {
		return nil, err
	}
	return &BudgetStore{store: s, budgets: budgets}, nil
}

// Get returns the ceiling for a category, zero when unset.
func (b *BudgetStore) Get(category string) decimal.Decimal {
	for _, budget := range b.budgets {
		if budget.Category == category {
			return budget.Amount
		}
	}
	return decimal.Zero
}

// Set upserts the ceiling for a category and persists. The income category
// has no ceiling: everything in it is income, not spend.
func (b *BudgetStore) Set(category string, amount decimal.Decimal) error {
	if category == core.CategorySalary {
		return fmt.Errorf("set budget: category %q is income", category)
	}
	for i, budget := range b.budgets {
		if budget.Category == category {
			b.budgets[i].Amount = amount
			return b.store.save(b.budgets)
		}
	}
	b.budgets = append(b.budgets, core.Budget{Category: category, Amount: amount})
	return b.store.save(b.budgets)
}

// Budgets returns a copy of every configured budget.
func (b *BudgetStore) Budgets() []core.Budget {
	out := make([]core.Budget, len(b.budgets))
	copy(out, b.budgets)
	return out
}
