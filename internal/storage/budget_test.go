package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func openTestBudgets(t *testing.T) (*BudgetStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budgets.json")
	budgets, err := OpenBudgets(path, nil, nil)
	if err != nil {
		t.Fatalf("OpenBudgets() error = %v", err)
	}
	return budgets, path
}

func TestBudgetGetUnsetIsZero(t *testing.T) {
	budgets, _ := openTestBudgets(t)
	if got := budgets.Get("Loisirs"); !got.IsZero() {
		t.Errorf("Get() unset = %s, want 0", got)
	}
}

func TestBudgetSetUpserts(t *testing.T) {
	budgets, path := openTestBudgets(t)

	if err := budgets.Set("Loisirs", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := budgets.Set("Loisirs", decimal.NewFromInt(150)); err != nil {
		t.Fatalf("Set() second error = %v", err)
	}

	if got := budgets.Get("Loisirs"); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Get() = %s, want 150", got)
	}
	if len(budgets.Budgets()) != 1 {
		t.Errorf("Budgets() len = %d, want 1 (upsert, not append)", len(budgets.Budgets()))
	}

	reopened, err := OpenBudgets(path, nil, nil)
	if err != nil {
		t.Fatalf("OpenBudgets() reopen error = %v", err)
	}
	if got := reopened.Get("Loisirs"); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("reloaded Get() = %s, want 150", got)
	}
}

func TestBudgetRejectsIncomeCategory(t *testing.T) {
	budgets, _ := openTestBudgets(t)
	if err := budgets.Set(core.CategorySalary, decimal.NewFromInt(100)); err == nil {
		t.Error("Set() on the income category should fail")
	}
}
