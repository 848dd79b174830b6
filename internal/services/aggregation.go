package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// AggregationEngine is a pure read-side projection over the ledger and
// budget stores. Nothing it computes is persisted. A record whose date or
// amount fails to parse is left out of every aggregate; one bad record
// must never blank the dashboard.
type AggregationEngine struct {
	ledger  *storage.LedgerStore
	budgets *storage.BudgetStore
}

// NewAggregationEngine wires the engine to its stores.
func NewAggregationEngine(ledger *storage.LedgerStore, budgets *storage.BudgetStore) *AggregationEngine {
	return &AggregationEngine{ledger: ledger, budgets: budgets}
}

// Summary is the month-to-date income/expense/net view.
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal
}

// MonthTotals is one bucket of the income-vs-expense trend.
type MonthTotals struct {
	Month   string // "2006-01"
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Utilization reports month-to-date spend against a configured ceiling.
type Utilization struct {
	Category string
	Spent    decimal.Decimal
	Ceiling  decimal.Decimal
	Percent  decimal.Decimal // unbounded, can exceed 100
}

// MonthlySummary sums amount magnitudes for transactions in asOf's month
// and year. The income category routes to income, everything else to
// expense. An empty accountFilter means all accounts.
func (a *AggregationEngine) MonthlySummary(asOf time.Time, accountFilter string) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	a.each(accountFilter, func(t core.Transaction, when time.Time, amount decimal.Decimal) {
		if when.Year() != asOf.Year() || when.Month() != asOf.Month() {
			return
		}
		if t.Category == core.CategorySalary {
			s.Income = s.Income.Add(amount)
		} else {
			s.Expense = s.Expense.Add(amount)
		}
	})
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// CategoryBreakdown totals non-income spend by category over the whole
// ledger history. This is wider in scope than MonthlySummary on purpose:
// the dashboard's breakdown covers all time while the headline figures
// cover the current month.
func (a *AggregationEngine) CategoryBreakdown(accountFilter string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	a.each(accountFilter, func(t core.Transaction, _ time.Time, amount decimal.Decimal) {
		if t.Category == core.CategorySalary {
			return
		}
		out[t.Category] = out[t.Category].Add(amount)
	})
	return out
}

// MonthlyTrend buckets all transactions by year-month and returns the
// most recent months buckets in chronological order.
func (a *AggregationEngine) MonthlyTrend(months int) []MonthTotals {
	buckets := make(map[string]*MonthTotals)
	a.each("", func(t core.Transaction, when time.Time, amount decimal.Decimal) {
		key := when.Format(core.MonthKeyLayout)
		b, ok := buckets[key]
		if !ok {
			b = &MonthTotals{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = b
		}
		if t.Category == core.CategorySalary {
			b.Income = b.Income.Add(amount)
		} else {
			b.Expense = b.Expense.Add(amount)
		}
	})

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if months > 0 && len(keys) > months {
		keys = keys[len(keys)-months:]
	}

	out := make([]MonthTotals, len(keys))
	for i, key := range keys {
		out[i] = *buckets[key]
	}
	return out
}

// BudgetUtilization reports asOf-month spend for every category with a
// ceiling above zero. Categories without a ceiling are omitted entirely;
// the percentage is not clamped at 100.
func (a *AggregationEngine) BudgetUtilization(asOf time.Time) []Utilization {
	spent := make(map[string]decimal.Decimal)
	a.each("", func(t core.Transaction, when time.Time, amount decimal.Decimal) {
		if t.Category == core.CategorySalary {
			return
		}
		if when.Year() != asOf.Year() || when.Month() != asOf.Month() {
			return
		}
		spent[t.Category] = spent[t.Category].Add(amount)
	})

	var out []Utilization
	for _, budget := range a.budgets.Budgets() {
		if !budget.Amount.IsPositive() {
			continue
		}
		used := spent[budget.Category]
		out = append(out, Utilization{
			Category: budget.Category,
			Spent:    used,
			Ceiling:  budget.Amount,
			Percent:  used.Div(budget.Amount).Mul(decimal.NewFromInt(100)),
		})
	}
	return out
}

// each visits every transaction that parses cleanly and matches the
// account filter, handing the visitor the parsed date and the amount
// magnitude.
func (a *AggregationEngine) each(accountFilter string, visit func(core.Transaction, time.Time, decimal.Decimal)) {
	for _, t := range a.ledger.Transactions() {
		if accountFilter != "" && t.Account != accountFilter {
			continue
		}
		when, err := core.ParseDate(t.Date)
		if err != nil {
			continue
		}
		amount, err := core.Magnitude(t.Amount)
		if err != nil {
			continue
		}
		visit(t, when, amount)
	}
}
