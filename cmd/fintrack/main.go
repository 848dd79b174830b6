package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel)

	var passphrase string
	if cfg.Encrypted {
		var err error
		passphrase, err = cli.ReadPassphrase()
		if err != nil {
			logger.Error("Passphrase entry failed", "error", err)
			os.Exit(1)
		}
	}

	stores, err := storage.Open(storage.Options{
		DataDir:       cfg.DataDir,
		Encrypted:     cfg.Encrypted,
		KDFIterations: cfg.KDFIterations,
	}, passphrase, logger)
	if errors.Is(err, storage.ErrCredentialRejected) {
		// Never proceed with a default-seeded store in place of real
		// data; that would mask data loss behind an empty ledger.
		logger.Error("Wrong passphrase for existing store", "error", err)
		fmt.Fprintln(os.Stderr, "The passphrase does not unlock the existing store.")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to open stores", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	now := time.Now()

	engine := services.NewRecurrenceEngine(stores.Ledger, stores.Recurring, logger)
	fired, err := engine.MaterializeDue(ctx, now)
	if err != nil {
		logger.Error("Recurrence run failed", "error", err)
		os.Exit(1)
	}
	if fired > 0 {
		fmt.Printf("Materialized %d recurring transaction(s).\n\n", fired)
	}

	render(stores, cfg.TrendMonths, now)
}

// render prints the ledger and the dashboard to stdout. This stands in for
// the presentation layer, which is an external collaborator of the core.
func render(stores *storage.Stores, trendMonths int, now time.Time) {
	agg := services.NewAggregationEngine(stores.Ledger, stores.Budgets)

	fmt.Println("Transactions")
	txs := stores.Ledger.Transactions()
	if len(txs) == 0 {
		fmt.Println("  (none)")
	}
	for _, t := range txs {
		fmt.Printf("  %-10s  %-30s  %10s  %-14s  %s\n",
			t.Date, t.Description, t.Amount, t.Category, t.Account)
	}

	s := agg.MonthlySummary(now, "")
	fmt.Printf("\nThis month: income %s, expense %s, net %s\n",
		s.Income.StringFixed(2), s.Expense.StringFixed(2), s.Net.StringFixed(2))

	if breakdown := agg.CategoryBreakdown(""); len(breakdown) > 0 {
		fmt.Println("\nSpending by category (all time)")
		for category, total := range breakdown {
			fmt.Printf("  %-14s %10s\n", category, total.StringFixed(2))
		}
	}

	if trend := agg.MonthlyTrend(trendMonths); len(trend) > 0 {
		fmt.Println("\nMonthly trend")
		for _, m := range trend {
			fmt.Printf("  %s  income %10s  expense %10s\n",
				m.Month, m.Income.StringFixed(2), m.Expense.StringFixed(2))
		}
	}

	if utilization := agg.BudgetUtilization(now); len(utilization) > 0 {
		fmt.Println("\nBudgets (this month)")
		for _, u := range utilization {
			fmt.Printf("  %-14s %s / %s (%s%%)\n",
				u.Category, u.Spent.StringFixed(2), u.Ceiling.StringFixed(2), u.Percent.StringFixed(0))
		}
	}
}
