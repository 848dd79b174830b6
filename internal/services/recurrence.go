package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// RecurrenceEngine materializes due recurrence rules into ledger entries.
// It runs exactly once at application start, before the ledger is shown.
type RecurrenceEngine struct {
	ledger *storage.LedgerStore
	rules  *storage.RecurrenceStore
	logger *log.Logger
}

// NewRecurrenceEngine wires the engine to its stores.
func NewRecurrenceEngine(ledger *storage.LedgerStore, rules *storage.RecurrenceStore, logger *log.Logger) *RecurrenceEngine {
	if logger == nil {
		logger = log.New(log.Config{})
	}
	return &RecurrenceEngine{
		ledger: ledger,
		rules:  rules,
		logger: logger.WithComponent(log.ComponentRecurrence),
	}
}

// MaterializeDue creates one transaction for every rule whose next-fire
// date is on or before now, dated with the rule's next-fire date (not
// today, so a late app start keeps historical accuracy), then advances
// each fired rule by one period and persists the rule set once.
//
// Only one occurrence fires per rule per run even when several periods
// have elapsed; catching up three missed months takes three runs. A bad
// rule is skipped, never aborts the batch.
func (e *RecurrenceEngine) MaterializeDue(ctx context.Context, now time.Time) (int, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rules := e.rules.Rules()

	e.logger.InfoContext(ctx, "Checking recurrence rules",
		"total", len(rules),
		"as_of", core.FormatDate(today))

	fired := 0
	for _, rule := range rules {
		next, err := core.ParseDate(rule.NextDate)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping rule with unparseable next date",
				"rule_id", rule.ID, "next_date", rule.NextDate)
			continue
		}
		if next.After(today) {
			continue
		}

		adv, err := AdvancerFor(rule.Frequency)
		if err != nil {
			e.logger.WarnContext(ctx, "Skipping rule with unknown frequency",
				"rule_id", rule.ID, "frequency", string(rule.Frequency))
			continue
		}

		tx := core.Transaction{
			Date:        rule.NextDate,
			Description: rule.Description,
			Amount:      rule.Amount,
			Category:    rule.Category,
			Account:     rule.Account,
		}
		added, err := e.ledger.Add(tx)
		if err != nil {
			e.logger.ErrorContext(ctx, "Failed to materialize rule",
				"rule_id", rule.ID, "error", err)
			continue
		}

		advanced := core.FormatDate(adv.Advance(next))
		if err := e.rules.Advance(rule.ID, advanced); err != nil {
			e.logger.ErrorContext(ctx, "Failed to advance rule",
				"rule_id", rule.ID, "error", err)
			continue
		}

		fired++
		e.logger.InfoContext(ctx, "Materialized recurring transaction",
			"rule_id", rule.ID,
			"transaction_id", added.ID,
			"date", added.Date,
			"next_date", advanced)
	}

	if fired > 0 {
		if err := e.rules.Flush(); err != nil {
			return fired, err
		}
	}

	e.logger.InfoContext(ctx, "Recurrence run complete",
		"fired", fired, "checked", len(rules))
	return fired, nil
}
