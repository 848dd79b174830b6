package storage

import (
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/crypto"
	"fintrack/internal/log"
)

// RecurrenceStore owns the recurrence rule collection. The engine advances
// next-fire dates in memory and flushes once per run, so a batch of
// advancements costs a single rewrite.
type RecurrenceStore struct {
	store *store[core.RecurrenceRule]
	rules []core.RecurrenceRule
}

// OpenRecurrence loads the recurrence rule file.
func OpenRecurrence(path string, box *crypto.Box, logger *log.Logger) (*RecurrenceStore, error) {
	s := newStore(path, box,
		func() []core.RecurrenceRule { return nil },
		nil,
		logger)
	rules, err := s.load()
	if err != nil {
		return nil, err
	}
	return &RecurrenceStore{store: s, rules: rules}, nil
}

// Rules returns a copy of every rule.
func (r *RecurrenceStore) Rules() []core.RecurrenceRule {
	out := make([]core.RecurrenceRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Add validates and appends a rule, assigning an id when blank, and
// persists immediately.
func (r *RecurrenceStore) Add(rule core.RecurrenceRule) (core.RecurrenceRule, error) {
	if err := rule.Validate(); err != nil {
		return core.RecurrenceRule{}, fmt.Errorf("add rule: %w", err)
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	} else if r.indexOf(rule.ID) >= 0 {
		return core.RecurrenceRule{}, fmt.Errorf("add rule %s: %w", rule.ID, ErrDuplicateID)
	}
	r.rules = append(r.rules, rule)
	if err := r.store.save(r.rules); err != nil {
		return core.RecurrenceRule{}, err
	}
	return rule, nil
}

// Advance moves a rule's next-fire date forward in memory only. Callers
// flush once the whole batch is advanced.
func (r *RecurrenceStore) Advance(id, nextDate string) error {
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("advance rule %s: %w", id, ErrNotFound)
	}
	r.rules[i].NextDate = nextDate
	return nil
}

// Flush persists the current rule set.
func (r *RecurrenceStore) Flush() error {
	return r.store.save(r.rules)
}

func (r *RecurrenceStore) indexOf(id string) int {
	for i, rule := range r.rules {
		if rule.ID == id {
			return i
		}
	}
	return -1
}
