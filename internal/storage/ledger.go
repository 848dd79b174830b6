package storage

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/crypto"
	"fintrack/internal/log"
)

// LedgerStore owns the transaction collection. Every mutation re-sorts and
// persists synchronously; callers only address records by id.
type LedgerStore struct {
	store  *store[core.Transaction]
	txs    []core.Transaction
	logger *log.Logger
}

// OpenLedger loads the transaction file, sorted most recent first.
func OpenLedger(path string, box *crypto.Box, logger *log.Logger) (*LedgerStore, error) {
	s := newStore(path, box,
		func() []core.Transaction { return nil },
		sortTransactions,
		logger)
	txs, err := s.load()
	if err != nil {
		return nil, err
	}
	return &LedgerStore{store: s, txs: txs, logger: s.logger}, nil
}

// Transactions returns a copy of the ledger in display order.
func (l *LedgerStore) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Add validates and appends a transaction, assigning an id when the caller
// left it blank, then re-sorts and persists.
func (l *LedgerStore) Add(t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	} else if l.indexOf(t.ID) >= 0 {
		return core.Transaction{}, fmt.Errorf("add transaction %s: %w", t.ID, ErrDuplicateID)
	}

	l.txs = sortTransactions(append(l.txs, t))
	if err := l.store.save(l.txs); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Update replaces the record with the given id by full replacement.
// Returns ErrNotFound when the id is absent; the store is left untouched.
func (l *LedgerStore) Update(id string, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update transaction %s: %w", id, ErrNotFound)
	}
	t.ID = id
	l.txs[i] = t
	l.txs = sortTransactions(l.txs)
	return l.store.save(l.txs)
}

// Delete removes the record with the given id. Deleting an absent id is a
// no-op, not an error.
func (l *LedgerStore) Delete(id string) error {
	i := l.indexOf(id)
	if i < 0 {
		return nil
	}
	l.txs = append(l.txs[:i], l.txs[i+1:]...)
	return l.store.save(l.txs)
}

func (l *LedgerStore) indexOf(id string) int {
	for i, t := range l.txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// sortTransactions orders most recent first with a stable tie-break.
// Records whose date does not parse sort as oldest, so they land at the
// end of the listing instead of crashing the sort.
func sortTransactions(txs []core.Transaction) []core.Transaction {
	type keyed struct {
		tx   core.Transaction
		when time.Time
	}
	items := make([]keyed, len(txs))
	for i, t := range txs {
		when, err := core.ParseDate(t.Date)
		if err != nil {
			when = time.Time{}
		}
		items[i] = keyed{tx: t, when: when}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].when.After(items[j].when)
	})
	for i := range items {
		txs[i] = items[i].tx
	}
	return txs
}
