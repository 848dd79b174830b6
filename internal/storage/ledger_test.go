package storage

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"fintrack/internal/core"
)

func openTestLedger(t *testing.T) *LedgerStore {
	t.Helper()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "transactions.json"), nil, nil)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	return ledger
}

func mustAdd(t *testing.T, l *LedgerStore, tx core.Transaction) core.Transaction {
	t.Helper()
	added, err := l.Add(tx)
	if err != nil {
		t.Fatalf("Add(%+v) error = %v", tx, err)
	}
	return added
}

func tx(id, date, desc string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        date,
		Description: desc,
		Amount:      "10.00",
		Category:    "Autres",
		Account:     "Compte Courant",
	}
}

func TestLedgerSortDescendingStable(t *testing.T) {
	ledger := openTestLedger(t)

	mustAdd(t, ledger, tx("a", "10-01-2024", "first of the tenth"))
	mustAdd(t, ledger, tx("b", "05-01-2024", "the fifth"))
	mustAdd(t, ledger, tx("c", "10-01-2024", "second of the tenth"))

	var ids []string
	for _, got := range ledger.Transactions() {
		ids = append(ids, got.ID)
	}
	// Descending date, insertion order preserved among equal dates.
	want := []string{"a", "c", "b"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
}

func TestLedgerSortSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transactions.json")

	ledger, err := OpenLedger(path, nil, nil)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	mustAdd(t, ledger, tx("old", "01-12-2023", "older"))
	mustAdd(t, ledger, tx("new", "15-01-2024", "newer"))

	reopened, err := OpenLedger(path, nil, nil)
	if err != nil {
		t.Fatalf("OpenLedger() reopen error = %v", err)
	}
	got := reopened.Transactions()
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("reloaded order = %+v, want newest first", got)
	}
}

func TestLedgerAddAssignsID(t *testing.T) {
	ledger := openTestLedger(t)

	added := mustAdd(t, ledger, tx("", "10-01-2024", "no id yet"))
	if added.ID == "" {
		t.Error("Add() should assign an id when blank")
	}

	if _, err := ledger.Add(tx(added.ID, "11-01-2024", "same id")); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Add() duplicate id error = %v, want ErrDuplicateID", err)
	}
}

func TestLedgerAddRejectsInvalid(t *testing.T) {
	ledger := openTestLedger(t)

	bad := tx("", "10-01-2024", "bad amount")
	bad.Amount = "abc"
	if _, err := ledger.Add(bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("Add() error = %v, want ErrInvalidAmount", err)
	}
	if len(ledger.Transactions()) != 0 {
		t.Error("invalid record must not enter the store")
	}
}

func TestLedgerUpdate(t *testing.T) {
	ledger := openTestLedger(t)
	added := mustAdd(t, ledger, tx("", "10-01-2024", "before"))

	replacement := tx("ignored", "12-01-2024", "after")
	if err := ledger.Update(added.ID, replacement); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got := ledger.Transactions()
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != added.ID || got[0].Description != "after" || got[0].Date != "12-01-2024" {
		t.Errorf("updated record = %+v", got[0])
	}

	if err := ledger.Update("absent", replacement); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() absent id error = %v, want ErrNotFound", err)
	}
}

func TestLedgerDeleteIdempotent(t *testing.T) {
	ledger := openTestLedger(t)
	added := mustAdd(t, ledger, tx("", "10-01-2024", "doomed"))

	if err := ledger.Delete(added.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	after := ledger.Transactions()

	if err := ledger.Delete(added.ID); err != nil {
		t.Fatalf("Delete() second call error = %v", err)
	}
	if !reflect.DeepEqual(ledger.Transactions(), after) {
		t.Error("second delete changed store state")
	}
}

func TestLedgerUnparseableDateSortsLast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transactions.json")

	// A malformed date can only exist in the backing file, never via Add.
	seed := newStore(path, nil, func() []core.Transaction { return nil }, nil, nil)
	err := seed.save([]core.Transaction{
		{ID: "bad", Date: "not-a-date", Description: "x", Amount: "1", Category: "Autres", Account: "A"},
		{ID: "good", Date: "10-01-2024", Description: "y", Amount: "1", Category: "Autres", Account: "A"},
	})
	if err != nil {
		t.Fatalf("seed save() error = %v", err)
	}

	ledger, err := OpenLedger(path, nil, nil)
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	got := ledger.Transactions()
	if len(got) != 2 || got[0].ID != "good" || got[1].ID != "bad" {
		t.Errorf("order = %+v, want unparseable date last", got)
	}
}
