package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/crypto"
)

func testBox(t *testing.T, passphrase string) *crypto.Box {
	t.Helper()
	box, err := crypto.NewBox(crypto.DeriveKey(passphrase, 1000))
	if err != nil {
		t.Fatalf("NewBox() error = %v", err)
	}
	return box
}

func fixtureTransactions() []core.Transaction {
	return []core.Transaction{
		{ID: "a", Date: "10-01-2024", Description: "courses", Amount: "50.00", Category: "Alimentation", Account: "Compte Courant"},
		{ID: "b", Date: "05-01-2024", Description: "bus", Amount: "2,10", Category: "Transport", Account: "Compte Courant"},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for _, encrypted := range []bool{false, true} {
		name := "plaintext"
		if encrypted {
			name = "encrypted"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "transactions.json")
			var box *crypto.Box
			if encrypted {
				box = testBox(t, "secret")
			}
			s := newStore(path, box, func() []core.Transaction { return nil }, nil, nil)

			want := fixtureTransactions()
			if err := s.save(want); err != nil {
				t.Fatalf("save() error = %v", err)
			}
			got, err := s.load()
			if err != nil {
				t.Fatalf("load() error = %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("load() = %+v, want %+v", got, want)
			}

			if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
				t.Error("temp file left behind after save")
			}
		})
	}
}

func TestStoreLoadDefaults(t *testing.T) {
	defaults := func() []core.Account {
		return []core.Account{{Name: "Compte Courant"}, {Name: "Épargne"}}
	}

	tests := []struct {
		name    string
		prepare func(t *testing.T, path string)
	}{
		{"missing file", func(t *testing.T, path string) {}},
		{"empty file", func(t *testing.T, path string) {
			if err := os.WriteFile(path, nil, 0o600); err != nil {
				t.Fatal(err)
			}
		}},
		{"malformed json", func(t *testing.T, path string) {
			if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
				t.Fatal(err)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "accounts.json")
			tt.prepare(t, path)
			s := newStore(path, nil, defaults, nil, nil)
			got, err := s.load()
			if err != nil {
				t.Fatalf("load() error = %v", err)
			}
			if !reflect.DeepEqual(got, defaults()) {
				t.Errorf("load() = %+v, want defaults", got)
			}
		})
	}
}

func TestStoreLoadWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")

	writer := newStore(path, testBox(t, "right"), func() []core.Transaction { return nil }, nil, nil)
	if err := writer.save(fixtureTransactions()); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	reader := newStore(path, testBox(t, "wrong"), func() []core.Transaction { return nil }, nil, nil)
	if _, err := reader.load(); !errors.Is(err, ErrCredentialRejected) {
		t.Errorf("load() error = %v, want ErrCredentialRejected", err)
	}
}

func TestStoreLoadCorruptCiphertext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	box := testBox(t, "secret")

	s := newStore(path, box, func() []core.Transaction { return nil }, nil, nil)
	if err := s.save(fixtureTransactions()); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	// Corruption and wrong key share the same sentinel.
	if _, err := s.load(); !errors.Is(err, ErrCredentialRejected) {
		t.Errorf("load() error = %v, want ErrCredentialRejected", err)
	}
}

func TestStoreEncryptedFileIsOpaque(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.json")
	s := newStore(path, testBox(t, "secret"), func() []core.Transaction { return nil }, nil, nil)
	if err := s.save(fixtureTransactions()); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, marker := range []string{"courses", "Alimentation", `"id"`} {
		if bytes.Contains(data, []byte(marker)) {
			t.Errorf("encrypted file leaks plaintext marker %q", marker)
		}
	}
}
