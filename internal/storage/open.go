package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/crypto"
	"fintrack/internal/log"
)

// One file per collection inside the data directory.
const (
	accountsFile     = "accounts.json"
	transactionsFile = "transactions.json"
	budgetsFile      = "budgets.json"
	recurringFile    = "recurring.json"
)

// Options configures the credential boundary.
type Options struct {
	// DataDir is the store directory. Empty means "data" next to the
	// running executable.
	DataDir string

	// Encrypted routes every store file through the cipher box.
	Encrypted bool

	// KDFIterations overrides the key derivation iteration count.
	// Zero means the default.
	KDFIterations int
}

// Stores bundles every open store. Downstream of Open nobody sees the raw
// passphrase again, only the derived key held inside the cipher box.
type Stores struct {
	Accounts  *AccountStore
	Ledger    *LedgerStore
	Budgets   *BudgetStore
	Recurring *RecurrenceStore
}

// Open resolves the data directory, derives the key when encryption is on,
// and opens all four stores. A decryption failure on any existing file
// surfaces as ErrCredentialRejected and no partial store set is returned.
func Open(opts Options, passphrase string, logger *log.Logger) (*Stores, error) {
	if opts.Encrypted && passphrase == "" {
		return nil, errors.New("open stores: empty passphrase")
	}

	dir, err := resolveDataDir(opts.DataDir)
	if err != nil {
		return nil, err
	}

	var box *crypto.Box
	if opts.Encrypted {
		box, err = crypto.NewBox(crypto.DeriveKey(passphrase, opts.KDFIterations))
		if err != nil {
			return nil, fmt.Errorf("open stores: %w", err)
		}
	}

	accounts, err := OpenAccounts(filepath.Join(dir, accountsFile), box, logger)
	if err != nil {
		return nil, err
	}
	ledger, err := OpenLedger(filepath.Join(dir, transactionsFile), box, logger)
	if err != nil {
		return nil, err
	}
	budgets, err := OpenBudgets(filepath.Join(dir, budgetsFile), box, logger)
	if err != nil {
		return nil, err
	}
	recurring, err := OpenRecurrence(filepath.Join(dir, recurringFile), box, logger)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Accounts:  accounts,
		Ledger:    ledger,
		Budgets:   budgets,
		Recurring: recurring,
	}, nil
}

// resolveDataDir creates the store directory, defaulting to one next to
// the executable. Failure here is fatal configuration, not data loss.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("resolve executable path: %w", err)
		}
		dir = filepath.Join(filepath.Dir(exe), "data")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return dir, nil
}
