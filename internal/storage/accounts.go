package storage

import (
	"fintrack/internal/core"
	"fintrack/internal/crypto"
	"fintrack/internal/log"
)

// Account names seeded on first run. At least one account must exist for
// transaction entry to be possible.
var defaultAccounts = []core.Account{
	{Name: "Compte Courant"},
	{Name: "Épargne"},
}

// AccountStore owns the account collection.
type AccountStore struct {
	store    *store[core.Account]
	accounts []core.Account
}

// OpenAccounts loads the account file, seeding and persisting the default
// pair when the file does not exist yet.
func OpenAccounts(path string, box *crypto.Box, logger *log.Logger) (*AccountStore, error) {
	s := newStore(path, box,
		func() []core.Account {
			return append([]core.Account(nil), defaultAccounts...)
		},
		nil,
		logger)

	firstRun := !s.exists()
	accounts, err := s.load()
	if err != nil {
		return nil, err
	}
	if firstRun {
		if err := s.save(accounts); err != nil {
			return nil, err
		}
	}
	return &AccountStore{store: s, accounts: accounts}, nil
}

// Names returns every account name in stored order.
func (a *AccountStore) Names() []string {
	names := make([]string, len(a.accounts))
	for i, acc := range a.accounts {
		names[i] = acc.Name
	}
	return names
}
