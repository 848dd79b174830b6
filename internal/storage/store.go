// Package storage persists each collection to its own file, optionally
// encrypted, and owns the only writer for that file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/crypto"
	"fintrack/internal/log"
)

var (
	// ErrCredentialRejected signals that an existing encrypted file could
	// not be decrypted with the supplied passphrase. Distinct from "no
	// file yet": the caller must abort the session, never substitute an
	// empty store for real data.
	ErrCredentialRejected = errors.New("credential rejected")

	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")
)

const fileMode = 0o600

// store is the generic file-backed record collection. Type-specific stores
// compose it with a default-data supplier and an optional post-load
// normalization hook instead of subclassing it.
type store[T any] struct {
	path      string
	box       *crypto.Box // nil means plaintext
	defaults  func() []T
	normalize func([]T) []T
	logger    *log.Logger
}

func newStore[T any](path string, box *crypto.Box, defaults func() []T, normalize func([]T) []T, logger *log.Logger) *store[T] {
	if logger == nil {
		logger = log.New(log.Config{})
	}
	return &store[T]{
		path:      path,
		box:       box,
		defaults:  defaults,
		normalize: normalize,
		logger:    logger.WithComponent(log.ComponentStorage),
	}
}

// load reads the whole collection. Missing or empty file yields the
// defaults; malformed JSON yields the defaults as well so one broken file
// never blocks startup; a decryption failure is the one condition that
// propagates, as ErrCredentialRejected.
func (s *store[T]) load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.withNormalize(s.defaults()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return s.withNormalize(s.defaults()), nil
	}

	if s.box != nil {
		data, err = s.box.Open(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(s.path), ErrCredentialRejected)
		}
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("Malformed store file, falling back to defaults",
			"path", s.path, "error", err)
		return s.withNormalize(s.defaults()), nil
	}
	return s.withNormalize(records), nil
}

// save rewrites the whole file: serialize, optionally encrypt, then write
// to a temp file and rename it into place so a crash mid-write cannot
// leave a truncated document behind.
func (s *store[T]) save(records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(s.path), err)
	}

	if s.box != nil {
		data, err = s.box.Seal(data)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", filepath.Base(s.path), err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}

func (s *store[T]) exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *store[T]) withNormalize(records []T) []T {
	if s.normalize != nil {
		return s.normalize(records)
	}
	return records
}
