// Package crypto provides passphrase key derivation and authenticated
// encryption for the store files.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecryptFailed is returned when a payload cannot be authenticated,
// covering both a wrong key and a corrupted file. Callers only need the
// binary signal to tell "wrong credential" apart from "no file yet".
var ErrDecryptFailed = errors.New("decryption failed")

const (
	keyLength = 32 // AES-256

	// DefaultIterations is the PBKDF2 iteration count used unless the
	// configuration overrides it. Changing it invalidates existing stores.
	DefaultIterations = 200_000
)

// salt is fixed application-wide. Identical passphrases therefore derive
// identical keys across installations; kept this way so existing store
// files stay decryptable.
var salt = []byte("fintrack-store-v1")

// DeriveKey turns a passphrase into a 32-byte AES key. Deterministic for a
// given passphrase and iteration count.
func DeriveKey(passphrase string, iterations int) []byte {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keyLength, sha256.New)
}

// Box performs authenticated encryption of opaque payloads with a derived
// key. The whole store file is ciphertext: no header, no plaintext framing.
type Box struct {
	aead cipher.AEAD
}

// NewBox builds a Box around a key produced by DeriveKey.
func NewBox(key []byte) (*Box, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Seal encrypts plaintext and returns nonce||ciphertext.
func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a payload produced by Seal. Garbage input of any shape
// yields ErrDecryptFailed, never a panic.
func (b *Box) Open(payload []byte) ([]byte, error) {
	if len(payload) < b.aead.NonceSize() {
		return nil, ErrDecryptFailed
	}
	nonce, ciphertext := payload[:b.aead.NonceSize()], payload[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
