// Package crypto implements the at-rest encryption service. History
// payloads pass through it on their way to and from storage when the
// encryption setting is enabled; plaintext never reaches disk in that
// mode.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"clipvault/pkg/types"
)

// Service is a pure, stateless byte transform safe for concurrent use.
type Service interface {
	Encrypt(clear []byte) ([]byte, error)
	Decrypt(encrypted []byte) ([]byte, error)
}

const saltSize = 16

type aeadService struct {
	aead cipher.AEAD
}

// NewFromPassphrase derives a key from passphrase+salt with argon2id
// and returns an XChaCha20-Poly1305 service. salt must be saltSize
// bytes, typically loaded via LoadOrCreateSalt.
func NewFromPassphrase(passphrase string, salt []byte) (Service, error) {
	if len(salt) != saltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", saltSize, len(salt))
	}
	key := argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher: %w", err)
	}
	return &aeadService{aead: aead}, nil
}

// Encrypt seals clear with a random nonce and returns nonce||ciphertext.
func (s *aeadService) Encrypt(clear []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, clear, nil), nil
}

// Decrypt opens nonce||ciphertext. Truncated or tampered input fails
// with ErrDataFormatInvalid rather than a panic or an opaque error.
func (s *aeadService) Decrypt(encrypted []byte) ([]byte, error) {
	if len(encrypted) < s.aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce: %w", types.ErrDataFormatInvalid)
	}
	nonce, ciphertext := encrypted[:s.aead.NonceSize()], encrypted[s.aead.NonceSize():]
	clear, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt payload: %w", types.ErrDataFormatInvalid)
	}
	return clear, nil
}

// LoadOrCreateSalt reads the key-derivation salt from path, creating
// and persisting a fresh one on first run.
func LoadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) != saltSize {
			return nil, fmt.Errorf("salt file %s is corrupt: %w", path, types.ErrDataFormatInvalid)
		}
		return salt, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.WriteFile(path, salt, 0600); err != nil {
		return nil, fmt.Errorf("failed to write salt file: %w", err)
	}
	return salt, nil
}
