package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the number of random bytes drawn for every derivation.
	SaltLength = 16
	// KeyLength is 32 bytes for AES-256.
	KeyLength = 32
	// DefaultIterations is the PBKDF2 work factor. Deliberately expensive:
	// it is the only thing slowing down offline password guessing against a
	// stolen verifier or field blob.
	DefaultIterations = 100_000
)

// DeriveKey derives a 32-byte key from a password and a 16-byte salt using
// PBKDF2-HMAC-SHA256. Deterministic for the same (password, salt, iterations).
// A salt of the wrong length is a caller bug, not a runtime condition.
func DeriveKey(password string, salt []byte, iterations int) []byte {
	if len(salt) != SaltLength {
		panic(fmt.Sprintf("crypto: salt must be %d bytes, got %d", SaltLength, len(salt)))
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha256.New)
}

// NewSalt draws a fresh cryptographically random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
