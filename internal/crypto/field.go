package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

const (
	// NonceLength matches SaltLength so a decoded blob splits on fixed offsets.
	NonceLength = 16
	// gcmTagLength is the GCM authentication tag appended to the ciphertext.
	gcmTagLength = 16
)

var (
	// ErrMalformedBlob means the stored blob could not be decoded or is too
	// short to contain salt, nonce and tag. Indicates storage corruption.
	ErrMalformedBlob = errors.New("malformed field blob")
	// ErrDecryptionFailed means authentication of the ciphertext failed,
	// almost always a wrong master password. Recoverable: the caller should
	// re-prompt, not abort.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// FieldCipher encrypts and decrypts individual text fields.
type FieldCipher interface {
	EncryptField(plaintext, password string) (string, error)
	DecryptField(blob, password string) (string, error)
}

// Cipher encrypts single text values under a password-derived key.
//
// Every call draws a fresh salt and nonce and derives a fresh key, so no two
// fields ever share a (key, nonce) pair. That costs one full KDF run per
// field; see CachedCipher for the session-scoped alternative.
//
// The output blob is base64(salt || nonce || ciphertext). The cipher is
// AES-256-GCM with a 16-byte nonce, so a wrong password is detected
// deterministically by the authentication tag instead of surfacing as
// garbled text.
type Cipher struct {
	iterations int

	// deriveKey is swappable for tests that count KDF invocations.
	deriveKey func(password string, salt []byte, iterations int) []byte
}

// NewCipher returns a Cipher with the given PBKDF2 work factor.
// iterations <= 0 selects DefaultIterations.
func NewCipher(iterations int) *Cipher {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Cipher{iterations: iterations, deriveKey: DeriveKey}
}

// EncryptField encrypts one plaintext value. The empty string is a reserved
// sentinel: it encodes to the empty blob without touching the KDF.
func (c *Cipher) EncryptField(plaintext, password string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt, err := NewSalt()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, NonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	key := c.deriveKey(password, salt, c.iterations)
	ciphertext, err := seal(key, nonce, []byte(plaintext))
	if err != nil {
		return "", err
	}

	blob := make([]byte, 0, SaltLength+NonceLength+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptField reverses EncryptField. The empty blob decodes to the empty
// string. A wrong password yields ErrDecryptionFailed; truncated or
// undecodable storage yields ErrMalformedBlob. Never panics.
func (c *Cipher) DecryptField(blob, password string) (string, error) {
	if blob == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}
	if len(raw) < SaltLength+NonceLength+gcmTagLength {
		return "", fmt.Errorf("%w: %d bytes", ErrMalformedBlob, len(raw))
	}

	salt := raw[:SaltLength]
	nonce := raw[SaltLength : SaltLength+NonceLength]
	ciphertext := raw[SaltLength+NonceLength:]

	key := c.deriveKey(password, salt, c.iterations)
	plaintext, err := open(key, nonce, ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if !utf8.Valid(plaintext) {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// seal encrypts plaintext with AES-256-GCM under the given key and nonce.
func seal(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// open decrypts and authenticates ciphertext produced by seal.
func open(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceLength)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}
