package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"
)

// CachedCipher is the session-scoped alternative to Cipher: derived keys are
// kept in memory for the duration of one authenticated session, keyed by
// salt, so re-reading the same rows does not pay the KDF work factor again.
//
// The trade-off is explicit: derived keys live in process memory until
// Clear is called. This mode is opt-in via configuration, never the default.
type CachedCipher struct {
	inner *Cipher

	mu       sync.Mutex
	password string
	keys     map[string][]byte // salt -> derived key
}

// NewCachedCipher wraps a Cipher with a per-session key cache.
func NewCachedCipher(inner *Cipher) *CachedCipher {
	return &CachedCipher{
		inner: inner,
		keys:  make(map[string][]byte),
	}
}

// EncryptField behaves like Cipher.EncryptField. The fresh salt makes the
// derived key unique, so encryption always pays one KDF run; the key is
// cached for subsequent decryption of the same blob.
func (c *CachedCipher) EncryptField(plaintext, password string) (string, error) {
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

	key := c.keyFor(password, salt)
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

// DecryptField behaves like Cipher.DecryptField, consulting the cache before
// running the KDF.
func (c *CachedCipher) DecryptField(blob, password string) (string, error) {
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

	key := c.keyFor(password, salt)
	plaintext, err := open(key, nonce, ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if !utf8.Valid(plaintext) {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// keyFor returns the cached key for salt, deriving and caching on miss.
// A password change invalidates the whole cache: cached keys must never
// outlive the session that derived them.
func (c *CachedCipher) keyFor(password string, salt []byte) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	if password != c.password {
		c.wipe()
		c.password = password
	}
	if key, ok := c.keys[string(salt)]; ok {
		return key
	}
	key := c.inner.deriveKey(password, salt, c.inner.iterations)
	c.keys[string(salt)] = key
	return key
}

// Clear zeroes and drops every cached key. Call on logout.
func (c *CachedCipher) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wipe()
	c.password = ""
}

func (c *CachedCipher) wipe() {
	for salt, key := range c.keys {
		for i := range key {
			key[i] = 0
		}
		delete(c.keys, salt)
	}
}
