package crypto

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMalformedVerifier means the stored verifier blob is not decodable into
// a salt and a derived key. Indicates storage corruption, not a wrong password.
var ErrMalformedVerifier = errors.New("malformed verifier blob")

// EncodeVerifier produces the stored master-password verifier:
// base64(salt || derived key). The password itself is never stored; checking
// a candidate means re-deriving with the stored salt and comparing keys.
func EncodeVerifier(password string, iterations int) (string, error) {
	salt, err := NewSalt()
	if err != nil {
		return "", err
	}
	key := DeriveKey(password, salt, iterations)

	blob := make([]byte, 0, SaltLength+KeyLength)
	blob = append(blob, salt...)
	blob = append(blob, key...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// VerifyPassword checks a candidate password against a stored verifier.
// The comparison is constant-time.
func VerifyPassword(verifier, password string, iterations int) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(verifier)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedVerifier, err)
	}
	if len(raw) != SaltLength+KeyLength {
		return false, fmt.Errorf("%w: %d bytes", ErrMalformedVerifier, len(raw))
	}

	salt := raw[:SaltLength]
	stored := raw[SaltLength:]
	derived := DeriveKey(password, salt, iterations)

	return subtle.ConstantTimeCompare(derived, stored) == 1, nil
}
