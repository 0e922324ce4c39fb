package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIterations keeps the KDF cheap in tests; the work factor is orthogonal
// to every property checked here.
const testIterations = 1_000

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := NewCipher(testIterations)

	tests := []struct {
		name      string
		plaintext string
	}{
		{"ascii", "Cash"},
		{"spaces", "May salary, part 2"},
		{"unicode", "Gehalt März 5000 €"},
		{"long", strings.Repeat("a very long description ", 40)},
		{"single byte", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := c.EncryptField(tt.plaintext, "pw123")
			require.NoError(t, err)
			require.NotEmpty(t, blob)

			got, err := c.DecryptField(blob, "pw123")
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	c := NewCipher(testIterations)

	// GCM authenticates, so a wrong key is always detected, not merely with
	// high probability as in the unauthenticated original scheme.
	for _, plaintext := range []string{"Cash", "Salary", "a", "some longer text value"} {
		blob, err := c.EncryptField(plaintext, "pw123")
		require.NoError(t, err)

		_, err = c.DecryptField(blob, "pw124")
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	c := NewCipher(testIterations)

	a, err := c.EncryptField("Cash", "pw123")
	require.NoError(t, err)
	b, err := c.EncryptField("Cash", "pw123")
	require.NoError(t, err)

	// Fresh salt and nonce per call.
	assert.NotEqual(t, a, b)
}

func TestEmptyStringBypassesKDF(t *testing.T) {
	c := NewCipher(testIterations)

	var derivations int
	c.deriveKey = func(password string, salt []byte, iterations int) []byte {
		derivations++
		return DeriveKey(password, salt, iterations)
	}

	blob, err := c.EncryptField("", "pw123")
	require.NoError(t, err)
	assert.Empty(t, blob)

	got, err := c.DecryptField("", "pw123")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Zero(t, derivations, "empty string must not invoke the KDF")
}

func TestDecryptMalformedBlob(t *testing.T) {
	c := NewCipher(testIterations)

	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "%%% not base64 %%%"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"salt and nonce only", base64.StdEncoding.EncodeToString(make([]byte, SaltLength+NonceLength))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.DecryptField(tt.blob, "pw123")
			assert.ErrorIs(t, err, ErrMalformedBlob)
		})
	}
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	c := NewCipher(testIterations)

	blob, err := c.EncryptField("some field value", "pw123")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)

	// Long enough to split, but the tag no longer matches.
	truncated := base64.StdEncoding.EncodeToString(raw[:len(raw)-1])
	_, err = c.DecryptField(truncated, "pw123")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	k1 := DeriveKey("pw123", salt, testIterations)
	k2 := DeriveKey("pw123", salt, testIterations)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, KeyLength)

	other := DeriveKey("pw124", salt, testIterations)
	assert.NotEqual(t, k1, other)
}

func TestDeriveKeyBadSaltPanics(t *testing.T) {
	assert.Panics(t, func() {
		DeriveKey("pw123", []byte("short"), testIterations)
	})
}

func TestVerifier(t *testing.T) {
	verifier, err := EncodeVerifier("pw123", testIterations)
	require.NoError(t, err)

	ok, err := VerifyPassword(verifier, "pw123", testIterations)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword(verifier, "pw124", testIterations)
	require.NoError(t, err)
	assert.False(t, ok)

	// The verifier must not leak the password.
	raw, err := base64.StdEncoding.DecodeString(verifier)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "pw123")
	assert.NotContains(t, verifier, "pw123")
}

func TestVerifyPasswordMalformed(t *testing.T) {
	_, err := VerifyPassword("not base64!!!", "pw123", testIterations)
	assert.ErrorIs(t, err, ErrMalformedVerifier)

	short := base64.StdEncoding.EncodeToString(make([]byte, 10))
	_, err = VerifyPassword(short, "pw123", testIterations)
	assert.ErrorIs(t, err, ErrMalformedVerifier)
}

func TestCachedCipher(t *testing.T) {
	inner := NewCipher(testIterations)

	var derivations int
	inner.deriveKey = func(password string, salt []byte, iterations int) []byte {
		derivations++
		return DeriveKey(password, salt, iterations)
	}

	c := NewCachedCipher(inner)

	blob, err := c.EncryptField("Cash", "pw123")
	require.NoError(t, err)
	require.Equal(t, 1, derivations)

	// Same salt, cached key: no further derivation.
	got, err := c.DecryptField(blob, "pw123")
	require.NoError(t, err)
	assert.Equal(t, "Cash", got)
	assert.Equal(t, 1, derivations)

	// Wrong password invalidates the session cache and re-derives.
	_, err = c.DecryptField(blob, "pw124")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
	assert.Equal(t, 2, derivations)

	c.Clear()
	_, err = c.DecryptField(blob, "pw123")
	require.NoError(t, err)
	assert.Equal(t, 3, derivations)
}
