package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weekplan/weekplan/internal/client"
)

// ---------------------------------------------------------------------------
// 1. AESCipher round trips.
// ---------------------------------------------------------------------------

func TestAESCipher_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		plain string
	}{
		{"short", "buy milk"},
		{"unicode", "café ☕ préparer la réunion"},
		{"long", "a task title long enough to span several GCM blocks and then some more padding text"},
	}

	cipher, err := client.NewAESCipher("correct horse battery staple")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sealed, err := cipher.Encrypt(tt.plain)
			require.NoError(t, err)
			assert.NotEqual(t, tt.plain, sealed)

			plain, err := cipher.Decrypt(sealed)
			require.NoError(t, err)
			assert.Equal(t, tt.plain, plain)
		})
	}
}

func TestAESCipher_EmptyString(t *testing.T) {
	t.Parallel()

	cipher, err := client.NewAESCipher("passphrase")
	require.NoError(t, err)

	sealed, err := cipher.Encrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", sealed)

	plain, err := cipher.Decrypt("")
	require.NoError(t, err)
	assert.Equal(t, "", plain)
}

// TestAESCipher_NonceVariesPerCall verifies two encryptions of the same title
// never repeat on the wire.
func TestAESCipher_NonceVariesPerCall(t *testing.T) {
	t.Parallel()

	cipher, err := client.NewAESCipher("passphrase")
	require.NoError(t, err)

	first, err := cipher.Encrypt("same title")
	require.NoError(t, err)
	second, err := cipher.Encrypt("same title")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

// ---------------------------------------------------------------------------
// 2. Legacy plaintext passthrough.
// ---------------------------------------------------------------------------

// TestAESCipher_LegacyPlaintextPassthrough pins the migration behavior: rows
// written before encryption was enabled come back unchanged instead of
// erroring.
func TestAESCipher_LegacyPlaintextPassthrough(t *testing.T) {
	t.Parallel()

	cipher, err := client.NewAESCipher("passphrase")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"plain words", "buy milk"},
		{"not base64", "meeting @ 15:00 !!"},
		{"valid base64 but too short", "aGk="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := cipher.Decrypt(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, got)
		})
	}
}

// TestAESCipher_WrongKeyFallsBack verifies a title sealed under another key
// is treated as opaque legacy text rather than an error.
func TestAESCipher_WrongKeyFallsBack(t *testing.T) {
	t.Parallel()

	alice, err := client.NewAESCipher("alice key")
	require.NoError(t, err)
	bob, err := client.NewAESCipher("bob key")
	require.NoError(t, err)

	sealed, err := alice.Encrypt("secret plan")
	require.NoError(t, err)

	got, err := bob.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, sealed, got)
}

// ---------------------------------------------------------------------------
// 3. NoopCipher.
// ---------------------------------------------------------------------------

func TestNoopCipher(t *testing.T) {
	t.Parallel()

	var cipher client.NoopCipher

	sealed, err := cipher.Encrypt("buy milk")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", sealed)

	plain, err := cipher.Decrypt("buy milk")
	require.NoError(t, err)
	assert.Equal(t, "buy milk", plain)
}
