package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptWithPassword(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ciphertext, err := EncryptWithPassword("attack at dawn", "p1")
		require.NoError(t, err)
		require.NotEmpty(t, ciphertext)

		plaintext, err := DecryptWithPassword(ciphertext, "p1")
		require.NoError(t, err)
		assert.Equal(t, "attack at dawn", plaintext)
	})

	t.Run("same input encrypts differently each time", func(t *testing.T) {
		c1, err := EncryptWithPassword("hello", "pw")
		require.NoError(t, err)
		c2, err := EncryptWithPassword("hello", "pw")
		require.NoError(t, err)
		assert.NotEqual(t, c1, c2)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		ciphertext, err := EncryptWithPassword("secret", "right")
		require.NoError(t, err)

		_, err = DecryptWithPassword(ciphertext, "wrong")
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		ciphertext, err := EncryptWithPassword("secret", "pw")
		require.NoError(t, err)

		raw, err := base64.StdEncoding.DecodeString(ciphertext)
		require.NoError(t, err)
		raw[len(raw)-1] ^= 0xff
		tampered := base64.StdEncoding.EncodeToString(raw)

		_, err = DecryptWithPassword(tampered, "pw")
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("garbage input fails", func(t *testing.T) {
		_, err := DecryptWithPassword("not base64 at all!!!", "pw")
		assert.ErrorIs(t, err, ErrDecryptionFailed)

		_, err = DecryptWithPassword(base64.StdEncoding.EncodeToString([]byte("short")), "pw")
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})
}
