package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_InvalidFormat(t *testing.T) {
	_, err := VerifyPassword("pw", "$bcrypt$nope")
	assert.Error(t, err)

	_, err = VerifyPassword("pw", "")
	assert.Error(t, err)
}
