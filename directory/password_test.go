package directory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSSHA(t *testing.T) {
	hash, err := HashPassword("secret", "SSHA")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "{SSHA}"))
	assert.True(t, VerifySSHA("secret", hash))
	assert.False(t, VerifySSHA("wrong", hash))
}

func TestHashPasswordDefaultIsSSHA(t *testing.T) {
	hash, err := HashPassword("secret", "")
	require.NoError(t, err)
	assert.True(t, VerifySSHA("secret", hash))
}

func TestHashPasswordSHA(t *testing.T) {
	hash, err := HashPassword("secret", "sha")
	require.NoError(t, err)
	// SHA has no salt, so the value is deterministic
	assert.Equal(t, "{SHA}5en6G6MezRroT3XKqkdPOmY/BfQ=", hash)
}

func TestHashPasswordMD5(t *testing.T) {
	hash, err := HashPassword("secret", "MD5")
	require.NoError(t, err)
	assert.Equal(t, "{MD5}Xr4ilOzQ4PCOq3aQ0qbuaQ==", hash)
}

func TestHashPasswordPlain(t *testing.T) {
	hash, err := HashPassword("secret", "PLAIN")
	require.NoError(t, err)
	assert.Equal(t, "secret", hash)
}

func TestHashPasswordUnsupported(t *testing.T) {
	_, err := HashPassword("secret", "bcrypt")
	assert.Error(t, err)
}

func TestVerifySSHARejectsGarbage(t *testing.T) {
	assert.False(t, VerifySSHA("secret", "{SHA}something"))
	assert.False(t, VerifySSHA("secret", "{SSHA}not-base64!"))
	assert.False(t, VerifySSHA("secret", "{SSHA}c2hvcnQ="))
}
