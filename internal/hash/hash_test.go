package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("password")
	require.NoError(t, err)
	require.NotEqual(t, "password", h)

	require.True(t, CheckPassword(h, "password"))
	require.False(t, CheckPassword(h, "wrong"))
}

func TestCheckPasswordMalformedHash(t *testing.T) {
	require.False(t, CheckPassword("not-a-bcrypt-hash", "password"))
	require.False(t, CheckPassword("", "password"))
}

func TestGenerateToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.False(t, seen[token], "token collision")
		seen[token] = true
	}
}
