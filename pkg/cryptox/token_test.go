package cryptox

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for size, length := range map[int]int{TokenSize128: 22, TokenSize256: 43, 24: 32} {
		tok, err := GenerateToken(size)
		require.NoError(t, err)
		require.Len(t, tok, length)
		require.Equal(t, tok, url.PathEscape(tok), "needs no percent-encoding")
	}

	_, err := GenerateToken(0)
	require.Error(t, err)
	_, err = GenerateToken(-1)
	require.Error(t, err)
}

func TestGenerateTokenUnique(t *testing.T) {
	seen := make(map[string]struct{}, 200)
	for range 200 {
		tok, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		require.NotContains(t, seen, tok)
		seen[tok] = struct{}{}
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("request-token")
	require.Equal(t, fp, FingerprintToken("request-token"))
	require.NotEqual(t, fp, FingerprintToken("request-tokeN"))
	require.Len(t, fp, 43)
	require.NotContains(t, fp, "request")
}

func TestEqualSecrets(t *testing.T) {
	require.True(t, EqualSecrets("xyz", "xyz"))
	require.False(t, EqualSecrets("xyz", "xyZ"))
	require.False(t, EqualSecrets("xyz", "xy"))
	require.False(t, EqualSecrets("", "xyz"))
}
