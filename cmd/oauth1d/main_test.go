package main

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ENV", "dev")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_FILE", filepath.Join(dir, "oauth1d.db"))
	return dir
}

func TestAdminCommands(t *testing.T) {
	setupEnv(t)

	run(t, "migrate")

	userID := strings.TrimSpace(run(t, "user", "add", "alice"))
	require.NotEmpty(t, userID)
	require.Contains(t, run(t, "user", "list"), "alice")

	out := run(t, "client", "create", "Mapper",
		"--callback", "https://mapper.example/cb",
		"--permission", "allow_read_prefs",
		"--permission", "allow_write_api")
	require.Contains(t, out, "permissions: allow_read_prefs,allow_write_api")

	var key string
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, "key:"); ok {
			key = strings.TrimSpace(v)
		}
	}
	require.NotEmpty(t, key)
	require.Contains(t, run(t, "client", "list"), key)

	issued, err := url.ParseQuery(strings.TrimSpace(run(t, "token", "issue", key, "--callback", "oob")))
	require.NoError(t, err)
	require.NotEmpty(t, issued.Get("oauth_token"))
	require.NotEmpty(t, issued.Get("oauth_token_secret"))
	require.Equal(t, "true", issued.Get("oauth_callback_confirmed"))
}

func TestClientCreateRejectsUnknownPermission(t *testing.T) {
	setupEnv(t)

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"client", "create", "Bad", "--permission", "allow_everything"})
	require.Error(t, cmd.Execute())
}

func TestSessionKeygenAndMint(t *testing.T) {
	dir := setupEnv(t)

	run(t, "session", "keygen", "--kid", "login-1")
	pemBytes, err := os.ReadFile(filepath.Join(dir, "session.pem"))
	require.NoError(t, err)

	jwks, err := jwtx.LoadJWKSFile(filepath.Join(dir, "jwks.json"))
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "login-1", jwks.Keys[0].Kid)

	t.Setenv("SESSION_SIGNING_KEY_FILE", filepath.Join(dir, "session.pem"))
	t.Setenv("SESSION_KEY_ID", "login-1")
	userID := strings.TrimSpace(run(t, "user", "add", "alice"))

	tok := strings.TrimSpace(run(t, "session", "mint", "alice", "--scope", "admin:read"))

	km, err := jwtx.NewKeyManagerFromPEM(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    "oauth1d",
	}, "login-1", pemBytes)
	require.NoError(t, err)

	claims, err := km.Verifier.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, userID, claims.Subject)
	require.Equal(t, "alice", claims.DisplayName)
	require.True(t, claims.HasScope("admin:read"))
}
