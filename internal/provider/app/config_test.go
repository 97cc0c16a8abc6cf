package app

import (
	"os"
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/service"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray .env

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, 24*time.Hour, cfg.RequestTokenTTL)
	require.Equal(t, service.ScopeFromClient, cfg.ExchangeScopeSource())
	require.False(t, cfg.RequireVerifier)
	require.False(t, cfg.StrictCallbacks)
	require.Equal(t, keySourceEphemeral, cfg.sessionKeySource())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://oauth1d@db/oauth1d")
	t.Setenv("EXCHANGE_SCOPE_SOURCE", "granted")
	t.Setenv("EXCHANGE_REQUIRE_VERIFIER", "true")
	t.Setenv("REQUEST_TOKEN_TTL", "2h")
	t.Setenv("SESSION_JWKS_URL", "https://login.example/.well-known/jwks.json")
	t.Setenv("SESSION_AUDIENCE", "oauth1d,maps")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, service.ScopeFromGrants, cfg.ExchangeScopeSource())
	require.True(t, cfg.RequireVerifier)
	require.Equal(t, 2*time.Hour, cfg.RequestTokenTTL)
	require.Equal(t, []string{"oauth1d", "maps"}, cfg.SessionAudience)
	require.Equal(t, keySourceJWKSURL, cfg.sessionKeySource())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	// godotenv writes with os.Setenv; t.Setenv registers the restore.
	for _, k := range []string{"PORT", "EXCHANGE_SCOPE_SOURCE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "EXCHANGE_SCOPE_SOURCE=granted\nPORT=9090\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, service.ScopeFromGrants, cfg.ExchangeScopeSource())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		Env:                  "dev",
		DatabaseDriver:       DriverSQLite,
		DatabaseFile:         "oauth1d.db",
		ScopeSource:          "client",
		SessionAlgorithm:     "EdDSA",
		RequestTokenTTL:      time.Hour,
		HousekeepingInterval: time.Hour,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"postgres without url", func(c *Config) { c.DatabaseDriver = DriverPostgres }, "DATABASE_URL"},
		{"unknown scope source", func(c *Config) { c.ScopeSource = "everything" }, "EXCHANGE_SCOPE_SOURCE"},
		{"unknown algorithm", func(c *Config) { c.SessionAlgorithm = "HS256" }, "SESSION_ALGORITHM"},
		{"zero ttl", func(c *Config) { c.RequestTokenTTL = 0 }, "REQUEST_TOKEN_TTL"},
		{"ephemeral keys outside dev", func(c *Config) { c.Env = "prod" }, "SESSION_JWKS_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
