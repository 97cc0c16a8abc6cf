package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/stretchr/testify/require"
)

func TestNewServesHealth(t *testing.T) {
	cfg := Config{
		Env:                  "dev",
		LogLevel:             "error",
		DatabaseDriver:       DriverSQLite,
		DatabaseFile:         filepath.Join(t.TempDir(), "oauth1d.db"),
		ScopeSource:          "client",
		SessionAlgorithm:     "EdDSA",
		SessionIssuer:        "oauth1d",
		RequestTokenTTL:      time.Hour,
		HousekeepingInterval: time.Hour,
		ShutdownGracePeriod:  time.Second,
	}
	require.NoError(t, cfg.Validate())

	app, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health oauthsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, BuildVersion, health.Version)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/tokens", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
