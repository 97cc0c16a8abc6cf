package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/httpx"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestGetRemoteIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", httpx.GetRemoteIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.2")
	require.Equal(t, "203.0.113.2", httpx.GetRemoteIP(req))

	req.Header.Set("X-Forwarded-For", " 203.0.113.1 , 10.0.0.1")
	require.Equal(t, "203.0.113.1", httpx.GetRemoteIP(req))
}

func newKeyManager(t *testing.T) *jwtx.KeyManager {
	t.Helper()
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    "https://login.example",
	})
	require.NoError(t, err)
	return km
}

func sign(t *testing.T, km *jwtx.KeyManager, scopes ...string) string {
	t.Helper()
	tok, err := km.Signer.Sign(jwtx.NewSessionClaims("user-1", "alice", scopes,
		time.Minute, "https://login.example", nil, time.Now()))
	require.NoError(t, err)
	return tok
}

func echoSession() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := httpx.SessionFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(s.UserID + "/" + s.DisplayName))
	})
}

func TestSessionMiddleware(t *testing.T) {
	km := newKeyManager(t)
	opts := httpx.SessionOptions{CookieName: "oauth1d_session"}
	h := httpx.SessionMiddleware(km.Verifier, opts)(echoSession())

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/oauth/tokens", nil)
		req.AddCookie(&http.Cookie{Name: "oauth1d_session", Value: sign(t, km)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1/alice", rec.Body.String())
	})

	t.Run("bearer fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/oauth/tokens", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, km))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/tokens", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("forged", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/oauth/tokens", nil)
		req.AddCookie(&http.Cookie{Name: "oauth1d_session", Value: sign(t, newKeyManager(t))})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("redirects to login", func(t *testing.T) {
		opts := httpx.SessionOptions{CookieName: "oauth1d_session", LoginURL: "https://login.example/signin"}
		h := httpx.SessionMiddleware(km.Verifier, opts)(echoSession())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/authorize?oauth_token=abc", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		loc := rec.Header().Get("Location")
		require.True(t, strings.HasPrefix(loc, "https://login.example/signin?return_to="))
		require.Contains(t, loc, "oauth_token%3Dabc")
	})
}

func TestAuthnAndScopes(t *testing.T) {
	km := newKeyManager(t)
	h := httpx.Chain(echoSession(), httpx.AuthnMiddleware(km.Verifier), httpx.RequireAnyScope("admin:read"))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/clients", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("insufficient scope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, km))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, km, "admin:read"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireSameOrigin(t *testing.T) {
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), httpx.RequireSameOrigin())

	do := func(method, origin string) int {
		req := httptest.NewRequest(method, "http://provider.example/oauth/revoke", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, do(http.MethodPost, ""))
	require.Equal(t, http.StatusNoContent, do(http.MethodPost, "http://provider.example"))
	require.Equal(t, http.StatusForbidden, do(http.MethodPost, "https://evil.example"))
	require.Equal(t, http.StatusForbidden, do(http.MethodPost, "null"))
	require.Equal(t, http.StatusNoContent, do(http.MethodGet, "https://evil.example"))
}
