package httpx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/access_token", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitMiddleware(t *testing.T) {
	limit := RateLimit{Name: "test", Requests: 3, Window: time.Minute, Burst: 3}

	t.Run("blocks after burst", func(t *testing.T) {
		h := RateLimitByIP(limit)(noContent())
		for i := range 3 {
			require.Equal(t, http.StatusNoContent, hit(h, "198.51.100.1:1000").Code, "request %d", i+1)
		}

		rec := hit(h, "198.51.100.1:1000")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "3;w=60", rec.Header().Get("X-RateLimit-Policy"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := RateLimitByIP(limit)(noContent())
		for range 3 {
			hit(h, "198.51.100.1:1000")
		}
		require.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.1:1000").Code)
		require.Equal(t, http.StatusNoContent, hit(h, "198.51.100.2:1000").Code)
	})

	t.Run("empty key is exempt", func(t *testing.T) {
		h := RateLimitMiddleware(RateLimit{Requests: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(noContent())
		for range 5 {
			require.Equal(t, http.StatusNoContent, hit(h, "198.51.100.1:1000").Code)
		}
	})
}

func TestRateLimitByUser(t *testing.T) {
	h := RateLimitByUser(RateLimit{Requests: 1, Window: time.Minute, Burst: 1})(noContent())

	as := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/clients", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		if userID != "" {
			req = req.WithContext(WithSession(req.Context(), Session{UserID: userID}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusNoContent, as("alice"))
	require.Equal(t, http.StatusTooManyRequests, as("alice"))
	require.Equal(t, http.StatusNoContent, as("bob"))
	require.Equal(t, http.StatusNoContent, as(""))
	require.Equal(t, http.StatusTooManyRequests, as(""))
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"

	key := CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor)
	require.Equal(t, "192.0.2.7", key(req))

	req = req.WithContext(WithSession(context.Background(), Session{UserID: "u1"}))
	require.Equal(t, "u1:192.0.2.7", key(req))
}

func TestBucketsEvictIdleKeys(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBuckets(RateLimit{Requests: 5, Window: time.Minute, Burst: 5}, start)

	for i := range 10 {
		b.get(fmt.Sprintf("k%d", i), start)
	}
	require.Equal(t, 10, b.len())

	b.get("k0", start.Add(90*time.Second))
	require.Equal(t, 10, b.len(), "sweep waits for the idle period")

	b.get("fresh", start.Add(2*time.Minute+time.Second))
	require.Equal(t, 2, b.len(), "only k0 and fresh were seen recently")
}

func TestLoadRateLimit(t *testing.T) {
	def := RateLimit{Requests: 5, Window: time.Minute, Burst: 5}

	t.Run("defaults", func(t *testing.T) {
		got := LoadRateLimit("UNSET", def)
		require.Equal(t, "unset", got.Name)
		require.Equal(t, 5, got.Requests)
		require.Equal(t, time.Minute, got.Window)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_TEST_WINDOW", "30s")
		t.Setenv("RATELIMIT_TEST_BURST", "10")

		got := LoadRateLimit("TEST", def)
		require.Equal(t, RateLimit{Name: "test", Requests: 50, Window: 30 * time.Second, Burst: 10}, got)
	})

	t.Run("non-positive ignored", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "0")
		t.Setenv("RATELIMIT_TEST_BURST", "-3")

		got := LoadRateLimit("TEST", def)
		require.Equal(t, 5, got.Requests)
		require.Equal(t, 5, got.Burst)
	})

	t.Run("malformed keeps defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_TEST_WINDOW", "soon")

		got := LoadRateLimit("TEST", def)
		require.Equal(t, 5, got.Requests)
		require.Equal(t, time.Minute, got.Window)
	})
}

func TestProfilesAreOrdered(t *testing.T) {
	require.Less(t, StrictLimit.Requests, ModerateLimit.Requests)
	require.Less(t, ModerateLimit.Requests, LenientLimit.Requests)
	require.Less(t, LenientLimit.Requests, PublicLimit.Requests)
}

func BenchmarkRateLimitManyKeys(b *testing.B) {
	h := RateLimitByIP(RateLimit{Requests: 1_000_000, Window: time.Minute, Burst: 1000})(noContent())
	for i := 0; b.Loop(); i++ {
		hit(h, fmt.Sprintf("10.%d.%d.1:80", i%255, (i/255)%255))
	}
}
