package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

// RateLimit is a token-bucket profile: Requests tokens refill evenly over
// Window and at most Burst requests may arrive back to back.
type RateLimit struct {
	Name     string
	Requests int           `env:"REQUESTS"`
	Window   time.Duration `env:"WINDOW"`
	Burst    int           `env:"BURST"`
}

// Policy renders the profile as "<requests>;w=<seconds>".
func (l RateLimit) Policy() string {
	return strconv.Itoa(l.Requests) + ";w=" + strconv.Itoa(int(l.Window.Seconds()))
}

func (l RateLimit) every() rate.Limit {
	return rate.Limit(float64(l.Requests) / l.Window.Seconds())
}

var (
	// StrictLimit guards the credential exchange, where a caller could
	// otherwise probe token secrets.
	StrictLimit = LoadRateLimit("STRICT", RateLimit{Requests: 5, Window: time.Minute, Burst: 5})

	// ModerateLimit for session-authenticated writes (authorize, revoke).
	ModerateLimit = LoadRateLimit("MODERATE", RateLimit{Requests: 20, Window: time.Minute, Burst: 20})

	// LenientLimit for session-authenticated pages and the admin API.
	LenientLimit = LoadRateLimit("LENIENT", RateLimit{Requests: 100, Window: time.Minute, Burst: 100})

	// PublicLimit for health probes.
	PublicLimit = LoadRateLimit("PUBLIC", RateLimit{Requests: 1000, Window: time.Minute, Burst: 1000})
)

// LoadRateLimit overlays RATELIMIT_<name>_REQUESTS, _WINDOW (a duration such
// as "30s") and _BURST onto def. Unset or non-positive values keep the
// default; a value that fails to parse discards every override for name.
func LoadRateLimit(name string, def RateLimit) RateLimit {
	out := def
	out.Name = strings.ToLower(name)

	var o RateLimit
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "RATELIMIT_" + name + "_"}); err != nil {
		return out
	}
	if o.Requests > 0 {
		out.Requests = o.Requests
	}
	if o.Window > 0 {
		out.Window = o.Window
	}
	if o.Burst > 0 {
		out.Burst = o.Burst
	}
	return out
}

// KeyExtractor derives the bucket key for a request. An empty key exempts
// the request from limiting.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys requests by client address.
func IPKeyExtractor(r *http.Request) string {
	return GetRemoteIP(r)
}

// UserIDKeyExtractor keys requests by the signed-in user.
func UserIDKeyExtractor(r *http.Request) string {
	if s, ok := SessionFromContext(r.Context()); ok {
		return s.UserID
	}
	return ""
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// buckets holds one limiter per key. Keys untouched for idle are evicted on
// the next sweep; by then their bucket has refilled, so eviction is lossless.
type buckets struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	idle    time.Duration
	swept   time.Time
	entries map[string]*bucket
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

func newBuckets(l RateLimit, now time.Time) *buckets {
	return &buckets{
		limit:   l.every(),
		burst:   l.Burst,
		idle:    max(2*l.Window, time.Minute),
		swept:   now,
		entries: make(map[string]*bucket),
	}
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.swept) >= b.idle {
		for k, e := range b.entries {
			if now.Sub(e.seen) >= b.idle {
				delete(b.entries, k)
			}
		}
		b.swept = now
	}

	e, ok := b.entries[key]
	if !ok {
		e = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.entries[key] = e
	}
	e.seen = now
	return e.limiter
}

func (b *buckets) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// RateLimitMiddleware throttles requests sharing a key to limit. Rejected
// requests get 429 with Retry-After and the profile's policy.
func RateLimitMiddleware(limit RateLimit, key KeyExtractor) Middleware {
	b := newBuckets(limit, time.Now())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			limiter := b.get(k, now)
			if limiter.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			res := limiter.ReserveN(now, 1)
			retryAfter := max(int(res.DelayFrom(now).Seconds()), 1)
			res.CancelAt(now)

			slogx.FromContext(r.Context()).Warn("rate limited",
				"profile", limit.Name,
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
			w.Header().Set("X-RateLimit-Policy", limit.Policy())
			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": fmt.Sprintf("Too many requests. Retry in %ds.", retryAfter),
			})
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(limit RateLimit) Middleware {
	return RateLimitMiddleware(limit, IPKeyExtractor)
}

// RateLimitByUser limits by user and address, falling back to the address
// alone when there is no session.
func RateLimitByUser(limit RateLimit) Middleware {
	return RateLimitMiddleware(limit, CompositeKeyExtractor(":", UserIDKeyExtractor, IPKeyExtractor))
}
