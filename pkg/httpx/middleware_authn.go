package httpx

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// AuthnMiddleware requires a Bearer session token. It is used for the JSON
// admin API, where a missing token is answered with an RFC 6750 challenge.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("jwt verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sessionFromClaims(claims))))
		})
	}
}

// SessionOptions configures SessionMiddleware.
type SessionOptions struct {
	// CookieName holding the session JWT.
	CookieName string

	// LoginURL receives unauthenticated browsers with a return_to parameter.
	// When empty they get a plain 401.
	LoginURL string
}

// SessionMiddleware authenticates browser requests from the session cookie,
// falling back to a Bearer header.
func SessionMiddleware(v jwtx.Verifier, opts SessionOptions) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ""
			if c, err := r.Cookie(opts.CookieName); err == nil {
				raw = c.Value
			} else if tok, ok := bearerToken(r); ok {
				raw = tok
			}

			if raw == "" {
				unauthenticated(w, r, opts.LoginURL)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Info("session rejected", "err", err)
				unauthenticated(w, r, opts.LoginURL)
				return
			}

			s := sessionFromClaims(claims)
			ctx := slogx.With(WithSession(r.Context(), s), "user_id", s.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyScope the caller must have at least one of the provided scopes.
func RequireAnyScope(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := SessionFromContext(r.Context())
			for _, want := range required {
				if s.HasScope(want) {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("WWW-Authenticate",
				`Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("insufficient_scope"))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return raw, raw != ""
}

func sessionFromClaims(c jwtx.Claims) Session {
	return Session{
		UserID:      c.Subject,
		DisplayName: c.DisplayName,
		Scopes:      c.Scopes,
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request, loginURL string) {
	if loginURL == "" || r.Method != http.MethodGet {
		NoCache(w)
		http.Error(w, "Login Required", http.StatusUnauthorized)
		return
	}

	target, err := url.Parse(loginURL)
	if err != nil {
		http.Error(w, "Login Required", http.StatusUnauthorized)
		return
	}
	q := target.Query()
	q.Set("return_to", r.URL.RequestURI())
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
