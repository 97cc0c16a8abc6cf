package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a browser session token minted by
// the login front-end.
const DefaultSessionTTL = 12 * time.Hour

// Claims carried by a session token. The subject is the user ID; scopes
// gate the admin API and are empty for ordinary browser sessions.
type Claims struct {
	jwt.RegisteredClaims

	// DisplayName of the signed-in user, shown on the authorization page.
	DisplayName string `json:"display_name,omitempty"`

	// Scopes such as "admin:read admin:write".
	Scopes []string `json:"scopes,omitempty"`
}

// NewSessionClaims builds minimally-correct claims.
func NewSessionClaims(
	subject, displayName string,
	scopes []string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		DisplayName: displayName,
		Scopes:      scopes,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasScope reports whether the claims carry scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// Validate checks the claims against opts at now. Expiry and not-before
// allow opts.Leeway of clock skew either way.
func (c *Claims) Validate(opts VerifyOptions, now time.Time) error {
	if opts.Issuer != "" && c.Issuer != opts.Issuer {
		return ErrIssuer
	}
	if len(opts.Audience) > 0 && !slices.ContainsFunc(opts.Audience, func(want string) bool {
		return slices.Contains(c.Audience, want)
	}) {
		return ErrAudience
	}
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(opts.Leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-opts.Leeway)) {
		return ErrNotYetValid
	}
	if c.Subject == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidClaim)
	}
	return nil
}
