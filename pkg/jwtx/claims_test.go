package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestClaimsValidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	base := func() jwtx.Claims {
		return jwtx.NewSessionClaims("user-1", "alice", nil, time.Hour, "oauth1d", []string{"provider", "admin"}, now)
	}

	tests := []struct {
		name   string
		mutate func(*jwtx.Claims)
		opts   jwtx.VerifyOptions
		at     time.Time
		want   error
	}{
		{name: "valid", opts: jwtx.VerifyOptions{Issuer: "oauth1d", Audience: []string{"provider"}}, at: now},
		{name: "any expected audience", opts: jwtx.VerifyOptions{Audience: []string{"other", "admin"}}, at: now},
		{name: "no expectations", at: now},
		{name: "wrong issuer", opts: jwtx.VerifyOptions{Issuer: "elsewhere"}, at: now, want: jwtx.ErrIssuer},
		{name: "wrong audience", opts: jwtx.VerifyOptions{Audience: []string{"billing"}}, at: now, want: jwtx.ErrAudience},
		{name: "expired", at: now.Add(2 * time.Hour), want: jwtx.ErrExpired},
		{name: "expired within leeway", opts: jwtx.VerifyOptions{Leeway: time.Minute}, at: now.Add(time.Hour + 30*time.Second)},
		{name: "not yet valid", at: now.Add(-time.Minute), want: jwtx.ErrNotYetValid},
		{
			name:   "no exp or nbf",
			mutate: func(c *jwtx.Claims) { c.ExpiresAt, c.NotBefore = nil, nil },
			at:     now.Add(24 * 365 * time.Hour),
		},
		{
			name:   "missing subject",
			mutate: func(c *jwtx.Claims) { c.Subject = "" },
			at:     now,
			want:   jwtx.ErrInvalidClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			if tt.mutate != nil {
				tt.mutate(&c)
			}
			err := c.Validate(tt.opts, tt.at)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewSessionClaims(t *testing.T) {
	now := time.Now()
	c := jwtx.NewSessionClaims("user-1", "Alice", []string{"admin:read"}, time.Minute, "oauth1d", nil, now)

	require.True(t, c.HasScope("admin:read"))
	require.False(t, c.HasScope("admin:write"))
	require.Equal(t, "Alice", c.DisplayName)
	require.Equal(t, jwt.NewNumericDate(now.Add(time.Minute)), c.ExpiresAt)
	require.NotEqual(t, c.ID, jwtx.NewSessionClaims("user-1", "", nil, time.Minute, "", nil, now).ID)
}
