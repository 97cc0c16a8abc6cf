package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "https://login.example"

func TestNewEphemeralKeyManager(t *testing.T) {
	for _, alg := range []string{jwtx.AlgorithmRS256, jwtx.AlgorithmEdDSA} {
		t.Run(alg, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
				Algorithm: alg,
				Issuer:    exampleIssuer,
				Audience:  []string{"oauth1d"},
			})
			require.NoError(t, err)
			require.True(t, km.IsReady())
			require.True(t, km.CanSign())
			require.Equal(t, alg, km.Algorithm())
			require.Equal(t, alg, km.Signer.Alg())
		})
	}
}

func TestNewEphemeralKeyManagerRequiresIssuer(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA})
	require.Error(t, err)
}

func TestNewEphemeralKeyManagerRejectsUnknownAlgorithm(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: "ES256", Issuer: exampleIssuer})
	require.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	for _, alg := range []string{jwtx.AlgorithmRS256, jwtx.AlgorithmEdDSA} {
		t.Run(alg, func(t *testing.T) {
			km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
				Algorithm: alg,
				Issuer:    exampleIssuer,
				Audience:  []string{"oauth1d"},
			})
			require.NoError(t, err)

			claims := jwtx.NewSessionClaims("user-1", "Alice", []string{"admin:read"},
				time.Minute, exampleIssuer, []string{"oauth1d"}, time.Now().UTC())

			token, err := km.Signer.Sign(claims)
			require.NoError(t, err)

			got, err := km.Verifier.Verify(token)
			require.NoError(t, err)
			require.Equal(t, "user-1", got.Subject)
			require.Equal(t, "Alice", got.DisplayName)
			require.Equal(t, []string{"admin:read"}, got.Scopes)
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmEdDSA,
		Issuer:    exampleIssuer,
		Audience:  []string{"oauth1d"},
	})
	require.NoError(t, err)
	now := time.Now().UTC()

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := km.Signer.Sign(jwtx.NewSessionClaims("u", "", nil, time.Minute, "someone-else", []string{"oauth1d"}, now))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("wrong audience", func(t *testing.T) {
		token, err := km.Signer.Sign(jwtx.NewSessionClaims("u", "", nil, time.Minute, exampleIssuer, []string{"other"}, now))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrAudience)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := km.Signer.Sign(jwtx.NewSessionClaims("u", "", nil, time.Minute, exampleIssuer, []string{"oauth1d"}, now.Add(-time.Hour)))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("unknown key", func(t *testing.T) {
		other, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA, Issuer: exampleIssuer})
		require.NoError(t, err)
		token, err := other.Signer.Sign(jwtx.NewSessionClaims("u", "", nil, time.Minute, exampleIssuer, []string{"oauth1d"}, now))
		require.NoError(t, err)
		_, err = km.Verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrNoKey)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := km.Verifier.Verify("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestVerifyingKeyManagerFromPEM(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	opts := jwtx.KeyManagerOptions{Algorithm: jwtx.AlgorithmEdDSA, Issuer: exampleIssuer}
	signing, err := jwtx.NewKeyManagerFromPEM(opts, "kid-1", pemBytes)
	require.NoError(t, err)

	// A verify-only manager built from the published JWKS accepts tokens
	// from the signing one.
	ks := jwtx.NewKeySet()
	require.NoError(t, ks.ResetFromJWKS(signing.KeySet.PublicJWKS()))
	verifying, err := jwtx.NewVerifyingKeyManager(opts, ks)
	require.NoError(t, err)
	require.False(t, verifying.CanSign())

	token, err := signing.Signer.Sign(jwtx.NewSessionClaims("u", "", nil, time.Minute, exampleIssuer, nil, time.Now()))
	require.NoError(t, err)

	claims, err := verifying.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u", claims.Subject)
}
