package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewSigner(t *testing.T) {
	edPEM, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	rsaPEM, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)

	t.Run("publishes matching jwk", func(t *testing.T) {
		s, err := jwtx.NewSigner(jwtx.AlgorithmEdDSA, "ed-1", edPEM)
		require.NoError(t, err)
		require.NoError(t, s.Validate())

		jwk := s.PublicJWK()
		require.Equal(t, "OKP", jwk.Kty)
		require.Equal(t, "Ed25519", jwk.Crv)
		require.Equal(t, "EdDSA", jwk.Alg)
		require.Equal(t, "ed-1", jwk.Kid)

		s, err = jwtx.NewSigner(jwtx.AlgorithmRS256, "rsa-1", rsaPEM)
		require.NoError(t, err)
		require.Equal(t, "RSA", s.PublicJWK().Kty)
	})

	t.Run("key must fit algorithm", func(t *testing.T) {
		_, err := jwtx.NewSigner(jwtx.AlgorithmRS256, "k", edPEM)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)

		_, err = jwtx.NewSigner(jwtx.AlgorithmEdDSA, "k", rsaPEM)
		require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := jwtx.NewSigner("HS256", "k", edPEM)
		require.ErrorContains(t, err, "unsupported algorithm")
	})

	t.Run("kid required", func(t *testing.T) {
		s, err := jwtx.NewSigner(jwtx.AlgorithmEdDSA, "", edPEM)
		require.NoError(t, err)
		require.Error(t, s.Validate())
	})

	t.Run("token carries kid", func(t *testing.T) {
		km, err := jwtx.NewKeyManagerFromPEM(jwtx.KeyManagerOptions{
			Algorithm: jwtx.AlgorithmRS256,
			Issuer:    exampleIssuer,
		}, "rsa-1", rsaPEM)
		require.NoError(t, err)

		tok, err := km.Signer.Sign(jwtx.NewSessionClaims("u1", "alice", nil, time.Minute, exampleIssuer, nil, time.Now()))
		require.NoError(t, err)

		claims, err := km.Verifier.Verify(tok)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.DisplayName)
	})
}
