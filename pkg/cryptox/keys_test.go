package cryptox_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := cryptox.ParsePrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	require.IsType(t, ed25519.PrivateKey{}, key)
}

func TestGenerateRSAKey(t *testing.T) {
	pemBytes, err := cryptox.GenerateRSAKey(2048)
	require.NoError(t, err)

	key, err := cryptox.ParsePrivateKeyPEM(pemBytes)
	require.NoError(t, err)
	rk, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, 2048, rk.N.BitLen())

	_, err = cryptox.GenerateRSAKey(1024)
	require.ErrorContains(t, err, "at least 2048 bits")
}

func TestParsePrivateKeyPEM(t *testing.T) {
	t.Run("pkcs1", func(t *testing.T) {
		rk, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		data := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(rk)})

		key, err := cryptox.ParsePrivateKeyPEM(data)
		require.NoError(t, err)
		require.True(t, rk.Equal(key))
	})

	t.Run("not pem", func(t *testing.T) {
		_, err := cryptox.ParsePrivateKeyPEM([]byte("hello"))
		require.ErrorContains(t, err, "no PEM block")
	})

	t.Run("public key block", func(t *testing.T) {
		data := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte{1, 2, 3}})
		_, err := cryptox.ParsePrivateKeyPEM(data)
		require.ErrorContains(t, err, "unsupported PEM type")
	})
}
