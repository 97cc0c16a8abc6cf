package service

import "github.com/aussiebroadwan/oauth1d/pkg/cryptox"

// maxMintAttempts bounds the regenerate-and-retry loop when a freshly
// generated token string collides with an existing one.
const maxMintAttempts = 5

// Generator produces the random strings handed out by the provider.
type Generator interface {
	Token() (string, error)
	Secret() (string, error)
	Verifier() (string, error)
}

// RandomGenerator draws from crypto/rand. Token strings and secrets carry
// 256 bits, verifiers 128 bits. All are base64url, which is unreserved in
// OAuth percent-encoding.
type RandomGenerator struct{}

func (RandomGenerator) Token() (string, error) { return cryptox.GenerateToken(cryptox.TokenSize256) }
func (RandomGenerator) Secret() (string, error) { return cryptox.GenerateToken(cryptox.TokenSize256) }
func (RandomGenerator) Verifier() (string, error) { return cryptox.GenerateToken(cryptox.TokenSize128) }

func generatorOrDefault(g Generator) Generator {
	if g == nil {
		return RandomGenerator{}
	}
	return g
}

// tokenPair generates an independent token and secret.
func tokenPair(g Generator) (token, secret string, err error) {
	if token, err = g.Token(); err != nil {
		return "", "", err
	}
	if secret, err = g.Secret(); err != nil {
		return "", "", err
	}
	return token, secret, nil
}
