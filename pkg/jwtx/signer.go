package jwtx

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Supported JWT signing algorithms
const (
	AlgorithmRS256 = "RS256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer mints session tokens.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

type keySigner struct {
	kid    string
	method jwt.SigningMethod
	key    crypto.Signer
}

// NewSigner loads a PEM private key for algorithm. RS256 takes a PKCS1 or
// PKCS8 RSA key, EdDSA a PKCS8 Ed25519 key.
func NewSigner(algorithm, kid string, pemKey []byte) (Signer, error) {
	key, err := cryptox.ParsePrivateKeyPEM(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}

	s := &keySigner{kid: kid, key: key}
	switch algorithm {
	case AlgorithmRS256:
		if _, ok := key.(*rsa.PrivateKey); !ok {
			return nil, fmt.Errorf("%w: RS256 needs an RSA key, got %T", ErrAlgMismatch, key)
		}
		s.method = jwt.SigningMethodRS256
	case AlgorithmEdDSA:
		if _, ok := key.(ed25519.PrivateKey); !ok {
			return nil, fmt.Errorf("%w: EdDSA needs an Ed25519 key, got %T", ErrAlgMismatch, key)
		}
		s.method = jwt.SigningMethodEdDSA
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: RS256, EdDSA)", algorithm)
	}
	return s, nil
}

func (s *keySigner) Alg() string { return s.method.Alg() }
func (s *keySigner) KID() string { return s.kid }

func (s *keySigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK is the key as published in a JWKS.
func (s *keySigner) PublicJWK() JWK {
	switch pub := s.key.Public().(type) {
	case *rsa.PublicKey:
		return NewRSAJWK(s.kid, "sig", s.Alg(), pub)
	case ed25519.PublicKey:
		return NewEd25519JWK(s.kid, "sig", s.Alg(), pub)
	}
	return JWK{Kid: s.kid}
}

func (s *keySigner) Validate() error {
	if s.kid == "" {
		return errors.New("jwtx: signer needs a key ID")
	}
	switch k := s.key.(type) {
	case *rsa.PrivateKey:
		return k.Validate()
	case ed25519.PrivateKey:
		if len(k) != ed25519.PrivateKeySize {
			return errors.New("jwtx: invalid Ed25519 private key size")
		}
	}
	return nil
}
