package jwtx

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync/atomic"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the public keys session tokens are verified against. Readers
// see an immutable snapshot, so a JWKS refresh never blocks verification.
type KeySet struct {
	snap atomic.Pointer[keySnapshot]
}

type keySnapshot struct {
	jwks JWKS
	byID map[string]crypto.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	k := &KeySet{}
	k.snap.Store(&keySnapshot{byID: map[string]crypto.PublicKey{}})
	return k
}

// AddSigner publishes s's public key.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK adds j, replacing any key with the same kid.
func (k *KeySet) AddJWK(j JWK) error {
	if _, err := j.PublicKey(); err != nil {
		return err
	}
	for {
		old := k.snap.Load()
		keys := slices.DeleteFunc(slices.Clone(old.jwks.Keys), func(e JWK) bool { return e.Kid == j.Kid })
		next, err := newKeySnapshot(JWKS{Keys: append(keys, j)})
		if err != nil {
			return err
		}
		if k.snap.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// ResetFromJWKS swaps in every key from jwks at once. The set is left
// untouched if any key is unusable.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	next, err := newKeySnapshot(jwks)
	if err != nil {
		return err
	}
	k.snap.Store(next)
	return nil
}

// Get returns the public key for kid.
func (k *KeySet) Get(kid string) (crypto.PublicKey, error) {
	if pk, ok := k.snap.Load().byID[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns the keys in JWKS form.
func (k *KeySet) PublicJWKS() JWKS {
	return JWKS{Keys: slices.Clone(k.snap.Load().jwks.Keys)}
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	return len(k.snap.Load().byID) > 0
}

func newKeySnapshot(jwks JWKS) (*keySnapshot, error) {
	s := &keySnapshot{jwks: jwks, byID: make(map[string]crypto.PublicKey, len(jwks.Keys))}
	for _, j := range jwks.Keys {
		pk, err := j.PublicKey()
		if err != nil {
			return nil, fmt.Errorf("jwtx: key %q: %w", j.Kid, err)
		}
		s.byID[j.Kid] = pk
	}
	return s, nil
}

// PublicKey decodes j. RSA and Ed25519 (OKP) keys are supported.
func (j JWK) PublicKey() (crypto.PublicKey, error) {
	switch j.Kty {
	case "RSA":
		nb, err := base64.RawURLEncoding.DecodeString(j.N)
		if err != nil {
			return nil, fmt.Errorf("jwtx: modulus: %w", err)
		}
		eb, err := base64.RawURLEncoding.DecodeString(j.E)
		if err != nil {
			return nil, fmt.Errorf("jwtx: exponent: %w", err)
		}
		e := new(big.Int).SetBytes(eb)
		if len(nb) == 0 || !e.IsInt64() || e.Int64() < 3 {
			return nil, errors.New("jwtx: invalid RSA public key")
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}, nil

	case "OKP":
		if j.Crv != "Ed25519" {
			return nil, errors.New("jwtx: unsupported OKP curve " + j.Crv)
		}
		xb, err := base64.RawURLEncoding.DecodeString(j.X)
		if err != nil {
			return nil, fmt.Errorf("jwtx: x: %w", err)
		}
		if len(xb) != ed25519.PublicKeySize {
			return nil, errors.New("jwtx: invalid Ed25519 public key size")
		}
		return ed25519.PublicKey(xb), nil

	default:
		return nil, errors.New("jwtx: unsupported kty " + j.Kty)
	}
}
