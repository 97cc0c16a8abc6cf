package jwtx

import (
	"fmt"

	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
)

// KeyManager bundles the signer used to mint session tokens with the
// verifier and KeySet that check them. Production deployments usually hold
// only the verifying half (see NewVerifyingKeyManager); the signing half is
// used by the CLI and by dev mode.
type KeyManager struct {
	Signer   Signer // nil when only verifying
	Verifier Verifier
	KeySet   *KeySet

	algorithm string
}

// KeyManagerOptions configures the KeyManager for a specific use case.
type KeyManagerOptions struct {
	// Algorithm specifies which signing algorithm to use.
	// Supported values: "RS256", "EdDSA"
	Algorithm string

	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// Audience is the list of audience values (aud) that will be validated.
	// Empty slice means no audience validation.
	Audience []string

	// RSABits specifies the RSA key size for RS256. Defaults to 2048.
	RSABits int
}

// NewEphemeralKeyManager generates a fresh in-memory signing key. Every
// session token becomes invalid when the process restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	kid, err := generateRandomKeyID()
	if err != nil {
		return nil, err
	}

	pemBytes, err := GenerateKeyPEM(opts.Algorithm, opts.RSABits)
	if err != nil {
		return nil, err
	}

	return NewKeyManagerFromPEM(opts, kid, pemBytes)
}

// NewKeyManagerFromPEM loads a signing key from PEM bytes.
func NewKeyManagerFromPEM(opts KeyManagerOptions, kid string, pemBytes []byte) (*KeyManager, error) {
	signer, err := NewSigner(opts.Algorithm, kid, pemBytes)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, err
	}

	keyset := NewKeySet()
	if err := keyset.AddSigner(signer); err != nil {
		return nil, fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}

	km, err := NewVerifyingKeyManager(opts, keyset)
	if err != nil {
		return nil, err
	}
	km.Signer = signer
	return km, nil
}

// NewVerifyingKeyManager wraps an existing KeySet without a signer.
func NewVerifyingKeyManager(opts KeyManagerOptions, keyset *KeySet) (*KeyManager, error) {
	verifier, err := NewVerifier(opts.Algorithm, keyset, VerifyOptions{
		Issuer:   opts.Issuer,
		Audience: opts.Audience,
	})
	if err != nil {
		return nil, err
	}

	return &KeyManager{
		Verifier:  verifier,
		KeySet:    keyset,
		algorithm: opts.Algorithm,
	}, nil
}

// GenerateKeyPEM creates a new private key for algorithm.
func GenerateKeyPEM(algorithm string, rsaBits int) ([]byte, error) {
	switch algorithm {
	case AlgorithmRS256:
		bits := rsaBits
		if bits == 0 {
			bits = 2048
		}
		return cryptox.GenerateRSAKey(bits)
	case AlgorithmEdDSA:
		return cryptox.GenerateEd25519Key()
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: RS256, EdDSA)", algorithm)
	}
}

// Algorithm returns the signing algorithm being used.
func (km *KeyManager) Algorithm() string {
	return km.algorithm
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// CanSign reports whether the manager holds a private key.
func (km *KeyManager) CanSign() bool {
	return km.Signer != nil
}

// generateRandomKeyID creates a random key identifier using cryptographic entropy.
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: failed to generate key ID: %w", err)
	}
	return "oauth1d-" + token, nil
}
