package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aussiebroadwan/oauth1d/pkg/jwtx"
)

type keySource int

const (
	keySourceEphemeral keySource = iota
	keySourceSigningKey
	keySourceSigningKeyFile
	keySourceJWKSFile
	keySourceJWKSURL
)

func (c Config) sessionKeySource() keySource {
	switch {
	case c.SessionSigningKey != "":
		return keySourceSigningKey
	case c.SessionSigningKeyFile != "":
		return keySourceSigningKeyFile
	case c.SessionJWKSFile != "":
		return keySourceJWKSFile
	case c.SessionJWKSURL != "":
		return keySourceJWKSURL
	default:
		return keySourceEphemeral
	}
}

// InitSessionKeys builds the KeyManager that verifies session tokens.
//
// Key sources:
//   - SESSION_SIGNING_KEY / SESSION_SIGNING_KEY_FILE: a PEM private key shared
//     with the login front-end. The manager can also sign (oauth1d session mint).
//   - SESSION_JWKS_FILE: public keys read once at startup.
//   - SESSION_JWKS_URL: public keys fetched at startup and refreshed by a
//     JWKSRefresher.
//   - none (dev only): an ephemeral key. Sessions die with the process.
func InitSessionKeys(ctx context.Context, cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := cfg.sessionKeyOptions()

	switch cfg.sessionKeySource() {
	case keySourceSigningKey:
		km, err := jwtx.NewKeyManagerFromPEM(opts, cfg.SessionKeyID, []byte(cfg.SessionSigningKey))
		if err != nil {
			return nil, fmt.Errorf("failed to load SESSION_SIGNING_KEY: %w", err)
		}
		logger.Info("session signing key loaded", "algorithm", km.Algorithm(), "kid", cfg.SessionKeyID)
		return km, nil

	case keySourceSigningKeyFile:
		pemBytes, err := os.ReadFile(cfg.SessionSigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read SESSION_SIGNING_KEY_FILE: %w", err)
		}
		km, err := jwtx.NewKeyManagerFromPEM(opts, cfg.SessionKeyID, pemBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to load SESSION_SIGNING_KEY_FILE: %w", err)
		}
		logger.Info("session signing key loaded", "path", cfg.SessionSigningKeyFile, "kid", cfg.SessionKeyID)
		return km, nil

	case keySourceJWKSFile:
		jwks, err := jwtx.LoadJWKSFile(cfg.SessionJWKSFile)
		if err != nil {
			return nil, err
		}
		return verifyingKeyManager(opts, jwks, logger, "path", cfg.SessionJWKSFile)

	case keySourceJWKSURL:
		fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		jwks, err := jwtx.FetchJWKS(fetchCtx, nil, cfg.SessionJWKSURL)
		if err != nil {
			return nil, err
		}
		return verifyingKeyManager(opts, jwks, logger, "url", cfg.SessionJWKSURL)

	default:
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral session key: %w", err)
		}
		logger.Warn("using an ephemeral session key; sessions are invalid after restart",
			"algorithm", km.Algorithm(),
		)
		return km, nil
	}
}

func verifyingKeyManager(opts jwtx.KeyManagerOptions, jwks jwtx.JWKS, logger *slog.Logger, args ...any) (*jwtx.KeyManager, error) {
	keyset := jwtx.NewKeySet()
	if err := keyset.ResetFromJWKS(jwks); err != nil {
		return nil, fmt.Errorf("failed to load session keys: %w", err)
	}
	km, err := jwtx.NewVerifyingKeyManager(opts, keyset)
	if err != nil {
		return nil, err
	}
	logger.Info("session verification keys loaded", append(args, "num_keys", len(jwks.Keys))...)
	return km, nil
}

// JWKSRefresher periodically refetches the login front-end's JWKS so key
// rotation there does not require a restart. A failed fetch keeps the
// previous keys.
type JWKSRefresher struct {
	URL      string
	Interval time.Duration
	KeySet   *jwtx.KeySet
	Client   *http.Client
	Logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewJWKSRefresher(url string, interval time.Duration, keys *jwtx.KeySet, logger *slog.Logger) *JWKSRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &JWKSRefresher{
		URL:      url,
		Interval: interval,
		KeySet:   keys,
		Logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (r *JWKSRefresher) Start() {
	go r.run()
}

func (r *JWKSRefresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *JWKSRefresher) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := r.Refresh(context.Background()); err != nil {
				r.Logger.Error("failed to refresh session keys", "url", r.URL, "error", err)
			}
		case <-r.stopCh:
			return
		}
	}
}

// Refresh fetches the JWKS once and swaps it into the KeySet.
func (r *JWKSRefresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	jwks, err := jwtx.FetchJWKS(ctx, r.Client, r.URL)
	if err != nil {
		return err
	}
	if err := r.KeySet.ResetFromJWKS(jwks); err != nil {
		return err
	}
	r.Logger.Debug("session keys refreshed", "num_keys", len(jwks.Keys))
	return nil
}
