package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/aussiebroadwan/oauth1d/pkg/idx"
	"github.com/aussiebroadwan/oauth1d/pkg/oauthsdk"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// ScopeSource selects where an access token's permissions come from.
type ScopeSource string

const (
	// ScopeFromClient copies the client's declared permissions.
	ScopeFromClient ScopeSource = "client"
	// ScopeFromGrants uses what the user granted, bounded by the client.
	ScopeFromGrants ScopeSource = "granted"
)

// ParseScopeSource validates a configured scope source.
func ParseScopeSource(s string) (ScopeSource, error) {
	switch ScopeSource(s) {
	case "", ScopeFromClient:
		return ScopeFromClient, nil
	case ScopeFromGrants:
		return ScopeFromGrants, nil
	default:
		return "", fmt.Errorf("%w: unknown scope source %q", ErrInvalidRequest, s)
	}
}

// dummySecret is compared against when the token is unknown, so both
// mismatch paths do the same work.
const dummySecret = "0000000000000000000000000000000000000000000"

// ExchangeService trades an authorized request token for an access token.
type ExchangeService struct {
	Store     store.Store
	Generator Generator
	Recorder  Recorder

	ScopeSource ScopeSource

	// RequireVerifier rejects 1.0a exchanges that omit oauth_verifier.
	RequireVerifier bool

	Now func() time.Time
}

// Credentials are the values presented in the Digest header.
type Credentials struct {
	Token    string
	Secret   string
	Verifier string
}

// ExchangeResult is a freshly minted access token and its owner.
type ExchangeResult struct {
	AccessToken domain.AccessToken
	User        domain.User
	Client      domain.ClientApplication
}

// Response renders the text/plain body returned to the client.
func (r ExchangeResult) Response() oauthsdk.AccessTokenResponse {
	return oauthsdk.AccessTokenResponse{
		Token:    r.AccessToken.Token,
		Secret:   r.AccessToken.Secret,
		Username: r.User.DisplayName,
		UserID:   r.User.ID,
	}
}

// Exchange validates creds and, on success, invalidates the request token
// and mints an access token in one transaction. Every credential mismatch
// returns ErrAccessDenied.
func (s *ExchangeService) Exchange(ctx context.Context, creds Credentials) (*ExchangeResult, error) {
	log := slogx.FromContext(ctx).With("token_fp", cryptox.FingerprintToken(creds.Token))
	rec := recorderOrNop(s.Recorder)
	gen := generatorOrDefault(s.Generator)

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var result ExchangeResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.Tokens().GetRequestToken(ctx, creds.Token)
		switch {
		case errors.Is(err, store.ErrNotFound):
			_ = cryptox.EqualSecrets(creds.Secret, dummySecret)
			return ErrAccessDenied
		case err != nil:
			return storageError("get request token", err)
		}

		if !cryptox.EqualSecrets(creds.Secret, rt.Secret) {
			return ErrAccessDenied
		}
		if rt.Invalidated() || !rt.Authorized() {
			return ErrAccessDenied
		}
		if err := s.checkVerifier(rt, creds.Verifier); err != nil {
			return err
		}

		user, err := tx.Users().GetUserByID(ctx, *rt.UserID)
		if err != nil {
			return storageError("get user", err)
		}
		client, err := tx.Clients().GetClientByID(ctx, rt.ClientApplicationID)
		if err != nil {
			return storageError("get client", err)
		}

		if err := tx.Tokens().ConsumeRequestToken(ctx, rt.ID, now); err != nil {
			if errors.Is(err, store.ErrStale) {
				return ErrAccessDenied
			}
			return storageError("consume request token", err)
		}

		perms := client.Permissions
		if s.ScopeSource == ScopeFromGrants {
			perms = rt.Permissions.Intersect(client.Permissions)
		}

		at, err := mintAccessToken(ctx, tx, gen, user.ID, client.ID, perms, now)
		if err != nil {
			return err
		}

		result = ExchangeResult{AccessToken: at, User: user, Client: client}
		return nil
	})
	if err != nil {
		err = classify("exchange", err)
		if errors.Is(err, ErrAccessDenied) {
			log.Info("exchange denied")
		} else {
			log.Error("exchange failed", "error", err)
		}
		rec.Exchange(outcomeLabel(err))
		return nil, err
	}

	log.Info("access token issued",
		"client_id", result.Client.ID,
		"user_id", result.User.ID,
		"permissions", result.AccessToken.Permissions.Names(),
	)
	rec.Exchange(OutcomeLabelIssued)
	return &result, nil
}

// Deny records an exchange refused before credentials reached Exchange, such
// as an unparseable Authorization header.
func (s *ExchangeService) Deny(ctx context.Context, reason error) {
	slogx.FromContext(ctx).Info("exchange denied", "reason", reason)
	recorderOrNop(s.Recorder).Exchange(OutcomeLabelDenied)
}

func (s *ExchangeService) checkVerifier(rt domain.RequestToken, presented string) error {
	if presented == "" {
		if s.RequireVerifier && !rt.OAuth10 {
			return ErrAccessDenied
		}
		return nil
	}
	if rt.Verifier == nil || !cryptox.EqualSecrets(presented, *rt.Verifier) {
		return ErrAccessDenied
	}
	return nil
}

// mintAccessToken inserts an access token with a fresh token/secret pair,
// regenerating on a token-string collision.
func mintAccessToken(
	ctx context.Context,
	tx store.Tx,
	gen Generator,
	userID, clientID string,
	perms domain.PermissionSet,
	now time.Time,
) (domain.AccessToken, error) {
	for range maxMintAttempts {
		token, secret, err := tokenPair(gen)
		if err != nil {
			return domain.AccessToken{}, storageError("generate access token", err)
		}

		at := domain.AccessToken{
			ID:                  idx.NewAt(now).String(),
			Token:               token,
			Secret:              secret,
			UserID:              userID,
			ClientApplicationID: clientID,
			Permissions:         perms,
			CreatedAt:           now,
		}

		err = tx.Tokens().CreateAccessToken(ctx, at)
		if errors.Is(err, store.ErrAlreadyExists) {
			slogx.FromContext(ctx).Warn("access token collision, regenerating")
			continue
		}
		if err != nil {
			return domain.AccessToken{}, storageError("create access token", err)
		}
		return at, nil
	}
	return domain.AccessToken{}, storageError("create access token", errors.New("token collision retries exhausted"))
}
