package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// RevokeService lets a user invalidate their own access tokens.
type RevokeService struct {
	Store    store.Store
	Recorder Recorder
	Now      func() time.Time
}

// RevokeResult reports whether anything changed. ClientName is set when a
// token was revoked, for the confirmation notice.
type RevokeResult struct {
	Revoked    bool
	ClientName string
}

// TokenListing is one row of the user's authorized applications.
type TokenListing struct {
	Token  domain.AccessToken
	Client domain.ClientApplication
}

// Revoke invalidates the access token owned by userID. Unknown tokens,
// tokens owned by someone else and already-invalidated tokens are a silent
// no-op.
func (s *RevokeService) Revoke(ctx context.Context, userID, token string) (RevokeResult, error) {
	log := slogx.FromContext(ctx).With("token_fp", cryptox.FingerprintToken(token), "user_id", userID)
	rec := recorderOrNop(s.Recorder)

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var result RevokeResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		at, err := tx.Tokens().GetUserAccessToken(ctx, userID, token)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return storageError("get access token", err)
		}
		if at.Invalidated() {
			return nil
		}

		if err := tx.Tokens().InvalidateAccessToken(ctx, at.ID, now); err != nil {
			if errors.Is(err, store.ErrStale) {
				return nil
			}
			return storageError("invalidate access token", err)
		}

		client, err := tx.Clients().GetClientByID(ctx, at.ClientApplicationID)
		if err != nil {
			return storageError("get client", err)
		}

		result = RevokeResult{Revoked: true, ClientName: client.Name}
		return nil
	})
	if err != nil {
		err = classify("revoke", err)
		log.Error("revoke failed", "error", err)
		return RevokeResult{}, err
	}

	if result.Revoked {
		log.Info("access token revoked", "client", result.ClientName)
	}
	rec.Revocation(result.Revoked)
	return result, nil
}

// ListAccessTokens returns the user's live access tokens with their
// clients, newest first.
func (s *RevokeService) ListAccessTokens(ctx context.Context, userID string) ([]TokenListing, error) {
	tokens, err := s.Store.Tokens().ListUserAccessTokens(ctx, userID)
	if err != nil {
		return nil, storageError("list access tokens", err)
	}

	clients := make(map[string]domain.ClientApplication)
	out := make([]TokenListing, 0, len(tokens))
	for _, at := range tokens {
		client, ok := clients[at.ClientApplicationID]
		if !ok {
			client, err = s.Store.Clients().GetClientByID(ctx, at.ClientApplicationID)
			if err != nil {
				return nil, storageError("get client", err)
			}
			clients[at.ClientApplicationID] = client
		}
		out = append(out, TokenListing{Token: at, Client: client})
	}
	return out, nil
}
