package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/idx"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// RequestTokenService issues request tokens on behalf of a registered
// client. It backs the operator CLI; there is no HTTP initiation endpoint.
type RequestTokenService struct {
	Store     store.Store
	Generator Generator
	Now       func() time.Time
}

// IssueRequest describes a new request token.
type IssueRequest struct {
	ClientKey string

	// Callback is the client's oauth_callback. "oob" marks the token
	// out-of-band; empty falls back to the registered callback.
	Callback string

	// OAuth10 issues a legacy token that is authorized without a verifier.
	OAuth10 bool
}

// Issue creates a request token in the Issued state.
func (s *RequestTokenService) Issue(ctx context.Context, req IssueRequest) (domain.RequestToken, error) {
	client, err := s.Store.Clients().GetClientByKey(ctx, strings.TrimSpace(req.ClientKey))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RequestToken{}, ErrClientNotFound
		}
		return domain.RequestToken{}, storageError("get client", err)
	}

	rt := domain.RequestToken{
		ClientApplicationID: client.ID,
		OAuth10:             req.OAuth10,
	}

	switch cb := strings.TrimSpace(req.Callback); cb {
	case "":
	case oobCallback:
		rt.OOB = true
	default:
		if err := validateCallbackURL(cb); err != nil {
			return domain.RequestToken{}, err
		}
		rt.CallbackURL = cb
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	rt.CreatedAt = now

	gen := generatorOrDefault(s.Generator)
	for range maxMintAttempts {
		if rt.Token, rt.Secret, err = tokenPair(gen); err != nil {
			return domain.RequestToken{}, storageError("generate request token", err)
		}
		rt.ID = idx.NewAt(now).String()

		err = s.Store.Tokens().CreateRequestToken(ctx, rt)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return domain.RequestToken{}, storageError("create request token", err)
		}

		slogx.FromContext(ctx).Info("request token issued", "client_id", client.ID, "oob", rt.OOB, "oauth10", rt.OAuth10)
		return rt, nil
	}
	return domain.RequestToken{}, storageError("create request token", errors.New("token collision retries exhausted"))
}
