package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/cryptox"
	"github.com/aussiebroadwan/oauth1d/pkg/slogx"
)

// oobCallback is the callback value clients send when they cannot receive
// a redirect.
const oobCallback = "oob"

// Outcome is the result of a user decision on a request token.
type Outcome int

const (
	// OutcomeRedirect sends the user agent back to the client's callback.
	OutcomeRedirect Outcome = iota + 1
	// OutcomeAuthorized renders a static confirmation; no callback resolved.
	OutcomeAuthorized
	// OutcomeDenied renders the denial view naming the application.
	OutcomeDenied
)

// AuthorizeService drives a request token from Issued to either Authorized
// or Invalidated.
type AuthorizeService struct {
	Store     store.Store
	Generator Generator
	Recorder  Recorder

	// StrictCallbacks requires the resolved callback to share scheme and host
	// with the client's registered callback.
	StrictCallbacks bool

	Now func() time.Time
}

// PendingAuthorization is a request token awaiting a user decision.
type PendingAuthorization struct {
	Token  domain.RequestToken
	Client domain.ClientApplication
}

// DecisionRequest carries the user's answer for one request token.
type DecisionRequest struct {
	Token  string
	UserID string
	Grants domain.PermissionSet

	// Callback is the oauth_callback parameter, if the user agent sent one.
	Callback string
}

// Decision describes what the HTTP layer should do next.
type Decision struct {
	Outcome     Outcome
	RedirectURL string
	Token       domain.RequestToken
	Client      domain.ClientApplication
}

func (s *AuthorizeService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Pending loads a request token that can still be decided on.
func (s *AuthorizeService) Pending(ctx context.Context, token string) (*PendingAuthorization, error) {
	rt, client, err := s.load(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := decidable(rt); err != nil {
		return nil, err
	}
	return &PendingAuthorization{Token: rt, Client: client}, nil
}

// Decide records the user's decision.
//
// An empty grant set (after intersecting with the client's declared
// permissions) is a denial: the token is invalidated and no callback is
// built. Otherwise the callback URL is built first, and only then is the
// token authorized, so a malformed callback leaves the token untouched.
func (s *AuthorizeService) Decide(ctx context.Context, req DecisionRequest) (*Decision, error) {
	log := slogx.FromContext(ctx).With("token_fp", cryptox.FingerprintToken(req.Token))
	rec := recorderOrNop(s.Recorder)

	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrInvalidRequest
	}

	rt, client, err := s.load(ctx, req.Token)
	if err != nil {
		rec.Authorization(outcomeLabel(err))
		return nil, err
	}
	if err := decidable(rt); err != nil {
		rec.Authorization(outcomeLabel(err))
		return nil, err
	}

	now := s.now()
	grants := req.Grants.Intersect(client.Permissions)

	if grants.IsEmpty() {
		if err := s.Store.Tokens().DenyRequestToken(ctx, rt.ID, now); err != nil {
			err = s.raceError(ctx, "deny request token", req.Token, err)
			rec.Authorization(outcomeLabel(err))
			return nil, err
		}
		rt.InvalidatedAt = &now

		log.Info("request token denied", "client_id", client.ID, "user_id", req.UserID)
		rec.Authorization(OutcomeLabelDenied)
		return &Decision{Outcome: OutcomeDenied, Token: rt, Client: client}, nil
	}

	var verifier *string
	if !rt.OAuth10 {
		v, err := generatorOrDefault(s.Generator).Verifier()
		if err != nil {
			rec.Authorization(OutcomeLabelError)
			return nil, storageError("generate verifier", err)
		}
		verifier = &v
	}

	callback := ResolveCallback(rt, client, req.Callback)

	var redirect string
	if callback != "" {
		if s.StrictCallbacks && !CallbackMatchesRegistered(callback, client.CallbackURL) {
			log.Warn("callback rejected by strict mode", "client_id", client.ID)
			rec.Authorization(OutcomeLabelRejected)
			return nil, ErrInvalidCallback
		}
		if redirect, err = BuildCallbackURL(callback, rt.Token, verifier); err != nil {
			rec.Authorization(OutcomeLabelRejected)
			return nil, err
		}
	}

	if err := s.Store.Tokens().AuthorizeRequestToken(ctx, rt.ID, req.UserID, verifier, grants, now); err != nil {
		err = s.raceError(ctx, "authorize request token", req.Token, err)
		rec.Authorization(outcomeLabel(err))
		return nil, err
	}

	userID := req.UserID
	rt.UserID = &userID
	rt.AuthorizedAt = &now
	rt.Verifier = verifier
	rt.Permissions = grants

	log.Info("request token authorized",
		"client_id", client.ID,
		"user_id", req.UserID,
		"permissions", grants.Names(),
	)
	rec.Authorization(OutcomeLabelAuthorized)

	if redirect == "" {
		return &Decision{Outcome: OutcomeAuthorized, Token: rt, Client: client}, nil
	}
	return &Decision{Outcome: OutcomeRedirect, RedirectURL: redirect, Token: rt, Client: client}, nil
}

// ResolveCallback picks the callback for an authorized token: the
// oauth_callback parameter, then the token's own callback (unless the client
// asked for out-of-band), then the client's registered URL.
func ResolveCallback(rt domain.RequestToken, client domain.ClientApplication, param string) string {
	if p := strings.TrimSpace(param); p != "" && p != oobCallback {
		return p
	}
	if !rt.OOB && rt.CallbackURL != "" {
		return rt.CallbackURL
	}
	return client.CallbackURL
}

func (s *AuthorizeService) load(ctx context.Context, token string) (domain.RequestToken, domain.ClientApplication, error) {
	if strings.TrimSpace(token) == "" {
		return domain.RequestToken{}, domain.ClientApplication{}, ErrTokenNotFound
	}

	rt, err := s.Store.Tokens().GetRequestToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RequestToken{}, domain.ClientApplication{}, ErrTokenNotFound
		}
		return domain.RequestToken{}, domain.ClientApplication{}, storageError("get request token", err)
	}

	client, err := s.Store.Clients().GetClientByID(ctx, rt.ClientApplicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.RequestToken{}, domain.ClientApplication{}, ErrClientNotFound
		}
		return domain.RequestToken{}, domain.ClientApplication{}, storageError("get client", err)
	}

	return rt, client, nil
}

func decidable(rt domain.RequestToken) error {
	switch rt.State() {
	case domain.StateInvalidated:
		return ErrExpiredToken
	case domain.StateAuthorized:
		return ErrAlreadyAuthorized
	default:
		return nil
	}
}

// raceError turns a failed conditional update into the error describing the
// state the token moved to in the meantime.
func (s *AuthorizeService) raceError(ctx context.Context, op, token string, err error) error {
	if !errors.Is(err, store.ErrStale) {
		return storageError(op, err)
	}

	rt, getErr := s.Store.Tokens().GetRequestToken(ctx, token)
	if getErr != nil {
		return storageError(op, getErr)
	}
	if err := decidable(rt); err != nil {
		return err
	}
	return ErrExpiredToken
}
