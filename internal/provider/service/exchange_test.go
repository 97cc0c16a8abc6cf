package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/pkg/idx"
	"github.com/stretchr/testify/require"
)

func authorizedToken(t *testing.T, f fixture, grants domain.PermissionSet) domain.RequestToken {
	t.Helper()
	ctx := context.Background()

	rt := f.issue(t, IssueRequest{})
	d, err := (&AuthorizeService{Store: f.store}).Decide(ctx, DecisionRequest{
		Token:  rt.Token,
		UserID: f.user.ID,
		Grants: grants,
	})
	require.NoError(t, err)
	return d.Token
}

func TestExchangeResponseBody(t *testing.T) {
	t.Parallel()

	r := ExchangeResult{
		AccessToken: domain.AccessToken{Token: "abc", Secret: "xyz"},
		User:        domain.User{ID: "7", DisplayName: "alice"},
	}
	require.Equal(t, "oauth_token=abc&oauth_token_secret=xyz&username=alice&userId=7", r.Response().Encode())
}

func TestExchangeIssuesAccessToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	rec := newCountingRecorder()

	rt := authorizedToken(t, f, domain.NewPermissionSet(domain.PermReadPrefs))

	svc := &ExchangeService{Store: f.store, Generator: &sequenceGenerator{}, Recorder: rec}
	res, err := svc.Exchange(ctx, Credentials{Token: rt.Token, Secret: rt.Secret, Verifier: *rt.Verifier})
	require.NoError(t, err)

	require.Equal(t, "t1", res.AccessToken.Token)
	require.Equal(t, "s2", res.AccessToken.Secret)
	require.Equal(t, f.user.ID, res.User.ID)
	require.Equal(t, "oauth_token=t1&oauth_token_secret=s2&username=alice&userId="+f.user.ID, res.Response().Encode())

	// Permissions come from the client, not the narrower user grant.
	require.Equal(t, f.client.Permissions, res.AccessToken.Permissions)

	got, err := f.store.Tokens().GetRequestToken(ctx, rt.Token)
	require.NoError(t, err)
	require.True(t, got.Invalidated())

	listed, err := f.store.Tokens().ListUserAccessTokens(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, 1, rec.exchange[OutcomeLabelIssued])
}

func TestExchangeScopeFromGrants(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rt := authorizedToken(t, f, domain.NewPermissionSet(domain.PermWriteAPI))

	svc := &ExchangeService{Store: f.store, ScopeSource: ScopeFromGrants}
	res, err := svc.Exchange(context.Background(), Credentials{Token: rt.Token, Secret: rt.Secret})
	require.NoError(t, err)
	require.Equal(t, domain.NewPermissionSet(domain.PermWriteAPI), res.AccessToken.Permissions)
}

func TestExchangeDenials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	rec := newCountingRecorder()
	svc := &ExchangeService{Store: f.store, Recorder: rec}

	rt := authorizedToken(t, f, f.client.Permissions)

	t.Run("wrong secret matches unknown token", func(t *testing.T) {
		_, wrongSecret := svc.Exchange(ctx, Credentials{Token: rt.Token, Secret: "wrong"})
		_, unknown := svc.Exchange(ctx, Credentials{Token: "unknown", Secret: rt.Secret})
		require.ErrorIs(t, wrongSecret, ErrAccessDenied)
		require.ErrorIs(t, unknown, ErrAccessDenied)
		require.Equal(t, wrongSecret.Error(), unknown.Error())
	})

	t.Run("wrong verifier", func(t *testing.T) {
		_, err := svc.Exchange(ctx, Credentials{Token: rt.Token, Secret: rt.Secret, Verifier: "nope"})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unauthorized token", func(t *testing.T) {
		issued := f.issue(t, IssueRequest{})
		_, err := svc.Exchange(ctx, Credentials{Token: issued.Token, Secret: issued.Secret})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("verifier required", func(t *testing.T) {
		strict := &ExchangeService{Store: f.store, RequireVerifier: true}
		_, err := strict.Exchange(ctx, Credentials{Token: rt.Token, Secret: rt.Secret})
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	// None of the failures consumed the token.
	got, err := f.store.Tokens().GetRequestToken(ctx, rt.Token)
	require.NoError(t, err)
	require.False(t, got.Invalidated())
	require.Equal(t, 4, rec.exchange[OutcomeLabelRejected])
}

func TestExchangeConcurrentDoubleSpend(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	rt := authorizedToken(t, f, f.client.Permissions)
	svc := &ExchangeService{Store: f.store}

	const attempts = 2
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := make(chan struct{})
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Exchange(context.Background(), Credentials{Token: rt.Token, Secret: rt.Secret})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	var ok, denied int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case isAccessDenied(err):
			denied++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, denied)

	listed, err := f.store.Tokens().ListUserAccessTokens(context.Background(), f.user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func isAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

func TestExchangeRetriesOnCollision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	// Occupy the token string the fixed generator will produce.
	require.NoError(t, f.store.Tokens().CreateAccessToken(ctx, domain.AccessToken{
		ID:                  idx.New().String(),
		Token:               "taken",
		Secret:              "s",
		UserID:              f.user.ID,
		ClientApplicationID: f.client.ID,
		CreatedAt:           time.Now().UTC(),
	}))

	rt := authorizedToken(t, f, f.client.Permissions)
	svc := &ExchangeService{Store: f.store, Generator: fixedGenerator{token: "taken", secret: "s"}}

	_, err := svc.Exchange(ctx, Credentials{Token: rt.Token, Secret: rt.Secret})
	require.ErrorIs(t, err, ErrStorageFailure)

	// The transaction rolled back, so the request token is still usable.
	got, err := f.store.Tokens().GetRequestToken(ctx, rt.Token)
	require.NoError(t, err)
	require.False(t, got.Invalidated())

	_, err = (&ExchangeService{Store: f.store}).Exchange(ctx, Credentials{Token: rt.Token, Secret: rt.Secret})
	require.NoError(t, err)
}

func TestParseScopeSource(t *testing.T) {
	t.Parallel()

	s, err := ParseScopeSource("")
	require.NoError(t, err)
	require.Equal(t, ScopeFromClient, s)

	s, err = ParseScopeSource("granted")
	require.NoError(t, err)
	require.Equal(t, ScopeFromGrants, s)

	_, err = ParseScopeSource("everything")
	require.ErrorIs(t, err, ErrInvalidRequest)
}
