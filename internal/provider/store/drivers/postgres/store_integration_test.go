//go:build integration

package postgres

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store"
	"github.com/aussiebroadwan/oauth1d/pkg/idx"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL must be set for integration tests")
	}

	s, err := NewStore(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedClient(t *testing.T, s *Store) (domain.User, domain.ClientApplication) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	user := domain.User{ID: idx.New().String(), DisplayName: "user-" + idx.New().String(), CreatedAt: now}
	require.NoError(t, s.Users().CreateUser(ctx, user))

	client := domain.ClientApplication{
		ID:          idx.New().String(),
		Name:        "Integration",
		CallbackURL: "https://integration.example/cb",
		Key:         "key-" + idx.New().String(),
		Secret:      "secret",
		Permissions: domain.NewPermissionSet(domain.AllPermissions...),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.Clients().CreateClient(ctx, client))
	return user, client
}

func TestRequestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	user, client := seedClient(t, s)

	rt := domain.RequestToken{
		ID:                  idx.New().String(),
		Token:               "rt-" + idx.New().String(),
		Secret:              "rt-secret",
		ClientApplicationID: client.ID,
		CreatedAt:           time.Now().UTC(),
	}
	require.NoError(t, s.Tokens().CreateRequestToken(ctx, rt))

	dup := rt
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Tokens().CreateRequestToken(ctx, dup), store.ErrAlreadyExists)

	verifier := "v"
	require.NoError(t, s.Tokens().AuthorizeRequestToken(ctx, rt.ID, user.ID, &verifier, client.Permissions, time.Now()))

	got, err := s.Tokens().GetRequestToken(ctx, rt.Token)
	require.NoError(t, err)
	require.True(t, got.Authorized())
	require.Equal(t, client.Permissions, got.Permissions)
}

func TestConcurrentConsumeHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	user, client := seedClient(t, s)

	rt := domain.RequestToken{
		ID:                  idx.New().String(),
		Token:               "race-" + idx.New().String(),
		Secret:              "race-secret",
		ClientApplicationID: client.ID,
		CreatedAt:           time.Now().UTC(),
	}
	require.NoError(t, s.Tokens().CreateRequestToken(ctx, rt))
	require.NoError(t, s.Tokens().AuthorizeRequestToken(ctx, rt.ID, user.ID, nil, client.Permissions, time.Now()))

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(tx store.Tx) error {
				return tx.Tokens().ConsumeRequestToken(ctx, rt.ID, time.Now())
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}
