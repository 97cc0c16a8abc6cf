package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
	"github.com/aussiebroadwan/oauth1d/internal/provider/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

type fixture struct {
	store  *sqlite.Store
	user   domain.User
	client domain.ClientApplication
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := newTestStore(t)

	users := &UserService{Store: s}
	user, err := users.Create(ctx, "alice")
	require.NoError(t, err)

	clients := &ClientService{Store: s}
	client, err := clients.Register(ctx, RegisterClient{
		Name:        "Mapper",
		CallbackURL: "https://mapper.example/cb",
		Permissions: domain.NewPermissionSet(domain.PermReadPrefs, domain.PermWriteAPI),
	})
	require.NoError(t, err)

	return fixture{store: s, user: user, client: client}
}

func (f fixture) issue(t *testing.T, req IssueRequest) domain.RequestToken {
	t.Helper()
	if req.ClientKey == "" {
		req.ClientKey = f.client.Key
	}
	rt, err := (&RequestTokenService{Store: f.store}).Issue(context.Background(), req)
	require.NoError(t, err)
	return rt
}

// sequenceGenerator hands out predictable values.
type sequenceGenerator struct {
	n atomic.Int64
}

func (g *sequenceGenerator) next(prefix string) (string, error) {
	return fmt.Sprintf("%s%d", prefix, g.n.Add(1)), nil
}

func (g *sequenceGenerator) Token() (string, error) { return g.next("t") }
func (g *sequenceGenerator) Secret() (string, error) { return g.next("s") }
func (g *sequenceGenerator) Verifier() (string, error) { return g.next("v") }

// fixedGenerator always returns the same values; used to force collisions.
type fixedGenerator struct {
	token, secret, verifier string
}

func (g fixedGenerator) Token() (string, error) { return g.token, nil }
func (g fixedGenerator) Secret() (string, error) { return g.secret, nil }
func (g fixedGenerator) Verifier() (string, error) { return g.verifier, nil }

type countingRecorder struct {
	mu            sync.Mutex
	authorization map[string]int
	exchange      map[string]int
	revoked       int
	stale         int64
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{authorization: map[string]int{}, exchange: map[string]int{}}
}

func (r *countingRecorder) Authorization(o string) {
	r.mu.Lock()
	r.authorization[o]++
	r.mu.Unlock()
}

func (r *countingRecorder) Exchange(o string) {
	r.mu.Lock()
	r.exchange[o]++
	r.mu.Unlock()
}

func (r *countingRecorder) StaleRequestTokens(n int64) {
	r.mu.Lock()
	r.stale += n
	r.mu.Unlock()
}

func (r *countingRecorder) Revocation(revoked bool) {
	if revoked {
		r.mu.Lock()
		r.revoked++
		r.mu.Unlock()
	}
}
