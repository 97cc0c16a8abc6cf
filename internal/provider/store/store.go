package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/oauth1d/internal/provider/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrStale is returned by conditional updates whose guard no longer holds,
	// e.g. the token was invalidated by a concurrent request.
	ErrStale = errors.New("store: stale state")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a transaction can never be opened from inside another one.
type Store interface {
	Users() Users
	Clients() Clients
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByDisplayName(ctx context.Context, displayName string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the caller).
	CreateUser(ctx context.Context, u domain.User) error

	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Clients interface {
	GetClientByID(ctx context.Context, id string) (domain.ClientApplication, error)

	// GetClientByKey looks a client up by its consumer key.
	GetClientByKey(ctx context.Context, key string) (domain.ClientApplication, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.ClientApplication, error)

	// CreateClient returns ErrAlreadyExists when the consumer key collides.
	CreateClient(ctx context.Context, c domain.ClientApplication) error
}

// Tokens persists request and access tokens in one namespace, so a token
// string is unique across both kinds. Every mutation is conditional and
// returns ErrStale when its guard no longer holds.
type Tokens interface {
	// CreateRequestToken returns ErrAlreadyExists when the token string collides.
	CreateRequestToken(ctx context.Context, t domain.RequestToken) error

	// GetRequestToken returns the request token with the given token string,
	// whatever its state.
	GetRequestToken(ctx context.Context, token string) (domain.RequestToken, error)

	// AuthorizeRequestToken sets user, authorized_at, verifier and the granted
	// flags in one statement. Guard: not authorized and not invalidated.
	AuthorizeRequestToken(
		ctx context.Context,
		id, userID string,
		verifier *string,
		grants domain.PermissionSet,
		at time.Time,
	) error

	// DenyRequestToken invalidates a token that was never authorized.
	DenyRequestToken(ctx context.Context, id string, at time.Time) error

	// ConsumeRequestToken invalidates an authorized token during exchange.
	ConsumeRequestToken(ctx context.Context, id string, at time.Time) error

	// InvalidateStaleRequestTokens invalidates live request tokens created
	// before the cutoff and returns how many were touched.
	InvalidateStaleRequestTokens(ctx context.Context, createdBefore, at time.Time) (int64, error)

	// CreateAccessToken returns ErrAlreadyExists when the token string collides.
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetUserAccessToken returns the access token owned by userID.
	GetUserAccessToken(ctx context.Context, userID, token string) (domain.AccessToken, error)

	// ListUserAccessTokens returns the user's live access tokens, newest first.
	ListUserAccessTokens(ctx context.Context, userID string) ([]domain.AccessToken, error)

	// InvalidateAccessToken sets invalidated_at. Guard: not invalidated.
	InvalidateAccessToken(ctx context.Context, id string, at time.Time) error
}
