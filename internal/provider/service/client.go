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

type ClientService struct {
	Store     store.Store
	Generator Generator
	Now       func() time.Time
}

// RegisterClient is the input for a new client application.
type RegisterClient struct {
	Name        string
	CallbackURL string
	Permissions domain.PermissionSet
}

// Register creates a client application with a generated consumer key and
// secret. The secret is stored in plaintext: OAuth 1.0a signatures are keyed
// with it.
func (s *ClientService) Register(ctx context.Context, req RegisterClient) (domain.ClientApplication, error) {
	l := slogx.FromContext(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.ClientApplication{}, ErrInvalidRequest
	}
	if err := validateCallbackURL(strings.TrimSpace(req.CallbackURL)); err != nil {
		return domain.ClientApplication{}, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	c := domain.ClientApplication{
		Name:        name,
		CallbackURL: strings.TrimSpace(req.CallbackURL),
		Permissions: req.Permissions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	gen := generatorOrDefault(s.Generator)
	for range maxMintAttempts {
		var err error
		if c.Key, c.Secret, err = tokenPair(gen); err != nil {
			return domain.ClientApplication{}, storageError("generate consumer key", err)
		}
		c.ID = idx.NewAt(now).String()

		err = s.Store.Clients().CreateClient(ctx, c)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			l.Error("failed to create client", "error", err)
			return domain.ClientApplication{}, storageError("create client", err)
		}

		l.Info("client registered", "client_id", c.ID, "name", c.Name, "permissions", c.Permissions.Names())
		return c, nil
	}
	return domain.ClientApplication{}, storageError("create client", errors.New("consumer key retries exhausted"))
}

func (s *ClientService) List(ctx context.Context) ([]domain.ClientApplication, error) {
	clients, err := s.Store.Clients().ListClients(ctx)
	if err != nil {
		return nil, storageError("list clients", err)
	}
	return clients, nil
}
