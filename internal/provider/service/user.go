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

// UserService manages the users that tokens are issued to. Accounts are
// created administratively.
type UserService struct {
	Store store.Store
}

func (s *UserService) Create(ctx context.Context, displayName string) (domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.User{}, ErrInvalidRequest
	}

	u := domain.User{
		ID:          idx.New().String(),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateUser
		}
		return domain.User{}, storageError("create user", err)
	}

	slogx.FromContext(ctx).Info("user created", "user_id", u.ID, "display_name", u.DisplayName)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, storageError("get user", err)
	}
	return u, nil
}

// GetByDisplayName is used by the CLI to resolve a user for session minting.
func (s *UserService) GetByDisplayName(ctx context.Context, name string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByDisplayName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, storageError("get user", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, storageError("list users", err)
	}
	return users, nil
}
