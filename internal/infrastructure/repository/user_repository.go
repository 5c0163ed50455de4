package repository

import (
	"context"
	"strings"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type UserRepository struct {
	store ports.KVStore
}

func NewUserRepository(store ports.KVStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	var u domain.User
	if err := getJSON(ctx, r.store, userKey(id), &u, domain.ErrUserNotFound); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail scans every user record; emails are compared case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := scanJSON[domain.User](ctx, r.store, prefixUser)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	return setJSON(ctx, r.store, userKey(user.ID), user)
}
