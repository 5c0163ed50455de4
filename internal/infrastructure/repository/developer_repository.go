package repository

import (
	"context"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type DeveloperRepository struct {
	store ports.KVStore
}

func NewDeveloperRepository(store ports.KVStore) *DeveloperRepository {
	return &DeveloperRepository{store: store}
}

func (r *DeveloperRepository) FindByID(ctx context.Context, id string) (*domain.Developer, error) {
	if id == "" {
		return nil, domain.ErrDeveloperNotFound
	}
	var d domain.Developer
	if err := getJSON(ctx, r.store, developerKey(id), &d, domain.ErrDeveloperNotFound); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeveloperRepository) List(ctx context.Context) ([]*domain.Developer, error) {
	return scanJSON[domain.Developer](ctx, r.store, prefixDeveloper)
}

func (r *DeveloperRepository) Save(ctx context.Context, dev *domain.Developer) error {
	return setJSON(ctx, r.store, developerKey(dev.ID), dev)
}
