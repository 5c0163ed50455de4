package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type ProjectRepository struct {
	store ports.KVStore
}

func NewProjectRepository(store ports.KVStore) *ProjectRepository {
	return &ProjectRepository{store: store}
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	if id == "" {
		return nil, domain.ErrProjectNotFound
	}
	var p domain.Project
	if err := getJSON(ctx, r.store, projectKey(id), &p, domain.ErrProjectNotFound); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	return scanJSON[domain.Project](ctx, r.store, prefixProject)
}

func (r *ProjectRepository) ListIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := getJSON(ctx, r.store, userProjectsKey(userID), &ids, ports.ErrKeyNotFound)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Create writes the project before touching the index so the index never
// points at a record that was not written. The read-modify-write on the index
// is not guarded; two concurrent submissions by the same user can lose an id.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if err := setJSON(ctx, r.store, projectKey(p.ID), p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}

	ids, err := r.ListIDsByUser(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("create project: load index: %w", err)
	}
	ids = append(ids, p.ID)
	if err := setJSON(ctx, r.store, userProjectsKey(p.UserID), ids); err != nil {
		return fmt.Errorf("create project: save index: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Save(ctx context.Context, p *domain.Project) error {
	return setJSON(ctx, r.store, projectKey(p.ID), p)
}

func (r *ProjectRepository) SaveApproval(ctx context.Context, p *domain.Project, dev *domain.Developer) error {
	pb, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	db, err := json.Marshal(dev)
	if err != nil {
		return fmt.Errorf("encode developer: %w", err)
	}
	// Project first: if the developer write is lost, the reconciler can find
	// the approval and repair the developer. The reverse is not detectable.
	return r.store.SetMany(ctx, []ports.KVEntry{
		{Key: projectKey(p.ID), Value: pb},
		{Key: developerKey(dev.ID), Value: db},
	})
}

func (r *ProjectRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Project, error) {
	b, err := r.store.Get(ctx, idempotencyKey(userID, key))
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, string(b))
}

func (r *ProjectRepository) RememberIdempotencyKey(ctx context.Context, userID, key, projectID string) error {
	return r.store.Set(ctx, idempotencyKey(userID, key), []byte(projectID))
}
