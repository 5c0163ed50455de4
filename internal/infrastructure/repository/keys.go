// Package repository maps marketplace records onto namespaced keys of a
// ports.KVStore. Each record is stored as JSON under its own key:
//
//	user:<id>                          domain.User
//	developer:<id>                     domain.Developer
//	project:<id>                       domain.Project
//	user_projects:<userId>             []string of project ids, append-only
//	project_idempotency:<userId>:<key> project id
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nomadhire/marketplace/internal/core/ports"
)

const (
	prefixUser         = "user:"
	prefixDeveloper    = "developer:"
	prefixProject      = "project:"
	prefixUserProjects = "user_projects:"
	prefixIdempotency  = "project_idempotency:"
)

func userKey(id string) string         { return prefixUser + id }
func developerKey(id string) string    { return prefixDeveloper + id }
func projectKey(id string) string      { return prefixProject + id }
func userProjectsKey(id string) string { return prefixUserProjects + id }

func idempotencyKey(userID, key string) string {
	return prefixIdempotency + userID + ":" + key
}

// getJSON loads key into dest, translating a missing key into notFound.
func getJSON(ctx context.Context, store ports.KVStore, key string, dest any, notFound error) error {
	b, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return notFound
		}
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func setJSON(ctx context.Context, store ports.KVStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, b)
}

// scanJSON decodes every value under prefix into a fresh T.
func scanJSON[T any](ctx context.Context, store ports.KVStore, prefix string) ([]*T, error) {
	raw, err := store.ScanPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(raw))
	for _, b := range raw {
		v := new(T)
		if err := json.Unmarshal(b, v); err != nil {
			return nil, fmt.Errorf("decode %s*: %w", prefix, err)
		}
		out = append(out, v)
	}
	return out, nil
}
