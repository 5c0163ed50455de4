package server

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nomadhire/marketplace/internal/core/ports"
	"github.com/nomadhire/marketplace/internal/infrastructure/config"
	kvmongo "github.com/nomadhire/marketplace/internal/infrastructure/db/mongo"
	kvredis "github.com/nomadhire/marketplace/internal/infrastructure/db/redis"
)

const appName = "nomadhire-marketplace"

// CloseFunc releases a backend connection.
type CloseFunc func(ctx context.Context) error

// OpenStore connects the key-value backend selected by STORE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.KVStore, CloseFunc, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := kvredis.Connect(ctx, kvredis.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			ClientName: appName,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("connected to redis")
		return kvredis.NewStore(client), func(context.Context) error { return client.Close() }, nil

	case config.StoreMongo:
		client, db, err := kvmongo.Connect(ctx, kvmongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  appName,
		})
		if err != nil {
			return nil, nil, err
		}
		store := kvmongo.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return store, client.Disconnect, nil
	}

	return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
}
