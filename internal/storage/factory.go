package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homesurvey/internal/common/config"
	"homesurvey/internal/common/database"
)

var ErrUnknownBackend = errors.New("UNKNOWN_STORAGE_BACKEND")

// Open builds the configured backend. The returned close function releases
// its connections.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, func() error, error) {
	switch cfg.Backend {
	case "", config.StorageMemory:
		return NewMemory(), func() error { return nil }, nil

	case config.StorageRedis:
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis storage: %w", err)
		}
		ttl := time.Duration(cfg.TTLSeconds) * time.Second
		return NewRedis(client.Client, cfg.KeyPrefix, ttl), client.Close, nil

	case config.StoragePostgres:
		client, err := database.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return NewPostgres(client.DB, client.Table), client.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
}
