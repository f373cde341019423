package main

import (
	"context"

	"github.com/jzahidzamacona/Fronty-sub001/internal/config"
	"github.com/jzahidzamacona/Fronty-sub001/storage"
	"github.com/rs/zerolog/log"
)

const boltBucket = "session"

// openStorage builds the configured backend and returns its closer.
func openStorage(ctx context.Context, c config.StorageConfig) (storage.Storage, func(), error) {
	switch backend := c.GetStorageBackend(); backend {
	case config.StorageMemory:
		log.Info().Str("backend", string(backend)).Msg("Storage ready")
		return storage.NewMemory(), func() {}, nil

	case config.StorageRedis:
		client, err := storage.DialRedis(ctx, c.GetRedisURL())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("backend", string(backend)).Str("prefix", c.GetRedisPrefix()).Msg("Storage ready")
		return storage.NewRedis(client, c.GetRedisPrefix()), func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("Closing redis client")
			}
		}, nil

	default:
		db, err := storage.OpenBolt(c.GetBoltPath(), boltBucket)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("backend", string(backend)).Str("path", c.GetBoltPath()).Msg("Storage ready")
		return db, func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("Closing bolt database")
			}
		}, nil
	}
}
