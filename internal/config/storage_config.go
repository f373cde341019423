package config

import "strings"

type StorageBackend string

const (
	StorageMemory StorageBackend = "memory"
	StorageBolt   StorageBackend = "bolt"
	StorageRedis  StorageBackend = "redis"
)

type StorageConfig interface {
	GetStorageBackend() StorageBackend
	GetBoltPath() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetStorageBackend() StorageBackend {
	switch b := StorageBackend(strings.ToLower(GetEnv("STORAGE_BACKEND", string(StorageBolt)))); b {
	case StorageMemory, StorageBolt, StorageRedis:
		return b
	default:
		return StorageBolt
	}
}

func (Storage) GetBoltPath() string {
	return GetEnv("BOLT_PATH", "./data/backoffice.db")
}

func (Storage) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Storage) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "backoffice")
}
