package session

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/khub/internal/config"
	"github.com/cloo-solutions/khub/internal/storage"
)

// Open builds the store selected by cfg.SessionStore.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.SessionStore {
	case config.SessionStoreMemory, "":
		return NewMemoryStore(), nil
	case config.SessionStoreSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.SessionStoreRedis:
		return NewRedisStore(ctx, cfg.RedisURL, DefaultRedisTTL)
	case config.SessionStoreS3:
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return NewS3Store(client, "sessions"), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}
