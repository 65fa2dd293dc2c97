package session

import (
	"context"
	"strings"
)

// ObjectStore is the subset of an S3 client the session store needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, bool, error)
}

// S3Store keeps each value as one object under a prefix.
type S3Store struct {
	objects ObjectStore
	prefix  string
}

func NewS3Store(objects ObjectStore, prefix string) *S3Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Store{objects: objects, prefix: prefix}
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + strings.ReplaceAll(key, ":", "/") + ".json"
}

func (s *S3Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return s.objects.GetObject(ctx, s.objectKey(key))
}

func (s *S3Store) Save(ctx context.Context, key string, value []byte) error {
	return s.objects.PutObject(ctx, s.objectKey(key), value, "application/json")
}

func (s *S3Store) Close() error {
	return nil
}
