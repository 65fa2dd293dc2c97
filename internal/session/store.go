// Package session persists the last value of each explorer session field.
package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Field names stored per explorer session.
const (
	KeyQuery      = "query"
	KeyResults    = "results"
	KeyVoted      = "voted"
	KeyRandomSide = "randomSide"
	KeyReachable  = "reachable"
)

// Store is a last-value key/value store. Load reports found=false for keys
// that were never saved.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key namespaces field under an explorer session id.
func Key(sessionID, field string) string {
	return "khub:" + sessionID + ":" + field
}

// LoadJSON decodes the value stored at key into v.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, found, err := s.Load(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it at key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}
