package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store is string-keyed storage of string values that survives restarts.
type Store interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LoadList decodes the JSON array stored under key. found is false when the
// key has never been written.
func LoadList[T any](ctx context.Context, s Store, key string) (items []T, found bool, err error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

// SaveList replaces the JSON array stored under key.
func SaveList[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
