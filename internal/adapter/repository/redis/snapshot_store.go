package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// SnapshotStore keeps the snapshot document under a single Redis key
type SnapshotStore struct {
	client goredis.UniversalClient
	key    string
}

// NewSnapshotStore creates a store over an existing client
func NewSnapshotStore(client goredis.UniversalClient, key string) *SnapshotStore {
	return &SnapshotStore{client: client, key: key}
}

// Dial connects to Redis and verifies the connection with PING
func Dial(ctx context.Context, addr, password string, db int, key string) (*SnapshotStore, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("redis address is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, errors.New("snapshot key is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewSnapshotStore(client, key), nil
}

// Close closes the underlying client
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

// Load returns the stored document; a missing key is not an error
func (s *SnapshotStore) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, true, nil
}

// Save replaces the document; the key never expires
func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
