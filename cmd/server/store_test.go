package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenretrofit/retrofit-backend/internal/config"
)

func TestOpenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{name: "Memory", env: map[string]string{"STORE_DRIVER": "memory"}},
		{name: "SQLite", env: map[string]string{"API_TOKEN": "secret", "STORE_DRIVER": "sqlite", "SQLITE_PATH": filepath.Join(t.TempDir(), "retrofit.db")}},
		{name: "Redis", env: map[string]string{"API_TOKEN": "secret", "STORE_DRIVER": "redis", "REDIS_ADDR": mr.Addr()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			cfg, err := config.LoadFrom(tt.env)
			require.NoError(t, err)

			store, closeStore, err := openStore(ctx, cfg)
			require.NoError(t, err)
			defer func() {
				assert.NoError(t, closeStore())
			}()

			require.NoError(t, store.Save(ctx, []byte(`{"schemaVersion":1,"projects":{}}`)))
			data, found, err := store.Load(ctx)
			require.NoError(t, err)
			assert.True(t, found)
			assert.JSONEq(t, `{"schemaVersion":1,"projects":{}}`, string(data))
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), &config.Config{StoreDriver: "mongo"})

	assert.Nil(t, store)
	assert.Nil(t, closeStore)
	assert.Error(t, err)
}
