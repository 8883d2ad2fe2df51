package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"API_TOKEN": "secret"})

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.GRPCAddr)
	assert.Equal(t, "secret", cfg.APIToken)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "retrofit-projects", cfg.SnapshotKey)
	assert.Equal(t, "retrofit.db", cfg.SQLitePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, float64(5), cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.False(t, cfg.ChainEnabled())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"API_TOKEN":              "secret",
		"STORE_DRIVER":           " Redis ",
		"REDIS_ADDR":             "cache:6379",
		"REDIS_DB":               "2",
		"RATE_LIMIT_RPS":         "0.5",
		"CHAIN_RPC_URL":          "http://127.0.0.1:8545",
		"CHAIN_CONTRACT_ADDRESS": "0xDc64a140Aa3E981100a9becA4E685f962f0cF6C9",
		"CHAIN_PRIVATE_KEY":      "0xabc",
		"CHAIN_ID":               "31337",
	})

	require.NoError(t, err)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.True(t, cfg.ChainEnabled())
	assert.Equal(t, int64(31337), cfg.ChainID)
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errMsg string
	}{
		{
			name:   "Default store without token",
			env:    map[string]string{},
			errMsg: "API_TOKEN is required for the sqlite store",
		},
		{
			name:   "Blank token",
			env:    map[string]string{"STORE_DRIVER": "redis", "API_TOKEN": "   "},
			errMsg: "API_TOKEN is required for the redis store",
		},
		{
			name:   "Unknown driver",
			env:    map[string]string{"API_TOKEN": "secret", "STORE_DRIVER": "mongo"},
			errMsg: "unknown STORE_DRIVER",
		},
		{
			name:   "Postgres without DSN",
			env:    map[string]string{"API_TOKEN": "secret", "STORE_DRIVER": "postgres"},
			errMsg: "POSTGRES_DSN is required",
		},
		{
			name:   "Blank snapshot key",
			env:    map[string]string{"API_TOKEN": "secret", "SNAPSHOT_KEY": "  "},
			errMsg: "SNAPSHOT_KEY cannot be empty",
		},
		{
			name:   "Zero burst",
			env:    map[string]string{"API_TOKEN": "secret", "RATE_LIMIT_BURST": "0"},
			errMsg: "must be positive",
		},
		{
			name:   "Chain without key",
			env:    map[string]string{"API_TOKEN": "secret", "CHAIN_RPC_URL": "http://127.0.0.1:8545"},
			errMsg: "CHAIN_PRIVATE_KEY are required",
		},
		{
			name:   "Malformed number",
			env:    map[string]string{"API_TOKEN": "secret", "REDIS_DB": "two"},
			errMsg: "failed to parse environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.env)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFrom_MemoryWithoutToken(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"STORE_DRIVER": "memory"})

	require.NoError(t, err)
	assert.Empty(t, cfg.APIToken)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_DRIVER=memory\nSNAPSHOT_KEY=from-dotenv\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("GRPC_ADDR", ":9090")
	// godotenv never overrides variables that are already set
	t.Setenv("SNAPSHOT_KEY", "from-env")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "from-env", cfg.SnapshotKey)
	assert.Equal(t, ":9090", cfg.GRPCAddr)
}
