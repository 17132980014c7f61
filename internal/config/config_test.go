package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLobbyDefaults(t *testing.T) {
	cfg, err := LoadLobby()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:10192", cfg.ListenAddr)
	assert.Equal(t, "python3", cfg.GameRuntime)
	assert.Equal(t, time.Second, cfg.SpawnDelay)
	assert.Equal(t, time.Second, cfg.MonitorInterval)
	assert.Equal(t, 3*time.Second, cfg.CrashGrace)
}

func TestLoadLobbyFromEnvironment(t *testing.T) {
	t.Setenv("LOBBY_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("LOBBY_CRASH_GRACE", "10s")

	cfg, err := LoadLobby()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.CrashGrace)
}

func TestLoadStorageDefaults(t *testing.T) {
	cfg, err := LoadStorage()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Backend)
	assert.Empty(t, cfg.DataDir)
}

func TestLoadStorageRedisBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("STORAGE_REDIS_URL", "redis://redis:6379/1")

	cfg, err := LoadStorage()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "redis://redis:6379/1", cfg.RedisURL)
}
