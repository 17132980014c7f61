// Package config loads service configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Lobby holds configuration for the lobby orchestrator
type Lobby struct {
	// ListenAddr is the TCP address clients and game processes connect to
	ListenAddr string `env:"LOBBY_LISTEN_ADDR" envDefault:"0.0.0.0:10192"`

	// StoreAddr is the address of the collection store service
	StoreAddr string `env:"LOBBY_STORE_ADDR" envDefault:"127.0.0.1:10195"`

	// GameRuntime is the interpreter used to launch game entry points that
	// do not declare their own runtime
	GameRuntime string `env:"LOBBY_GAME_RUNTIME" envDefault:"python3"`

	// SpawnDelay is how long the supervisor waits after launching a game
	// process for it to bind its listening socket
	SpawnDelay time.Duration `env:"LOBBY_SPAWN_DELAY" envDefault:"1s"`

	// MonitorInterval is the crash monitor's tick period
	MonitorInterval time.Duration `env:"LOBBY_MONITOR_INTERVAL" envDefault:"1s"`

	// CrashGrace is how long a room may stay playing after its process
	// exits before the crash is confirmed
	CrashGrace time.Duration `env:"LOBBY_CRASH_GRACE" envDefault:"3s"`
}

// Storage holds configuration for the collection store service
type Storage struct {
	// ListenAddr is the TCP address the store listens on
	ListenAddr string `env:"STORAGE_LISTEN_ADDR" envDefault:"127.0.0.1:10195"`

	// Backend selects the storage backend ("memory" or "redis")
	Backend string `env:"STORAGE_BACKEND" envDefault:"memory"`

	// DataDir is where the memory backend snapshots collections as JSON
	// files; empty disables snapshots
	DataDir string `env:"STORAGE_DATA_DIR"`

	// RedisURL is required when Backend is "redis"
	RedisURL string `env:"STORAGE_REDIS_URL" envDefault:"redis://localhost:6379"`
}

// LoadLobby parses lobby configuration from the environment
func LoadLobby() (Lobby, error) {
	var cfg Lobby
	err := env.Parse(&cfg)
	return cfg, err
}

// LoadStorage parses storage configuration from the environment
func LoadStorage() (Storage, error) {
	var cfg Storage
	err := env.Parse(&cfg)
	return cfg, err
}
