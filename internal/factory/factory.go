// Package factory wires the lobby's components together for the server
// binary and for integration tests.
package factory

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/gamehall/gamehall/internal/broadcast"
	"github.com/gamehall/gamehall/internal/config"
	"github.com/gamehall/gamehall/internal/dependencies/clock"
	"github.com/gamehall/gamehall/internal/dependencies/random"
	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/games"
	"github.com/gamehall/gamehall/internal/protocol"
	"github.com/gamehall/gamehall/internal/registry"
	"github.com/gamehall/gamehall/internal/room"
	"github.com/gamehall/gamehall/internal/supervisor"
)

// App contains all wired lobby components
type App struct {
	Store docstore.Collections

	Clock  clock.Clock
	Random random.Random

	Registry    *registry.Registry
	Broadcaster *broadcast.Broadcaster
	Games       *games.Service
	Supervisor  *supervisor.Supervisor
	Rooms       *room.Service
	Monitor     *supervisor.Monitor
	Dispatcher  *protocol.Dispatcher
	Server      *protocol.Server
}

// Config holds configuration for the application factory
type Config struct {
	// Lobby is the service configuration
	Lobby config.Lobby

	// Logger is the application logger (optional); nil means discard
	Logger *slog.Logger

	// Store overrides the collection store access (optional). When nil a
	// wire client for Lobby.StoreAddr is used.
	Store docstore.Collections
}

// New creates a lobby application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store := cfg.Store
	if store == nil {
		store = docstore.NewClient(cfg.Lobby.StoreAddr)
	}

	lobbyPort, err := listenPort(cfg.Lobby.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid listen address: %w", err)
	}

	return NewWithDependencies(cfg.Lobby, lobbyPort, store, clock.New(), random.New(), logger), nil
}

// NewWithDependencies creates an App with the given dependencies (useful
// for testing)
func NewWithDependencies(cfg config.Lobby, lobbyPort int, store docstore.Collections, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	reg := registry.New(store, rnd, logger)
	broadcaster := broadcast.New(reg, logger)
	gameService := games.New(store, logger)

	sup := supervisor.New(supervisor.Config{
		Runtime:    cfg.GameRuntime,
		LobbyPort:  lobbyPort,
		SpawnDelay: cfg.SpawnDelay,
	}, clk, logger)

	rooms := room.New(store, sup, broadcaster, rnd, logger)
	monitor := supervisor.NewMonitor(sup, rooms, clk, cfg.MonitorInterval, cfg.CrashGrace, logger)
	dispatcher := protocol.NewDispatcher(reg, rooms, gameService, logger)
	server := protocol.NewServer(dispatcher, logger)

	return &App{
		Store:       store,
		Clock:       clk,
		Random:      rnd,
		Registry:    reg,
		Broadcaster: broadcaster,
		Games:       gameService,
		Supervisor:  sup,
		Rooms:       rooms,
		Monitor:     monitor,
		Dispatcher:  dispatcher,
		Server:      server,
	}
}

// listenPort extracts the port from a listen address
func listenPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
