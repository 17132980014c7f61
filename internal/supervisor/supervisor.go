// Package supervisor spawns and tracks one game-server child process per
// started room, and reconciles process exits against room state.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gamehall/gamehall/internal/dependencies/clock"
	"github.com/gamehall/gamehall/internal/model"
)

// DefaultEntryPoint is used when a game's metadata omits entry_point
const DefaultEntryPoint = "game_server.py"

// roomIDFlag is the child flag passed only to games that accept it
const roomIDFlag = "--room_id"

// Config holds supervisor settings
type Config struct {
	// Runtime is the interpreter for entry points that do not declare one
	Runtime string

	// LobbyPort is the lobby's listening port, passed to children so they
	// can report results back
	LobbyPort int

	// SpawnDelay is the fixed wait after spawning for the child to bind
	// its listening socket. There is no readiness handshake; the supervisor
	// never connects to the child itself.
	SpawnDelay time.Duration
}

// process is one tracked game-server child
type process struct {
	cmd     *exec.Cmd
	started time.Time
	// done is closed once Wait returns; exitErr then holds the result
	done    chan struct{}
	exitErr error
}

// Supervisor owns the process registry and pending-crash bookkeeping
type Supervisor struct {
	cfg    Config
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.Mutex
	procs   map[string]*process
	pending map[string]time.Time
}

// New creates a supervisor
func New(cfg Config, clk clock.Clock, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		clock:   clk,
		logger:  logger.With(slog.String("component", "supervisor")),
		procs:   make(map[string]*process),
		pending: make(map[string]time.Time),
	}
}

// Launch allocates a port, spawns the game's entry point and records the
// process against the room. Returns the allocated port. On failure nothing
// is recorded.
func (s *Supervisor) Launch(ctx context.Context, room *model.Room, game *model.Game) (int, error) {
	port, err := freePort()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStartFailed, err)
	}

	entry := game.EntryPoint
	if entry == "" {
		entry = DefaultEntryPoint
	}
	script := filepath.Join(game.Path, entry)

	runtime := game.Runtime
	if runtime == "" {
		runtime = s.cfg.Runtime
	}

	args := []string{script, "--port", strconv.Itoa(port), "--lobby_port", strconv.Itoa(s.cfg.LobbyPort)}
	if s.acceptsRoomID(game, script) {
		args = append(args, roomIDFlag, room.ID)
	}

	cmd := exec.Command(runtime, args...)
	cmd.Dir = game.Path

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStartFailed, err)
	}

	p := &process{cmd: cmd, started: s.clock.Now(), done: make(chan struct{})}
	go func() {
		p.exitErr = cmd.Wait()
		close(p.done)
	}()

	s.mu.Lock()
	s.procs[room.ID] = p
	s.mu.Unlock()

	s.logger.Info("game instance started",
		slog.String("room", room.ID),
		slog.String("game", room.GameID),
		slog.Int("port", port),
		slog.Int("pid", cmd.Process.Pid),
	)

	// Give the child time to bind its socket before players connect
	s.clock.Sleep(s.cfg.SpawnDelay)

	return port, nil
}

// acceptsRoomID decides whether to pass the room-id flag. A declared
// supports_room_id field in the game's metadata wins; otherwise the entry
// script's source text is scanned for the flag name, which keeps older game
// templates working.
func (s *Supervisor) acceptsRoomID(game *model.Game, script string) bool {
	if game.SupportsRoomID != nil {
		return *game.SupportsRoomID
	}
	content, err := os.ReadFile(script)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), roomIDFlag)
}

// Exited returns the room ids of tracked processes that have terminated
func (s *Supervisor) Exited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for rid, p := range s.procs {
		select {
		case <-p.done:
			out = append(out, rid)
		default:
		}
	}
	return out
}

// Tracking reports whether a process entry exists for the room
func (s *Supervisor) Tracking(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.procs[roomID]
	return ok
}

// Release clears pending-crash bookkeeping and reclaims the room's process
// entry, waiting up to the given duration for the child to exit. Called on
// both the result path (bounded wait, the child is exiting anyway) and the
// crash path (zero wait, the child is already gone).
func (s *Supervisor) Release(roomID string, wait time.Duration) {
	s.mu.Lock()
	delete(s.pending, roomID)
	p, ok := s.procs[roomID]
	if ok {
		delete(s.procs, roomID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if wait > 0 {
		select {
		case <-p.done:
		case <-time.After(wait):
			s.logger.Warn("game process slow to exit after result report",
				slog.String("room", roomID))
		}
	}

	s.logger.Info("game process reclaimed", slog.String("room", roomID))
}

// PendingSince returns when the room's process exit was first observed
func (s *Supervisor) PendingSince(roomID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.pending[roomID]
	return t, ok
}

// MarkPending records the first observation of the room's process exit
func (s *Supervisor) MarkPending(roomID string, t time.Time) {
	s.mu.Lock()
	s.pending[roomID] = t
	s.mu.Unlock()
}

// ClearPending drops the room's pending-crash record
func (s *Supervisor) ClearPending(roomID string) {
	s.mu.Lock()
	delete(s.pending, roomID)
	s.mu.Unlock()
}

// freePort asks the kernel for an ephemeral port by binding and releasing a
// listener. The port could be taken again before the child binds it; in
// practice the window is tiny.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
