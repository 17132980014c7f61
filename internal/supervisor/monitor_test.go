package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gamehall/gamehall/internal/dependencies/mocks"
	"github.com/gamehall/gamehall/internal/model"
	"github.com/gamehall/gamehall/internal/testutil"
)

// stubRooms is a controllable RoomReconciler
type stubRooms struct {
	mu        sync.Mutex
	playing   map[string]bool
	confirmed []string
}

func newStubRooms() *stubRooms {
	return &stubRooms{playing: make(map[string]bool)}
}

func (r *stubRooms) IsPlaying(ctx context.Context, roomID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	playing, ok := r.playing[roomID]
	if !ok {
		return false, model.ErrRoomNotFound
	}
	return playing, nil
}

func (r *stubRooms) ConfirmCrash(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.playing[roomID] {
		return model.ErrNotPlaying
	}
	r.playing[roomID] = false
	r.confirmed = append(r.confirmed, roomID)
	return nil
}

func (r *stubRooms) confirmedRooms() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.confirmed...)
}

type MonitorSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	sup     *Supervisor
	rooms   *stubRooms
	monitor *Monitor
	ctx     context.Context
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorSuite))
}

func (s *MonitorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sup = New(Config{
		Runtime:    "/bin/sh",
		LobbyPort:  10192,
		SpawnDelay: time.Second,
	}, s.clock, testutil.NopLogger())
	s.rooms = newStubRooms()
	s.monitor = NewMonitor(s.sup, s.rooms, s.clock, time.Second, 3*time.Second, testutil.NopLogger())
	s.ctx = context.Background()
}

// launchExiting starts a process that terminates immediately and waits for
// the supervisor to observe the exit.
func (s *MonitorSuite) launchExiting(roomID string) {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "game_server.sh")
	s.Require().NoError(os.WriteFile(path, []byte("exit 1\n"), 0o755))

	game := &model.Game{Path: dir, EntryPoint: "game_server.sh", Runtime: "/bin/sh"}
	_, err := s.sup.Launch(s.ctx, &model.Room{ID: roomID, GameID: "g1"}, game)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return len(s.sup.Exited()) > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *MonitorSuite) TestCrashConfirmedOnlyAfterGraceWindow() {
	s.rooms.playing["r1"] = true
	s.launchExiting("r1")

	// First tick: exit observed, grace window starts, no transition yet
	s.monitor.Tick(s.ctx)
	s.Empty(s.rooms.confirmedRooms())
	_, pending := s.sup.PendingSince("r1")
	s.True(pending)

	// Inside the window: still nothing
	s.clock.Advance(2 * time.Second)
	s.monitor.Tick(s.ctx)
	s.Empty(s.rooms.confirmedRooms())

	// Past the window: crash confirmed and process reclaimed
	s.clock.Advance(2 * time.Second)
	s.monitor.Tick(s.ctx)
	s.Equal([]string{"r1"}, s.rooms.confirmedRooms())
	s.False(s.sup.Tracking("r1"))
}

func (s *MonitorSuite) TestResultReportWinsRaceAgainstMonitor() {
	s.rooms.playing["r1"] = true
	s.launchExiting("r1")

	// Monitor sees the exit and starts the grace window
	s.monitor.Tick(s.ctx)
	_, pending := s.sup.PendingSince("r1")
	s.True(pending)

	// The result path lands: room leaves playing, process released
	s.rooms.playing["r1"] = false
	s.sup.Release("r1", 0)

	// Even long after the window, the crash path never fires
	s.clock.Advance(10 * time.Second)
	s.monitor.Tick(s.ctx)
	s.Empty(s.rooms.confirmedRooms())
}

func (s *MonitorSuite) TestResultDuringGraceWindowIsNotACrash() {
	s.rooms.playing["r1"] = true
	s.launchExiting("r1")

	s.monitor.Tick(s.ctx)
	s.clock.Advance(5 * time.Second)

	// Result arrived between ticks; room is no longer playing but the
	// process entry was not yet released
	s.rooms.playing["r1"] = false

	s.monitor.Tick(s.ctx)
	s.Empty(s.rooms.confirmedRooms())
	s.False(s.sup.Tracking("r1"))
}

func (s *MonitorSuite) TestExitOfDeletedRoomIsReclaimed() {
	// Room vanished entirely (members left); just reclaim the entry
	s.launchExiting("r1")

	s.monitor.Tick(s.ctx)
	s.False(s.sup.Tracking("r1"))
	s.Empty(s.rooms.confirmedRooms())
}

func (s *MonitorSuite) TestRunStopsOnContextCancel() {
	ctx, cancel := context.WithCancel(s.ctx)

	done := make(chan struct{})
	go func() {
		s.monitor.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("monitor did not stop")
	}
}
