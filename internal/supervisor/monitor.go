package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/gamehall/gamehall/internal/dependencies/clock"
)

// RoomReconciler is the monitor's view of room state. Implemented by the
// room service.
type RoomReconciler interface {
	// IsPlaying reports whether the room exists and is in playing status
	IsPlaying(ctx context.Context, roomID string) (bool, error)

	// ConfirmCrash applies the crash transition if the room is still
	// playing. Returns model.ErrNotPlaying if a result arrived first.
	ConfirmCrash(ctx context.Context, roomID string) error
}

// Monitor is the background crash detector. Each tick it polls tracked
// processes for termination; an exit while the room is still playing starts
// a grace window, and only after the window elapses with the room still
// playing is the crash confirmed. A game_result arriving in between clears
// the pending record via Release and the crash path never fires.
type Monitor struct {
	sup    *Supervisor
	rooms  RoomReconciler
	clock  clock.Clock
	logger *slog.Logger

	interval time.Duration
	grace    time.Duration
}

// NewMonitor creates a crash monitor
func NewMonitor(sup *Supervisor, rooms RoomReconciler, clk clock.Clock, interval, grace time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		sup:      sup,
		rooms:    rooms,
		clock:    clk,
		logger:   logger.With(slog.String("component", "crash-monitor")),
		interval: interval,
		grace:    grace,
	}
}

// Run ticks at the configured interval until the context is cancelled
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("crash monitor started",
		slog.Duration("interval", m.interval),
		slog.Duration("grace", m.grace),
	)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("crash monitor stopped")
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick runs one reconciliation pass
func (m *Monitor) Tick(ctx context.Context) {
	for _, roomID := range m.sup.Exited() {
		m.reconcile(ctx, roomID)
	}
}

func (m *Monitor) reconcile(ctx context.Context, roomID string) {
	playing, err := m.rooms.IsPlaying(ctx, roomID)
	if err != nil || !playing {
		// Room is gone or already left playing via the result path; just
		// reclaim the process entry.
		m.sup.Release(roomID, 0)
		return
	}

	now := m.clock.Now()
	first, ok := m.sup.PendingSince(roomID)
	if !ok {
		// First detection: start the grace window so a result report that
		// races the exit can still win.
		m.logger.Info("game process exit detected, starting grace window",
			slog.String("room", roomID))
		m.sup.MarkPending(roomID, now)
		return
	}

	if now.Sub(first) < m.grace {
		return
	}

	if err := m.rooms.ConfirmCrash(ctx, roomID); err != nil {
		// A result report won the race after all
		m.logger.Info("crash not confirmed",
			slog.String("room", roomID),
			slog.String("reason", err.Error()),
		)
	} else {
		m.logger.Warn("crash confirmed", slog.String("room", roomID))
	}
	m.sup.Release(roomID, 0)
}
