// Package loop implements a fixed-timestep game loop that decouples the
// simulation rate from the render rate.
//
// A GameLoop drives a Game through repeated input/tick/render/sleep cycles
// using the Game's own time source. Ticks run at a fixed cadence, renders
// run at most once per pass of the outer loop and are bounded from below by
// the configured frame duration, and catch-up work after a stall is bounded
// by MaxFramesSkipped.
//
// The loop is single-threaded: every callback runs synchronously on the
// goroutine that called Run. Configuration must not be changed from other
// goroutines while Run is active.
package loop

import "time"

// Game is the callback set a GameLoop drives.
type Game interface {
	// Now returns monotonic time since an arbitrary epoch. It must not
	// decrease between calls within one Run.
	Now() time.Duration

	// Tick advances the simulation by exactly one tick duration.
	Tick() error

	// Render produces one frame. interpolation is in [0, 1] and tells how
	// far past the last completed tick the current moment is.
	Render(interpolation float64) error

	// HandleInputEvents polls pending input. It may call Exit on the loop.
	HandleInputEvents() error

	// Sleep blocks for approximately d.
	Sleep(d time.Duration)

	// AtExit is called once when the loop stops normally.
	AtExit(exitCode int)
}

// State is the top-level state of a GameLoop.
type State uint8

const (
	// StateIdle means Run is not active.
	StateIdle State = iota
	// StateRunning means Run is active and no exit was requested.
	StateRunning
	// StateStopping means Run is active and Exit was requested.
	StateStopping
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Stats is a snapshot of the loop counters.
type Stats struct {
	TickID   uint64        // Ticks executed since creation
	FrameID  uint64        // Renders executed since creation
	TickTime time.Duration // Accumulated simulation time
	Clock    time.Duration // Loop clock at the last sample
	Paused   bool
}

// Lag returns how far simulation time trails the loop clock.
// Paused time is included.
func (s Stats) Lag() time.Duration {
	if s.Clock <= s.TickTime {
		return 0
	}
	return s.Clock - s.TickTime
}
