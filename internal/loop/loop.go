package loop

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// unboundedSkip is the catch-up cap used when MaxFramesSkipped is 0.
const unboundedSkip = math.MaxInt32

// GameLoop owns the timing state and drives a Game until Exit is called.
// A GameLoop may be run several times; counters and the loop clock carry
// over from one Run to the next.
type GameLoop struct {
	tickDuration  time.Duration
	frameDuration time.Duration // 0 renders as often as possible
	maxSkip       int           // 0 means unbounded
	syncDraw      bool
	paused        bool

	clock       time.Duration
	clockOffset time.Duration
	initialized bool
	tickTime    time.Duration
	tickID      uint64
	frameID     uint64

	exitCode int
	stop     bool
	running  bool
	game     Game

	logger *log.Logger
}

// Option configures a GameLoop at construction time.
type Option func(*GameLoop)

// WithLogger sets the logger used for loop diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(gl *GameLoop) {
		if l != nil {
			gl.logger = l
		}
	}
}

// New creates a loop running ticksPerSecond ticks per second, executing at
// most maxFramesSkipped ticks between two renders (0 = unbounded) and
// rendering at most maxFPS times per second (0 = unbounded).
func New(ticksPerSecond, maxFramesSkipped, maxFPS int, opts ...Option) *GameLoop {
	gl := &GameLoop{
		logger: log.New(io.Discard),
	}
	gl.SetTickRate(ticksPerSecond)
	gl.SetMaxFramesSkipped(maxFramesSkipped)
	gl.SetMaxFPS(maxFPS)
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// SetTickRate sets the tick duration to 1/n seconds. Panics if n <= 0.
func (gl *GameLoop) SetTickRate(n int) {
	if n <= 0 {
		panic(fmt.Sprintf("loop: tick rate must be positive, got %d", n))
	}
	gl.tickDuration = time.Second / time.Duration(n)
	if gl.tickDuration <= 0 {
		panic(fmt.Sprintf("loop: tick rate %d is too high", n))
	}
}

// SetMaxFramesSkipped bounds the ticks run per outer iteration.
// 0 means unbounded. Panics if k < 0.
func (gl *GameLoop) SetMaxFramesSkipped(k int) {
	if k < 0 {
		panic(fmt.Sprintf("loop: max frames skipped must not be negative, got %d", k))
	}
	gl.maxSkip = k
}

// SetMaxFPS sets the minimum time between renders to 1/f seconds.
// 0 means unbounded. Panics if f < 0.
func (gl *GameLoop) SetMaxFPS(f int) {
	if f < 0 {
		panic(fmt.Sprintf("loop: max fps must not be negative, got %d", f))
	}
	if f == 0 {
		gl.frameDuration = 0
		return
	}
	gl.frameDuration = time.Second / time.Duration(f)
}

// SetSyncDraw locks rendering 1:1 with ticks.
func (gl *GameLoop) SetSyncDraw(sync bool) {
	gl.syncDraw = sync
}

// Pause freezes or resumes simulation. Rendering and input continue.
func (gl *GameLoop) Pause(paused bool) {
	gl.paused = paused
}

// Paused reports whether simulation is paused.
func (gl *GameLoop) Paused() bool {
	return gl.paused
}

// Exit requests termination with the given exit code. The loop stops at
// the next safe point; the last code set before that wins.
//
// Calling Exit while the loop is idle makes the next Run return at once.
func (gl *GameLoop) Exit(code int) {
	gl.exitCode = code
	gl.stop = true
}

// TickDuration returns the fixed simulation step.
func (gl *GameLoop) TickDuration() time.Duration { return gl.tickDuration }

// FrameDuration returns the minimum time between renders.
func (gl *GameLoop) FrameDuration() time.Duration { return gl.frameDuration }

// MaxFramesSkipped returns the configured catch-up bound (0 = unbounded).
func (gl *GameLoop) MaxFramesSkipped() int { return gl.maxSkip }

// SyncDraw reports whether lockstep rendering is enabled.
func (gl *GameLoop) SyncDraw() bool { return gl.syncDraw }

// TickID returns the number of ticks executed since creation.
func (gl *GameLoop) TickID() uint64 { return gl.tickID }

// FrameID returns the number of renders executed since creation.
func (gl *GameLoop) FrameID() uint64 { return gl.frameID }

// TickTime returns the accumulated simulation time.
func (gl *GameLoop) TickTime() time.Duration { return gl.tickTime }

// Clock returns the loop clock at its last sample.
func (gl *GameLoop) Clock() time.Duration { return gl.clock }

// State returns the top-level loop state.
func (gl *GameLoop) State() State {
	switch {
	case !gl.running:
		return StateIdle
	case gl.stop:
		return StateStopping
	default:
		return StateRunning
	}
}

// Snapshot returns the current counters.
func (gl *GameLoop) Snapshot() Stats {
	return Stats{
		TickID:   gl.tickID,
		FrameID:  gl.frameID,
		TickTime: gl.tickTime,
		Clock:    gl.clock,
		Paused:   gl.paused,
	}
}

// AverageTickRate returns ticks per second of loop clock since creation.
func (gl *GameLoop) AverageTickRate() float64 {
	if gl.clock <= 0 {
		return 0
	}
	return float64(gl.tickID) / gl.clock.Seconds()
}

// AverageFrameRate returns renders per second of loop clock since creation.
func (gl *GameLoop) AverageFrameRate() float64 {
	if gl.clock <= 0 {
		return 0
	}
	return float64(gl.frameID) / gl.clock.Seconds()
}

// Run drives g until Exit is called and returns the exit code.
// An error returned by any callback stops the loop and is returned as is;
// AtExit is not called in that case.
func (gl *GameLoop) Run(g Game) (int, error) {
	if gl.running {
		panic("loop: Run called while already running")
	}
	gl.game = g
	gl.running = true
	defer func() {
		gl.game = nil
		gl.stop = false
		gl.running = false
	}()

	start := g.Now()
	if !gl.initialized {
		gl.clockOffset = start
		gl.initialized = true
	} else {
		gl.clockOffset = start - gl.clock
	}
	gl.clock = start - gl.clockOffset

	nextTick := gl.clock
	nextDraw := gl.clock

	gl.logger.Debug("loop started",
		"tick", gl.tickDuration,
		"frame", gl.frameDuration,
		"max_skip", gl.maxSkip,
		"sync_draw", gl.syncDraw,
		"clock", gl.clock,
	)

	for !gl.stop {
		limit := gl.skipLimit()
		n := 0
		for ; n < limit && !gl.stop; n++ {
			gl.clock = g.Now() - gl.clockOffset
			if gl.clock < nextTick {
				break
			}
			if err := g.HandleInputEvents(); err != nil {
				return gl.exitCode, err
			}
			if gl.stop {
				break
			}
			if !gl.paused {
				if err := g.Tick(); err != nil {
					return gl.exitCode, err
				}
				gl.tickID++
				gl.tickTime += gl.tickDuration
			}
			// Advanced while paused too, so resuming does not trigger a
			// burst of catch-up ticks.
			nextTick += gl.tickDuration
		}
		if gl.stop {
			break
		}
		if n == limit && limit > 1 && gl.clock >= nextTick {
			gl.logger.Debug("tick backlog", "behind", gl.clock-nextTick, "ticks", n)
		}

		if err := g.Render(gl.interpolation(nextTick)); err != nil {
			return gl.exitCode, err
		}
		gl.frameID++
		nextDraw = gl.clock + gl.frameDuration
		if gl.syncDraw && nextDraw < nextTick {
			// Lockstep: never draw again before the next tick is due.
			nextDraw = nextTick
		}

		gl.clock = g.Now() - gl.clockOffset
		if diff := min(nextTick, nextDraw) - gl.clock; diff > 0 {
			g.Sleep(diff)
		}
	}

	gl.logger.Debug("loop stopped",
		"exit_code", gl.exitCode,
		"ticks", gl.tickID,
		"frames", gl.frameID,
		"clock", gl.clock,
	)
	g.AtExit(gl.exitCode)
	return gl.exitCode, nil
}

// skipLimit returns the tick cap for one catch-up phase.
func (gl *GameLoop) skipLimit() int {
	if gl.syncDraw {
		return 1
	}
	if gl.maxSkip == 0 {
		return unboundedSkip
	}
	return gl.maxSkip
}

// interpolation returns the render fraction for the current clock.
func (gl *GameLoop) interpolation(nextTick time.Duration) float64 {
	if gl.syncDraw || gl.paused || gl.clock >= nextTick {
		return 0
	}
	alpha := 1 - float64(nextTick-gl.clock)/float64(gl.tickDuration)
	if alpha < 0 || alpha > 1 {
		panic(fmt.Sprintf("loop: interpolation %f out of range (next tick %s, clock %s)", alpha, nextTick, gl.clock))
	}
	return alpha
}
