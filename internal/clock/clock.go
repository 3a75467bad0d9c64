// Package clock provides time sources for the game loop: a wall clock for
// real runs and a manual clock for deterministic tests and benchmarks.
package clock

import (
	"sync"
	"time"
)

// Source is a monotonic time source that can also block.
type Source interface {
	Now() time.Duration
	Sleep(d time.Duration)
}

// Wall reports monotonic time elapsed since it was created.
type Wall struct {
	start time.Time
}

// NewWall starts a wall clock at zero.
func NewWall() *Wall {
	return &Wall{start: time.Now()}
}

// Now returns the time elapsed since NewWall.
func (w *Wall) Now() time.Duration {
	return time.Since(w.start)
}

// Sleep blocks the calling goroutine for d.
func (w *Wall) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// Manual is a clock that only moves when told to. Sleep advances it by
// exactly the requested amount, so loops driven by it are deterministic.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	slept  time.Duration
	sleeps int
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep advances the clock by d. Non-positive durations are ignored.
func (m *Manual) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
	m.slept += d
	m.sleeps++
}

// Advance moves the clock forward by d without counting it as sleep.
// Negative values are ignored so the clock never goes backwards.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// Slept returns the total time spent in Sleep.
func (m *Manual) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slept
}

// Sleeps returns how many times Sleep advanced the clock.
func (m *Manual) Sleeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeps
}
