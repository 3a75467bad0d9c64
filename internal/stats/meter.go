// Package stats measures tick and frame rates over loop clock time.
package stats

import (
	"fmt"
	"time"
)

// FrameSamples is the number of frame intervals averaged by FrameTime.
const FrameSamples = 30

// DefaultWindow is the period over which rates are counted.
const DefaultWindow = time.Second

// Meter counts ticks and frames. Rates are recomputed each time a full
// window of clock time has elapsed; the frame time is a rolling average of
// the last FrameSamples intervals between frames.
//
// Meter is not safe for concurrent use. Each loop owns its own Meter.
type Meter struct {
	window time.Duration

	started     bool
	windowStart time.Duration
	ticks       int
	frames      int
	tps         float64
	fps         float64

	samples   [FrameSamples]time.Duration
	sampleIdx int
	sampleN   int
	lastFrame time.Duration
	haveFrame bool

	totalTicks  uint64
	totalFrames uint64
}

// Snapshot is a copy of the meter readings.
type Snapshot struct {
	TPS       float64
	FPS       float64
	FrameTime time.Duration
	Ticks     uint64
	Frames    uint64
}

// NewMeter creates a meter with a one second window.
func NewMeter() *Meter {
	return NewMeterWindow(DefaultWindow)
}

// NewMeterWindow creates a meter with the given window. Non-positive
// windows fall back to DefaultWindow.
func NewMeterWindow(window time.Duration) *Meter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Meter{window: window}
}

// Tick records one simulation tick at loop time now.
func (m *Meter) Tick(now time.Duration) {
	m.roll(now)
	m.ticks++
	m.totalTicks++
}

// Frame records one render at loop time now.
func (m *Meter) Frame(now time.Duration) {
	m.roll(now)
	m.frames++
	m.totalFrames++

	if m.haveFrame {
		m.samples[m.sampleIdx] = now - m.lastFrame
		m.sampleIdx = (m.sampleIdx + 1) % FrameSamples
		if m.sampleN < FrameSamples {
			m.sampleN++
		}
	}
	m.lastFrame = now
	m.haveFrame = true
}

func (m *Meter) roll(now time.Duration) {
	if !m.started {
		m.started = true
		m.windowStart = now
		return
	}
	elapsed := now - m.windowStart
	if elapsed < m.window {
		return
	}
	secs := elapsed.Seconds()
	m.tps = float64(m.ticks) / secs
	m.fps = float64(m.frames) / secs
	m.ticks = 0
	m.frames = 0
	m.windowStart = now
}

// TPS returns ticks per second over the last completed window.
func (m *Meter) TPS() float64 { return m.tps }

// FPS returns frames per second over the last completed window.
func (m *Meter) FPS() float64 { return m.fps }

// FrameTime returns the average interval between recent frames.
func (m *Meter) FrameTime() time.Duration {
	if m.sampleN == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < m.sampleN; i++ {
		sum += m.samples[i]
	}
	return sum / time.Duration(m.sampleN)
}

// Snapshot returns the current readings.
func (m *Meter) Snapshot() Snapshot {
	return Snapshot{
		TPS:       m.tps,
		FPS:       m.fps,
		FrameTime: m.FrameTime(),
		Ticks:     m.totalTicks,
		Frames:    m.totalFrames,
	}
}

// Reset clears all readings.
func (m *Meter) Reset() {
	*m = Meter{window: m.window}
}

// String formats the readings for a status line.
func (s Snapshot) String() string {
	ms := float64(s.FrameTime) / float64(time.Millisecond)
	return fmt.Sprintf("%5.1f tps  %5.1f fps  %5.2f ms", s.TPS, s.FPS, ms)
}
