package term

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tickloop/internal/clock"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/loop"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// stubSim records what the host feeds it.
type stubSim struct {
	resets  int
	steps   int
	inputs  []core.InputFrame
	alphas  []float64
	lastCfg core.RuntimeConfig
}

func (s *stubSim) ID() string { return "stub" }

func (s *stubSim) Title() string { return "Stub" }

func (s *stubSim) Reset(cfg core.RuntimeConfig) {
	s.resets++
	s.steps = 0
	s.lastCfg = cfg
}

func (s *stubSim) Step(in core.InputFrame) core.StepResult {
	s.steps++
	s.inputs = append(s.inputs, in.Clone())
	return core.StepResult{State: s.State()}
}

func (s *stubSim) Render(dst *core.Screen, alpha float64) {
	s.alphas = append(s.alphas, alpha)
	dst.DrawText(0, 0, "STUB", core.ColorGreen)
}

func (s *stubSim) State() core.SimState { return core.SimState{Score: s.steps} }

type memStore struct {
	saved []storage.Session
	err   error
}

func (m *memStore) SaveSession(sess storage.Session) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, sess)
	return "id-1", nil
}

func newTestHost(sim *stubSim, opts Options) (*Host, *loop.GameLoop, *clock.Manual) {
	c := clock.NewManual(0)
	gl := loop.New(60, 5, 30)
	opts.Clock = c
	if opts.Size == (Size{}) {
		opts.Size = Size{Width: 60, Height: 10}
	}
	return NewHost(sim, gl, opts), gl, c
}

// queueKeys queues each batch of space separated key names.
func queueKeys(batches ...string) chan []Key {
	ch := make(chan []Key, len(batches)+1)
	for _, b := range batches {
		var keys []Key
		for _, name := range strings.Fields(b) {
			keys = append(keys, Key(name))
		}
		ch <- keys
	}
	return ch
}

func TestHostQuitKey(t *testing.T) {
	sim := &stubSim{}
	store := &memStore{}
	h, gl, _ := newTestHost(sim, Options{Input: queueKeys("q"), Store: store})

	code, err := gl.Run(h)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if code != ExitQuit {
		t.Errorf("exit code = %d, expected %d", code, ExitQuit)
	}
	if sim.steps != 0 || gl.FrameID() != 0 {
		t.Errorf("quit before the first tick ran %d steps, %d frames", sim.steps, gl.FrameID())
	}
	if len(store.saved) != 1 || h.SessionID() != "id-1" {
		t.Fatalf("session not saved: %+v", store.saved)
	}
	if store.saved[0].SimID != "stub" || store.saved[0].Mode != storage.ModeLocal {
		t.Errorf("unexpected session %+v", store.saved[0])
	}
}

func TestHostDeadline(t *testing.T) {
	sim := &stubSim{}
	store := &memStore{}
	h, gl, _ := newTestHost(sim, Options{
		Deadline: time.Second,
		Store:    store,
		Mode:     storage.ModeBench,
		Preset:   "smooth",
	})

	code, err := gl.Run(h)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if code != ExitQuit {
		t.Errorf("exit code = %d", code)
	}

	// Ticks are due at 0, d, ..., 60d; 61d is past one second.
	if gl.TickID() != 61 || sim.steps != 61 {
		t.Errorf("TickID() = %d, steps = %d, expected 61", gl.TickID(), sim.steps)
	}
	if h.Meter().Snapshot().Ticks != 61 {
		t.Errorf("meter counted %d ticks", h.Meter().Snapshot().Ticks)
	}

	sess := store.saved[0]
	if sess.Mode != storage.ModeBench || sess.Preset != "smooth" || sess.Ticks != 61 {
		t.Errorf("unexpected session %+v", sess)
	}
	if sess.SimTime != 61*gl.TickDuration() {
		t.Errorf("SimTime = %v", sess.SimTime)
	}
	if sess.Score != 61 {
		t.Errorf("Score = %d, expected the sim state", sess.Score)
	}
}

func TestHostForwardsActions(t *testing.T) {
	sim := &stubSim{}
	h, gl, _ := newTestHost(sim, Options{Input: queueKeys("space right"), Deadline: 50 * time.Millisecond})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if len(sim.inputs) < 2 {
		t.Fatalf("expected several steps, got %d", len(sim.inputs))
	}
	first := sim.inputs[0]
	if !first.Has(core.ActionJump) || !first.Has(core.ActionRight) {
		t.Errorf("first step input = %v", first.Actions)
	}
	if !sim.inputs[1].Empty() {
		t.Errorf("input leaked into the second step: %v", sim.inputs[1].Actions)
	}
}

func TestHostPauseKey(t *testing.T) {
	sim := &stubSim{}
	var out bytes.Buffer
	h, gl, _ := newTestHost(sim, Options{
		Input:    queueKeys("p"),
		Deadline: 100 * time.Millisecond,
		Output:   &out,
		Renderer: lipgloss.NewRenderer(io.Discard),
	})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if sim.steps != 0 {
		t.Errorf("paused sim stepped %d times", sim.steps)
	}
	if gl.FrameID() == 0 {
		t.Error("rendering should continue while paused")
	}
	if !strings.Contains(out.String(), "PAUSED") {
		t.Error("paused frame is missing the PAUSED banner")
	}
	for _, a := range sim.alphas {
		if a != 0 {
			t.Fatalf("paused render got alpha %v", a)
		}
	}
}

func TestHostRestartKey(t *testing.T) {
	sim := &stubSim{}
	h, gl, _ := newTestHost(sim, Options{Input: queueKeys("r", "q"), Seed: 10})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if sim.resets != 2 {
		t.Errorf("resets = %d, expected construction plus restart", sim.resets)
	}
	if sim.lastCfg.Seed != 11 {
		t.Errorf("restart seed = %d, expected 11", sim.lastCfg.Seed)
	}
}

func TestHostInputClosed(t *testing.T) {
	sim := &stubSim{}
	ch := queueKeys()
	close(ch)
	h, gl, _ := newTestHost(sim, Options{Input: ch})

	code, err := gl.Run(h)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if code != ExitHangup {
		t.Errorf("exit code = %d, expected %d", code, ExitHangup)
	}
}

func TestHostDone(t *testing.T) {
	sim := &stubSim{}
	done := make(chan struct{})
	close(done)
	h, gl, _ := newTestHost(sim, Options{Done: done})

	code, _ := gl.Run(h)
	if code != ExitHangup {
		t.Errorf("exit code = %d, expected %d", code, ExitHangup)
	}
}

func TestHostResize(t *testing.T) {
	sim := &stubSim{}
	resize := make(chan Size, 2)
	resize <- Size{Width: 40, Height: 12}
	resize <- Size{Width: 0, Height: 5}
	h, gl, _ := newTestHost(sim, Options{Resize: resize, Deadline: 20 * time.Millisecond})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if h.Screen().Width() != 40 || h.Screen().Height() != 12 {
		t.Errorf("screen = %dx%d, expected 40x12", h.Screen().Width(), h.Screen().Height())
	}
	if sim.lastCfg.ScreenW != 40 || sim.resets != 2 {
		t.Errorf("sim not reset for the new size: %+v, resets %d", sim.lastCfg, sim.resets)
	}
}

func TestHostRenderOutput(t *testing.T) {
	sim := &stubSim{}
	var out bytes.Buffer
	h, gl, _ := newTestHost(sim, Options{
		Deadline: 40 * time.Millisecond,
		Output:   &out,
		Renderer: lipgloss.NewRenderer(io.Discard),
	})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	s := out.String()
	if !strings.HasPrefix(s, clearScreen+cursorHome) {
		t.Errorf("first frame should clear and home the cursor, got %q", s[:min(len(s), 16)])
	}
	if strings.Count(s, cursorHome) != int(gl.FrameID()) {
		t.Errorf("%d frames rendered, %d written", gl.FrameID(), strings.Count(s, cursorHome))
	}
	if strings.Count(s, clearScreen) != 1 {
		t.Error("screen should only be cleared once")
	}
	if !strings.Contains(s, "STUB") || !strings.Contains(s, "q quit") {
		t.Error("frame is missing the sim or the status line")
	}
}

func TestHostHideHUD(t *testing.T) {
	sim := &stubSim{}
	h, gl, _ := newTestHost(sim, Options{Deadline: 20 * time.Millisecond, HideHUD: true})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if row := h.Screen().Row(h.Screen().Height() - 1); strings.TrimSpace(row) != "" {
		t.Errorf("status line drawn with HideHUD: %q", row)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestHostWriteErrorStopsLoop(t *testing.T) {
	sim := &stubSim{}
	store := &memStore{}
	h, gl, _ := newTestHost(sim, Options{Output: failWriter{}, Store: store})

	_, err := gl.Run(h)
	if err == nil {
		t.Fatal("Run() should return the write error")
	}
	if len(store.saved) != 0 {
		t.Error("AtExit should not run when the loop fails")
	}
}

func TestHostStoreErrorIsLogged(t *testing.T) {
	sim := &stubSim{}
	store := &memStore{err: errors.New("disk full")}
	h, gl, _ := newTestHost(sim, Options{Input: queueKeys("q"), Store: store})

	if _, err := gl.Run(h); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if h.SessionID() != "" {
		t.Errorf("SessionID() = %q after a failed save", h.SessionID())
	}
}

func TestHostDefaults(t *testing.T) {
	sim := &stubSim{}
	gl := loop.New(30, 5, 0)
	h := NewHost(sim, gl, Options{})

	if h.Screen().Width() != 80 || h.Screen().Height() != 24 {
		t.Errorf("default screen = %dx%d", h.Screen().Width(), h.Screen().Height())
	}
	if sim.lastCfg.TickRate != 30 {
		t.Errorf("TickRate = %d, expected 30", sim.lastCfg.TickRate)
	}
	if h.Now() < 0 {
		t.Error("wall clock went negative")
	}
}

func TestEnterLeaveScreen(t *testing.T) {
	var buf bytes.Buffer
	if err := EnterScreen(&buf); err != nil {
		t.Fatal(err)
	}
	if err := LeaveScreen(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != enterAlt+clearScreen+leaveAlt {
		t.Errorf("unexpected sequences %q", buf.String())
	}
}
