package term

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tickloop/internal/clock"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/loop"
	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/stats"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// Exit codes passed to loop.Exit by the host.
const (
	ExitQuit   = 0   // Quit key or deadline reached
	ExitHangup = 129 // Input closed or the session was cancelled
)

// Size is a terminal size in cells.
type Size struct {
	Width  int
	Height int
}

// SessionStore persists finished sessions.
type SessionStore interface {
	SaveSession(sess storage.Session) (string, error)
}

// Options configures a Host. Zero values are valid: no input, no output,
// wall clock, discarded logs.
type Options struct {
	Clock    clock.Source
	Input    <-chan []Key    // Decoded key presses, see PumpInput
	Resize   <-chan Size     // Window size changes
	Done     <-chan struct{} // Closed to stop the loop, usually ctx.Done()
	Output   io.Writer       // Nil renders headless
	Renderer *lipgloss.Renderer
	Logger   *log.Logger
	Meter    *stats.Meter
	Store    SessionStore
	KeyMap   *KeyMap

	Size     Size
	Seed     int64
	Deadline time.Duration // Loop clock at which to exit, 0 = none
	Mode     string        // Recorded with the session
	Preset   string
	HideHUD  bool
}

// Host drives a registry.Sim from a loop.GameLoop. It implements loop.Game.
type Host struct {
	sim    registry.Sim
	loop   *loop.GameLoop
	clock  clock.Source
	input  <-chan []Key
	resize <-chan Size
	done   <-chan struct{}
	out    io.Writer

	palette Palette
	keys    KeyMap
	logger  *log.Logger
	meter   *stats.Meter
	store   SessionStore

	rc        core.RuntimeConfig
	screen    *core.Screen
	frame     core.InputFrame
	state     core.SimState
	base      loop.Stats // Loop counters when the host was created
	deadline  time.Duration
	mode      string
	preset    string
	hideHUD   bool
	clearNext bool
	sessionID string
}

var _ loop.Game = (*Host)(nil)

// NewHost creates a host for sim driven by gl and resets the sim to the
// configured size.
func NewHost(sim registry.Sim, gl *loop.GameLoop, opts Options) *Host {
	h := &Host{
		sim:       sim,
		loop:      gl,
		clock:     opts.Clock,
		input:     opts.Input,
		resize:    opts.Resize,
		done:      opts.Done,
		out:       opts.Output,
		palette:   NewPalette(opts.Renderer),
		logger:    opts.Logger,
		meter:     opts.Meter,
		store:     opts.Store,
		frame:     core.NewInputFrame(),
		base:      gl.Snapshot(),
		deadline:  opts.Deadline,
		mode:      opts.Mode,
		preset:    opts.Preset,
		hideHUD:   opts.HideHUD,
		clearNext: true,
	}
	if h.clock == nil {
		h.clock = clock.NewWall()
	}
	if h.logger == nil {
		h.logger = log.New(io.Discard)
	}
	if h.meter == nil {
		h.meter = stats.NewMeter()
	}
	if opts.KeyMap != nil {
		h.keys = *opts.KeyMap
	} else {
		h.keys = DefaultKeyMap()
	}
	if h.mode == "" {
		h.mode = storage.ModeLocal
	}

	size := opts.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = Size{Width: 80, Height: 24}
	}
	h.rc = core.RuntimeConfig{
		ScreenW:  size.Width,
		ScreenH:  size.Height,
		TickRate: int(time.Second / gl.TickDuration()),
		Seed:     opts.Seed,
	}
	h.screen = core.NewScreen(size.Width, size.Height)
	h.sim.Reset(h.rc)
	h.state = h.sim.State()
	return h
}

// Now returns the host clock reading.
func (h *Host) Now() time.Duration {
	return h.clock.Now()
}

// Sleep blocks on the host clock.
func (h *Host) Sleep(d time.Duration) {
	h.clock.Sleep(d)
}

// HandleInputEvents drains pending input without blocking.
func (h *Host) HandleInputEvents() error {
	if h.deadline > 0 && h.loop.Clock() >= h.deadline {
		h.loop.Exit(ExitQuit)
		return nil
	}

	for {
		select {
		case <-h.done:
			h.loop.Exit(ExitHangup)
			return nil
		case keys, ok := <-h.input:
			if !ok {
				h.input = nil
				h.loop.Exit(ExitHangup)
				return nil
			}
			if h.handleKeys(keys) {
				return nil
			}
		case size := <-h.resize:
			h.applyResize(size)
		default:
			return nil
		}
	}
}

// handleKeys applies decoded keys and reports whether exit was requested.
func (h *Host) handleKeys(keys []Key) bool {
	for _, k := range keys {
		switch a := h.keys.Action(k); a {
		case core.ActionNone:
		case core.ActionQuit:
			h.loop.Exit(ExitQuit)
			return true
		case core.ActionPause:
			h.loop.Pause(!h.loop.Paused())
			h.frame.Clear()
			h.logger.Debug("pause toggled", "paused", h.loop.Paused())
		case core.ActionRestart:
			h.restart()
		default:
			h.frame.Set(a)
		}
	}
	return false
}

func (h *Host) restart() {
	h.rc.Seed++
	h.sim.Reset(h.rc)
	h.state = h.sim.State()
	h.frame.Clear()
	h.logger.Debug("sim restarted", "sim", h.sim.ID(), "seed", h.rc.Seed)
}

func (h *Host) applyResize(size Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	if size.Width == h.rc.ScreenW && size.Height == h.rc.ScreenH {
		return
	}
	h.rc.ScreenW = size.Width
	h.rc.ScreenH = size.Height
	h.screen.Resize(size.Width, size.Height)
	h.sim.Reset(h.rc)
	h.state = h.sim.State()
	h.clearNext = true
	h.logger.Debug("screen resized", "width", size.Width, "height", size.Height)
}

// Tick steps the sim with the input collected since the last tick.
func (h *Host) Tick() error {
	res := h.sim.Step(h.frame)
	h.state = res.State
	h.frame.Clear()
	h.meter.Tick(h.loop.Clock())
	return nil
}

// Render draws the sim and the status line and writes the frame.
func (h *Host) Render(alpha float64) error {
	h.screen.Clear()
	h.sim.Render(h.screen, alpha)
	if !h.hideHUD {
		h.drawHUD()
	}
	h.meter.Frame(h.loop.Clock())

	if h.out == nil {
		return nil
	}
	var sb strings.Builder
	if h.clearNext {
		sb.WriteString(clearScreen)
		h.clearNext = false
	}
	sb.WriteString(cursorHome)
	sb.WriteString(h.palette.RenderScreen(h.screen))
	if _, err := io.WriteString(h.out, sb.String()); err != nil {
		return fmt.Errorf("term: write frame: %w", err)
	}
	return nil
}

func (h *Host) drawHUD() {
	y := h.screen.Height() - 1
	status := fmt.Sprintf(" %s  score %d  %s  tick %d",
		h.sim.Title(), h.state.Score, h.meter.Snapshot(), h.loop.TickID()-h.base.TickID)
	h.screen.DrawText(0, y, status, core.ColorGray)

	var help []string
	for _, b := range h.keys.ShortHelp() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	hint := strings.Join(help, "  ") + " "
	h.screen.DrawText(h.screen.Width()-len([]rune(hint)), y, hint, core.ColorGray)

	if h.loop.Paused() {
		h.screen.DrawTextCentered(h.screen.Height()/2, " PAUSED ", core.ColorYellow)
	}
}

// AtExit logs the session and stores it when a store is configured.
func (h *Host) AtExit(exitCode int) {
	sess := h.Session(exitCode)
	h.logger.Info("session finished",
		"sim", sess.SimID,
		"exit_code", exitCode,
		"ticks", sess.Ticks,
		"frames", sess.Frames,
		"sim_time", sess.SimTime,
		"wall_time", sess.WallTime,
		"tps", h.meter.TPS(),
		"fps", h.meter.FPS(),
	)
	if h.store == nil {
		return
	}
	id, err := h.store.SaveSession(sess)
	if err != nil {
		h.logger.Warn("could not save session", "error", err)
		return
	}
	h.sessionID = id
}

// Session returns the record of this host's run so far.
func (h *Host) Session(exitCode int) storage.Session {
	snap := h.loop.Snapshot()
	return storage.Session{
		SimID:    h.sim.ID(),
		Mode:     h.mode,
		Preset:   h.preset,
		ExitCode: exitCode,
		Ticks:    snap.TickID - h.base.TickID,
		Frames:   snap.FrameID - h.base.FrameID,
		SimTime:  snap.TickTime - h.base.TickTime,
		WallTime: snap.Clock - h.base.Clock,
		Score:    h.state.Score,
	}
}

// SessionID returns the id of the stored session, empty until AtExit
// saved one.
func (h *Host) SessionID() string {
	return h.sessionID
}

// Screen returns the frame buffer.
func (h *Host) Screen() *core.Screen {
	return h.screen
}

// Meter returns the rate meter.
func (h *Host) Meter() *stats.Meter {
	return h.meter
}
