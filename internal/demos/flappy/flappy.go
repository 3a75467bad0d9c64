// Package flappy implements a bird steering through gaps in scrolling
// pipes. The bird only moves vertically and the pipes scroll at a constant
// speed, so both are interpolated between ticks.
package flappy

import (
	"fmt"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/registry"
)

// Player hitbox, in cells
const (
	PlayerX      = 10
	PlayerWidth  = 2
	PlayerHeight = 1
)

// Visual characters for rendering
const (
	PlayerChar    = '▶'
	PipeChar      = '█'
	PipeCapTop    = '▄'
	PipeCapBottom = '▀'
	GroundChar    = '═'
)

// Sim implements the pipe dodging simulation.
type Sim struct {
	cfg     config.FlappyConfig
	rc      core.RuntimeConfig
	dt      float64
	floor   int // Row of the ground line
	prevY   float64
	y       float64 // Top of the hitbox
	vel     float64 // Cells per second, negative is up
	pipes   *pipeSet
	score   int
	crashed bool
}

// New creates a flappy sim with the default settings.
func New() *Sim {
	return &Sim{cfg: config.Default().Demos.Flappy}
}

func init() {
	registry.Register("flappy", func() registry.Sim { return New() })
}

// ID returns the unique identifier for this sim.
func (s *Sim) ID() string {
	return "flappy"
}

// Title returns the display name for this sim.
func (s *Sim) Title() string {
	return "Flappy Bird"
}

// Configure applies the flappy section of the demo settings.
func (s *Sim) Configure(cfg config.Demos) {
	s.cfg = cfg.Flappy
}

// Reset puts the bird mid-screen and clears the pipes.
func (s *Sim) Reset(rc core.RuntimeConfig) {
	s.rc = rc
	s.dt = rc.TickSeconds()
	if s.dt == 0 {
		s.dt = 1.0 / 60
	}
	// Last row belongs to the host status line, the one above is ground.
	s.floor = max(rc.ScreenH-2, 1)
	s.y = float64(s.floor) / 2
	s.prevY = s.y
	s.vel = 0
	s.score = 0
	s.crashed = false
	s.pipes = newPipeSet(s.cfg, rc.Seed, rc.ScreenW, s.floor)
}

// Step advances the bird and the pipes by one tick.
func (s *Sim) Step(in core.InputFrame) core.StepResult {
	if s.crashed {
		s.prevY = s.y
		return core.StepResult{State: s.State()}
	}

	s.prevY = s.y
	if in.Has(core.ActionJump) || in.Has(core.ActionUp) {
		s.vel = -s.cfg.Flap
	}
	s.vel += s.cfg.Gravity * s.dt
	if s.vel > s.cfg.MaxFall {
		s.vel = s.cfg.MaxFall
	}
	s.y += s.vel * s.dt

	s.score += s.pipes.update(s.cfg.PipeSpeed*s.dt, PlayerX)

	switch {
	case s.y < 0:
		s.y = 0
		s.crashed = true
	case int(s.y)+PlayerHeight > s.floor:
		s.y = float64(s.floor - PlayerHeight)
		s.crashed = true
	case s.pipes.collides(s.playerRect()):
		s.crashed = true
	}

	return core.StepResult{State: s.State()}
}

func (s *Sim) playerRect() core.Rect {
	return core.NewRect(PlayerX, int(s.y), PlayerWidth, PlayerHeight)
}

// Render draws the ground, the pipes and the bird blended by alpha.
func (s *Sim) Render(dst *core.Screen, alpha float64) {
	for x := 0; x < dst.Width(); x++ {
		dst.SetColor(x, s.floor, GroundChar, core.ColorGreen)
	}

	for _, p := range s.pipes.list {
		s.drawPipe(dst, p, cellX(core.LerpF(p.prevX, p.x, alpha)))
	}

	y := int(core.LerpF(s.prevY, s.y, alpha))
	dst.SetColor(PlayerX, y, '●', core.ColorYellow)
	dst.SetColor(PlayerX+1, y, PlayerChar, core.ColorYellow)

	dst.DrawText(2, 0, fmt.Sprintf(" Score: %d ", s.score), core.ColorWhite)

	if s.crashed {
		s.drawMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  Press R to restart", s.score))
	}
}

func (s *Sim) drawPipe(dst *core.Screen, p pipe, x int) {
	top, bottom := p.rects(x, s.cfg.PipeWidth, s.floor)
	for dx := 0; dx < top.W; dx++ {
		for y := top.Y; y < top.Bottom(); y++ {
			dst.SetColor(x+dx, y, PipeChar, core.ColorGreen)
		}
		if top.H > 0 {
			dst.SetColor(x+dx, top.Bottom()-1, PipeCapTop, core.ColorGreen)
		}
		for y := bottom.Y; y < bottom.Bottom(); y++ {
			dst.SetColor(x+dx, y, PipeChar, core.ColorGreen)
		}
		if bottom.H > 0 {
			dst.SetColor(x+dx, bottom.Y, PipeCapBottom, core.ColorGreen)
		}
	}
}

// drawMessage draws a message box in the center of the screen.
func (s *Sim) drawMessage(dst *core.Screen, title, subtitle string) {
	boxW := max(len(title), len(subtitle)) + 4
	boxH := 5
	box := core.NewRect((dst.Width()-boxW)/2, (dst.Height()-boxH)/2, boxW, boxH)

	for y := box.Y; y < box.Bottom(); y++ {
		for x := box.X; x < box.Right(); x++ {
			dst.Set(x, y, ' ')
		}
	}
	dst.DrawBox(box, core.ColorWhite)
	dst.DrawTextCentered(box.Y+1, title, core.ColorRed)
	dst.DrawTextCentered(box.Y+3, subtitle, core.ColorWhite)
}

// State returns the current sim state. A crashed bird is done until the
// host restarts it.
func (s *Sim) State() core.SimState {
	return core.SimState{Score: s.score, Done: s.crashed}
}
