// Package bounce implements balls bouncing under gravity inside a box.
// Positions are kept for the previous and the current tick so frames can be
// drawn between ticks.
package bounce

import (
	"math/rand"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/registry"
)

// Visual characters for rendering
const (
	BallChar  = '●'
	FloorChar = '▀'
)

// restSpeed is the impact speed below which a ball settles on the floor
// instead of bouncing.
const restSpeed = 1.0

type ball struct {
	prev  core.Vec2
	pos   core.Vec2
	vel   core.Vec2 // Cells per second
	color core.Color
}

// Sim implements the bouncing balls simulation.
type Sim struct {
	cfg   config.BounceConfig
	rc    core.RuntimeConfig
	field core.Rect // Outer box, interior is one cell smaller on each side
	balls []ball
	rng   *rand.Rand
	dt    float64
	score int // Floor bounces
}

// New creates a bounce sim with the default settings.
func New() *Sim {
	return &Sim{cfg: config.Default().Demos.Bounce}
}

func init() {
	registry.Register("bounce", func() registry.Sim { return New() })
}

// ID returns the unique identifier for this sim.
func (s *Sim) ID() string {
	return "bounce"
}

// Title returns the display name for this sim.
func (s *Sim) Title() string {
	return "Bouncing Balls"
}

// Configure applies the bounce section of the demo settings.
func (s *Sim) Configure(cfg config.Demos) {
	s.cfg = cfg.Bounce
}

// Reset places the balls at seeded random positions.
func (s *Sim) Reset(rc core.RuntimeConfig) {
	s.rc = rc
	s.dt = rc.TickSeconds()
	if s.dt == 0 {
		s.dt = 1.0 / 60
	}
	// Last row belongs to the host status line.
	s.field = core.NewRect(0, 0, rc.ScreenW, max(rc.ScreenH-1, 0))
	s.rng = rand.New(rand.NewSource(rc.Seed))
	s.score = 0

	minX, maxX, minY, maxY := s.bounds()
	s.balls = make([]ball, s.cfg.Balls)
	for i := range s.balls {
		pos := core.V2(
			core.LerpF(minX, maxX, s.rng.Float64()),
			core.LerpF(minY, (minY+maxY)/2, s.rng.Float64()),
		)
		vx := (s.rng.Float64()*2 - 1) * s.cfg.MaxSpeed / 2
		s.balls[i] = ball{
			prev:  pos,
			pos:   pos,
			vel:   core.V2(vx, 0),
			color: core.PaletteColor(i),
		}
	}
}

// bounds returns the interior limits for ball centres.
func (s *Sim) bounds() (minX, maxX, minY, maxY float64) {
	minX = float64(s.field.X + 1)
	maxX = float64(s.field.Right() - 2)
	minY = float64(s.field.Y + 1)
	maxY = float64(s.field.Bottom() - 2)
	if maxX < minX {
		maxX = minX
	}
	if maxY < minY {
		maxY = minY
	}
	return minX, maxX, minY, maxY
}

// Step advances every ball by one tick.
func (s *Sim) Step(in core.InputFrame) core.StepResult {
	var impulse core.Vec2
	if in.Has(core.ActionJump) || in.Has(core.ActionUp) {
		impulse.Y -= s.cfg.Kick
	}
	if in.Has(core.ActionLeft) {
		impulse.X -= s.cfg.Push
	}
	if in.Has(core.ActionRight) {
		impulse.X += s.cfg.Push
	}

	minX, maxX, minY, maxY := s.bounds()
	for i := range s.balls {
		b := &s.balls[i]
		b.prev = b.pos

		b.vel = b.vel.Add(impulse)
		b.vel.Y += s.cfg.Gravity * s.dt
		b.vel.X = core.ClampF(b.vel.X, -s.cfg.MaxSpeed, s.cfg.MaxSpeed)
		b.vel.Y = core.ClampF(b.vel.Y, -s.cfg.MaxSpeed, s.cfg.MaxSpeed)

		b.pos = b.pos.Add(b.vel.Scale(s.dt))

		if b.pos.X < minX {
			b.pos.X = minX + (minX - b.pos.X)
			b.vel.X = -b.vel.X * s.cfg.Restitution
		} else if b.pos.X > maxX {
			b.pos.X = maxX - (b.pos.X - maxX)
			b.vel.X = -b.vel.X * s.cfg.Restitution
		}
		if b.pos.Y < minY {
			b.pos.Y = minY + (minY - b.pos.Y)
			b.vel.Y = -b.vel.Y * s.cfg.Restitution
		} else if b.pos.Y > maxY {
			if b.vel.Y > restSpeed {
				b.pos.Y = maxY - (b.pos.Y - maxY)
				b.vel.Y = -b.vel.Y * s.cfg.Restitution
				s.score++
			} else {
				b.pos.Y = maxY
				b.vel.Y = 0
			}
		}
		b.pos.X = core.ClampF(b.pos.X, minX, maxX)
		b.pos.Y = core.ClampF(b.pos.Y, minY, maxY)
	}

	return core.StepResult{State: s.State()}
}

// Render draws the box and the balls blended between ticks by alpha.
func (s *Sim) Render(dst *core.Screen, alpha float64) {
	dst.DrawBox(s.field, core.ColorGray)
	for x := s.field.X + 1; x < s.field.Right()-1; x++ {
		dst.SetColor(x, s.field.Bottom()-1, FloorChar, core.ColorGray)
	}
	dst.DrawText(s.field.X+2, s.field.Y, " "+s.Title()+" ", core.ColorWhite)

	for _, b := range s.balls {
		x, y := core.Lerp(b.prev, b.pos, alpha).Cell()
		dst.SetColor(x, y, BallChar, b.color)
	}
}

// State returns the current sim state.
func (s *Sim) State() core.SimState {
	return core.SimState{Score: s.score}
}
