// Package orbit implements bodies circling the centre of the screen.
package orbit

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/registry"
)

const (
	SunChar  = '✶'
	BodyChar = 'o'
	RingChar = '·'
)

// Bounds of the speed multiplier changed by Up/Down.
const (
	minScale = 1.0 / 64
	maxScale = 64.0
)

type body struct {
	radius    float64 // Rows
	speed     float64 // Radians per second at scale 1
	prevAngle float64
	angle     float64 // Unwrapped, grows without bound
	color     core.Color
}

// Sim implements the orbiting bodies simulation.
type Sim struct {
	cfg        config.OrbitConfig
	center     core.Vec2
	bodies     []body
	scale      float64
	dt         float64
	startAngle float64 // Initial angle of the innermost body
}

// New creates an orbit sim with the default settings.
func New() *Sim {
	return &Sim{cfg: config.Default().Demos.Orbit}
}

func init() {
	registry.Register("orbit", func() registry.Sim { return New() })
}

// ID returns the unique identifier for this sim.
func (s *Sim) ID() string {
	return "orbit"
}

// Title returns the display name for this sim.
func (s *Sim) Title() string {
	return "Orbits"
}

// Configure applies the orbit section of the demo settings.
func (s *Sim) Configure(cfg config.Demos) {
	s.cfg = cfg.Orbit
}

// Reset lays the bodies out on evenly spaced orbits with seeded phases.
// Angular speed falls off with radius^1.5 as in Kepler's third law.
func (s *Sim) Reset(rc core.RuntimeConfig) {
	s.dt = rc.TickSeconds()
	if s.dt == 0 {
		s.dt = 1.0 / 60
	}
	s.scale = 1

	aspect := s.cfg.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	rows := max(rc.ScreenH-1, 0)
	s.center = core.V2(float64(rc.ScreenW-1)/2, float64(rows-1)/2)
	maxR := math.Min(float64(rows-1)/2-1, (float64(rc.ScreenW-1)/2-1)/aspect)
	maxR = math.Max(maxR, 1)

	rng := rand.New(rand.NewSource(rc.Seed))
	n := s.cfg.Bodies
	s.bodies = make([]body, n)
	for i := range s.bodies {
		r := maxR * float64(i+1) / float64(n)
		phase := rng.Float64() * 2 * math.Pi
		s.bodies[i] = body{
			radius:    r,
			speed:     s.cfg.BaseSpeed / math.Pow(float64(i+1), 1.5),
			prevAngle: phase,
			angle:     phase,
			color:     core.PaletteColor(i),
		}
	}
	if n > 0 {
		s.startAngle = s.bodies[0].angle
	}
}

// Step advances every body by one tick.
func (s *Sim) Step(in core.InputFrame) core.StepResult {
	if in.Has(core.ActionUp) {
		s.scale = math.Min(s.scale*s.cfg.SpeedStep, maxScale)
	}
	if in.Has(core.ActionDown) {
		s.scale = math.Max(s.scale/s.cfg.SpeedStep, minScale)
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		b.prevAngle = b.angle
		b.angle += b.speed * s.scale * s.dt
	}

	return core.StepResult{State: s.State()}
}

// position maps an orbit angle to screen coordinates.
func (s *Sim) position(radius, angle float64) core.Vec2 {
	aspect := s.cfg.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return core.V2(
		s.center.X+math.Cos(angle)*radius*aspect,
		s.center.Y+math.Sin(angle)*radius,
	)
}

// Render draws the rings and the bodies blended between ticks by alpha.
func (s *Sim) Render(dst *core.Screen, alpha float64) {
	for _, b := range s.bodies {
		steps := int(b.radius * 8)
		for k := 0; k < steps; k++ {
			x, y := s.position(b.radius, 2*math.Pi*float64(k)/float64(steps)).Cell()
			dst.SetColor(x, y, RingChar, core.ColorGray)
		}
	}

	cx, cy := s.center.Cell()
	dst.SetColor(cx, cy, SunChar, core.ColorYellow)

	for _, b := range s.bodies {
		x, y := s.position(b.radius, core.LerpF(b.prevAngle, b.angle, alpha)).Cell()
		dst.SetColor(x, y, BodyChar, b.color)
	}
}

// Scale returns the current speed multiplier.
func (s *Sim) Scale() float64 {
	return s.scale
}

// State returns the current sim state. Score counts completed revolutions
// of the innermost body.
func (s *Sim) State() core.SimState {
	if len(s.bodies) == 0 {
		return core.SimState{}
	}
	revs := (s.bodies[0].angle - s.startAngle) / (2 * math.Pi)
	return core.SimState{Score: int(math.Floor(revs))}
}
