package orbit

import (
	"math"
	"testing"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/registry"
)

func newSim(t *testing.T, mutate func(c *config.OrbitConfig)) *Sim {
	t.Helper()
	s := New()
	demos := config.Default().Demos
	if mutate != nil {
		mutate(&demos.Orbit)
	}
	s.Configure(demos)
	s.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 3})
	return s
}

func TestRegistered(t *testing.T) {
	if !registry.Exists("orbit") {
		t.Fatal("orbit is not registered")
	}
}

func TestRevolutionsCounted(t *testing.T) {
	s := newSim(t, func(c *config.OrbitConfig) { c.BaseSpeed = 2 * math.Pi })

	for i := 0; i < 61; i++ {
		s.Step(core.NewInputFrame())
	}
	if got := s.State().Score; got != 1 {
		t.Errorf("Score = %d after one second at one revolution per second", got)
	}

	for i := 0; i < 120; i++ {
		s.Step(core.NewInputFrame())
	}
	if got := s.State().Score; got != 3 {
		t.Errorf("Score = %d, expected 3", got)
	}
}

func TestOuterBodiesAreSlower(t *testing.T) {
	s := newSim(t, nil)

	for i := 1; i < len(s.bodies); i++ {
		if s.bodies[i].speed >= s.bodies[i-1].speed {
			t.Errorf("body %d speed %v not below body %d speed %v", i, s.bodies[i].speed, i-1, s.bodies[i-1].speed)
		}
		if s.bodies[i].radius <= s.bodies[i-1].radius {
			t.Errorf("body %d radius %v not above body %d", i, s.bodies[i].radius, i-1)
		}
	}
}

func TestSpeedControls(t *testing.T) {
	s := newSim(t, nil)

	up := core.NewInputFrame()
	up.Set(core.ActionUp)
	before := s.bodies[0].angle
	s.Step(up)
	delta := s.bodies[0].angle - before

	want := s.cfg.BaseSpeed * s.cfg.SpeedStep / 60
	if math.Abs(delta-want) > 1e-12 {
		t.Errorf("angle delta = %v, expected %v", delta, want)
	}

	down := core.NewInputFrame()
	down.Set(core.ActionDown)
	s.Step(down)
	if math.Abs(s.Scale()-1) > 1e-12 {
		t.Errorf("Scale() = %v after up then down", s.Scale())
	}

	for i := 0; i < 100; i++ {
		s.Step(down)
	}
	if s.Scale() < minScale {
		t.Errorf("Scale() = %v fell below the minimum", s.Scale())
	}
}

func TestDeterministicForSeed(t *testing.T) {
	a := newSim(t, nil)
	b := newSim(t, nil)

	for i := 0; i < 200; i++ {
		a.Step(core.NewInputFrame())
		b.Step(core.NewInputFrame())
	}
	for i := range a.bodies {
		if a.bodies[i].angle != b.bodies[i].angle {
			t.Fatalf("body %d diverged", i)
		}
	}
}

func TestRenderInterpolates(t *testing.T) {
	s := newSim(t, func(c *config.OrbitConfig) { c.Bodies = 1 })
	s.bodies[0].prevAngle = 0
	s.bodies[0].angle = math.Pi

	tests := []struct {
		name  string
		alpha float64
		angle float64
	}{
		{name: "previous tick", alpha: 0, angle: 0},
		{name: "halfway", alpha: 0.5, angle: math.Pi / 2},
		{name: "current tick", alpha: 1, angle: math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := core.NewScreen(80, 24)
			s.Render(dst, tt.alpha)
			x, y := s.position(s.bodies[0].radius, tt.angle).Cell()
			if got := dst.Get(x, y); got != BodyChar {
				t.Errorf("cell (%d, %d) = %q, expected the body", x, y, got)
			}
		})
	}
}

func TestNoBodies(t *testing.T) {
	s := newSim(t, func(c *config.OrbitConfig) { c.Bodies = 0 })

	s.Step(core.NewInputFrame())
	s.Render(core.NewScreen(80, 24), 0.3)
	if s.State().Score != 0 {
		t.Errorf("Score = %d without bodies", s.State().Score)
	}
}
