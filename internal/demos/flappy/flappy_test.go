package flappy

import (
	"testing"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
	"github.com/vovakirdan/tickloop/internal/registry"
)

func newSim(t *testing.T, seed int64) *Sim {
	t.Helper()
	s := New()
	s.Configure(config.Default().Demos)
	s.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: seed})
	return s
}

func jump() core.InputFrame {
	in := core.NewInputFrame()
	in.Set(core.ActionJump)
	return in
}

func TestRegistered(t *testing.T) {
	if !registry.Exists("flappy") {
		t.Fatal("flappy is not registered")
	}
}

func TestDeterminism(t *testing.T) {
	a := newSim(t, 12345)
	b := newSim(t, 12345)

	// Jump every 15 ticks to try to stay airborne
	for i := 0; i < 300; i++ {
		in := core.NewInputFrame()
		if i%15 == 0 {
			in = jump()
		}
		a.Step(in)
		b.Step(in)
	}

	if a.y != b.y || a.score != b.score || a.crashed != b.crashed {
		t.Errorf("runs diverged: y %v/%v score %d/%d", a.y, b.y, a.score, b.score)
	}
	if len(a.pipes.list) != len(b.pipes.list) {
		t.Fatalf("pipe counts differ: %d vs %d", len(a.pipes.list), len(b.pipes.list))
	}
	for i := range a.pipes.list {
		if a.pipes.list[i] != b.pipes.list[i] {
			t.Errorf("pipe %d differs: %+v vs %+v", i, a.pipes.list[i], b.pipes.list[i])
		}
	}
}

func TestFallsToGround(t *testing.T) {
	s := newSim(t, 1)

	for i := 0; i < 120 && !s.crashed; i++ {
		s.Step(core.NewInputFrame())
	}

	if !s.State().Done {
		t.Fatal("bird should crash into the ground without input")
	}
	if want := float64(s.floor - PlayerHeight); s.y != want {
		t.Errorf("y = %v, expected to rest on the ground at %v", s.y, want)
	}
}

func TestJumpMovesUp(t *testing.T) {
	s := newSim(t, 1)
	start := s.y

	s.Step(jump())

	if s.vel >= 0 {
		t.Errorf("vel = %v after jump, expected upward", s.vel)
	}
	if s.y >= start {
		t.Errorf("y = %v, expected above %v", s.y, start)
	}
}

func TestCeilingCrash(t *testing.T) {
	s := newSim(t, 1)
	s.y = 0.1

	s.Step(jump())

	if !s.crashed || s.y != 0 {
		t.Errorf("crashed = %v y = %v, expected a crash at the top", s.crashed, s.y)
	}
}

func TestPassingPipeScores(t *testing.T) {
	s := newSim(t, 1)
	width := s.cfg.PipeWidth
	// Gap covers the whole field so the bird cannot hit it.
	s.pipes.list = []pipe{{prevX: float64(PlayerX - width), x: float64(PlayerX - width), gapY: 0, gapH: s.floor}}

	s.Step(core.NewInputFrame())

	if s.score != 1 {
		t.Errorf("score = %d, expected 1", s.score)
	}
	if s.crashed {
		t.Error("bird crashed inside the gap")
	}

	// Passed pipes only count once.
	s.Step(core.NewInputFrame())
	if s.score != 1 {
		t.Errorf("score = %d after a second tick, expected 1", s.score)
	}
}

func TestPipeCollision(t *testing.T) {
	s := newSim(t, 1)
	s.pipes.list = []pipe{{prevX: PlayerX, x: PlayerX, gapY: 2, gapH: 3}}

	s.Step(core.NewInputFrame())

	if !s.State().Done {
		t.Error("bird below the gap should hit the pipe")
	}
}

func TestCrashedSimIsFrozen(t *testing.T) {
	s := newSim(t, 1)
	for i := 0; i < 200 && !s.crashed; i++ {
		s.Step(core.NewInputFrame())
	}
	y, pipes := s.y, len(s.pipes.list)

	s.Step(jump())

	if s.y != y || len(s.pipes.list) != pipes {
		t.Error("crashed sim should not move")
	}
}

func TestResetClearsState(t *testing.T) {
	s := newSim(t, 42)
	for i := 0; i < 200; i++ {
		s.Step(core.NewInputFrame())
	}

	s.Reset(core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 43})

	if s.crashed || s.score != 0 || len(s.pipes.list) != 0 {
		t.Errorf("reset left crashed=%v score=%d pipes=%d", s.crashed, s.score, len(s.pipes.list))
	}
	if s.y != float64(s.floor)/2 {
		t.Errorf("y = %v, expected mid-screen", s.y)
	}
}

func TestSpawnKeepsGapOnScreen(t *testing.T) {
	s := newSim(t, 7)
	for i := 0; i < 50; i++ {
		s.pipes.spawn()
	}

	for i, p := range s.pipes.list {
		if p.gapH < s.cfg.MinGap || p.gapH > s.cfg.MaxGap {
			t.Errorf("pipe %d gap height %d outside [%d, %d]", i, p.gapH, s.cfg.MinGap, s.cfg.MaxGap)
		}
		if p.gapY < gapMargin || p.gapY+p.gapH > s.floor-gapMargin {
			t.Errorf("pipe %d gap rows [%d, %d) outside the field", i, p.gapY, p.gapY+p.gapH)
		}
	}
}

func TestRenderInterpolatesPipes(t *testing.T) {
	s := newSim(t, 1)
	s.pipes.list = []pipe{{prevX: 40, x: 30, gapY: 4, gapH: 6}}

	tests := []struct {
		name  string
		alpha float64
		x     int
	}{
		{name: "previous tick", alpha: 0, x: 40},
		{name: "halfway", alpha: 0.5, x: 35},
		{name: "current tick", alpha: 1, x: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := core.NewScreen(80, 24)
			s.Render(dst, tt.alpha)
			if got := dst.Get(tt.x, 1); got != PipeChar {
				t.Errorf("cell (%d, 1) = %q, expected pipe", tt.x, got)
			}
			if got := dst.Get(tt.x-1, 1); got == PipeChar {
				t.Errorf("cell (%d, 1) is pipe, expected the left edge at %d", tt.x-1, tt.x)
			}
		})
	}
}
