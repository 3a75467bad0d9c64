package flappy

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
)

// Rows kept clear above and below every gap.
const gapMargin = 2

// pipe is a vertical obstacle with a gap. x is fractional so slow pipes
// still move smoothly between ticks.
type pipe struct {
	prevX  float64
	x      float64
	gapY   int // First row of the gap
	gapH   int
	passed bool
}

// rects returns the top and bottom collision boxes at column x.
func (p pipe) rects(x, width, floor int) (top, bottom core.Rect) {
	bottomY := p.gapY + p.gapH
	return core.NewRect(x, 0, width, p.gapY), core.NewRect(x, bottomY, width, floor-bottomY)
}

// pipeSet spawns, scrolls and retires pipes.
type pipeSet struct {
	cfg     config.FlappyConfig
	rng     *rand.Rand
	screenW int
	floor   int // Row of the ground line
	list    []pipe
}

func newPipeSet(cfg config.FlappyConfig, seed int64, screenW, floor int) *pipeSet {
	return &pipeSet{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		screenW: screenW,
		floor:   floor,
		list:    make([]pipe, 0, 8),
	}
}

// update scrolls every pipe left by dx cells and returns how many pipes
// moved fully past playerX.
func (ps *pipeSet) update(dx float64, playerX int) int {
	passed := 0
	width := float64(ps.cfg.PipeWidth)

	for i := range ps.list {
		p := &ps.list[i]
		p.prevX = p.x
		p.x -= dx
		if !p.passed && p.x+width < float64(playerX) {
			p.passed = true
			passed++
		}
	}

	// Remove pipes that have moved off the left side
	kept := ps.list[:0]
	for _, p := range ps.list {
		if p.x+width > 0 {
			kept = append(kept, p)
		}
	}
	ps.list = kept

	if len(ps.list) == 0 || ps.list[len(ps.list)-1].x < float64(ps.screenW-ps.cfg.PipeSpacing) {
		ps.spawn()
	}
	return passed
}

// spawn adds a pipe at the right edge with a seeded gap.
func (ps *pipeSet) spawn() {
	gapH := ps.cfg.MinGap
	if r := ps.cfg.MaxGap - ps.cfg.MinGap; r > 0 {
		gapH += ps.rng.Intn(r + 1)
	}

	minY := gapMargin
	maxY := ps.floor - gapMargin - gapH
	if maxY < minY {
		maxY = minY // Edge case for very small screens
	}
	gapY := minY
	if maxY > minY {
		gapY += ps.rng.Intn(maxY - minY + 1)
	}

	x := float64(ps.screenW)
	ps.list = append(ps.list, pipe{prevX: x, x: x, gapY: gapY, gapH: gapH})
}

// collides reports whether r overlaps any pipe at its current position.
func (ps *pipeSet) collides(r core.Rect) bool {
	for _, p := range ps.list {
		top, bottom := p.rects(cellX(p.x), ps.cfg.PipeWidth, ps.floor)
		if r.Intersects(top) || r.Intersects(bottom) {
			return true
		}
	}
	return false
}

func cellX(x float64) int {
	return int(math.Floor(x))
}
