package core

// RuntimeConfig is passed to a sim when it is reset.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in cells
	ScreenH  int   // Screen height in cells
	TickRate int   // Simulation ticks per second
	Seed     int64 // RNG seed, 0 means the host picks one
}

// DefaultConfig returns a RuntimeConfig for an 80x24 terminal at 60 ticks.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// TickSeconds returns the length of one tick in seconds.
func (c RuntimeConfig) TickSeconds() float64 {
	if c.TickRate <= 0 {
		return 0
	}
	return 1 / float64(c.TickRate)
}

// SimState is the status a sim reports to its host.
type SimState struct {
	Score int  // Sim specific counter (bounces, revolutions)
	Done  bool // The sim has nothing more to simulate
}

// StepResult is returned by Sim.Step after each tick.
type StepResult struct {
	State SimState
}
