// Package registry provides a global registry for sim factories.
// Sims register themselves in init() functions, allowing hosts to discover
// and instantiate them without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/core"
)

// Sim is a fixed-step simulation driven by a host through the game loop.
// Sims contain pure logic with no terminal or timing dependencies; the
// host maps input, calls Step once per tick and Render once per frame.
type Sim interface {
	// ID returns a unique identifier for this sim (e.g., "bounce").
	// Used for CLI commands and session storage.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or resets the sim state.
	// Called once at start and again on restart.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the sim into dst. alpha in [0, 1] is the fraction of a
	// tick elapsed since the last Step; sims blend their previous and
	// current state by it. The screen is pre-cleared before this call.
	Render(dst *core.Screen, alpha float64)

	// State returns the current sim state.
	State() core.SimState
}

// Configurable is implemented by sims that read their settings from the
// configuration file. Configure is called before the first Reset.
type Configurable interface {
	Configure(cfg config.Demos)
}

// SimInfo contains metadata about a registered sim.
type SimInfo struct {
	ID    string
	Title string
}

// Factory is a function that creates a new instance of a sim.
type Factory func() Sim

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a sim factory to the registry.
// Typically called from a sim's init() function.
// Panics if a sim with the same ID is already registered.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: sim %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns information about all registered sims, sorted by ID.
func List() []SimInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SimInfo, 0, len(factories))
	for id := range factories {
		result = append(result, SimInfo{
			ID:    id,
			Title: titles[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new sim by its ID.
// Returns an error if the sim ID is not registered.
func Create(id string) (Sim, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown sim %q", id)
	}

	return f(), nil
}

// CreateConfigured instantiates a sim and applies cfg to it when the sim
// is Configurable.
func CreateConfigured(id string, cfg config.Demos) (Sim, error) {
	s, err := Create(id)
	if err != nil {
		return nil, err
	}
	if c, ok := s.(Configurable); ok {
		c.Configure(cfg)
	}
	return s, nil
}

// Exists checks if a sim with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
