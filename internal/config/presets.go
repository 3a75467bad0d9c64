package config

import (
	"fmt"
	"sort"
)

// Preset is a named set of loop timing parameters.
type Preset string

const (
	PresetSmooth   Preset = "smooth"   // 60 ticks, 60 fps, interpolated
	PresetLockstep Preset = "lockstep" // 60 ticks, one render per tick
	PresetRetro    Preset = "retro"    // 15 ticks rendered at 60 fps
	PresetStress   Preset = "stress"   // 240 ticks, unbounded catch-up and fps
)

var presets = map[Preset]LoopConfig{
	PresetSmooth:   {TickRate: 60, MaxFramesSkipped: 5, MaxFPS: 60},
	PresetLockstep: {TickRate: 60, MaxFramesSkipped: 1, MaxFPS: 0, SyncDraw: true},
	PresetRetro:    {TickRate: 15, MaxFramesSkipped: 3, MaxFPS: 60},
	PresetStress:   {TickRate: 240, MaxFramesSkipped: 0, MaxFPS: 0},
}

// Presets returns the known preset names, sorted.
func Presets() []Preset {
	names := make([]Preset, 0, len(presets))
	for p := range presets {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// PresetLoop returns the loop settings for a preset.
func PresetLoop(p Preset) (LoopConfig, bool) {
	lc, ok := presets[p]
	return lc, ok
}

// ApplyPreset replaces the loop settings with the named preset.
// An empty name leaves the configuration unchanged.
func ApplyPreset(cfg *Config, name string) error {
	if name == "" {
		return nil
	}
	lc, ok := presets[Preset(name)]
	if !ok {
		return fmt.Errorf("config: unknown preset %q (known: %v)", name, Presets())
	}
	cfg.Loop = lc
	return nil
}
