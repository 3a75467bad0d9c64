// Package config provides YAML-based configuration loading for the loop,
// logging, storage, the SSH server and the demo sims.
package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Config is the complete tickloop configuration.
type Config struct {
	Loop    LoopConfig    `yaml:"loop"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Demos   Demos         `yaml:"demos"`
}

// LoopConfig holds the game loop timing parameters.
type LoopConfig struct {
	TickRate         int  `yaml:"tick_rate"`          // Ticks per second, > 0
	MaxFramesSkipped int  `yaml:"max_frames_skipped"` // 0 = unbounded
	MaxFPS           int  `yaml:"max_fps"`            // 0 = unbounded
	SyncDraw         bool `yaml:"sync_draw"`
}

// LogConfig controls the charm logger.
type LogConfig struct {
	Level        string `yaml:"level"`
	File         string `yaml:"file"` // Empty logs to stderr
	ReportCaller bool   `yaml:"report_caller"`
}

// StorageConfig locates the session database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the SSH server.
type ServerConfig struct {
	Address            string `yaml:"address"`
	HostKey            string `yaml:"host_key"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// Demos groups the per-sim settings.
type Demos struct {
	Bounce BounceConfig `yaml:"bounce"`
	Orbit  OrbitConfig  `yaml:"orbit"`
	Flappy FlappyConfig `yaml:"flappy"`
}

// BounceConfig configures the bouncing balls sim. Units are cells and
// seconds.
type BounceConfig struct {
	Balls       int     `yaml:"balls"`
	Gravity     float64 `yaml:"gravity"`
	Restitution float64 `yaml:"restitution"` // Fraction of speed kept on impact
	Kick        float64 `yaml:"kick"`        // Upward speed added by Jump
	Push        float64 `yaml:"push"`        // Sideways speed added by Left/Right
	MaxSpeed    float64 `yaml:"max_speed"`
}

// OrbitConfig configures the orbiting bodies sim.
type OrbitConfig struct {
	Bodies    int     `yaml:"bodies"`
	BaseSpeed float64 `yaml:"base_speed"` // Radians per second of the innermost body
	SpeedStep float64 `yaml:"speed_step"` // Multiplier applied by Up/Down
	Aspect    float64 `yaml:"aspect"`     // Horizontal stretch for non-square cells
}

// FlappyConfig configures the pipe dodging sim. Units are cells and
// seconds.
type FlappyConfig struct {
	Gravity     float64 `yaml:"gravity"`
	Flap        float64 `yaml:"flap"` // Upward speed set by Jump
	MaxFall     float64 `yaml:"max_fall"`
	PipeSpeed   float64 `yaml:"pipe_speed"`
	PipeWidth   int     `yaml:"pipe_width"`
	PipeSpacing int     `yaml:"pipe_spacing"` // Cells between pipes
	MinGap      int     `yaml:"min_gap"`
	MaxGap      int     `yaml:"max_gap"`
}

// Validate reports configuration errors before any component uses them.
func (c Config) Validate() error {
	var errs []error
	if c.Loop.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("loop.tick_rate must be positive, got %d", c.Loop.TickRate))
	}
	if c.Loop.MaxFramesSkipped < 0 {
		errs = append(errs, fmt.Errorf("loop.max_frames_skipped must not be negative, got %d", c.Loop.MaxFramesSkipped))
	}
	if c.Loop.MaxFPS < 0 {
		errs = append(errs, fmt.Errorf("loop.max_fps must not be negative, got %d", c.Loop.MaxFPS))
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	if c.Server.IdleTimeoutMinutes < 0 {
		errs = append(errs, fmt.Errorf("server.idle_timeout_minutes must not be negative, got %d", c.Server.IdleTimeoutMinutes))
	}
	if c.Demos.Bounce.Balls < 0 {
		errs = append(errs, fmt.Errorf("demos.bounce.balls must not be negative, got %d", c.Demos.Bounce.Balls))
	}
	if c.Demos.Bounce.Restitution < 0 || c.Demos.Bounce.Restitution > 1 {
		errs = append(errs, fmt.Errorf("demos.bounce.restitution must be within [0, 1], got %g", c.Demos.Bounce.Restitution))
	}
	if c.Demos.Orbit.Bodies < 0 {
		errs = append(errs, fmt.Errorf("demos.orbit.bodies must not be negative, got %d", c.Demos.Orbit.Bodies))
	}
	if c.Demos.Orbit.SpeedStep <= 1 {
		errs = append(errs, fmt.Errorf("demos.orbit.speed_step must be greater than 1, got %g", c.Demos.Orbit.SpeedStep))
	}
	if f := c.Demos.Flappy; f.PipeWidth <= 0 || f.PipeSpacing <= 0 {
		errs = append(errs, fmt.Errorf("demos.flappy pipe_width and pipe_spacing must be positive, got %d and %d", f.PipeWidth, f.PipeSpacing))
	}
	if f := c.Demos.Flappy; f.MinGap <= 0 || f.MaxGap < f.MinGap {
		errs = append(errs, fmt.Errorf("demos.flappy gaps must satisfy 0 < min_gap <= max_gap, got %d and %d", f.MinGap, f.MaxGap))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
