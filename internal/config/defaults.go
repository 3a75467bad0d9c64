package config

import (
	_ "embed"
)

//go:embed defaults/tickloop.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Loop: LoopConfig{
			TickRate:         60,
			MaxFramesSkipped: 5,
			MaxFPS:           60,
			SyncDraw:         false,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.tickloop/tickloop.log",
		},
		Storage: StorageConfig{
			Path: "~/.tickloop/sessions.db",
		},
		Server: ServerConfig{
			Address:            ":23235",
			IdleTimeoutMinutes: 30,
		},
		Demos: Demos{
			Bounce: BounceConfig{
				Balls:       4,
				Gravity:     40,
				Restitution: 0.85,
				Kick:        25,
				Push:        8,
				MaxSpeed:    80,
			},
			Orbit: OrbitConfig{
				Bodies:    4,
				BaseSpeed: 1.5,
				SpeedStep: 1.25,
				Aspect:    2,
			},
			Flappy: FlappyConfig{
				Gravity:     90,
				Flap:        28,
				MaxFall:     40,
				PipeSpeed:   24,
				PipeWidth:   4,
				PipeSpacing: 26,
				MinGap:      6,
				MaxGap:      9,
			},
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
