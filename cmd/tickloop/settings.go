package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/loop"
	"github.com/vovakirdan/tickloop/internal/platform/term"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// loadSettings loads the configuration file, applies the preset and then
// any loop flag given explicitly on the command line.
func loadSettings(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyPreset(&cfg, flagPreset); err != nil {
		return cfg, err
	}
	applyFlags(cmd, &cfg)
	return cfg, cfg.Validate()
}

// menuConfig returns the settings for a run started from the menu. A
// preset other than the one given on the command line replaces the loop
// settings. Explicit flags win either way.
func menuConfig(cmd *cobra.Command, cfg config.Config, picked string) (config.Config, error) {
	if picked == "" || picked == flagPreset {
		return cfg, nil
	}
	if err := config.ApplyPreset(&cfg, picked); err != nil {
		return cfg, err
	}
	applyFlags(cmd, &cfg)
	return cfg, cfg.Validate()
}

// applyFlags copies the flags set on the command line into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("tick-rate") {
		cfg.Loop.TickRate = flagTickRate
	}
	if flags.Changed("max-fps") {
		cfg.Loop.MaxFPS = flagMaxFPS
	}
	if flags.Changed("max-skip") {
		cfg.Loop.MaxFramesSkipped = flagMaxSkip
	}
	if flags.Changed("sync-draw") {
		cfg.Loop.SyncDraw = flagSyncDraw
	}
	if flags.Changed("db") {
		cfg.Storage.Path = flagDBPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}
}

// mustSettings loads the settings or exits.
func mustSettings(cmd *cobra.Command) config.Config {
	cfg, err := loadSettings(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// mustLogger builds the logger described by lc or exits.
func mustLogger(lc config.LogConfig) (*log.Logger, io.Closer) {
	logger, closer, err := lc.NewLogger("tickloop")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return logger, closer
}

// newLoop creates a game loop with the configured timing.
func newLoop(lc config.LoopConfig, logger *log.Logger) *loop.GameLoop {
	gl := loop.New(lc.TickRate, lc.MaxFramesSkipped, lc.MaxFPS, loop.WithLogger(logger))
	gl.SetSyncDraw(lc.SyncDraw)
	return gl
}

// openStore opens the session database. Failures are reported and the
// command continues without history.
func openStore(path string, logger *log.Logger) *storage.Store {
	store, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open session database: %v\n", err)
		logger.Warn("could not open session database", "path", path, "error", err)
		return nil
	}
	return store
}

// sessionStore converts a possibly nil store into the host interface
// without producing a non-nil interface holding a nil pointer.
func sessionStore(s *storage.Store) term.SessionStore {
	if s == nil {
		return nil
	}
	return s
}

// seed returns the seed flag, or a time based seed when it is 0.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// benchSeed seeds benchmark runs when --seed is not given, so two runs
// with the same flags step the same sim.
const benchSeed int64 = 1

// benchSeedFlag returns the seed flag, or benchSeed when it is 0.
func benchSeedFlag() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return benchSeed
}

// presetName is the preset recorded with sessions.
func presetName() string {
	if flagPreset == "" {
		return "config"
	}
	return flagPreset
}
