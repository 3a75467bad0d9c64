// tickloop runs fixed-timestep simulations in the terminal.
//
// Usage:
//
//	tickloop list              - List available sims
//	tickloop run <sim>         - Run a sim in this terminal
//	tickloop menu              - Pick sims interactively
//	tickloop bench <sim>       - Run a sim headless on a simulated clock
//	tickloop sessions [sim]    - Show recorded sessions
//	tickloop serve             - Start SSH server for remote viewers
//	tickloop config            - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Configuration file
//	--preset <name>     - Loop timing preset (smooth, lockstep, retro, stress)
//	--tick-rate <n>     - Simulation ticks per second
//	--max-fps <n>       - Render rate cap, 0 = unbounded
//	--max-skip <n>      - Catch-up ticks per render, 0 = unbounded
//	--sync-draw         - Render exactly once per tick
//	--seed <value>      - RNG seed for reproducible runs
//	--db <path>         - Session database path
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import sims to register them
	_ "github.com/vovakirdan/tickloop/internal/demos/bounce"
	_ "github.com/vovakirdan/tickloop/internal/demos/flappy"
	_ "github.com/vovakirdan/tickloop/internal/demos/orbit"
)

var (
	// Global flags
	flagConfig   string
	flagPreset   string
	flagTickRate int
	flagMaxFPS   int
	flagMaxSkip  int
	flagSyncDraw bool
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tickloop",
	Short: "tickloop - fixed-timestep simulations in your terminal",
	Long: `tickloop drives small simulations with a fixed-timestep game loop.
Ticks run at a fixed rate, frames are drawn between ticks with
interpolation, and catch-up after a stall is bounded.

Available commands:
  list      - Show all available sims
  run       - Run a sim directly
  menu      - Interactive sim picker
  bench     - Deterministic headless run with timing statistics
  sessions  - View recorded sessions
  serve     - Start SSH server for remote viewers
  config    - Print the effective configuration

Examples:
  tickloop list
  tickloop run flappy --preset retro
  tickloop bench orbit --duration 30s --stall-every 2s
  tickloop serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	pf.StringVar(&flagPreset, "preset", "", "Loop timing preset: smooth, lockstep, retro, stress")
	pf.IntVar(&flagTickRate, "tick-rate", 60, "Simulation ticks per second")
	pf.IntVar(&flagMaxFPS, "max-fps", 60, "Render rate cap (0 = unbounded)")
	pf.IntVar(&flagMaxSkip, "max-skip", 5, "Catch-up ticks per render (0 = unbounded)")
	pf.BoolVar(&flagSyncDraw, "sync-draw", false, "Render exactly once per tick")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = time based, fixed for bench)")
	pf.StringVar(&flagDBPath, "db", "", "Path to session database (default from config)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
