package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickloop/internal/clock"
	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/loop"
	"github.com/vovakirdan/tickloop/internal/platform/term"
	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/storage"
)

var (
	flagBenchDuration time.Duration
	flagFrameCost     time.Duration
	flagStallEvery    time.Duration
	flagStall         time.Duration
	flagNoSave        bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <sim-id>",
	Short: "Run a sim headless on a simulated clock",
	Long: `Run a simulation without a terminal on a manual clock and print
the resulting tick and frame statistics. Every render costs --frame-cost
of simulated time and a stall of --stall is injected every --stall-every,
so the effect of the catch-up bound can be observed deterministically.

Examples:
  tickloop bench bounce --duration 10s
  tickloop bench orbit --preset stress --stall-every 1s --stall 250ms`,
	Args: cobra.ExactArgs(1),
	Run:  runBench,
}

func init() {
	benchCmd.Flags().DurationVar(&flagBenchDuration, "duration", 10*time.Second, "Simulated run length")
	benchCmd.Flags().DurationVar(&flagFrameCost, "frame-cost", time.Millisecond, "Simulated time spent per render")
	benchCmd.Flags().DurationVar(&flagStallEvery, "stall-every", 0, "Inject a stall at this interval (0 = never)")
	benchCmd.Flags().DurationVar(&flagStall, "stall", 100*time.Millisecond, "Length of each injected stall")
	benchCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not record the run in the session database")
}

func runBench(cmd *cobra.Command, args []string) {
	simID := args[0]

	if !registry.Exists(simID) {
		fmt.Fprintf(os.Stderr, "Error: unknown sim '%s'\n", simID)
		os.Exit(1)
	}

	cfg := mustSettings(cmd)
	logger, closer := mustLogger(cfg.Log)
	defer closer.Close()

	var store *storage.Store
	if !flagNoSave {
		store = openStore(cfg.Storage.Path, logger)
		if store != nil {
			defer store.Close()
		}
	}

	opts := benchOptions{
		Duration:   flagBenchDuration,
		FrameCost:  flagFrameCost,
		StallEvery: flagStallEvery,
		Stall:      flagStall,
		Seed:       benchSeedFlag(),
		Preset:     presetName(),
	}
	result, err := runBenchmark(simID, cfg, opts, sessionStore(store), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printBench(os.Stdout, simID, cfg.Loop, result)
}

type benchOptions struct {
	Duration   time.Duration
	FrameCost  time.Duration
	StallEvery time.Duration
	Stall      time.Duration
	Seed       int64
	Preset     string
}

type benchResult struct {
	ExitCode  int
	Stats     loop.Stats
	TickRate  float64
	FrameRate float64
	Stalls    int
	Behind    int // Ticks still owed when the run ended
	Slept     time.Duration
	SessionID string
}

// benchGame charges simulated time for every render and injects stalls.
type benchGame struct {
	*term.Host
	clock      *clock.Manual
	frameCost  time.Duration
	stallEvery time.Duration
	stall      time.Duration
	nextStall  time.Duration
	stalls     int
}

func (g *benchGame) Render(alpha float64) error {
	if err := g.Host.Render(alpha); err != nil {
		return err
	}
	g.clock.Advance(g.frameCost)
	if g.stallEvery > 0 && g.clock.Now() >= g.nextStall {
		g.clock.Advance(g.stall)
		g.nextStall += g.stallEvery
		g.stalls++
	}
	return nil
}

// runBenchmark drives simID headless until opts.Duration of loop time.
func runBenchmark(simID string, cfg config.Config, opts benchOptions, store term.SessionStore, logger *log.Logger) (benchResult, error) {
	if opts.Duration <= 0 {
		return benchResult{}, errors.New("bench: duration must be positive")
	}
	if opts.FrameCost <= 0 && cfg.Loop.MaxFPS == 0 && !cfg.Loop.SyncDraw {
		return benchResult{}, errors.New("bench: unbounded fps needs a positive frame cost")
	}

	sim, err := registry.CreateConfigured(simID, cfg.Demos)
	if err != nil {
		return benchResult{}, err
	}

	manual := clock.NewManual(0)
	gl := newLoop(cfg.Loop, logger)
	host := term.NewHost(sim, gl, term.Options{
		Clock:    manual,
		Logger:   logger,
		Store:    store,
		Seed:     opts.Seed,
		Deadline: opts.Duration,
		Mode:     storage.ModeBench,
		Preset:   opts.Preset,
	})
	game := &benchGame{
		Host:       host,
		clock:      manual,
		frameCost:  opts.FrameCost,
		stallEvery: opts.StallEvery,
		stall:      opts.Stall,
		nextStall:  opts.StallEvery,
	}

	code, err := gl.Run(game)
	if err != nil {
		return benchResult{}, err
	}

	snap := gl.Snapshot()
	return benchResult{
		ExitCode:  code,
		Stats:     snap,
		TickRate:  gl.AverageTickRate(),
		FrameRate: gl.AverageFrameRate(),
		Stalls:    game.stalls,
		Behind:    int(snap.Lag() / gl.TickDuration()),
		Slept:     manual.Slept(),
		SessionID: host.SessionID(),
	}, nil
}

func printBench(w io.Writer, simID string, lc config.LoopConfig, r benchResult) {
	fmt.Fprintf(w, "sim          %s\n", simID)
	fmt.Fprintf(w, "loop         %d tps, max fps %d, max skip %d, sync draw %t\n",
		lc.TickRate, lc.MaxFPS, lc.MaxFramesSkipped, lc.SyncDraw)
	fmt.Fprintf(w, "loop time    %v (slept %v)\n", r.Stats.Clock, r.Slept)
	fmt.Fprintf(w, "ticks        %d (%.1f/s)\n", r.Stats.TickID, r.TickRate)
	fmt.Fprintf(w, "frames       %d (%.1f/s)\n", r.Stats.FrameID, r.FrameRate)
	fmt.Fprintf(w, "stalls       %d\n", r.Stalls)
	fmt.Fprintf(w, "behind       %d ticks (%v)\n", r.Behind, r.Stats.Lag())
	if r.SessionID != "" {
		fmt.Fprintf(w, "session      %s\n", r.SessionID)
	}
}
