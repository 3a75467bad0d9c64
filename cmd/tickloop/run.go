package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/cancelreader"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/vovakirdan/tickloop/internal/clock"
	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/platform/term"
	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// resizePoll is how often the terminal size is checked.
const resizePoll = 250 * time.Millisecond

var (
	flagDuration time.Duration
	flagNoHUD    bool
)

var runCmd = &cobra.Command{
	Use:   "run <sim-id>",
	Short: "Run a sim in this terminal",
	Long: `Run a simulation in the current terminal.

Use 'tickloop list' to see available sims.

Controls:
  Arrows/WASD  steer
  Space        jump or kick
  P            pause (rendering continues)
  R            restart with a new seed
  Q/Esc        quit`,
	Args: cobra.ExactArgs(1),
	Run:  runRun,
}

func init() {
	runCmd.Flags().DurationVar(&flagDuration, "duration", 0, "Exit after this much loop time (0 = run until quit)")
	runCmd.Flags().BoolVar(&flagNoHUD, "no-hud", false, "Hide the status line")
}

func runRun(cmd *cobra.Command, args []string) {
	simID := args[0]

	if !registry.Exists(simID) {
		fmt.Fprintf(os.Stderr, "Error: unknown sim '%s'\n", simID)
		fmt.Fprintln(os.Stderr, "Use 'tickloop list' to see available sims.")
		os.Exit(1)
	}

	cfg := mustSettings(cmd)
	logger, closer := mustLogger(cfg.Log)
	defer closer.Close()

	store := openStore(cfg.Storage.Path, logger)
	if store != nil {
		defer store.Close()
	}

	code, err := runLocal(simID, cfg, presetName(), store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if code != term.ExitQuit {
		os.Exit(code)
	}
}

// runLocal runs simID in the controlling terminal until it exits.
func runLocal(simID string, cfg config.Config, preset string, store *storage.Store, logger *log.Logger) (int, error) {
	sim, err := registry.CreateConfigured(simID, cfg.Demos)
	if err != nil {
		return 1, err
	}

	inFd := int(os.Stdin.Fd())
	if !xterm.IsTerminal(inFd) {
		return 1, errors.New("stdin is not a terminal")
	}
	oldState, err := xterm.MakeRaw(inFd)
	if err != nil {
		return 1, fmt.Errorf("enter raw mode: %w", err)
	}
	defer xterm.Restore(inFd, oldState)

	// Cancelled on return so the input goroutine does not swallow keys
	// meant for the menu that runs next.
	stdin, err := cancelreader.NewReader(os.Stdin)
	if err != nil {
		return 1, fmt.Errorf("open stdin: %w", err)
	}
	defer stdin.Close()
	defer stdin.Cancel()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resize := make(chan term.Size, 1)
	go watchSize(ctx, int(os.Stdout.Fd()), resize)

	gl := newLoop(cfg.Loop, logger)
	host := term.NewHost(sim, gl, term.Options{
		Clock:    clock.NewWall(),
		Input:    term.PumpInput(stdin, os.Getenv("TERM"), ctx.Done()),
		Resize:   resize,
		Done:     ctx.Done(),
		Output:   os.Stdout,
		Logger:   logger,
		Store:    sessionStore(store),
		Size:     terminalSize(int(os.Stdout.Fd())),
		Seed:     seed(),
		Deadline: flagDuration,
		Mode:     storage.ModeLocal,
		Preset:   preset,
		HideHUD:  flagNoHUD,
	})

	if err := term.EnterScreen(os.Stdout); err != nil {
		return 1, err
	}
	code, runErr := gl.Run(host)
	if err := term.LeaveScreen(os.Stdout); err != nil && runErr == nil {
		runErr = err
	}
	return code, runErr
}

// terminalSize returns the size of fd, or 80x24 when it is unknown.
func terminalSize(fd int) term.Size {
	width, height, err := xterm.GetSize(fd)
	if err != nil || width <= 0 || height <= 0 {
		return term.Size{Width: 80, Height: 24}
	}
	return term.Size{Width: width, Height: height}
}

// watchSize polls the terminal size and sends changes to out.
func watchSize(ctx context.Context, fd int, out chan<- term.Size) {
	ticker := time.NewTicker(resizePoll)
	defer ticker.Stop()

	last := terminalSize(fd)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			size := terminalSize(fd)
			if size == last {
				continue
			}
			last = size
			select {
			case out <- size:
			case <-ctx.Done():
				return
			}
		}
	}
}
