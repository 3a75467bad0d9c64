package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickloop/internal/platform/tui"
	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/storage"
)

var (
	flagLimit   int
	flagClear   bool
	flagTUI     bool
	flagSummary bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions [sim-id]",
	Short: "Show recorded sessions",
	Long: `Display recorded sessions, newest first, for one sim or all of them.

Examples:
  tickloop sessions
  tickloop sessions bounce --limit 5
  tickloop sessions --summary
  tickloop sessions orbit --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of sessions to show")
	sessionsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the recorded sessions")
	sessionsCmd.Flags().BoolVar(&flagTUI, "tui", false, "Browse sessions interactively")
	sessionsCmd.Flags().BoolVar(&flagSummary, "summary", false, "Show per-sim totals instead of sessions")
}

func runSessions(cmd *cobra.Command, args []string) {
	simID := ""
	if len(args) > 0 {
		simID = args[0]
		if !registry.Exists(simID) {
			fmt.Fprintf(os.Stderr, "Error: unknown sim '%s'\n", simID)
			os.Exit(1)
		}
	}

	cfg := mustSettings(cmd)
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening session database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearSessions(simID); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing sessions: %v\n", err)
			os.Exit(1)
		}
		if simID == "" {
			fmt.Println("Cleared all sessions.")
		} else {
			fmt.Printf("Cleared sessions for %s.\n", simID)
		}
	case flagTUI:
		if _, err := tui.RunHistory(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error showing history: %v\n", err)
			os.Exit(1)
		}
	case flagSummary:
		printSummaries(store)
	default:
		printSessions(store, simID)
	}
}

func printSessions(store *storage.Store, simID string) {
	sessions, err := store.RecentSessions(simID, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading sessions: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet.")
		return
	}

	fmt.Printf("%-16s  %-8s  %-6s  %-8s  %8s  %7s  %7s  %6s  %4s\n",
		"When", "Sim", "Mode", "Preset", "Ticks", "TPS", "FPS", "Score", "Exit")
	for _, s := range sessions {
		tps, fps := 0.0, 0.0
		if secs := s.WallTime.Seconds(); secs > 0 {
			tps = float64(s.Ticks) / secs
			fps = float64(s.Frames) / secs
		}
		fmt.Printf("%-16s  %-8s  %-6s  %-8s  %8d  %7.1f  %7.1f  %6d  %4d\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.SimID, s.Mode, s.Preset, s.Ticks, tps, fps, s.Score, s.ExitCode)
	}
}

func printSummaries(store *storage.Store) {
	summaries, err := store.Summaries()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading summaries: %v\n", err)
		os.Exit(1)
	}
	if len(summaries) == 0 {
		fmt.Println("No sessions recorded yet.")
		return
	}

	fmt.Printf("%-8s  %8s  %10s  %7s  %7s  %6s  %-16s\n",
		"Sim", "Sessions", "Ticks", "TPS", "FPS", "Best", "Last played")
	for _, s := range summaries {
		fmt.Printf("%-8s  %8d  %10d  %7.1f  %7.1f  %6d  %-16s\n",
			s.SimID, s.Sessions, s.Ticks, s.AverageTickRate(), s.AverageFrameRate(),
			s.BestScore, s.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}
