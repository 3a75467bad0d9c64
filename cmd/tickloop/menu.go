package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickloop/internal/platform/tui"
	"github.com/vovakirdan/tickloop/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a sim and preset interactively",
	Long: `Open the sim picker. Choose a sim with the arrow keys, cycle the loop
preset with left/right and press Tab to browse recorded sessions.
Quitting a sim returns to the menu.`,
	Run: runMenu,
}

func runMenu(cmd *cobra.Command, args []string) {
	cfg := mustSettings(cmd)
	logger, closer := mustLogger(cfg.Log)
	defer closer.Close()

	store := openStore(cfg.Storage.Path, logger)
	if store != nil {
		defer store.Close()
	}
	history := historyStore(store)

	preset := flagPreset
	for {
		result, err := tui.RunMenu(history, preset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		preset = result.Preset

		if result.WantsHistory {
			goBack, err := tui.RunHistory(history)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error showing history: %v\n", err)
				os.Exit(1)
			}
			if !goBack {
				return
			}
			continue
		}
		if result.Quit {
			return
		}

		runCfg, err := menuConfig(cmd, cfg, result.Preset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		label := result.Preset
		if label == "" {
			label = presetName()
		}

		code, err := runLocal(result.SimID, runCfg, label, store, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("sim finished", "sim", result.SimID, "exit_code", code)
	}
}

// historyStore converts a possibly nil store into the menu interface.
func historyStore(s *storage.Store) tui.History {
	if s == nil {
		return nil
	}
	return s
}
