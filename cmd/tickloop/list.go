package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickloop/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available sims",
	Long:  `Display a list of all simulations that can be run.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	sims := registry.List()

	if len(sims) == 0 {
		fmt.Println("No sims available.")
		return
	}

	fmt.Println("Available sims:")
	fmt.Println()

	// Find max ID length for alignment
	maxIDLen := 0
	for _, s := range sims {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	for _, s := range sims {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}

	fmt.Println()
	fmt.Println("Run a sim with: tickloop run <sim-id>")
}
