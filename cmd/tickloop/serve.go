package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tickloop/internal/platform/server"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagDefaultSim  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tickloop SSH server",
	Long: `Start an SSH server that runs a sim for every connection.

Each SSH connection gets its own game loop. The sim is chosen by the
command the client passes, falling back to --sim. Sessions from all
connections are recorded in the same database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.tickloop/host_key

Examples:
  tickloop serve                           # Listen on the configured address
  tickloop serve --ssh :2222               # Listen on port 2222
  tickloop serve --preset retro            # Serve every sim at 15 ticks

Users can connect with:
  ssh localhost -p 23235 -t orbit`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes (default from config)")
	serveCmd.Flags().StringVar(&flagDefaultSim, "sim", "bounce", "Sim to run when the client names none")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg := mustSettings(cmd)

	flags := cmd.Flags()
	if flags.Changed("ssh") {
		cfg.Server.Address = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.Server.HostKey = flagHostKey
	}
	if flags.Changed("idle-timeout") {
		cfg.Server.IdleTimeoutMinutes = flagIdleTimeout
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The server has no screen of its own, so it logs to stderr.
	logCfg := cfg.Log
	logCfg.File = ""
	logger, closer := mustLogger(logCfg)
	defer closer.Close()

	store := openStore(cfg.Storage.Path, logger)
	if store != nil {
		defer store.Close()
	}

	srvCfg := server.FromConfig(cfg, presetName())
	srvCfg.DefaultSim = flagDefaultSim

	srv, err := server.New(srvCfg, sessionStore(store), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting tickloop SSH server on %s\n", srv.Addr())
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
