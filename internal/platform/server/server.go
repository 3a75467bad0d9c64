// Package server runs sims for remote users over SSH via Wish.
// Every session with a PTY gets its own game loop and host.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tickloop/internal/clock"
	"github.com/vovakirdan/tickloop/internal/config"
	"github.com/vovakirdan/tickloop/internal/loop"
	"github.com/vovakirdan/tickloop/internal/platform/term"
	"github.com/vovakirdan/tickloop/internal/registry"
	"github.com/vovakirdan/tickloop/internal/storage"
)

// Config holds configuration for the SSH server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.tickloop/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// DefaultSim runs when the client does not name one as the command.
	DefaultSim string

	Loop   config.LoopConfig
	Demos  config.Demos
	Preset string // Recorded with each session
}

// FromConfig builds a server Config from the file configuration.
func FromConfig(cfg config.Config, preset string) Config {
	return Config{
		Address:     cfg.Server.Address,
		HostKeyPath: cfg.Server.HostKey,
		IdleTimeout: time.Duration(cfg.Server.IdleTimeoutMinutes) * time.Minute,
		DefaultSim:  "bounce",
		Loop:        cfg.Loop,
		Demos:       cfg.Demos,
		Preset:      preset,
	}
}

// Server wraps a Wish SSH server.
type Server struct {
	config Config
	server *ssh.Server
	store  term.SessionStore
	logger *log.Logger
	active atomic.Int64
}

// New creates a new SSH server. store may be nil to skip session history.
func New(cfg Config, store term.SessionStore, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.DefaultSim == "" {
		cfg.DefaultSim = "bounce"
	}

	srv := &Server{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := config.ExpandPath(cfg.HostKeyPath)
	if hostKeyPath == "" {
		hostKeyPath = config.UserPath("host_key")
		if hostKeyPath == "" {
			return nil, errors.New("server: cannot get home directory for the host key")
		}
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if err := os.MkdirAll(hostKeyDir, 0o700); err != nil {
		return nil, fmt.Errorf("server: cannot create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithMiddleware(
			srv.loopMiddleware,
			activeterm.Middleware(),
			srv.loggingMiddleware,
		),
	}
	if cfg.IdleTimeout > 0 {
		opts = append(opts, wish.WithIdleTimeout(cfg.IdleTimeout))
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("server: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// SimForCommand picks the sim named by the SSH command, or the default.
func SimForCommand(cmd []string, def string) string {
	if len(cmd) > 0 && cmd[0] != "" {
		return cmd[0]
	}
	return def
}

// loopMiddleware runs one game loop for the session on the session's
// own goroutine.
func (s *Server) loopMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		defer next(sess)

		pty, windows, ok := sess.Pty()
		if !ok {
			wish.Fatalln(sess, "tickloop: a terminal is required, connect with ssh -t")
			return
		}

		simID := SimForCommand(sess.Command(), s.config.DefaultSim)
		sim, err := registry.CreateConfigured(simID, s.config.Demos)
		if err != nil {
			wish.Fatalln(sess, err)
			return
		}

		gl := loop.New(s.config.Loop.TickRate, s.config.Loop.MaxFramesSkipped, s.config.Loop.MaxFPS,
			loop.WithLogger(s.logger.With("user", sess.User())))
		gl.SetSyncDraw(s.config.Loop.SyncDraw)

		ctx := sess.Context()
		resize := make(chan term.Size, 4)
		go forwardWindows(ctx, windows, resize)

		host := term.NewHost(sim, gl, term.Options{
			Clock:    clock.NewWall(),
			Input:    term.PumpInput(sess, pty.Term, ctx.Done()),
			Resize:   resize,
			Done:     ctx.Done(),
			Output:   sess,
			Renderer: bubbletea.MakeRenderer(sess),
			Logger:   s.logger.With("user", sess.User(), "sim", simID),
			Store:    s.store,
			Size:     term.Size{Width: pty.Window.Width, Height: pty.Window.Height},
			Seed:     time.Now().UnixNano(),
			Mode:     storage.ModeSSH,
			Preset:   s.config.Preset,
		})

		if err := term.EnterScreen(sess); err != nil {
			return
		}
		code, err := gl.Run(host)
		term.LeaveScreen(sess) //nolint:errcheck // Session may already be gone
		if err != nil {
			s.logger.Warn("loop stopped with error", "user", sess.User(), "error", err)
			return
		}
		sess.Exit(code) //nolint:errcheck // Best-effort exit status
	}
}

// forwardWindows turns PTY window events into host resize events until
// the session ends.
func forwardWindows(ctx context.Context, windows <-chan ssh.Window, out chan<- term.Size) {
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-windows:
			if !ok {
				return
			}
			select {
			case out <- term.Size{Width: w.Width, Height: w.Height}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// loggingMiddleware logs SSH session events.
func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		n := s.active.Add(1)
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"command", sess.Command(),
			"active", n,
		)
		next(sess)
		n = s.active.Add(-1)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
			"active", n,
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is cancelled
// or the process receives SIGINT or SIGTERM.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

// Active returns the number of connected sessions.
func (s *Server) Active() int64 {
	return s.active.Load()
}
