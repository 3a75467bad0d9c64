package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the charm logger described by c. When c.File is set the
// log is appended to that file and the returned closer closes it.
func (c LogConfig) NewLogger(prefix string) (*log.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if c.File != "" {
		path := ExpandPath(c.File)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("config: cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("config: cannot open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := c.Logger(w, prefix)
	return logger, closer, nil
}

// Logger builds a charm logger writing to w.
func (c LogConfig) Logger(w io.Writer, prefix string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    c.ReportCaller,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	level := log.InfoLevel
	if c.Level != "" {
		if parsed, err := log.ParseLevel(c.Level); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
	return logger
}
