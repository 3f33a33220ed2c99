package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	logFilePattern   = "lexlib-*.log"
	logTimestampForm = "2006-01-02T15-04-05"
)

// NewLogger returns the JSON logger written to stdout and, when w is set, to w.
// Debug enables debug-level events and source locations.
func NewLogger(debug bool, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	var out io.Writer = os.Stdout
	if w != nil {
		out = io.MultiWriter(os.Stdout, w)
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// SetupLogFile opens a fresh timestamped file in dir and keeps at most maxFiles
// of them. The caller closes the file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, "lexlib-"+time.Now().Format(logTimestampForm)+".log")
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	// Rotation failure leaves extra files behind but logging works
	if err := pruneLogs(dir, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: log rotation: %v\n", err)
	}
	return f, nil
}

// pruneLogs deletes the oldest files beyond maxFiles; names sort chronologically
func pruneLogs(dir string, maxFiles int) error {
	files, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	if err != nil {
		return err
	}
	if maxFiles < 1 || len(files) <= maxFiles {
		return nil
	}

	slices.Sort(files)
	for _, old := range files[:len(files)-maxFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
