package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/filetracker/internal/config"
)

const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

// newLogger builds the text logger for cfg. When cfg.Path is set, logs go to
// that file instead of out, trimmed to its most recent bytes once it grows
// past the size cap.
func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, func()) {
	closeFn := func() {}
	if cfg.Path != "" {
		w, err := openLogFile(cfg.Path, maxLogSizeBytes, keepLogSizeBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			out = w
			closeFn = func() { _ = w.Close() }
		}
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}))
	return logger, closeFn
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// cappedFile is an append-only log file that keeps only its tail once it
// exceeds max bytes.
type cappedFile struct {
	mu   sync.Mutex
	file *os.File
	max  int64
	keep int64
}

func openLogFile(path string, max, keep int64) (*cappedFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &cappedFile{file: file, max: max, keep: keep}
	if err := w.trim(); err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

func (w *cappedFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, w.trim()
}

func (w *cappedFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *cappedFile) trim() error {
	info, err := w.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= w.max {
		return nil
	}

	tail := make([]byte, w.keep)
	n, err := w.file.ReadAt(tail, size-w.keep)
	if err != nil && err != io.EOF {
		return err
	}
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	// O_APPEND writes land at the new end after truncation.
	_, err = w.file.Write(tail[:n])
	return err
}
