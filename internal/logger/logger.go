// Package logger configures the process-wide structured logger.
// Output goes to stderr so answers printed on stdout stay machine readable.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	output io.Writer = os.Stderr
)

// ParseLevel maps a config string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// Setup installs a text handler at the given level as slog's default.
// verbose forces debug level.
func Setup(levelName string, verbose bool) error {
	lvl, err := ParseLevel(levelName)
	if err != nil {
		return err
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	mu.Lock()
	defer mu.Unlock()
	level.Set(lvl)
	install()
	return nil
}

func install() {
	slog.SetDefault(slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level})))
}

// Redirect sends log output to w until restore is called.
func Redirect(w io.Writer) (restore func()) {
	mu.Lock()
	prev := output
	output = w
	install()
	mu.Unlock()

	return func() {
		mu.Lock()
		output = prev
		install()
		mu.Unlock()
	}
}

// SetOutput redirects log output. Call Setup afterwards to take effect.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Level returns the active level.
func Level() slog.Level {
	return level.Level()
}
