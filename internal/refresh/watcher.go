// Package refresh rebuilds the engine's corpus snapshot when the corpus
// source files change on disk.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// Rebuilder is the subset of the engine the watcher drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) error
}

// Config configures a corpus file watcher.
type Config struct {
	// Paths are the corpus files to watch for writes.
	Paths []string

	// Debounce is the minimum interval between rebuilds. Bursts of write
	// events (editors, partial downloads) coalesce into one rebuild.
	// Default: 5 seconds.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher triggers engine rebuilds on corpus file changes, throttled so a
// burst of writes causes a single rebuild.
type Watcher struct {
	paths    []string
	target   Rebuilder
	limiter  *rate.Limiter
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a watcher that drives the given rebuilder.
func NewWatcher(target Rebuilder, config Config) (*Watcher, error) {
	if target == nil {
		return nil, fmt.Errorf("rebuilder is required")
	}
	if len(config.Paths) == 0 {
		return nil, fmt.Errorf("at least one path to watch is required")
	}
	if config.Debounce <= 0 {
		config.Debounce = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Watcher{
		paths:    config.Paths,
		target:   target,
		limiter:  rate.NewLimiter(rate.Every(config.Debounce), 1),
		logger:   config.Logger,
		debounce: config.Debounce,
	}, nil
}

// Start watches the corpus files until the context is cancelled. Write and
// create events mark a rebuild as pending; the limiter decides when pending
// work actually runs, so rapid successive writes collapse into one rebuild.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, path := range w.paths {
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	// Pending work is flushed on a short tick so a write landing inside the
	// throttle window is not lost.
	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug("corpus file changed", "path", event.Name, "op", event.Op.String())
			pending = true

		case err := <-watcher.Errors:
			w.logger.Warn("file watcher error", "error", err)

		case <-ticker.C:
		}

		if pending && w.limiter.Allow() {
			pending = false
			if err := w.target.Rebuild(ctx); err != nil {
				w.logger.Error("corpus rebuild failed", "error", err)
			}
		}
	}
}
