package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last result file change
// before the report is regenerated.
const DefaultDebounce = 2 * time.Second

// Watcher regenerates a report whenever result files change. A sweep
// writes one CSV per configuration, so bursts of events are collapsed into
// a single refresh.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// NewWatcher creates a Watcher over dirs.
func NewWatcher(dirs []string, logger *slog.Logger) *Watcher {
	return &Watcher{
		Dirs:     dirs,
		Debounce: DefaultDebounce,
		Logger:   logger.With(slog.String("component", "watcher")),
	}
}

// Run calls refresh once, then again after every debounced batch of CSV
// changes, until ctx is done. Refresh errors are logged and do not stop
// the watch; a partially written file is a collection diagnostic.
func (w *Watcher) Run(ctx context.Context, refresh func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.Dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.refresh(ctx, refresh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}

			if !relevant(event) {
				continue
			}

			w.Logger.Debug("result changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			if timer == nil {
				timer = time.NewTimer(w.Debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.Debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}

			w.Logger.Warn("watch error", slog.String("error", err.Error()))

		case <-timerCh:
			w.refresh(ctx, refresh)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context, refresh func(context.Context) error) {
	start := time.Now()

	if err := refresh(ctx); err != nil {
		w.Logger.Error("report refresh failed", slog.String("error", err.Error()))

		return
	}

	w.Logger.Info("report refreshed", slog.Duration("took", time.Since(start)))
}

func relevant(event fsnotify.Event) bool {
	if filepath.Ext(event.Name) != ".csv" {
		return false
	}

	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
