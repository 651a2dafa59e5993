package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches editor save bursts into one reload.
const DefaultDebounce = 150 * time.Millisecond

// watcher reports changed files under a set of directories, batching rapid
// events.
type watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration
	onChange func(ctx context.Context, paths []string)
}

func newWatcher(dirs []string, debounce time.Duration, logger *slog.Logger, onChange func(context.Context, []string)) (*watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: watcher: %w", err)
	}
	seen := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if err := fsWatch.Add(abs); err != nil {
			_ = fsWatch.Close()
			return nil, fmt.Errorf("server: watch %s: %w", dir, err)
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &watcher{fs: fsWatch, logger: logger, debounce: debounce, onChange: onChange}, nil
}

// Run delivers debounced batches until ctx is cancelled. onChange runs on the
// watcher goroutine, so batches never overlap.
func (w *watcher) Run(ctx context.Context) error {
	defer func() {
		_ = w.fs.Close()
	}()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if evt.Op == fsnotify.Chmod {
				continue
			}
			pending[filepath.Clean(evt.Name)] = struct{}{}
			stopTimer()
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)

		case <-timerC:
			timerC = nil
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			w.onChange(ctx, paths)
		}
	}
}
