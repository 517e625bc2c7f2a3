package graph

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RebuildFunc is called after a burst of graph changes has settled.
type RebuildFunc func(ctx context.Context)

// Watch starts an fsnotify watcher on the graph root and its collection
// directories and calls rebuild once per settled burst of .md changes until
// ctx is cancelled. Every rebuild is a full one.
//
// A collection directory created at runtime is added to the watch list and
// triggers a rebuild.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, rebuild RebuildFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	for _, coll := range Collections {
		dir := filepath.Join(root, coll)
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			if err := w.Add(dir); err != nil {
				return err
			}
		}
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Debug("watcher: rebuilding")
			rebuild(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 && isCollectionDir(root, ev.Name) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			if !strings.HasSuffix(ev.Name, ".md") {
				if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && isCollectionDir(root, ev.Name) {
					schedule()
				}
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func isCollectionDir(root, p string) bool {
	if filepath.Dir(p) != filepath.Clean(root) {
		return false
	}
	name := filepath.Base(p)
	for _, coll := range Collections {
		if name == coll {
			return true
		}
	}
	return false
}
