package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher triggers a refresh after filesystem changes under the workspace
// settle for the debounce window, merging editor write bursts into one
// rebuild.
type Watcher struct {
	log      *slog.Logger
	root     string
	debounce time.Duration
	refresh  func(ctx context.Context) error
}

// Watch registers the workspace tree with fsnotify and processes events in
// the background until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			// Unreadable subtrees just go unwatched.
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		return fw.Add(path)
	})
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch workspace: %w", err)
	}

	go w.run(ctx, fw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()

	debounce := w.debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := fw.Add(ev.Name); err != nil {
						w.log.Warn("failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)

		case <-timer.C:
			if err := w.refresh(ctx); err != nil {
				w.log.Error("workspace refresh failed", "error", err)
			}
		}
	}
}
