package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/flowgrid/internal/ctxlog"
)

// reloadQuietPeriod batches the burst of events an editor save produces.
const reloadQuietPeriod = 100 * time.Millisecond

// watch re-runs the document every time it changes, until ctx is done.
// It watches the parent directory, so replace-on-save still counts as a
// change. Passes run on this goroutine only.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(a.config.Document)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}
	logger.Info("Watching document for changes.", "path", target)

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopped watching document.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("Document changed.", "op", event.Op.String())
			if timer == nil {
				timer = time.AfterFunc(reloadQuietPeriod, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(reloadQuietPeriod)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)

		case <-reload:
			logger.Info("Reloading document.")
			if _, err := a.pass(ctx); err != nil {
				logger.Error("Document pass failed.", "error", err)
			}
		}
	}
}
