package storage

import (
	"context"
	"fmt"

	"wavecrate/logger"

	"github.com/fsnotify/fsnotify"
)

// WatchUploads watches the upload directories and logs files that appear
// or disappear outside the API, so drift between the primary store and
// the in-memory catalog is at least visible. Purely observational; it
// never mutates anything. Returns once the watcher is running and stops
// when ctx is cancelled.
func WatchUploads(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create upload watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				switch {
				case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
					logger.Warn("upload file removed outside the API",
						logger.String("path", event.Name),
						logger.String("op", event.Op.String()))
				case event.Op.Has(fsnotify.Create):
					logger.Debug("upload file created",
						logger.String("path", event.Name))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("upload watcher error", logger.ErrorField(err))
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
