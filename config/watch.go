package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-instancer/common"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config at path whenever it is written or replaced and calls fn with the
// result. Load errors are passed to fn rather than stopping the watch. The parent directory is
// watched so editors that save by renaming a temporary file are picked up. Blocks until ctx is
// done.
//
// Parameters:
//   - ctx: stops the watch
//   - path: the config file
//   - fn: receives every reload
//
// Returns:
//   - error: a watcher setup error, or nil once ctx is done
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	if _, err := FormatFor(path); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	common.Logger().Info("config watch started", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			c, err := Load(abs)
			if err != nil {
				common.Logger().Warn("config reload failed", slog.String("path", abs), slog.Any("error", err))
			} else {
				common.Logger().Info("config reloaded", slog.String("path", abs))
			}
			fn(c, err)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			common.Logger().Warn("config watch error", slog.Any("error", err))
		}
	}
}
