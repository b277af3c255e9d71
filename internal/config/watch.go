package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the settings file at path and calls onChange with the newly
// loaded Settings each time it changes. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file, so saves that
// replace the file (write a temp file, rename it over path) keep being seen.
// If a reload fails (e.g. invalid YAML), the error is logged and onChange is
// not called, so the previous settings remain active.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(*Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watching settings file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			s, err := LoadSettings(path)
			if err != nil {
				logger.Error("settings reload failed, keeping previous settings", "path", path, "error", err)
				continue
			}

			logger.Info("settings reloaded", "path", path)
			onChange(s)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("settings watcher error", "error", err)
		}
	}
}
