package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it changes and passes every
// valid result to onChange. Invalid edits are logged and skipped. The parent
// directory is watched so editors that save via rename are picked up. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(Config)) error {
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(path)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				logger.Warn("ignoring config change", "path", path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
