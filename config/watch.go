package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ystepanoff/ookcomm/credential"
	"github.com/ystepanoff/ookcomm/logger"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads path whenever it changes and hands the result to onChange.
// Editors often replace the file, so the containing directory is watched.
// Bad edits are logged and the previous configuration stays in force.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

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
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("[Config] Watcher error: %v\r\n", err)

		case <-debounce.C:
			cfg, err := Load(path)
			if err != nil {
				logger.Error("[Config] Reload of %s failed: %v\r\n", path, err)
				continue
			}
			logger.Info("[Config] Reloaded %s\r\n", path)
			onChange(cfg)
		}
	}
}

// WatchCredentials keeps store in step with the credentials list in path.
func WatchCredentials(ctx context.Context, path string, store *credential.Store) error {
	return Watch(ctx, path, func(cfg *Config) {
		uids := cfg.UIDs()
		store.Replace(uids)
		logger.Info("[Config] %d authorised cards loaded\r\n", len(uids))
	})
}
