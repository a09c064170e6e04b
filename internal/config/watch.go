package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// WatchLogLevel re-reads log.level from path whenever the file changes and
// hands it to apply. It returns once ctx is done. Only the log level is
// reloaded; everything else needs a restart.
func WatchLogLevel(ctx context.Context, path string, logger *zap.Logger, apply func(level string) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory so editors that replace the file still trigger events.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	go func() {
		defer watcher.Close()
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				level, err := readLogLevel(path)
				if err != nil {
					logger.Warn("config reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				if level == "" {
					continue
				}
				if err := apply(level); err != nil {
					logger.Warn("invalid log level in config", zap.String("level", level), zap.Error(err))
					continue
				}
				logger.Info("log level updated", zap.String("level", level))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func readLogLevel(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var partial struct {
		Log struct {
			Level string `yaml:"level"`
		} `yaml:"log"`
	}
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return "", err
	}
	return partial.Log.Level, nil
}
