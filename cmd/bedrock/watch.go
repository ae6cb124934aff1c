package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the scene file must stay quiet before re-rendering.
// Editors often write a file in several steps.
const settle = 100 * time.Millisecond

// watchFile renders path, then renders again after every change until ctx
// is done. Render errors are logged and do not stop the watch.
func watchFile(ctx context.Context, cfg Config, path string, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors that save by rename replace the file.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	target := filepath.Clean(path)

	render := func() {
		if err := renderFile(cfg, path, log); err != nil {
			log.Error("bedrock: render failed", "scene", path, "err", err)
		}
	}
	render()

	timer := time.NewTimer(settle)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("bedrock: scene changed", "op", ev.Op.String())
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("bedrock: watch error", "err", err)
		case <-timer.C:
			render()
		}
	}
}
