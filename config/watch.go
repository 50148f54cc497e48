package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path whenever it is written or replaced and hands
// the new config to onChange. Reload failures go to onError and the previous
// config stays in effect. Watch returns once the watcher is running; it stops
// when ctx is done.
//
// The model section is informational here: the artifact is loaded once at
// startup and a changed model.path has no effect until restart.
func Watch(ctx context.Context, path string, onChange func(*Config), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	// Watch the directory: editors and config management replace files by rename.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				onChange(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}
