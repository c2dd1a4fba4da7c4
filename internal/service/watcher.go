package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the manifest directory and schedules a debounced
// reconciliation pass whenever a manifest file changes. It blocks until
// the context is cancelled.
func (r *Reconciler) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(r.manifestDir); err != nil {
		return err
	}
	r.log.Info().Str("dir", r.manifestDir).Msg("watching manifest directory")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isManifest(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("manifest changed")
			r.TriggerSync()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn().Err(err).Msg("manifest watcher error")
		}
	}
}

func isManifest(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
