package source

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"bridge/internal/logging"
)

// WatchDir evicts cached documents of a local mirror's version whenever a
// file under {root}/{version} changes. It returns once the watcher is
// running; the watcher stops when ctx is done.
func WatchDir(ctx context.Context, root string, cache *Cache) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if err := addTree(w, root); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) {
					// New version or list directories need watching too.
					_ = addTree(w, ev.Name)
				}
				version := versionOf(root, ev.Name)
				if version == "" {
					continue
				}
				n, err := cache.EvictVersion(version)
				if err != nil {
					logging.CacheWarn("evict %s after %s: %v", version, ev.Name, err)
					continue
				}
				logging.SourceDebug("%s changed, evicted %d entries of %s", ev.Name, n, version)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logging.CacheWarn("watch %s: %v", root, err)
			}
		}
	}()
	return nil
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
		}
		return nil
	})
}

// versionOf returns the first path element of name below root.
func versionOf(root, name string) string {
	rel, err := filepath.Rel(root, name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}
