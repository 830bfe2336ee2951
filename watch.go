package s3load

import (
	"log/slog"
	"path/filepath"
	"time"

	gfn "github.com/panyam/goutils/fn"
	"github.com/radovskyb/watcher"
)

// Stops watching the source root for changes.
func (s *Site) StopWatching() {
	if s.reloadWatcher != nil {
		s.reloadWatcher.Close()
		s.reloadWatcher = nil
	}
}

// Watches the source root (on the OS filesystem) for changes.  Changed files are
// collected and every ReloadFrequency their cached data, and that of every file
// depending on them, is dropped.  OnChanged hooks run on the watcher's goroutine.
func (s *Site) StartWatching() error {
	if s.reloadWatcher != nil {
		return nil
	}
	s.seal()
	root, err := filepath.Abs(s.SrcDir)
	if err != nil {
		return err
	}

	w := watcher.New()
	w.FilterOps(watcher.Write, watcher.Create, watcher.Remove, watcher.Rename, watcher.Move)
	if err := w.AddRecursive(root); err != nil {
		slog.Error("Error adding files recursive", "root", root, "error", err)
		return err
	}
	s.reloadWatcher = w

	go func() {
		freq := s.ReloadFrequency
		if freq <= 0 {
			freq = 1000 * time.Millisecond
		}
		ticker := time.NewTicker(freq)
		defer ticker.Stop()

		changed := make(map[string]bool)
		for {
			select {
			case event := <-w.Event:
				if event.FileInfo != nil && event.IsDir() {
					continue
				}
				for _, fullpath := range []string{event.Path, event.OldPath} {
					if fullpath == "" {
						continue
					}
					if rel, err := filepath.Rel(root, fullpath); err == nil {
						changed[cleanPath(rel)] = true
					}
				}
			case err := <-w.Error:
				slog.Error("Watcher error", "error", err)
			case <-w.Closed:
				return
			case <-ticker.C:
				if len(changed) > 0 {
					paths := gfn.MapKeys(changed)
					invalidated := s.Invalidate(paths...)
					slog.Info("Sources changed", "changed", paths, "invalidated", invalidated)
					s.Hooks.emitChanged(invalidated)
					changed = make(map[string]bool)
				}
			}
		}
	}()

	go func() {
		slog.Info("Starting watcher", "root", root)
		if err := w.Start(time.Millisecond * 100); err != nil {
			slog.Error("Error starting watcher", "error", err)
		}
	}()
	return nil
}
