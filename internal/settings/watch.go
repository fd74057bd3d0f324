package settings

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchReload watches the store's file for external edits (an operator
// hand-editing the INI file, or a config-management tool dropping a new
// one) and reloads it on write/create, broadcasting onReload afterward.
// Mirrors the teacher's auth.Service file-watch pattern. The returned
// function stops watching.
func (s *Store) WatchReload(onReload func()) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(s.entriesDir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		target := s.path()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if err := s.Load(); err != nil {
					slog.Warn("settings: reload failed", "id", s.id, "err", err)
					continue
				}
				if onReload != nil {
					onReload()
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("settings: watcher error", "id", s.id, "err", werr)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
