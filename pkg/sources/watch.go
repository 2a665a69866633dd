package sources

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/fsnotify.v1"
)

// Watch starts watching the registry's source directory for YAML changes.
// Each create/write/remove reloads the affected configuration and then
// invokes onChange, which is where callers hook a rebuild. StopWatch ends
// the watch. Watch requires a registry created with a directory.
func (r *Registry) Watch(logger *slog.Logger, onChange func()) (stop func(), err error) {
	if r.dir == "" {
		return nil, fmt.Errorf("no directory configured for watching")
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	stopChan := make(chan struct{})
	go r.watchLoop(watcher, stopChan, logger, onChange)

	if err := watcher.Add(r.dir); err != nil {
		close(stopChan)
		watcher.Close()
		return nil, fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	return func() {
		close(stopChan)
		watcher.Close()
	}, nil
}

// watchLoop handles file system events until stopped.
func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stopChan chan struct{}, logger *slog.Logger, onChange func()) {
	for {
		select {
		case <-stopChan:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".yaml") && !strings.HasSuffix(event.Name, ".yml") {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Write == fsnotify.Write:
				if err := r.LoadFile(event.Name); err != nil {
					logger.Warn("reloading source file failed", "file", event.Name, "error", err)
					continue
				}
				logger.Info("source configuration changed", "file", event.Name)
				if onChange != nil {
					onChange()
				}

			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				// No file-to-source mapping is tracked; rebuild the whole
				// set from defaults plus the surviving files.
				fresh := NewRegistry()
				if err := fresh.LoadDirectory(r.dir); err != nil {
					logger.Warn("reloading source directory failed", "dir", r.dir, "error", err)
					continue
				}
				r.mu.Lock()
				r.sources = fresh.sources
				r.order = fresh.order
				r.mu.Unlock()
				logger.Info("source configuration removed", "file", event.Name)
				if onChange != nil {
					onChange()
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("source watcher error", "error", err)
		}
	}
}
