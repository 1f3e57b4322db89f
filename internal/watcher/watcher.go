// Package watcher reloads settings.yaml when it changes on disk.
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kgatracker/kgatracker/internal/config"
	"github.com/kgatracker/kgatracker/internal/models"
)

const debounceDelay = 100 * time.Millisecond

// Event carries freshly loaded settings.
type Event struct {
	Path     string
	Settings *models.Settings
}

// Watcher watches the global directory for settings changes.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	dir        string
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
	logger     *slog.Logger
}

// New creates a watcher for settings.yaml inside dir.
func New(dir string, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		dir:        dir,
		eventsChan: make(chan Event, 8),
		done:       make(chan struct{}),
		debounce:   make(map[string]*time.Timer),
		logger:     logger,
	}, nil
}

// Events returns the channel for receiving reloaded settings.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts watching. The directory must exist.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Atomic saves (write temp, rename over target) show up as Create or
	// Rename on the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if filepath.Base(event.Name) != config.SettingsFileName {
		return
	}

	w.debounceEvent(event.Name, func() {
		w.reload(event.Name)
	})
}

func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

func (w *Watcher) reload(path string) {
	settings, err := config.LoadSettingsFrom(path)
	if err != nil {
		w.logger.Warn("settings reload rejected, keeping current settings", "path", path, "error", err)
		return
	}
	w.logger.Info("settings reloaded", "path", path)

	select {
	case w.eventsChan <- Event{Path: path, Settings: settings}:
	case <-w.done:
	}
}
