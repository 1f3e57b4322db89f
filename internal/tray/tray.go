// Package tray implements the system tray icon and menu for the host.
package tray

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/kgatracker/kgatracker/internal/buildinfo"
	"github.com/kgatracker/kgatracker/internal/lifecycle"
)

// Host is what the tray menu can ask of the application.
type Host interface {
	Show()
	Restore()
	CheckForUpdates()
	Quit()
}

// Tray owns the tray icon. It also receives lifecycle notifications so the
// menu follows the window mode.
type Tray struct {
	host   Host
	logger *slog.Logger

	mu          sync.Mutex
	ready       bool
	mini        bool
	showItem    *systray.MenuItem
	restoreItem *systray.MenuItem
	updateItem  *systray.MenuItem
	quitItem    *systray.MenuItem
	stop        chan struct{}
}

// New creates a tray for host. Call Start to show it.
func New(host Host, logger *slog.Logger) *Tray {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tray{host: host, logger: logger, stop: make(chan struct{})}
}

// Start registers the tray with the platform's UI loop without taking
// over the main goroutine, which belongs to the window.
func (t *Tray) Start() {
	systray.Register(t.onReady, t.onExit)
}

// Stop removes the tray icon.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetIcon(iconData())
	systray.SetTooltip(formatTooltip(false))

	header := systray.AddMenuItem(fmt.Sprintf("KGA Tracker %s", buildinfo.Version), "")
	header.Disable()

	systray.AddSeparator()

	t.mu.Lock()
	t.showItem = systray.AddMenuItem("Show", "Bring the window forward")
	t.restoreItem = systray.AddMenuItem("Restore from mini mode", "Return to the full window")
	t.updateItem = systray.AddMenuItem("Check for updates", "Check the update feed now")
	systray.AddSeparator()
	t.quitItem = systray.AddMenuItem("Quit", "Quit KGA Tracker")
	t.ready = true
	t.applyMode()
	t.mu.Unlock()

	go t.handleClicks()
	t.logger.Info("tray ready")
}

func (t *Tray) onExit() {
	close(t.stop)
}

func (t *Tray) handleClicks() {
	for {
		select {
		case <-t.stop:
			return
		case <-t.showItem.ClickedCh:
			t.host.Show()
		case <-t.restoreItem.ClickedCh:
			t.host.Restore()
		case <-t.updateItem.ClickedCh:
			t.logger.Info("update check requested from tray")
			t.host.CheckForUpdates()
		case <-t.quitItem.ClickedCh:
			t.host.Quit()
		}
	}
}

// Notify implements lifecycle.Notifier. Only mode changes are of interest.
func (t *Tray) Notify(name string, payload ...any) {
	if name != lifecycle.NotifyToggleMiniMode || len(payload) == 0 {
		return
	}
	mini, ok := payload[0].(bool)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.mini = mini
	if t.ready {
		t.applyMode()
	}
}

// Mini reports whether the tray last saw the window in mini mode.
func (t *Tray) Mini() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mini
}

// applyMode must be called with t.mu held.
func (t *Tray) applyMode() {
	if t.mini {
		t.restoreItem.Enable()
	} else {
		t.restoreItem.Disable()
	}
	systray.SetTooltip(formatTooltip(t.mini))
}

func formatTooltip(mini bool) string {
	if mini {
		return "KGA Tracker (mini mode)"
	}
	return "KGA Tracker"
}
