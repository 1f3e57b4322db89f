package desktop

import (
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Window drives the Wails main window. Calls made before the window has
// started are ignored.
type Window struct {
	app  *App
	menu *menu.Menu
}

func (w *Window) IsFullscreen() bool {
	if ctx := w.app.context(); ctx != nil {
		return runtime.WindowIsFullscreen(ctx)
	}
	return false
}

func (w *Window) IsMaximised() bool {
	if ctx := w.app.context(); ctx != nil {
		return runtime.WindowIsMaximised(ctx)
	}
	return false
}

func (w *Window) Fullscreen() {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowFullscreen(ctx)
	}
}

func (w *Window) Unfullscreen() {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowUnfullscreen(ctx)
	}
}

func (w *Window) Maximise() {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowMaximise(ctx)
	}
}

func (w *Window) Unmaximise() {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowUnmaximise(ctx)
	}
}

func (w *Window) Minimise() {
	w.app.minimized.expect()
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowMinimise(ctx)
	}
}

func (w *Window) Unminimise() {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowUnminimise(ctx)
	}
}

func (w *Window) Show() {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowShow(ctx)
	}
}

func (w *Window) SetSize(width, height int) {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowSetSize(ctx, width, height)
	}
}

// SetMenuVisible swaps the application menu for an empty one while hidden.
func (w *Window) SetMenuVisible(visible bool) {
	ctx := w.app.context()
	if ctx == nil {
		return
	}
	if visible {
		runtime.MenuSetApplicationMenu(ctx, w.menu)
	} else {
		runtime.MenuSetApplicationMenu(ctx, menu.NewMenu())
	}
	runtime.MenuUpdateApplicationMenu(ctx)
}

func (w *Window) SetAlwaysOnTop(onTop bool) {
	if ctx := w.app.context(); ctx != nil {
		runtime.WindowSetAlwaysOnTop(ctx, onTop)
	}
}
