// Package desktop connects the lifecycle coordinator to a Wails window.
package desktop

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/kgatracker/kgatracker/internal/lifecycle"
	"github.com/kgatracker/kgatracker/internal/models"
)

const (
	// AppTitle is the window title.
	AppTitle = "KGA Tracker"

	defaultCloseTimeout = 3 * time.Second
	minimizePollEvery   = 250 * time.Millisecond
)

// App holds the Wails runtime context and forwards window hooks to the
// lifecycle loop. It is the coordinator's Notifier and Terminator.
type App struct {
	logger       *slog.Logger
	closeTimeout time.Duration

	mu        sync.Mutex
	ctx       context.Context
	loop      *lifecycle.Loop
	domLoads  int
	stopWatch context.CancelFunc

	window    *Window
	minimized *minimizeWatcher
	quit      func(context.Context)
}

// NewApp creates an App. SetLoop must be called before the window starts.
func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		logger:       logger,
		closeTimeout: defaultCloseTimeout,
		quit:         runtime.Quit,
	}
	a.window = &Window{app: a}
	a.window.menu = a.buildMenu()
	a.minimized = newMinimizeWatcher(func() bool {
		ctx := a.context()
		return ctx != nil && runtime.WindowIsMinimised(ctx)
	}, a.post)
	return a
}

// SetLoop attaches the lifecycle loop that receives window events.
func (a *App) SetLoop(loop *lifecycle.Loop) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loop = loop
}

// Window returns the lifecycle.Window backed by this app.
func (a *App) Window() *Window {
	return a.window
}

// context returns the Wails runtime context, or nil before startup.
func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

func (a *App) getLoop() *lifecycle.Loop {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loop
}

func (a *App) post(ev lifecycle.Event) {
	if loop := a.getLoop(); loop != nil {
		loop.Send(ev)
	}
}

// Notify emits a host → renderer notification.
func (a *App) Notify(name string, payload ...any) {
	ctx := a.context()
	if ctx == nil {
		a.logger.Debug("notification before startup dropped", "name", name)
		return
	}
	runtime.EventsEmit(ctx, name, payload...)
}

// Terminate asks Wails to quit. The loop first learns that a framework
// quit is under way. runtime.Quit runs the close hook, which waits on the
// lifecycle loop, so it is called off the loop's goroutine.
func (a *App) Terminate() {
	ctx := a.context()
	if ctx == nil {
		a.logger.Warn("terminate before startup ignored")
		return
	}
	go func() {
		a.post(lifecycle.QuitImpending{})
		a.quit(ctx)
	}()
}

// Options builds the Wails application options.
func (a *App) Options(assets fs.FS, settings *models.Settings, hidden bool, bind ...interface{}) *options.App {
	opts := &options.App{
		Title:       AppTitle,
		Width:       settings.Window.Width,
		Height:      settings.Window.Height,
		MinWidth:    settings.Window.MiniWidth,
		MinHeight:   settings.Window.MiniHeight,
		Frameless:   settings.Window.Frameless,
		StartHidden: hidden,
		Menu:        a.window.menu,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:     a.startup,
		OnDomReady:    a.domReady,
		OnBeforeClose: a.beforeClose,
		OnShutdown:    a.shutdown,
		Bind:          bind,
	}
	if settings.Window.Fullscreen {
		opts.WindowStartState = options.Fullscreen
	}
	return opts
}

func (a *App) startup(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.ctx = ctx
	a.stopWatch = cancel
	a.mu.Unlock()

	for _, name := range lifecycle.Commands {
		runtime.EventsOn(ctx, name, func(data ...interface{}) {
			var payload any
			if len(data) > 0 {
				payload = data[0]
			}
			if loop := a.getLoop(); loop != nil {
				loop.Command(name, payload)
			}
		})
	}

	go a.minimized.run(watchCtx, minimizePollEvery)

	a.logger.Info("window started")
}

// domReady fires on every page load. Every load after the first is a
// renderer reload.
func (a *App) domReady(_ context.Context) {
	a.mu.Lock()
	a.domLoads++
	reload := a.domLoads > 1
	a.mu.Unlock()

	if reload {
		a.logger.Info("renderer reloaded")
		a.post(lifecycle.RendererAttached{})
	}
}

func (a *App) beforeClose(_ context.Context) (prevent bool) {
	loop := a.getLoop()
	if loop == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.closeTimeout)
	defer cancel()

	d, err := loop.RequestClose(ctx)
	if err != nil && !errors.Is(err, lifecycle.ErrLoopStopped) {
		a.logger.Warn("close decision unavailable", "error", err)
	}
	return closePrevented(d, err)
}

func closePrevented(d lifecycle.CloseDecision, err error) bool {
	if errors.Is(err, lifecycle.ErrLoopStopped) {
		return false
	}
	if err != nil {
		return true
	}
	return d != lifecycle.CloseAllowed
}

func (a *App) shutdown(_ context.Context) {
	a.mu.Lock()
	stop := a.stopWatch
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
	a.post(lifecycle.SessionEnding{Reason: "window shutdown"})
	a.logger.Info("window shut down")
}

func (a *App) buildMenu() *menu.Menu {
	m := menu.NewMenu()
	file := m.AddSubmenu("File")
	file.AddText("Quit", nil, func(_ *menu.CallbackData) {
		if loop := a.getLoop(); loop != nil {
			loop.Quit()
		}
	})
	view := m.AddSubmenu("View")
	view.AddText("Reload", nil, func(_ *menu.CallbackData) {
		if ctx := a.context(); ctx != nil {
			runtime.WindowReload(ctx)
		}
	})
	view.AddText("Minimize", nil, func(_ *menu.CallbackData) {
		a.post(lifecycle.MinimizeRequested{})
	})
	return m
}
