package lifecycle

import (
	"log/slog"
)

// Window is the physical window. Only the coordinator mutates it.
type Window interface {
	IsFullscreen() bool
	IsMaximised() bool
	Fullscreen()
	Unfullscreen()
	Maximise()
	Unmaximise()
	Minimise()
	Unminimise()
	Show()
	SetSize(width, height int)
	SetMenuVisible(visible bool)
	SetAlwaysOnTop(onTop bool)
}

// Notifier delivers host → renderer notifications.
type Notifier interface {
	Notify(name string, payload ...any)
}

// Notifiers fans a notification out to several notifiers in order.
type Notifiers []Notifier

func (ns Notifiers) Notify(name string, payload ...any) {
	for _, n := range ns {
		n.Notify(name, payload...)
	}
}

// Terminator ends the host process. Terminate must not block on the
// coordinator's loop.
type Terminator interface {
	Terminate()
}

// CloseDecision is the coordinator's answer to a close attempt.
type CloseDecision int

const (
	CloseSuppressed CloseDecision = iota
	CloseAllowed
)

func (d CloseDecision) String() string {
	if d == CloseAllowed {
		return "allowed"
	}
	return "suppressed"
}

// State is a read-only snapshot of the coordinator.
type State struct {
	Mode         Mode
	ShuttingDown bool
	Quitting     bool
	Minimizing   bool
	Pending      []Pending
}

// Options configures a Coordinator.
type Options struct {
	Window       Window
	Notifier     Notifier
	Terminator   Terminator
	Presentation Presentation

	// SetUpdateURL receives set-update-url payloads. May be nil.
	SetUpdateURL func(string)

	Logger *slog.Logger
}

// Coordinator owns the window mode, the lifecycle flags and the outstanding
// confirmations. It is not safe for concurrent use; drive it from a Loop.
type Coordinator struct {
	window       Window
	notify       Notifier
	term         Terminator
	presentation Presentation
	setUpdateURL func(string)
	logger       *slog.Logger

	flags    Flags
	mode     Mode
	confirms *Confirmations

	// Presentation to return to when leaving mini mode.
	wasFullscreen bool
	wasMaximised  bool
}

// NewCoordinator creates a coordinator in Normal mode with all flags clear.
func NewCoordinator(opts Options) *Coordinator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		window:       opts.Window,
		notify:       opts.Notifier,
		term:         opts.Terminator,
		presentation: opts.Presentation,
		setUpdateURL: opts.SetUpdateURL,
		logger:       logger,
		mode:         ModeNormal,
		confirms:     NewConfirmations(opts.Notifier, logger),
	}
}

// Mode returns the current window mode.
func (c *Coordinator) Mode() Mode { return c.mode }

// Flags returns a copy of the lifecycle flags.
func (c *Coordinator) Flags() Flags { return c.flags }

// State returns a snapshot of the coordinator.
func (c *Coordinator) State() State {
	return State{
		Mode:         c.mode,
		ShuttingDown: c.flags.ShuttingDown(),
		Quitting:     c.flags.Quitting(),
		Minimizing:   c.flags.Minimizing(),
		Pending:      c.confirms.Outstanding(),
	}
}

// HandleClose decides a window close attempt.
func (c *Coordinator) HandleClose() CloseDecision {
	switch {
	case c.flags.ShuttingDown() && !c.flags.Quitting():
		c.logger.Info("close during shutdown, notifying renderer")
		c.notify.Notify(NotifyAppClosing)
		return CloseSuppressed

	case c.flags.Quitting():
		c.logger.Info("close allowed", "shutting_down", c.flags.ShuttingDown())
		return CloseAllowed

	case c.mode == ModeNormal:
		c.confirms.Request(TransitionMiniMode)
		return CloseSuppressed

	default:
		c.logger.Debug("close ignored in mini mode")
		return CloseSuppressed
	}
}

// HandleMinimize intercepts an OS minimize. Unless the minimize is the one
// the coordinator started itself, the window is pulled back and the
// renderer is asked for permission.
func (c *Coordinator) HandleMinimize() {
	if c.flags.Minimizing() {
		c.logger.Debug("programmatic minimize passing through")
		return
	}
	c.window.Unminimise()
	c.confirms.Request(TransitionMinimize)
}

// HandleUnminimize records that the window came back from the minimized
// state.
func (c *Coordinator) HandleUnminimize() {
	if c.flags.Minimizing() {
		c.flags.setMinimizing(false)
		c.logger.Debug("minimize cycle finished")
	}
}

// HandleSessionEnd records an OS session end (logoff, shutdown, termination
// signal) and gives the renderer its save-now notice.
func (c *Coordinator) HandleSessionEnd(reason string) {
	if c.flags.MarkShuttingDown() {
		c.logger.Info("session ending", "reason", reason)
	}
	c.notify.Notify(NotifyAppClosing)
}

// HandleQuitImpending records that the framework is about to quit.
func (c *Coordinator) HandleQuitImpending() {
	if c.flags.MarkShuttingDown() {
		c.logger.Info("framework quit impending")
	}
}

// HandleCommand dispatches a renderer command. Commands outside the
// allowlist are ignored and reported as not handled.
func (c *Coordinator) HandleCommand(name string, payload any) bool {
	switch name {
	case CmdRestoreWindow:
		c.RestoreWindow()
	case CmdCloseWindow:
		c.CloseWindow()
	case CmdAllowMiniMode:
		c.AllowMiniMode()
	case CmdAllowMinimize:
		c.AllowMinimize()
	case CmdQuitApp:
		c.Quit()
	case CmdSetUpdateURL:
		url, ok := payload.(string)
		if !ok || url == "" {
			c.logger.Warn("ignoring set-update-url without a location", "payload", payload)
			return true
		}
		if c.setUpdateURL != nil {
			c.setUpdateURL(url)
		}
	default:
		return false
	}
	return true
}

// RestoreWindow leaves mini mode. It is a no-op in Normal mode.
func (c *Coordinator) RestoreWindow() {
	if c.mode != ModeMini {
		return
	}

	c.window.SetAlwaysOnTop(false)
	c.window.SetSize(c.presentation.Width, c.presentation.Height)
	c.window.SetMenuVisible(true)
	switch {
	case c.wasFullscreen || c.presentation.LockFullscreen:
		c.window.Fullscreen()
	case c.wasMaximised:
		c.window.Maximise()
	}
	c.window.Show()

	c.mode = ModeNormal
	c.logger.Info("left mini mode")
	c.notify.Notify(NotifyToggleMiniMode, false)
}

// CloseWindow runs the close path on behalf of the renderer's own close
// button. Since no OS close is in progress, an allowed close terminates.
func (c *Coordinator) CloseWindow() {
	if c.HandleClose() == CloseAllowed {
		c.term.Terminate()
	}
}

// AllowMiniMode commits Normal → Mini if that is still valid now.
func (c *Coordinator) AllowMiniMode() {
	if _, solicited := c.confirms.Resolve(TransitionMiniMode); !solicited {
		c.logger.Debug("unsolicited mini mode approval")
	}
	if c.flags.Quitting() || c.flags.ShuttingDown() {
		c.logger.Info("mini mode approval arrived after quit, ignoring")
		return
	}
	if c.mode == ModeMini {
		return
	}

	c.wasFullscreen = c.window.IsFullscreen()
	c.wasMaximised = c.window.IsMaximised()
	if c.wasFullscreen {
		c.window.Unfullscreen()
	}
	if c.wasMaximised {
		c.window.Unmaximise()
	}
	c.window.SetSize(c.presentation.MiniWidth, c.presentation.MiniHeight)
	c.window.SetMenuVisible(false)
	c.window.SetAlwaysOnTop(true)

	c.mode = ModeMini
	c.logger.Info("entered mini mode")
	c.notify.Notify(NotifyToggleMiniMode, true)
}

// AllowMinimize performs the deferred minimize if that is still valid now.
func (c *Coordinator) AllowMinimize() {
	c.confirms.Resolve(TransitionMinimize)
	if c.flags.Quitting() || c.flags.ShuttingDown() {
		c.logger.Info("minimize approval arrived after quit, ignoring")
		return
	}
	if c.flags.Minimizing() {
		return
	}
	c.flags.setMinimizing(true)
	c.window.Minimise()
}

// Quit is the explicit termination path. Once called, every later close
// attempt is allowed.
func (c *Coordinator) Quit() {
	if c.flags.MarkQuitting() {
		c.logger.Info("quit requested")
	}
	c.confirms.Reset()
	c.term.Terminate()
}

// RendererAttached drops outstanding checks when the renderer (re)loads,
// since a fresh renderer will never answer checks sent to its predecessor.
func (c *Coordinator) RendererAttached() {
	c.confirms.Reset()
	c.notify.Notify(NotifyToggleMiniMode, c.mode == ModeMini)
}

// SetPresentation replaces the window geometry. A window already in mini
// mode is resized right away.
func (c *Coordinator) SetPresentation(p Presentation) {
	c.presentation = p
	if c.mode == ModeMini {
		c.window.SetSize(p.MiniWidth, p.MiniHeight)
	}
}

// ShowWindow brings the window forward without changing its mode.
func (c *Coordinator) ShowWindow() {
	c.window.Unminimise()
	c.window.Show()
}
