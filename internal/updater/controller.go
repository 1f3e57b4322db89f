package updater

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the update controller's lifecycle position.
type State string

const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateDownloading State = "downloading"
	StateDownloaded  State = "downloaded"
	StatePrompting   State = "prompting"
	StateInstalling  State = "installing"
	StateDeferred    State = "deferred"
)

// Choice is the user's answer to the restart prompt.
type Choice int

const (
	ChoiceLater Choice = iota
	ChoiceRestart
)

// Prompter asks the user whether to restart into a downloaded release.
type Prompter interface {
	PromptRestart(ctx context.Context, rel Release) (Choice, error)
}

// Installer replaces the running binary and starts the new one.
// Relaunch is only called after the host has let go of its instance file
// and control port.
type Installer interface {
	Install(ctx context.Context, path string) error
	Relaunch() error
}

// Quitter ends the application through the normal quit path.
type Quitter interface {
	Quit()
}

// Status is a snapshot of the controller.
type Status struct {
	State       State
	FeedURL     string
	Current     string
	Latest      string
	LastChecked time.Time
	LastError   string
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Feed           *FeedConfig
	CurrentVersion string
	StagingDir     string
	Prompter       Prompter
	Installer      Installer
	Quitter        Quitter
	Logger         *slog.Logger

	// OpenFeed resolves a feed location. Defaults to OpenFeed.
	OpenFeed func(location string) (Feed, error)
}

// Controller runs update checks: check, download, prompt, then install or defer.
type Controller struct {
	feed      *FeedConfig
	current   string
	stageDir  string
	prompter  Prompter
	installer Installer
	quitter   Quitter
	openFeed  func(string) (Feed, error)
	logger    *slog.Logger

	mu          sync.Mutex
	busy        bool
	restart     bool
	state       State
	latest      string
	lastChecked time.Time
	lastErr     error
}

// NewController creates an idle controller.
func NewController(opts ControllerOptions) *Controller {
	c := &Controller{
		feed:      opts.Feed,
		current:   opts.CurrentVersion,
		stageDir:  opts.StagingDir,
		prompter:  opts.Prompter,
		installer: opts.Installer,
		quitter:   opts.Quitter,
		openFeed:  opts.OpenFeed,
		logger:    opts.Logger,
		state:     StateIdle,
	}
	if c.feed == nil {
		c.feed = NewFeedConfig("")
	}
	if c.openFeed == nil {
		c.openFeed = OpenFeed
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// SetURL replaces the feed location for subsequent checks.
func (c *Controller) SetURL(location string) {
	c.feed.Set(location)
	c.logger.Info("update feed changed", "feed", location)
}

// FeedURL returns the current feed location.
func (c *Controller) FeedURL() string {
	return c.feed.URL()
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Status{
		State:       c.state,
		FeedURL:     c.feed.URL(),
		Current:     c.current,
		Latest:      c.latest,
		LastChecked: c.lastChecked,
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// ScheduleStartupCheck schedules one check after delay when packaged is
// true. It returns a stop function, or nil when nothing was scheduled.
func (c *Controller) ScheduleStartupCheck(ctx context.Context, packaged bool, delay time.Duration) (stop func() bool) {
	if !packaged {
		c.logger.Debug("startup update check skipped", "reason", "unpackaged build")
		return nil
	}
	c.logger.Info("startup update check scheduled", "delay", delay)
	t := time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		c.Check(ctx)
	})
	return t.Stop
}

// CheckAsync runs Check in a new goroutine.
func (c *Controller) CheckAsync(ctx context.Context) {
	go c.Check(ctx)
}

// Check runs one full update cycle against the feed location current at
// the time it starts. A check already in progress makes this a no-op.
// Failures are logged and leave the controller idle.
func (c *Controller) Check(ctx context.Context) {
	if !c.begin() {
		c.logger.Info("update check already running")
		return
	}

	location := c.feed.URL()
	err := c.run(ctx, location)

	c.mu.Lock()
	c.busy = false
	c.lastChecked = time.Now()
	c.lastErr = nil
	if err != nil {
		c.state = StateIdle
		if !errors.Is(err, ErrNoUpdate) {
			c.lastErr = err
		}
	}
	c.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, ErrNoUpdate):
		c.logger.Info("up to date", "version", c.current, "feed", location)
	default:
		c.logger.Warn("update check failed", "feed", location, "error", err)
	}
}

func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) run(ctx context.Context, location string) error {
	c.setState(StateChecking)
	c.logger.Info("checking for updates", "feed", location)

	feed, err := c.openFeed(location)
	if err != nil {
		return err
	}
	rel, err := Latest(ctx, feed, c.current)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.latest = rel.Version.String()
	c.mu.Unlock()
	c.logger.Info("update available", "current", c.current, "latest", rel.Version.String(), "file", rel.File)

	c.setState(StateDownloading)
	path, err := Download(ctx, feed, rel, c.stageDir)
	if err != nil {
		return err
	}
	c.setState(StateDownloaded)
	c.logger.Info("update downloaded", "path", path)

	if c.prompter == nil {
		c.setState(StateDeferred)
		return nil
	}
	c.setState(StatePrompting)
	choice, err := c.prompter.PromptRestart(ctx, rel)
	if err != nil {
		return err
	}
	if choice != ChoiceRestart {
		c.setState(StateDeferred)
		c.logger.Info("update deferred", "version", rel.Version.String())
		return nil
	}

	c.setState(StateInstalling)
	if c.installer == nil {
		return errors.New("no installer configured")
	}
	if err := c.installer.Install(ctx, path); err != nil {
		return err
	}
	c.logger.Info("update installed, restarting", "version", rel.Version.String())

	c.mu.Lock()
	c.restart = true
	c.mu.Unlock()
	if c.quitter != nil {
		c.quitter.Quit()
	}
	return nil
}

// RestartPending reports whether an installed update is waiting for the
// host to exit.
func (c *Controller) RestartPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.restart
}

// Relaunch starts the installed update if the user chose to restart, and
// does nothing otherwise. The host calls it on its way out, once this
// instance no longer looks like it is running.
func (c *Controller) Relaunch() error {
	c.mu.Lock()
	pending := c.restart
	c.restart = false
	c.mu.Unlock()

	if !pending || c.installer == nil {
		return nil
	}
	c.logger.Info("starting updated host")
	return c.installer.Relaunch()
}

// Reachable reports whether location serves a readable release index.
// An empty location checks the current feed.
func (c *Controller) Reachable(ctx context.Context, location string) bool {
	if location == "" {
		location = c.feed.URL()
	}
	feed, err := c.openFeed(location)
	if err != nil {
		c.logger.Info("update server unreachable", "feed", location, "error", err)
		return false
	}
	if _, err := feed.Releases(ctx); err != nil {
		c.logger.Info("update server unreachable", "feed", location, "error", err)
		return false
	}
	return true
}
