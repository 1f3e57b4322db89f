// Package main is the entry point for the KGA Tracker desktop host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wailsapp/wails/v2"

	"github.com/kgatracker/kgatracker/frontend"
	"github.com/kgatracker/kgatracker/internal/autostart"
	"github.com/kgatracker/kgatracker/internal/buildinfo"
	"github.com/kgatracker/kgatracker/internal/config"
	"github.com/kgatracker/kgatracker/internal/control"
	"github.com/kgatracker/kgatracker/internal/desktop"
	"github.com/kgatracker/kgatracker/internal/lifecycle"
	"github.com/kgatracker/kgatracker/internal/models"
	"github.com/kgatracker/kgatracker/internal/tray"
	"github.com/kgatracker/kgatracker/internal/updater"
	"github.com/kgatracker/kgatracker/internal/watcher"
)

const (
	appName     = "kgatracker"
	logLevelEnv = "KGATRACKER_LOG_LEVEL"

	// How long the renderer has to save after a termination signal.
	sessionEndGrace = 3 * time.Second
)

func main() {
	hidden := flag.Bool("hidden", false, "Start with the window hidden")
	noTray := flag.Bool("no-tray", false, "Do not show the system tray icon")
	port := flag.Int("port", 0, "Control service port (0 for dynamic allocation)")
	logLevel := flag.String("log-level", os.Getenv(logLevelEnv), "Log level (debug, info, warn, error)")
	flag.Parse()

	if err := config.EnsureGlobalDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create global directory: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog := newLogger(*logLevel)
	defer closeLog()

	// A second launch surfaces the first instance and exits.
	running, info, err := config.IsInstanceRunning()
	if err != nil {
		logger.Warn("failed to check for a running instance", "error", err)
	}
	if running {
		if err := showRunning(info); err != nil {
			logger.Error("another instance is running but did not respond", "port", info.Port, "pid", info.PID, "error", err)
			os.Exit(1)
		}
		logger.Info("another instance is running, asked it to show", "pid", info.PID)
		return
	}

	settings, err := config.LoadSettings()
	if err != nil {
		logger.Warn("failed to load settings, using defaults", "error", err)
		settings = models.NewSettings()
	}

	if err := run(settings, *hidden, *noTray, *port, logger); err != nil {
		logger.Error("host exited with error", "error", err)
		os.Exit(1)
	}
}

func run(settings *models.Settings, hidden, noTray bool, port int, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := desktop.NewApp(logger)

	stagingDir, err := config.EnsureUpdatesDir()
	if err != nil {
		return fmt.Errorf("failed to create updates directory: %w", err)
	}

	// The controller needs the loop as its quitter and the coordinator needs
	// the controller for set-update-url, so the quitter is bound late.
	quitter := &loopQuitter{}
	updates := updater.NewController(updater.ControllerOptions{
		Feed:           updater.NewFeedConfig(settings.Updates.FeedURL),
		CurrentVersion: buildinfo.Version,
		StagingDir:     stagingDir,
		Prompter:       desktop.NewPrompter(app),
		Installer:      &updater.BinaryInstaller{Args: os.Args[1:]},
		Quitter:        quitter,
		Logger:         logger.With("component", "updater"),
	})

	var t *tray.Tray
	notifiers := lifecycle.Notifiers{app}
	if !noTray && settings.Tray.Enabled {
		t = tray.New(&trayHost{quitter: quitter, updates: updates}, logger.With("component", "tray"))
		notifiers = append(notifiers, t)
	}

	coord := lifecycle.NewCoordinator(lifecycle.Options{
		Window:       app.Window(),
		Notifier:     notifiers,
		Terminator:   app,
		Presentation: presentationFrom(settings),
		SetUpdateURL: updates.SetURL,
		Logger:       logger.With("component", "lifecycle"),
	})
	loop := lifecycle.NewLoop(coord, logger.With("component", "loop"))
	quitter.loop = loop
	app.SetLoop(loop)
	go loop.Run(ctx)

	srv, err := control.New(port, loop, updates, logger.With("component", "control"))
	if err != nil {
		return fmt.Errorf("failed to start control service: %w", err)
	}
	go func() {
		if err := srv.Serve(); err != nil {
			logger.Error("control service stopped", "error", err)
		}
	}()
	defer release(srv.Stop, updates.Relaunch, logger)

	if err := config.SaveInstanceInfo(models.NewInstanceInfo("127.0.0.1", srv.Port(), os.Getpid())); err != nil {
		return fmt.Errorf("failed to write instance info: %w", err)
	}
	logger.Info("host started", "version", buildinfo.Version, "port", srv.Port(), "pid", os.Getpid())

	if dir, err := config.GlobalDir(); err == nil {
		if w, err := watcher.New(dir, logger.With("component", "watcher")); err != nil {
			logger.Warn("settings watcher unavailable", "error", err)
		} else if err := w.Start(); err != nil {
			logger.Warn("settings watcher unavailable", "error", err)
		} else {
			defer w.Stop()
			go followSettings(ctx, w, loop, updates, settings.Updates.FeedURL)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go forwardSignals(ctx, sigCh, loop, sessionEndGrace, logger)

	if t != nil {
		t.Start()
		defer t.Stop()
	}

	syncAutostart(settings.StartAtLogin, logger)

	if stop := updates.ScheduleStartupCheck(ctx, buildinfo.IsPackaged() && settings.Updates.CheckOnStartup, settings.Updates.StartupDelay); stop != nil {
		defer stop()
	}

	bridge := desktop.NewBridge(app, updates, logger.With("component", "bridge"))
	if err := wails.Run(app.Options(frontend.Assets(), settings, hidden, bridge)); err != nil {
		return fmt.Errorf("window runtime failed: %w", err)
	}

	logger.Info("host stopped")
	return nil
}

// newLogger writes text logs to stderr and the rotated host log file.
func newLogger(level string) (*slog.Logger, func()) {
	lvl, err := config.ParseLogLevel(level)
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if f, ferr := config.OpenHostLog(); ferr == nil {
		out = io.MultiWriter(os.Stderr, f)
		closeFn = func() { _ = f.Close() }
	} else {
		fmt.Fprintf(os.Stderr, "Failed to open host log: %v\n", ferr)
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl}))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
	}
	return logger, closeFn
}

func showRunning(info *models.InstanceInfo) error {
	client, err := control.Dial(fmt.Sprintf("%s:%d", info.Host, info.Port))
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Show(ctx)
}

func presentationFrom(s *models.Settings) lifecycle.Presentation {
	return lifecycle.Presentation{
		Width:          s.Window.Width,
		Height:         s.Window.Height,
		MiniWidth:      s.Window.MiniWidth,
		MiniHeight:     s.Window.MiniHeight,
		LockFullscreen: s.Window.Fullscreen,
	}
}

// followSettings applies reloaded settings until ctx is done.
func followSettings(ctx context.Context, w *watcher.Watcher, loop *lifecycle.Loop, updates *updater.Controller, feedURL string) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.Events():
			loop.Send(lifecycle.PresentationChanged{Presentation: presentationFrom(ev.Settings)})
			if ev.Settings.Updates.FeedURL != feedURL {
				feedURL = ev.Settings.Updates.FeedURL
				updates.SetURL(feedURL)
			}
		}
	}
}

// release stops the control service and removes the instance file, then
// starts an installed update if one is waiting. The order matters: a
// relaunched host that still found this instance would hand off to it and
// exit.
func release(stopServer func(), relaunch func() error, logger *slog.Logger) {
	stopServer()
	if err := config.RemoveInstanceInfo(); err != nil {
		logger.Warn("failed to remove instance info", "error", err)
	}
	if err := relaunch(); err != nil {
		logger.Error("failed to start updated host", "error", err)
	}
}

// sessionEnder is the part of the lifecycle loop a termination signal uses.
type sessionEnder interface {
	Send(ev lifecycle.Event)
	Quit()
}

// forwardSignals turns the first termination signal into a session end so
// the renderer can save, then quits after grace. A second signal quits at
// once.
func forwardSignals(ctx context.Context, sigCh <-chan os.Signal, host sessionEnder, grace time.Duration, logger *slog.Logger) {
	var sig os.Signal
	select {
	case <-ctx.Done():
		return
	case sig = <-sigCh:
	}
	logger.Info("received signal, ending session", "signal", sig.String(), "grace", grace)
	host.Send(lifecycle.SessionEnding{Reason: sig.String()})

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		logger.Info("renderer did not quit in time, quitting")
	case sig = <-sigCh:
		logger.Info("received second signal, quitting", "signal", sig.String())
	}
	host.Quit()
}

func syncAutostart(enabled bool, logger *slog.Logger) {
	entry, err := autostart.Current(appName, "--hidden")
	if err == nil {
		err = autostart.Sync(entry, enabled)
	}
	switch {
	case err == nil:
	case errors.Is(err, autostart.ErrUnsupported):
		logger.Debug("start at login not supported on this platform")
	default:
		logger.Warn("failed to update start at login", "error", err)
	}
}

type loopQuitter struct {
	loop *lifecycle.Loop
}

func (q *loopQuitter) Quit() {
	if q.loop != nil {
		q.loop.Quit()
	}
}

// trayHost maps tray menu clicks onto the lifecycle loop and updater.
type trayHost struct {
	quitter *loopQuitter
	updates *updater.Controller
}

func (h *trayHost) Show() {
	if h.quitter.loop != nil {
		h.quitter.loop.Send(lifecycle.ShowRequested{})
	}
}

func (h *trayHost) Restore() {
	if h.quitter.loop != nil {
		h.quitter.loop.Command(lifecycle.CmdRestoreWindow, nil)
	}
}

func (h *trayHost) CheckForUpdates() { h.updates.CheckAsync(context.Background()) }

func (h *trayHost) Quit() { h.quitter.Quit() }
