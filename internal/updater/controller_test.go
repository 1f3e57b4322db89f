package updater

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

type fakePrompter struct {
	choice Choice
	err    error
	calls  int
	last   Release
}

func (p *fakePrompter) PromptRestart(_ context.Context, rel Release) (Choice, error) {
	p.calls++
	p.last = rel
	return p.choice, p.err
}

type fakeInstaller struct {
	installed []string
	relaunch  int
	err       error
}

func (i *fakeInstaller) Install(_ context.Context, path string) error {
	if i.err != nil {
		return i.err
	}
	i.installed = append(i.installed, path)
	return nil
}

func (i *fakeInstaller) Relaunch() error {
	i.relaunch++
	return nil
}

type fakeQuitter struct{ count int }

func (q *fakeQuitter) Quit() { q.count++ }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type controllerHarness struct {
	ctrl      *Controller
	feedDir   string
	prompter  *fakePrompter
	installer *fakeInstaller
	quitter   *fakeQuitter
}

func newControllerHarness(t *testing.T, current string, choice Choice) *controllerHarness {
	t.Helper()
	h := &controllerHarness{
		feedDir:   t.TempDir(),
		prompter:  &fakePrompter{choice: choice},
		installer: &fakeInstaller{},
		quitter:   &fakeQuitter{},
	}
	h.ctrl = NewController(ControllerOptions{
		Feed:           NewFeedConfig(h.feedDir),
		CurrentVersion: current,
		StagingDir:     t.TempDir(),
		Prompter:       h.prompter,
		Installer:      h.installer,
		Quitter:        h.quitter,
		Logger:         testLogger(),
	})
	return h
}

func TestControllerRestartInstallsQuitsThenRelaunches(t *testing.T) {
	h := newControllerHarness(t, "1.0.0", ChoiceRestart)
	writeRelease(t, h.feedDir, "1.1.0", []byte("payload"))

	h.ctrl.Check(context.Background())

	if h.prompter.calls != 1 {
		t.Fatalf("prompt calls = %d, want 1", h.prompter.calls)
	}
	if h.prompter.last.Version.String() != "1.1.0" {
		t.Errorf("prompted for %s", h.prompter.last.Version)
	}
	if len(h.installer.installed) != 1 {
		t.Fatalf("installs = %d, want 1", len(h.installer.installed))
	}
	got, err := os.ReadFile(h.installer.installed[0])
	if err != nil || string(got) != "payload" {
		t.Errorf("installed package content = %q, err %v", got, err)
	}
	if h.quitter.count != 1 {
		t.Errorf("quits = %d, want 1", h.quitter.count)
	}
	// The new binary must not start while this host still owns the
	// instance file.
	if h.installer.relaunch != 0 {
		t.Errorf("relaunches before exit = %d, want 0", h.installer.relaunch)
	}
	if !h.ctrl.RestartPending() {
		t.Fatal("RestartPending() = false after accepted restart")
	}

	if err := h.ctrl.Relaunch(); err != nil {
		t.Fatalf("Relaunch() error = %v", err)
	}
	if err := h.ctrl.Relaunch(); err != nil {
		t.Fatalf("second Relaunch() error = %v", err)
	}
	if h.installer.relaunch != 1 {
		t.Errorf("relaunches = %d, want 1", h.installer.relaunch)
	}
	if h.ctrl.RestartPending() {
		t.Error("RestartPending() = true after Relaunch")
	}

	st := h.ctrl.Status()
	if st.State != StateInstalling {
		t.Errorf("state = %s, want %s", st.State, StateInstalling)
	}
	if st.Latest != "1.1.0" {
		t.Errorf("latest = %q", st.Latest)
	}
}

func TestControllerLaterDefers(t *testing.T) {
	h := newControllerHarness(t, "1.0.0", ChoiceLater)
	writeRelease(t, h.feedDir, "1.1.0", []byte("payload"))

	h.ctrl.Check(context.Background())

	if h.prompter.calls != 1 {
		t.Fatalf("prompt calls = %d, want 1", h.prompter.calls)
	}
	if len(h.installer.installed) != 0 || h.quitter.count != 0 {
		t.Errorf("deferred update should not install or quit")
	}
	if err := h.ctrl.Relaunch(); err != nil || h.installer.relaunch != 0 {
		t.Errorf("Relaunch() after deferral = %v with %d relaunches, want no-op", err, h.installer.relaunch)
	}
	if st := h.ctrl.Status(); st.State != StateDeferred {
		t.Errorf("state = %s, want %s", st.State, StateDeferred)
	}
}

func TestControllerUpToDate(t *testing.T) {
	h := newControllerHarness(t, "2.0.0", ChoiceRestart)
	writeRelease(t, h.feedDir, "1.1.0", []byte("old"))

	h.ctrl.Check(context.Background())

	if h.prompter.calls != 0 {
		t.Errorf("prompt calls = %d, want 0", h.prompter.calls)
	}
	st := h.ctrl.Status()
	if st.State != StateIdle || st.LastError != "" {
		t.Errorf("status = %+v, want idle without error", st)
	}
	if st.LastChecked.IsZero() {
		t.Error("LastChecked not recorded")
	}
}

func TestControllerFailuresAreSwallowed(t *testing.T) {
	h := newControllerHarness(t, "1.0.0", ChoiceRestart)
	h.ctrl.SetURL(h.feedDir + "/missing")

	h.ctrl.Check(context.Background())

	st := h.ctrl.Status()
	if st.State != StateIdle {
		t.Errorf("state = %s, want idle", st.State)
	}
	if st.LastError == "" {
		t.Error("expected LastError to be recorded")
	}
	if h.prompter.calls != 0 {
		t.Error("prompt shown after failed check")
	}

	// A later check against a good feed still works.
	h.ctrl.SetURL(h.feedDir)
	writeRelease(t, h.feedDir, "1.2.0", []byte("later"))
	h.ctrl.Check(context.Background())
	if h.prompter.calls != 1 {
		t.Errorf("prompt calls = %d, want 1", h.prompter.calls)
	}
}

func TestControllerInstallFailureReturnsIdle(t *testing.T) {
	h := newControllerHarness(t, "1.0.0", ChoiceRestart)
	h.installer.err = os.ErrPermission
	writeRelease(t, h.feedDir, "1.1.0", []byte("payload"))

	h.ctrl.Check(context.Background())

	if h.quitter.count != 0 {
		t.Error("quit after failed install")
	}
	if st := h.ctrl.Status(); st.State != StateIdle || st.LastError == "" {
		t.Errorf("status = %+v, want idle with error", st)
	}
}

// blockingOpener records the location each check opens and holds the first
// check until released.
type blockingOpener struct {
	mu      sync.Mutex
	opened  []string
	entered chan struct{}
	release chan struct{}
}

func (b *blockingOpener) open(location string) (Feed, error) {
	b.mu.Lock()
	b.opened = append(b.opened, location)
	first := len(b.opened) == 1
	b.mu.Unlock()
	if first {
		close(b.entered)
		<-b.release
	}
	return OpenFeed(location)
}

func TestControllerInFlightKeepsLocation(t *testing.T) {
	feedA := t.TempDir()
	feedB := t.TempDir()
	writeRelease(t, feedA, "1.1.0", []byte("a"))

	opener := &blockingOpener{entered: make(chan struct{}), release: make(chan struct{})}
	prompter := &fakePrompter{choice: ChoiceLater}
	ctrl := NewController(ControllerOptions{
		Feed:           NewFeedConfig(feedA),
		CurrentVersion: "1.0.0",
		StagingDir:     t.TempDir(),
		Prompter:       prompter,
		Logger:         testLogger(),
		OpenFeed:       opener.open,
	})

	done := make(chan struct{})
	go func() {
		ctrl.Check(context.Background())
		close(done)
	}()

	<-opener.entered
	ctrl.SetURL(feedB)

	// A second check while busy is dropped.
	ctrl.Check(context.Background())

	close(opener.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("check did not finish")
	}

	opener.mu.Lock()
	defer opener.mu.Unlock()
	if len(opener.opened) != 1 {
		t.Fatalf("opened %d feeds, want 1", len(opener.opened))
	}
	if opener.opened[0] != feedA {
		t.Errorf("in-flight check used %q, want %q", opener.opened[0], feedA)
	}
	if prompter.calls != 1 || prompter.last.Version.String() != "1.1.0" {
		t.Errorf("prompt = %d calls, last %v", prompter.calls, prompter.last.Version)
	}
	if ctrl.FeedURL() != feedB {
		t.Errorf("FeedURL() = %q, want %q", ctrl.FeedURL(), feedB)
	}
}

func TestScheduleStartupCheck(t *testing.T) {
	t.Run("unpackaged build", func(t *testing.T) {
		h := newControllerHarness(t, "1.0.0", ChoiceLater)
		if stop := h.ctrl.ScheduleStartupCheck(context.Background(), false, 0); stop != nil {
			t.Fatal("expected no check to be scheduled")
		}
	})

	t.Run("packaged build", func(t *testing.T) {
		opened := make(chan string, 1)
		ctrl := NewController(ControllerOptions{
			Feed:           NewFeedConfig(t.TempDir()),
			CurrentVersion: "1.0.0",
			StagingDir:     t.TempDir(),
			Logger:         testLogger(),
			OpenFeed: func(location string) (Feed, error) {
				opened <- location
				return OpenFeed(location)
			},
		})
		stop := ctrl.ScheduleStartupCheck(context.Background(), true, 10*time.Millisecond)
		if stop == nil {
			t.Fatal("expected a scheduled check")
		}
		select {
		case <-opened:
		case <-time.After(5 * time.Second):
			t.Fatal("startup check never ran")
		}
	})
}

func TestReachable(t *testing.T) {
	h := newControllerHarness(t, "1.0.0", ChoiceLater)
	ctx := context.Background()

	if h.ctrl.Reachable(ctx, "") {
		t.Error("feed without an index reported reachable")
	}

	writeRelease(t, h.feedDir, "1.0.1", []byte("x"))
	if !h.ctrl.Reachable(ctx, "") {
		t.Error("current feed should be reachable")
	}
	if h.ctrl.Reachable(ctx, h.feedDir+"/nope") {
		t.Error("missing folder reported reachable")
	}
	if h.ctrl.FeedURL() != h.feedDir {
		t.Error("Reachable must not change the feed location")
	}
}
