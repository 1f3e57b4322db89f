package desktop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kgatracker/kgatracker/internal/export"
	"github.com/kgatracker/kgatracker/internal/lifecycle"
	"github.com/kgatracker/kgatracker/internal/updater"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApp wires an App to a running loop. The app never starts a
// window, so every window call is a no-op.
func newTestApp(t *testing.T) (*App, *lifecycle.Loop) {
	t.Helper()
	app := NewApp(testLogger())
	coord := lifecycle.NewCoordinator(lifecycle.Options{
		Window:     app.Window(),
		Notifier:   app,
		Terminator: app,
		Logger:     testLogger(),
	})
	loop := lifecycle.NewLoop(coord, testLogger())
	app.SetLoop(loop)

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return app, loop
}

func TestBeforeClose(t *testing.T) {
	app, loop := newTestApp(t)

	if !app.beforeClose(context.Background()) {
		t.Fatal("close in normal mode should be prevented")
	}

	loop.Quit()
	if app.beforeClose(context.Background()) {
		t.Fatal("close after quit should be allowed")
	}
}

func TestBeforeCloseWithoutLoop(t *testing.T) {
	app := NewApp(testLogger())
	if app.beforeClose(context.Background()) {
		t.Fatal("close without a loop should be allowed")
	}
}

func TestClosePrevented(t *testing.T) {
	tests := []struct {
		name     string
		decision lifecycle.CloseDecision
		err      error
		want     bool
	}{
		{name: "allowed", decision: lifecycle.CloseAllowed, want: false},
		{name: "suppressed", decision: lifecycle.CloseSuppressed, want: true},
		{name: "loop stopped", err: lifecycle.ErrLoopStopped, want: false},
		{name: "timeout", err: context.DeadlineExceeded, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := closePrevented(tt.decision, tt.err); got != tt.want {
				t.Errorf("closePrevented(%v, %v) = %v, want %v", tt.decision, tt.err, got, tt.want)
			}
		})
	}
}

func TestDomReadyReloadClearsPending(t *testing.T) {
	app, loop := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	app.domReady(ctx)
	if _, err := loop.RequestClose(ctx); err != nil {
		t.Fatal(err)
	}
	state, _ := loop.State(ctx)
	if len(state.Pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(state.Pending))
	}

	app.domReady(ctx)
	state, _ = loop.State(ctx)
	if len(state.Pending) != 0 {
		t.Errorf("pending after reload = %d, want 0", len(state.Pending))
	}
}

func TestMinimizeWatcher(t *testing.T) {
	var posted []lifecycle.Event
	minimised := false
	w := newMinimizeWatcher(
		func() bool { return minimised },
		func(ev lifecycle.Event) { posted = append(posted, ev) },
	)

	w.poll()
	if len(posted) != 0 {
		t.Fatalf("posted %d events without a change", len(posted))
	}

	minimised = true
	w.poll()
	w.poll()
	minimised = false
	w.poll()

	if len(posted) != 2 {
		t.Fatalf("posted %d events, want 2", len(posted))
	}
	if _, ok := posted[0].(lifecycle.MinimizeRequested); !ok {
		t.Errorf("first event = %T, want MinimizeRequested", posted[0])
	}
	if _, ok := posted[1].(lifecycle.Unminimized); !ok {
		t.Errorf("second event = %T, want Unminimized", posted[1])
	}
}

func TestMinimizeWatcherExpectedMinimize(t *testing.T) {
	tests := []struct {
		name   string
		states []bool // polled minimized state, one per poll
		wait   time.Duration
		want   []string
	}{
		{
			name:   "restored before any poll",
			states: []bool{false, false},
			wait:   time.Second,
			want:   []string{"unminimized"},
		},
		{
			name:   "not applied yet",
			states: []bool{false},
			wait:   time.Millisecond,
			want:   nil,
		},
		{
			name:   "seen then restored",
			states: []bool{true, false, false},
			wait:   time.Second,
			want:   []string{"minimize", "unminimized"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			clock := time.Unix(0, 0)
			minimised := false
			w := newMinimizeWatcher(
				func() bool { return minimised },
				func(ev lifecycle.Event) {
					switch ev.(type) {
					case lifecycle.MinimizeRequested:
						got = append(got, "minimize")
					case lifecycle.Unminimized:
						got = append(got, "unminimized")
					}
				},
			)
			w.now = func() time.Time { return clock }

			w.expect()
			for _, st := range tt.states {
				clock = clock.Add(tt.wait)
				minimised = st
				w.poll()
			}

			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("events = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

// An approved minimize the user undoes between two polls must not let the
// next user minimize skip the check.
func TestQuickRestoreKeepsMinimizeCheck(t *testing.T) {
	app, loop := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	clock := time.Unix(0, 0)
	minimised := false
	app.minimized.isMinimised = func() bool { return minimised }
	app.minimized.now = func() time.Time { return clock }

	loop.Command(lifecycle.CmdAllowMinimize, nil)
	state, err := loop.State(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !state.Minimizing {
		t.Fatal("allow-minimize should start a programmatic minimize")
	}

	// The window came back before the watcher ever saw it minimized.
	clock = clock.Add(time.Second)
	app.minimized.poll()
	state, _ = loop.State(ctx)
	if state.Minimizing {
		t.Fatal("minimize cycle still open after the window was restored")
	}

	minimised = true
	clock = clock.Add(time.Second)
	app.minimized.poll()
	state, _ = loop.State(ctx)
	if len(state.Pending) != 1 || state.Pending[0].Transition != lifecycle.TransitionMinimize {
		t.Errorf("pending = %+v, want one minimize check", state.Pending)
	}
}

func TestTerminateMarksQuitImpending(t *testing.T) {
	app, loop := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	quitCalled := make(chan struct{})
	app.mu.Lock()
	app.ctx = context.Background()
	app.mu.Unlock()
	app.quit = func(context.Context) { close(quitCalled) }

	app.Terminate()
	select {
	case <-quitCalled:
	case <-ctx.Done():
		t.Fatal("runtime quit not called")
	}

	state, err := loop.State(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !state.ShuttingDown {
		t.Error("ShuttingDown = false after terminate")
	}
	if state.Quitting {
		t.Error("Quitting = true without a quit command")
	}
}

func TestSelectFolder(t *testing.T) {
	app := NewApp(testLogger())
	b := NewBridge(app, nil, testLogger())

	if b.SelectFolder() != nil {
		t.Fatal("dialog before startup should return nil")
	}

	app.ctx = context.Background()
	var titles []string
	answer, answerErr := "/data/exports", error(nil)
	b.openDirectory = func(_ context.Context, title string) (string, error) {
		titles = append(titles, title)
		return answer, answerErr
	}

	got := b.SelectFolder()
	if got == nil || *got != "/data/exports" {
		t.Fatalf("SelectFolder() = %v, want /data/exports", got)
	}
	if titles[0] != "Select Folder for Auto-Export" {
		t.Errorf("dialog title = %q", titles[0])
	}

	answer = ""
	if got := b.SelectUpdateFolder(); got != nil {
		t.Errorf("canceled dialog = %q, want nil", *got)
	}

	answer, answerErr = "", errors.New("dialog failed")
	if got := b.SelectFolder(); got != nil {
		t.Errorf("failed dialog = %q, want nil", *got)
	}
}

type fakeFeedChecker struct {
	asked []string
	ok    bool
}

func (f *fakeFeedChecker) Reachable(_ context.Context, location string) bool {
	f.asked = append(f.asked, location)
	return f.ok
}

func TestCheckUpdateServer(t *testing.T) {
	feeds := &fakeFeedChecker{ok: true}
	b := NewBridge(NewApp(testLogger()), feeds, testLogger())

	if !b.CheckUpdateServer(`\\server\share`) {
		t.Error("expected reachable")
	}
	feeds.ok = false
	if b.CheckUpdateServer("") {
		t.Error("expected unreachable")
	}
	if len(feeds.asked) != 2 || feeds.asked[0] != `\\server\share` || feeds.asked[1] != "" {
		t.Errorf("asked = %q", feeds.asked)
	}

	if NewBridge(NewApp(testLogger()), nil, testLogger()).CheckUpdateServer("") {
		t.Error("no checker should report unreachable")
	}
}

func TestSaveCSVAuto(t *testing.T) {
	dir := t.TempDir()
	b := NewBridge(NewApp(testLogger()), nil, testLogger())

	ok := b.SaveCSVAuto(export.Request{FolderPath: dir, FileName: "kga.csv", CSVContent: "a,b\n1,2\n"})
	if !ok {
		t.Fatal("SaveCSVAuto() = false, want true")
	}
	got, err := os.ReadFile(filepath.Join(dir, "kga.csv"))
	if err != nil || string(got) != "a,b\n1,2\n" {
		t.Errorf("file content = %q, err %v", got, err)
	}

	if b.SaveCSVAuto(export.Request{FolderPath: dir, CSVContent: "x"}) {
		t.Error("missing file name should fail")
	}
	if b.SaveCSVAuto(export.Request{FolderPath: filepath.Join(dir, "missing"), FileName: "a.csv", CSVContent: "x"}) {
		t.Error("missing folder should fail")
	}
}

func TestChoiceFor(t *testing.T) {
	tests := []struct {
		answer string
		want   updater.Choice
	}{
		{"Restart", updater.ChoiceRestart},
		{"Yes", updater.ChoiceRestart},
		{"Later", updater.ChoiceLater},
		{"No", updater.ChoiceLater},
		{"", updater.ChoiceLater},
	}
	for _, tt := range tests {
		if got := choiceFor(tt.answer); got != tt.want {
			t.Errorf("choiceFor(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}

func TestPromptBeforeStartup(t *testing.T) {
	p := NewPrompter(NewApp(testLogger()))
	choice, err := p.PromptRestart(context.Background(), updater.Release{})
	if err == nil || choice != updater.ChoiceLater {
		t.Errorf("PromptRestart() = %v, %v; want later with error", choice, err)
	}
}
