package lifecycle

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

type fakeWindow struct {
	fullscreen  bool
	maximised   bool
	minimised   bool
	onTop       bool
	menuVisible bool
	width       int
	height      int
	calls       []string
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{menuVisible: true, width: 1000, height: 800}
}

func (w *fakeWindow) record(format string, args ...any) {
	w.calls = append(w.calls, fmt.Sprintf(format, args...))
}

func (w *fakeWindow) IsFullscreen() bool { return w.fullscreen }
func (w *fakeWindow) IsMaximised() bool  { return w.maximised }
func (w *fakeWindow) Fullscreen()        { w.fullscreen = true; w.record("fullscreen") }
func (w *fakeWindow) Unfullscreen()      { w.fullscreen = false; w.record("unfullscreen") }
func (w *fakeWindow) Maximise()          { w.maximised = true; w.record("maximise") }
func (w *fakeWindow) Unmaximise()        { w.maximised = false; w.record("unmaximise") }
func (w *fakeWindow) Minimise()          { w.minimised = true; w.record("minimise") }
func (w *fakeWindow) Unminimise()        { w.minimised = false; w.record("unminimise") }
func (w *fakeWindow) Show()              { w.record("show") }

func (w *fakeWindow) SetSize(width, height int) {
	w.width, w.height = width, height
	w.record("size %dx%d", width, height)
}

func (w *fakeWindow) SetMenuVisible(visible bool) {
	w.menuVisible = visible
	w.record("menu %v", visible)
}

func (w *fakeWindow) SetAlwaysOnTop(onTop bool) {
	w.onTop = onTop
	w.record("ontop %v", onTop)
}

type notification struct {
	name    string
	payload []any
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(name string, payload ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{name: name, payload: payload})
}

func (n *fakeNotifier) count(name string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, s := range n.sent {
		if s.name == name {
			c++
		}
	}
	return c
}

func (n *fakeNotifier) last() (notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return notification{}, false
	}
	return n.sent[len(n.sent)-1], true
}

type fakeTerminator struct {
	mu    sync.Mutex
	calls int
}

func (t *fakeTerminator) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
}

func (t *fakeTerminator) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

type harness struct {
	coord  *Coordinator
	window *fakeWindow
	notify *fakeNotifier
	term   *fakeTerminator
	feeds  []string
}

func newHarness() *harness {
	h := &harness{
		window: newFakeWindow(),
		notify: &fakeNotifier{},
		term:   &fakeTerminator{},
	}
	h.coord = NewCoordinator(Options{
		Window:     h.window,
		Notifier:   h.notify,
		Terminator: h.term,
		Presentation: Presentation{
			Width: 1000, Height: 800,
			MiniWidth: 320, MiniHeight: 160,
		},
		SetUpdateURL: func(u string) { h.feeds = append(h.feeds, u) },
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return h
}
