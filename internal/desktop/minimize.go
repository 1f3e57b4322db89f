package desktop

import (
	"context"
	"sync"
	"time"

	"github.com/kgatracker/kgatracker/internal/lifecycle"
)

// minimizeWatcher turns changes in the window's minimized state into
// lifecycle events. Wails has no minimize hook, so the state is polled.
//
// A programmatic minimize that the user undoes between two polls leaves no
// trace in the polled state. expect arms the watcher before such a
// minimize; if no minimized state shows up within settle, the cycle is
// reported as finished anyway.
type minimizeWatcher struct {
	isMinimised func() bool
	post        func(lifecycle.Event)
	now         func() time.Time
	settle      time.Duration

	mu         sync.Mutex
	last       bool
	expecting  bool
	expectedAt time.Time
}

func newMinimizeWatcher(isMinimised func() bool, post func(lifecycle.Event)) *minimizeWatcher {
	return &minimizeWatcher{
		isMinimised: isMinimised,
		post:        post,
		now:         time.Now,
		settle:      minimizePollEvery,
	}
}

func (w *minimizeWatcher) run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// expect records that the coordinator is about to minimize the window.
func (w *minimizeWatcher) expect() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.expecting = true
	w.expectedAt = w.now()
}

func (w *minimizeWatcher) poll() {
	minimised := w.isMinimised()

	w.mu.Lock()
	changed := minimised != w.last
	w.last = minimised
	missed := false
	if w.expecting {
		switch {
		case minimised:
			// Seen; the restore transition will finish the cycle.
			w.expecting = false
		case w.now().Sub(w.expectedAt) >= w.settle:
			w.expecting = false
			missed = !changed
		}
	}
	w.mu.Unlock()

	switch {
	case changed && minimised:
		w.post(lifecycle.MinimizeRequested{})
	case changed, missed:
		w.post(lifecycle.Unminimized{})
	}
}
