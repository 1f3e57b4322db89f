package lifecycle

import (
	"context"
	"errors"
	"log/slog"
)

// ErrLoopStopped is returned when posting to a loop that has exited.
var ErrLoopStopped = errors.New("lifecycle loop stopped")

// Event is a message for the coordinator loop.
type Event interface {
	isEvent()
}

// CloseRequested is an OS or framework close attempt. The decision is sent
// on Reply, which must be buffered.
type CloseRequested struct {
	Reply chan<- CloseDecision
}

// MinimizeRequested is an OS minimize.
type MinimizeRequested struct{}

// Unminimized is the window returning from the minimized state.
type Unminimized struct{}

// SessionEnding is an OS session end or termination signal.
type SessionEnding struct {
	Reason string
}

// QuitImpending is the framework announcing it is about to quit.
type QuitImpending struct{}

// CommandReceived is a renderer command that passed the boundary filter.
type CommandReceived struct {
	Name    string
	Payload any
}

// RendererAttached is the renderer loading or reloading.
type RendererAttached struct{}

// ShowRequested brings the window forward (tray, second launch).
type ShowRequested struct{}

// PresentationChanged carries new window geometry from reloaded settings.
type PresentationChanged struct {
	Presentation Presentation
}

// StateRequested asks for a snapshot, sent on Reply (buffered).
type StateRequested struct {
	Reply chan<- State
}

func (CloseRequested) isEvent()      {}
func (MinimizeRequested) isEvent()   {}
func (Unminimized) isEvent()         {}
func (SessionEnding) isEvent()       {}
func (QuitImpending) isEvent()       {}
func (CommandReceived) isEvent()     {}
func (RendererAttached) isEvent()    {}
func (ShowRequested) isEvent()       {}
func (PresentationChanged) isEvent() {}
func (StateRequested) isEvent()      {}

// Handle applies one event to the coordinator.
func (c *Coordinator) Handle(ev Event) {
	switch ev := ev.(type) {
	case CloseRequested:
		ev.Reply <- c.HandleClose()
	case MinimizeRequested:
		c.HandleMinimize()
	case Unminimized:
		c.HandleUnminimize()
	case SessionEnding:
		c.HandleSessionEnd(ev.Reason)
	case QuitImpending:
		c.HandleQuitImpending()
	case CommandReceived:
		if !c.HandleCommand(ev.Name, ev.Payload) {
			c.logger.Debug("dropping unknown command", "name", ev.Name)
		}
	case RendererAttached:
		c.RendererAttached()
	case ShowRequested:
		c.ShowWindow()
	case PresentationChanged:
		c.SetPresentation(ev.Presentation)
	case StateRequested:
		ev.Reply <- c.State()
	}
}

// Loop serializes every event onto one goroutine that owns the coordinator.
type Loop struct {
	coord  *Coordinator
	events chan Event
	done   chan struct{}
	logger *slog.Logger
}

// NewLoop creates a loop for coord. Call Run to start processing.
func NewLoop(coord *Coordinator, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		coord:  coord,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes events until ctx is canceled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("lifecycle loop stopping")
			return
		case ev := <-l.events:
			l.coord.Handle(ev)
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Post queues ev. It blocks only while the queue is full.
func (l *Loop) Post(ctx context.Context, ev Event) error {
	select {
	case <-l.done:
		return ErrLoopStopped
	default:
	}
	select {
	case l.events <- ev:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues ev without a caller context. Errors are logged.
func (l *Loop) Send(ev Event) {
	if err := l.Post(context.Background(), ev); err != nil {
		l.logger.Debug("event dropped", "event", ev, "error", err)
	}
}

// RequestClose asks the coordinator to decide a close attempt and waits
// for the answer.
func (l *Loop) RequestClose(ctx context.Context) (CloseDecision, error) {
	reply := make(chan CloseDecision, 1)
	if err := l.Post(ctx, CloseRequested{Reply: reply}); err != nil {
		return CloseSuppressed, err
	}
	select {
	case d := <-reply:
		return d, nil
	case <-l.done:
		return CloseSuppressed, ErrLoopStopped
	case <-ctx.Done():
		return CloseSuppressed, ctx.Err()
	}
}

// State returns a snapshot of the coordinator.
func (l *Loop) State(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := l.Post(ctx, StateRequested{Reply: reply}); err != nil {
		return State{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-l.done:
		return State{}, ErrLoopStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Command posts a renderer command after the boundary filter. Unlisted
// channels are dropped here and never reach the coordinator.
func (l *Loop) Command(name string, payload any) {
	if !IsCommand(name) {
		l.logger.Debug("ignoring message on unlisted channel", "channel", name)
		return
	}
	l.Send(CommandReceived{Name: name, Payload: payload})
}

// Quit posts the explicit quit command.
func (l *Loop) Quit() {
	l.Send(CommandReceived{Name: CmdQuitApp})
}
