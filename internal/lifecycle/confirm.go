package lifecycle

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Transition names a change that needs the renderer's approval.
type Transition string

const (
	TransitionMiniMode Transition = "mini-mode"
	TransitionMinimize Transition = "minimize"
)

// CheckNotification returns the notification that asks the renderer to
// approve t.
func (t Transition) CheckNotification() string {
	return "check-can-" + string(t)
}

// AllowCommand returns the command the renderer sends to approve t.
func (t Transition) AllowCommand() string {
	return "allow-" + string(t)
}

// Outcome is the state of a confirmation. There is no denied outcome: the
// renderer rejects by staying silent.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeApproved
)

func (o Outcome) String() string {
	if o == OutcomeApproved {
		return "approved"
	}
	return "pending"
}

// Pending is an emitted check still awaiting the renderer.
type Pending struct {
	ID         string
	Transition Transition
	Since      time.Time
}

// Confirmations tracks outstanding checks, at most one per transition.
type Confirmations struct {
	notify  Notifier
	logger  *slog.Logger
	now     func() time.Time
	pending map[Transition]Pending
	last    map[Transition]Outcome
}

// NewConfirmations creates an empty confirmation tracker.
func NewConfirmations(notify Notifier, logger *slog.Logger) *Confirmations {
	return &Confirmations{
		notify:  notify,
		logger:  logger,
		now:     time.Now,
		pending: make(map[Transition]Pending),
		last:    make(map[Transition]Outcome),
	}
}

// Request emits the check for t unless one is already outstanding. It never
// waits for the answer. Returns true if a check was emitted.
func (c *Confirmations) Request(t Transition) bool {
	if p, ok := c.pending[t]; ok {
		c.logger.Debug("check already outstanding", "transition", t, "id", p.ID)
		return false
	}
	p := Pending{ID: uuid.NewString(), Transition: t, Since: c.now()}
	c.pending[t] = p
	c.last[t] = OutcomePending
	c.logger.Info("requesting renderer approval", "transition", t, "id", p.ID)
	c.notify.Notify(t.CheckNotification())
	return true
}

// Resolve records the renderer's approval of t and clears the outstanding
// check. ok is false for an unsolicited approval.
func (c *Confirmations) Resolve(t Transition) (p Pending, ok bool) {
	p, ok = c.pending[t]
	delete(c.pending, t)
	c.last[t] = OutcomeApproved
	if ok {
		c.logger.Info("renderer approved", "transition", t, "id", p.ID, "waited", c.now().Sub(p.Since))
	}
	return p, ok
}

// Outcome reports the last known outcome for t. ok is false when t was
// never requested or its check was dropped by Reset.
func (c *Confirmations) Outcome(t Transition) (o Outcome, ok bool) {
	o, ok = c.last[t]
	return o, ok
}

// Outstanding returns the outstanding checks.
func (c *Confirmations) Outstanding() []Pending {
	out := make([]Pending, 0, len(c.pending))
	for _, t := range []Transition{TransitionMiniMode, TransitionMinimize} {
		if p, ok := c.pending[t]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Reset drops every outstanding check so the next attempt asks again.
func (c *Confirmations) Reset() {
	for t, p := range c.pending {
		c.logger.Info("dropping outstanding check", "transition", t, "id", p.ID)
		delete(c.pending, t)
		delete(c.last, t)
	}
}
