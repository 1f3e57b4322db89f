package tui

import (
	"time"

	"github.com/kgatracker/kgatracker/internal/control"
)

// statusMsg carries a fresh host status.
type statusMsg struct {
	status control.Status
	at     time.Time
}

// errorMsg carries a failed call.
type errorMsg struct {
	err error
}

// actionMsg reports a command the host accepted.
type actionMsg struct {
	text string
}

// tickMsg triggers the next poll.
type tickMsg time.Time
