// Package lifecycle implements the window-state coordinator: the Normal/Mini
// window state machine, the check-then-allow confirmation handshake with the
// renderer, and the decision of whether a close attempt may terminate the
// process.
//
// All coordinator state is owned by one goroutine (see Loop). Other
// goroutines never touch a Coordinator directly; they post events.
package lifecycle

// Mode is the window presentation mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMini
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMini:
		return "mini"
	default:
		return "unknown"
	}
}

// Presentation holds the physical window geometry for each mode.
type Presentation struct {
	Width      int
	Height     int
	MiniWidth  int
	MiniHeight int

	// LockFullscreen makes Normal mode always return to fullscreen.
	LockFullscreen bool
}
