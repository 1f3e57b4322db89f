package lifecycle

// Flags is the process-wide lifecycle record read on every close and
// minimize attempt. shuttingDown and quitting only ever go from false to
// true; minimizing is transient.
type Flags struct {
	shuttingDown bool
	quitting     bool
	minimizing   bool
}

// ShuttingDown reports whether the OS or the framework has begun ending the
// process.
func (f Flags) ShuttingDown() bool { return f.shuttingDown }

// Quitting reports whether an explicit quit was confirmed.
func (f Flags) Quitting() bool { return f.quitting }

// Minimizing reports whether a programmatic minimize is in flight.
func (f Flags) Minimizing() bool { return f.minimizing }

// MarkShuttingDown records that the process is ending. Returns true if the
// flag changed.
func (f *Flags) MarkShuttingDown() bool {
	if f.shuttingDown {
		return false
	}
	f.shuttingDown = true
	return true
}

// MarkQuitting records an explicit quit. Returns true if the flag changed.
func (f *Flags) MarkQuitting() bool {
	if f.quitting {
		return false
	}
	f.quitting = true
	return true
}

func (f *Flags) setMinimizing(v bool) { f.minimizing = v }
