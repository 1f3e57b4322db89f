// Package autostart registers the host to open when the user logs in.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned on platforms without a login item mechanism.
var ErrUnsupported = errors.New("start at login is not supported on this platform")

// Entry describes the login item.
type Entry struct {
	// Name identifies the item. It must be a plain file name.
	Name string
	// Exec is the executable to start.
	Exec string
	Args []string
}

// Current returns an entry for the running executable.
func Current(name string, args ...string) (Entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return Entry{}, fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return Entry{Name: name, Exec: exe, Args: args}, nil
}

func (e Entry) validate() error {
	if e.Name == "" || e.Name != filepath.Base(e.Name) {
		return fmt.Errorf("invalid login item name %q", e.Name)
	}
	if e.Exec == "" {
		return errors.New("login item has no executable")
	}
	return nil
}

// Sync makes the login item match enabled.
func Sync(e Entry, enabled bool) error {
	if err := e.validate(); err != nil {
		return err
	}
	if enabled {
		return enable(e)
	}
	return disable(e.Name)
}

// Enabled reports whether a login item called name is registered.
func Enabled(name string) (bool, error) {
	return isEnabled(name)
}
