package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// MaxHostLogSize is the size at which host.log is rotated on open.
const MaxHostLogSize = 5 << 20

// OpenHostLog opens ~/.kgatracker/logs/host.log for appending. A log over
// MaxHostLogSize is moved to host.log.1 first, replacing any older copy.
func OpenHostLog() (*os.File, error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, fmt.Errorf("failed to ensure logs dir: %w", err)
	}
	path, err := HostLogFile()
	if err != nil {
		return nil, err
	}
	return openRotated(path, MaxHostLogSize)
}

func openRotated(path string, maxSize int64) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.Size() > maxSize {
		if err := os.Rename(path, path+".1"); err != nil {
			return nil, fmt.Errorf("failed to rotate log: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return f, nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
