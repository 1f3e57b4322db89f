// Package config handles settings loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

const (
	// GlobalDirName is the name of the global KGATracker directory.
	GlobalDirName = ".kgatracker"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// UpdatesDirName is the staging directory for downloaded update packages.
	UpdatesDirName = "updates"

	// HomeEnv overrides the global directory location.
	HomeEnv = "KGATRACKER_HOME"
)

// File names
const (
	InstanceFileName = "instance.yaml"
	SettingsFileName = "settings.yaml"
	HostLogFileName  = "host.log"
)

// GlobalDir returns the path to the global directory (~/.kgatracker/).
func GlobalDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalInstanceFile returns the path to the instance.yaml file.
func GlobalInstanceFile() (string, error) {
	return globalPath(InstanceFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return globalPath(SettingsFileName)
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	return globalPath(LogsDirName)
}

// HostLogFile returns the path to the host process log.
func HostLogFile() (string, error) {
	dir, err := GlobalLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HostLogFileName), nil
}

// UpdatesDir returns the path to the update staging directory.
func UpdatesDir() (string, error) {
	return globalPath(UpdatesDirName)
}

func globalPath(name string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// EnsureGlobalDir creates the global directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureUpdatesDir creates the update staging directory and returns its path.
func EnsureUpdatesDir() (string, error) {
	dir, err := UpdatesDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
