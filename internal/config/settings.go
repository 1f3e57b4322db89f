package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kgatracker/kgatracker/internal/models"
)

// LoadSettings loads the global settings from ~/.kgatracker/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom loads and validates settings from an explicit path.
func LoadSettingsFrom(path string) (*models.Settings, error) {
	settings, err := LoadYAMLOrDefault(path, models.NewSettings)
	if err != nil {
		return nil, err
	}
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings saves the global settings to ~/.kgatracker/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// ValidateSettings checks settings for values the host cannot run with.
// An empty feed location falls back to the built-in one.
func ValidateSettings(s *models.Settings) error {
	var errs []error

	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height))
	}
	if s.Window.MiniWidth <= 0 || s.Window.MiniHeight <= 0 {
		errs = append(errs, fmt.Errorf("mini window size must be positive, got %dx%d", s.Window.MiniWidth, s.Window.MiniHeight))
	}
	if s.Window.MiniWidth > s.Window.Width || s.Window.MiniHeight > s.Window.Height {
		errs = append(errs, errors.New("mini window must not be larger than the normal window"))
	}
	if s.Updates.StartupDelay < 0 {
		errs = append(errs, fmt.Errorf("updates.startup_delay must not be negative, got %s", s.Updates.StartupDelay))
	}
	if strings.TrimSpace(s.Updates.FeedURL) == "" {
		s.Updates.FeedURL = models.DefaultFeedURL
	}

	return errors.Join(errs...)
}
