package models

import "time"

// DefaultFeedURL is the built-in update feed location.
const DefaultFeedURL = `\\kga-fs01\releases\kgatracker`

// WindowConfig holds the physical window presentation settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	MiniWidth  int  `yaml:"mini_width"`
	MiniHeight int  `yaml:"mini_height"`
	Frameless  bool `yaml:"frameless"`
	Fullscreen bool `yaml:"fullscreen"` // lock the normal presentation to fullscreen
}

// UpdatesConfig holds settings for update checking.
type UpdatesConfig struct {
	FeedURL        string        `yaml:"feed_url"`
	CheckOnStartup bool          `yaml:"check_on_startup"`
	StartupDelay   time.Duration `yaml:"startup_delay"`
}

// TrayConfig holds system tray settings.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Settings represents global application settings.
// This corresponds to ~/.kgatracker/settings.yaml.
type Settings struct {
	Version      int           `yaml:"version"`
	Window       WindowConfig  `yaml:"window"`
	Updates      UpdatesConfig `yaml:"updates"`
	Tray         TrayConfig    `yaml:"tray"`
	StartAtLogin bool          `yaml:"start_at_login"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Window: WindowConfig{
			Width:      1000,
			Height:     800,
			MiniWidth:  320,
			MiniHeight: 160,
			Frameless:  true,
			Fullscreen: false,
		},
		Updates: UpdatesConfig{
			FeedURL:        DefaultFeedURL,
			CheckOnStartup: true,
			StartupDelay:   10 * time.Second,
		},
		Tray: TrayConfig{
			Enabled: true,
		},
		StartAtLogin: true,
	}
}
