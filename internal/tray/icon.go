package tray

import (
	_ "embed"
	"runtime"
)

var (
	//go:embed assets/icon.png
	iconPNG []byte

	//go:embed assets/icon.ico
	iconICO []byte
)

// iconData returns the tray icon in the format the platform expects.
func iconData() []byte {
	if runtime.GOOS == "windows" {
		return iconICO
	}
	return iconPNG
}
