// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"

	// Packaged is "true" for installer-distributed builds. Startup update
	// checks only run on packaged builds.
	Packaged = "false"
)

// IsPackaged reports whether this binary came from a release package.
func IsPackaged() bool {
	return Packaged == "true"
}
