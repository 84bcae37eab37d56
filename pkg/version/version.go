package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var Version string

// Commit is set at build time with -ldflags "-X .../version.Commit=<sha>"
var Commit string

// Get returns the current version of the application
func Get() string {
	return strings.TrimSpace(Version)
}

// Full returns the version with the build commit when known
func Full() string {
	if Commit == "" {
		return Get()
	}
	return Get() + " (" + Commit + ")"
}
