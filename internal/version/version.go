// Package version exposes build metadata stamped in at link time.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set via -ldflags at release build time, for example:
//
//	-X github.com/HerbHall/healthgenie/internal/version.Version=0.2.0
var (
	Version = "0.1.0-dev"
	Commit  = "none"
	Date    = "unknown"
)

// Short returns the bare version string, suitable for headers and logs.
func Short() string {
	return Version
}

// Info returns a one-line human-readable version description.
func Info() string {
	commit := Commit
	if commit == "none" {
		// go install builds carry VCS info instead of ldflags.
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	return fmt.Sprintf("HealthGenie %s (commit %s, built %s)", Version, commit, Date)
}

// Map returns the build metadata for JSON health responses.
func Map() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
	}
}
