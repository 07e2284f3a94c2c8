// Package version holds build metadata injected through -ldflags.
package version

import (
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	go build -ldflags "-X github.com/Sumatoshi-tech/rbset/pkg/version.Version=v1.0.0"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const revisionKey = "vcs.revision"

// InitBinaryVersion fills Commit from the embedded VCS info when no value was linked in.
func InitBinaryVersion() {
	if Commit != "none" {
		return
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	for _, setting := range info.Settings {
		if setting.Key == revisionKey && setting.Value != "" {
			Commit = setting.Value
		}
	}
}

// String formats the metadata for the version command.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
