// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Build describes one binary.
type Build struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Dirty     bool   `json:"dirty" yaml:"dirty"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Current returns the build description, filling unset ldflags values
// from the embedded VCS stamp.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&build, info.Settings)
	}
	return build
}

func applyBuildSettings(build *Build, settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if build.Commit == "unknown" && setting.Value != "" {
				build.Commit = setting.Value
				if len(build.Commit) > 12 {
					build.Commit = build.Commit[:12]
				}
			}
		case "vcs.time":
			if build.BuildTime == "unknown" && setting.Value != "" {
				build.BuildTime = setting.Value
			}
		case "vcs.modified":
			if GitDirty != "true" && setting.Value == "true" {
				build.Dirty = true
			}
		}
	}
}

// String formats b for --version output.
func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Info returns a formatted version string suitable for --version output.
func Info() string {
	return Current().String()
}

// Full returns detailed version information including Go version.
func Full() string {
	build := Current()
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s", build, build.GoVersion, build.Platform)
}

// Short returns just the version number.
func Short() string {
	return Version
}
