package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"     // release tag, e.g. "v0.2.0"
	GitCommit = "unknown" // commit hash
	GitTag    = "unknown" // nearest tag
	BuildTime = "unknown" // build timestamp
	GitDirty  = ""        // "dirty" when built from a modified tree
)

// GetVersion returns the compiler version, preferring ldflags, then module
// build info, then git metadata.
func GetVersion() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "(devel)" && v != "" {
			return v
		}
	}

	if GitTag == "unknown" || GitCommit == "unknown" {
		return "dev"
	}

	v := GitTag
	if short := shortCommit(GitCommit); short != "" && !strings.HasSuffix(GitTag, short) {
		v = fmt.Sprintf("%s-%s", GitTag, short)
	}
	if GitDirty == "dirty" {
		v += "-dirty"
	}
	return v
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

// Banner is the line printed by `lessc -version`.
func Banner() string {
	b := "lessc " + GetVersion()
	if GitCommit != "unknown" {
		b += fmt.Sprintf(" (commit: %s)", GitCommit)
	}
	return b + " " + runtime.Version()
}

// GetBuildInfo returns the build metadata as a map, for -version -v
func GetBuildInfo() map[string]string {
	return map[string]string{
		"version":   GetVersion(),
		"gitCommit": GitCommit,
		"gitTag":    GitTag,
		"buildTime": BuildTime,
		"gitDirty":  GitDirty,
		"go":        runtime.Version(),
	}
}
