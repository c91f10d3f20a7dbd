package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Info holds structured build information suitable for JSON serialization.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetInfo returns the current build information. When the version was not
// stamped via ldflags, the main module version and VCS revision recorded by
// the Go toolchain are used instead.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	if Version != "dev" {
		return info
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = strings.TrimPrefix(v, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.Date == "unknown" && s.Value != "" {
				info.Date = s.Value
			}
		}
	}
	return info
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns a human-readable version string.
// Example: "stencil v1.2.0 (commit: a1b2c3d, built: 2026-02-17T10:00:00Z)"
func (i Info) String() string {
	return fmt.Sprintf("stencil v%s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
