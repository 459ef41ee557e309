// Package version holds the build version used in the CLI and in the client's
// User-Agent header.
package version

import (
	"runtime/debug"
)

// LibraryName identifies this client in the User-Agent header
const LibraryName = "StreamMagicGo"

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/streammagic/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/streammagic/internal/version.Commit=abc123"
var (
	Version = ""
	Commit  = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(info)
	}
	if Version == "" {
		Version = "devel"
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fillFromBuildInfo takes the module version from "go install ...@vX.Y.Z" and
// the short VCS revision from a git checkout build.
func fillFromBuildInfo(info *debug.BuildInfo) {
	if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	if Commit != "" {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	rev := settings["vcs.revision"]
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && settings["vcs.modified"] == "true" {
		rev += "-dirty"
	}
	Commit = rev
}

// UserAgent returns "StreamMagicGo/<version>"
func UserAgent() string {
	return LibraryName + "/" + Version
}
