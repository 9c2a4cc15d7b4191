// Package version exposes build-time version information.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get collects the build and runtime details of this binary.
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the one-line form shown by `schemaplan version`.
func (i Info) String() string {
	return fmt.Sprintf("schemaplan version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// FullString renders the multi-line form shown by `schemaplan version --full`.
func (i Info) FullString() string {
	return fmt.Sprintf("schemaplan version %s\nBuild Date: %s\nGit Commit: %s\nPlatform: %s\nGo Version: %s",
		i.Version, i.BuildDate, i.GitCommit, i.Platform, i.GoVersion)
}
