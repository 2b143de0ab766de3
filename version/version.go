// Package version holds build information stamped in at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags at build time:
//
//	go build -ldflags "-X github.com/jackzampolin/flatbed/version.GitRelease=v0.2.0 ..."
var (
	// GitRelease is the release tag or "dev" for unreleased builds.
	GitRelease = "dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of the build.
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain and platform of the build.
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
