// Package version provides build-time version information.
package version

import "fmt"

// Set at build time with -ldflags "-X cardforge/internal/version.Version=...".
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the build information for --version and the About dialog.
func String() string {
	return fmt.Sprintf("v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
