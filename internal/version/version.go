// Package version holds build information injected at link time.
package version

import "fmt"

// Set via -ldflags "-X modelgate/internal/version.Version=..." at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns a human-readable version string.
func Info() string {
	return fmt.Sprintf("modelgate %s (commit %s, built %s)", Version, Commit, Date)
}
