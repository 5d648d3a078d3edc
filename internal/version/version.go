package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/arthur-debert/rulekit/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/arthur-debert/rulekit/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/arthur-debert/rulekit/internal/version.Date={{.Date}}
)

// Info returns the build information in the layout of the version command.
func Info() string {
	return fmt.Sprintf("rulekit version %s\n  commit: %s\n  built:  %s", Version, Commit, Date)
}
