// Command derivans generates scaled image derivatives and a searchable
// PDF/A from a digitized library holding (§1).
package main

import "github.com/MeKo-Tech/derivans/cmd/derivans/cmd"

// version, gitCommit and buildDate are set via -ldflags at build time.
var (
	version   = "dev"
	gitCommit = "none"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, gitCommit, buildDate)
	cmd.Execute()
}
