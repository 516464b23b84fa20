// Package buildinfo carries release metadata stamped by the linker:
//
//	go build -ldflags "-X github.com/bix-dev/bixdash/internal/buildinfo.Version=v1.2.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the metadata for `bixdash --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
