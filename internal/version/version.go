// Package version holds the build version of the analyzer. Set it with
//
//	go build -ldflags "-X github.com/ramonehamilton/precon-analyzer/internal/version.Version=v1.0.0"
package version

// Version defaults to "dev" for local builds.
var Version = "dev"

// Get returns the build version.
func Get() string {
	return Version
}
