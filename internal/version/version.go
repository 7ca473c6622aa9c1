// Package version exposes the build metadata of the ccgate binary
package version

import (
	"fmt"
	"runtime/debug"
)

// Version information (set via ldflags during build)
var (
	// Version is the current version of ccgate
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// Date is the build date
	Date = "unknown"

	// BuiltBy indicates how the binary was built
	BuiltBy = "source"
)

// readBuildInfo is swapped in tests
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the current version. Binaries installed with
// "go install module@version" carry no ldflags, so the module version is used.
func GetVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// GetFullVersion returns the version together with commit, date and builder
func GetFullVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, by: %s)",
		GetVersion(), Commit, Date, BuiltBy)
}
