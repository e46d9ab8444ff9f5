// Package version reports the tally build version.
package version

import "runtime/debug"

// Version is set at link time:
//
//	go build -ldflags "-X github.com/smantzavinos/tally/pkg/version.Version=v1.2.3"
var Version = "dev"

// String returns Version, falling back to the module version recorded by
// "go install" for builds without ldflags.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}
