// Package version carries build identity injected at link time.
package version

// Overridden via -ldflags "-X ...". Defaults describe a local dev build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
