// Package version contains the release version of the relay binaries.
package version

// Version is the package version. Release builds may override it with
// -ldflags "-X github.com/relaymesh/relayd/internal/version.Version=...".
var Version = "1.0.0" //nolint:gochecknoglobals
