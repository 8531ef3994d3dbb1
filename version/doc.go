// Package version reports the build of the sitegen binary.
//
// Version, commit, branch and build time are set at compile time via
// -ldflags and fall back to the VCS stamp the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/sitekit/version.Version=1.4.0" ./cmd/sitegen
package version
