// Package version provides build and version information for scenewire.
package version

// Version is the current release version of the engine.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/scenewire/engine/internal/version.Version=x.y.z"
var Version = "1.0.0"
