// Package platform decides which target platforms are buildable on the
// current host for a given engine installation.
package platform

import (
	"runtime"

	"github.com/plugforge/plugforge/pkg/types"
)

// androidMinVersion is the first engine release whose Windows toolchain
// can package Android plugins.
var androidMinVersion = types.EngineVersion{Major: 4, Minor: 25, Patch: 0}

// Resolver filters requested platforms against host capabilities
type Resolver struct {
	goos func() string
}

// NewResolver creates a resolver for the current host OS
func NewResolver() *Resolver {
	return &Resolver{goos: func() string { return runtime.GOOS }}
}

// NewResolverForOS creates a resolver pinned to a specific GOOS value,
// used in tests
func NewResolverForOS(goos string) *Resolver {
	return &Resolver{goos: func() string { return goos }}
}

// Filter returns the subset of requested platforms buildable on this
// host against the given installation, preserving the requested order.
func (r *Resolver) Filter(installation types.Installation, requested []types.Platform) []types.Platform {
	allowed := make([]types.Platform, 0, len(requested))
	for _, p := range requested {
		if r.buildable(installation, p) {
			allowed = append(allowed, p)
		}
	}
	return allowed
}

func (r *Resolver) buildable(installation types.Installation, p types.Platform) bool {
	switch r.goos() {
	case "windows":
		switch p {
		case types.PlatformWin64:
			return true
		case types.PlatformAndroid:
			return installation.Version.AtLeast(androidMinVersion)
		}
		return false
	case "darwin":
		return p == types.PlatformMac || p == types.PlatformIOS
	case "linux":
		return p == types.PlatformLinux
	}
	return false
}
