// Package interfaces provides abstractions for dependency injection and testability
package interfaces

import (
	"context"
	"time"

	"github.com/plugforge/plugforge/pkg/state"
	"github.com/plugforge/plugforge/pkg/types"
)

// InstallationScanner discovers engine installations under search roots
type InstallationScanner interface {
	Scan(ctx context.Context, roots []string) ([]types.Installation, error)
}

// DescriptorLoader resolves a plugin path to its descriptor
type DescriptorLoader interface {
	Load(path string) (string, *types.PluginDescriptor, error)
}

// PlatformResolver filters requested platforms against host capabilities
type PlatformResolver interface {
	Filter(installation types.Installation, requested []types.Platform) []types.Platform
}

// BuildRunner invokes the external build tool for one request
type BuildRunner interface {
	Run(ctx context.Context, req types.BuildRequest, descriptorPath string) error
}

// OutputCleaner applies the post-build cleanup policy
type OutputCleaner interface {
	Clean(outputDir string, policy types.CleanPolicy) error
}

// Archiver compresses a packaged output directory
type Archiver interface {
	Archive(dir string) (string, error)
}

// PackageNotifier reports per-version package results to the user
type PackageNotifier interface {
	NotifyPackageSuccess(version string, duration time.Duration)
	NotifyPackageFailure(version string, err error)
}

// HistoryWriter records packaging attempts
type HistoryWriter interface {
	Append(record state.BuildRecord) error
}

// Dependencies contains all injectable orchestrator collaborators
type Dependencies struct {
	Scanner  InstallationScanner
	Loader   DescriptorLoader
	Resolver PlatformResolver
	Runner   BuildRunner
	Cleaner  OutputCleaner
	Archiver Archiver
	Notifier PackageNotifier
	History  HistoryWriter
}
