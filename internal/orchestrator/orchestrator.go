// Package orchestrator sequences the end-to-end packaging run: scan,
// resolve, build, clean and archive, one engine version at a time.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plugforge/plugforge/pkg/archive"
	"github.com/plugforge/plugforge/pkg/builders"
	"github.com/plugforge/plugforge/pkg/discovery"
	"github.com/plugforge/plugforge/pkg/interfaces"
	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/notifier"
	"github.com/plugforge/plugforge/pkg/platform"
	"github.com/plugforge/plugforge/pkg/plugin"
	"github.com/plugforge/plugforge/pkg/state"
	"github.com/plugforge/plugforge/pkg/types"
	"github.com/plugforge/plugforge/pkg/version"
)

// Orchestrator drives one packaging run over an immutable configuration
type Orchestrator struct {
	cfg    types.Config
	logger logger.Logger
	deps   interfaces.Dependencies
}

// New creates an orchestrator. Nil dependency fields are filled with
// the real implementations; tests inject mocks.
func New(cfg types.Config, log logger.Logger, deps interfaces.Dependencies) *Orchestrator {
	if deps.Scanner == nil {
		deps.Scanner = discovery.NewScanner(log)
	}
	if deps.Loader == nil {
		deps.Loader = plugin.NewLoader(log)
	}
	if deps.Resolver == nil {
		deps.Resolver = platform.NewResolver()
	}
	if deps.Runner == nil {
		deps.Runner = builders.NewUATRunner(log)
	}
	if deps.Cleaner == nil {
		deps.Cleaner = builders.NewCleaner(log)
	}
	if deps.Archiver == nil {
		deps.Archiver = archive.NewZipper(log)
	}
	if deps.Notifier == nil {
		deps.Notifier = notifier.New(cfg.Notify, log)
	}
	if deps.History == nil {
		deps.History = state.NewHistory(cfg.OutputPath)
	}

	return &Orchestrator{
		cfg:    cfg,
		logger: log,
		deps:   deps,
	}
}

// Run executes the full sequence. All version specs are resolved and
// all platform filters computed before the first build, so nothing is
// partially built when resolution fails. Archive tasks run in the
// background and are awaited before Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	runID := uuid.NewString()
	o.logger.Debug("Starting packaging run", logger.WithField("run_id", runID))

	specs, err := o.parseSpecs()
	if err != nil {
		return err
	}

	installations, err := o.deps.Scanner.Scan(ctx, o.cfg.EnginePaths)
	if err != nil {
		return err
	}

	resolved, err := o.resolveAll(specs, installations)
	if err != nil {
		return err
	}

	descriptorPath, descriptor, err := o.deps.Loader.Load(o.cfg.PluginPath)
	if err != nil {
		return err
	}
	o.logger.Info(fmt.Sprintf("Packaging plugin %q for %d engine version(s)",
		descriptor.FriendlyName, len(resolved)))

	requests, err := o.buildRequests(resolved, descriptor)
	if err != nil {
		return err
	}

	archives := newTaskGroup(o.logger)
	buildErr := o.runBuilds(ctx, runID, requests, descriptorPath, archives)

	// Pending archive tasks finish before the process exits; their
	// failures are warnings, not run failures
	if err := archives.Wait(); err != nil {
		o.logger.Warn(fmt.Sprintf("Archive task failed: %v", err))
	}

	return buildErr
}

// parseSpecs validates every requested version string up front
func (o *Orchestrator) parseSpecs() ([]version.Spec, error) {
	specs := make([]version.Spec, 0, len(o.cfg.VersionSpecs))
	for _, raw := range o.cfg.VersionSpecs {
		spec, err := version.ParseSpec(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// resolveAll maps every spec to its best-matching installation,
// preserving request order. Any unresolved spec aborts the run before
// any build starts.
func (o *Orchestrator) resolveAll(specs []version.Spec, installations []types.Installation) ([]types.Installation, error) {
	resolved := make([]types.Installation, 0, len(specs))
	for _, spec := range specs {
		best := version.FindBest(installations, spec)
		if best == nil {
			return nil, fmt.Errorf("%w: no installed engine matches version %s (searched %s)",
				types.ErrResolution, spec, strings.Join(o.cfg.EnginePaths, ", "))
		}
		o.logger.Info(fmt.Sprintf("Resolved version %s to engine %s at %s",
			spec, best.Version, best.RootPath))
		resolved = append(resolved, *best)
	}
	return resolved, nil
}

// buildRequests computes platform filters and output directories for
// every resolved installation before any build runs. An installation
// left with no buildable platform is rejected here rather than handed
// to the build tool with an empty target list.
func (o *Orchestrator) buildRequests(resolved []types.Installation, descriptor *types.PluginDescriptor) ([]types.BuildRequest, error) {
	requests := make([]types.BuildRequest, 0, len(resolved))
	for _, installation := range resolved {
		platforms := o.deps.Resolver.Filter(installation, o.cfg.Platforms)
		if len(platforms) == 0 {
			return nil, fmt.Errorf("%w: none of the requested platforms are buildable on this host for engine %s",
				types.ErrValidation, installation.Version)
		}

		outputDir := filepath.Join(o.cfg.OutputPath,
			fmt.Sprintf("%s_%s", descriptor.FriendlyName, installation.Version.Underscored()))

		requests = append(requests, types.BuildRequest{
			Installation: installation,
			Platforms:    platforms,
			OutputDir:    outputDir,
		})
	}
	return requests, nil
}

// runBuilds executes the requests strictly sequentially. A build
// failure aborts the remaining sequence; completed outputs are left
// intact.
func (o *Orchestrator) runBuilds(ctx context.Context, runID string, requests []types.BuildRequest, descriptorPath string, archives *taskGroup) error {
	for _, req := range requests {
		versionLabel := req.Installation.Version.String()
		start := time.Now()

		if err := o.deps.Runner.Run(ctx, req, descriptorPath); err != nil {
			o.deps.Notifier.NotifyPackageFailure(versionLabel, err)
			o.record(runID, req, state.StatusFailed, time.Since(start))
			return err
		}

		policy := types.CleanPolicy{
			RemoveIntermediate: o.cfg.CleanIntermediate,
			RemoveBinaries:     o.cfg.CleanBinaries,
		}
		if err := o.deps.Cleaner.Clean(req.OutputDir, policy); err != nil {
			o.logger.Warn(fmt.Sprintf("Cleanup failed for %s: %v", req.OutputDir, err))
		}

		if o.cfg.ZipPackages {
			dir := req.OutputDir
			archives.Go(func() error {
				if _, err := o.deps.Archiver.Archive(dir); err != nil {
					o.logger.Warn(fmt.Sprintf("Failed to archive %s: %v", dir, err))
				}
				return nil
			})
		}

		o.deps.Notifier.NotifyPackageSuccess(versionLabel, time.Since(start))
		o.record(runID, req, state.StatusSucceeded, time.Since(start))
	}

	return nil
}

func (o *Orchestrator) record(runID string, req types.BuildRequest, status string, duration time.Duration) {
	platforms := make([]string, len(req.Platforms))
	for i, p := range req.Platforms {
		platforms[i] = string(p)
	}

	record := state.BuildRecord{
		RunID:      runID,
		Version:    req.Installation.Version.String(),
		Status:     status,
		Platforms:  platforms,
		OutputPath: req.OutputDir,
		DurationMS: duration.Milliseconds(),
		Timestamp:  time.Now(),
	}
	if err := o.deps.History.Append(record); err != nil {
		o.logger.Debug(fmt.Sprintf("Failed to record build history: %v", err))
	}
}
