package orchestrator_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/plugforge/plugforge/internal/orchestrator"
	"github.com/plugforge/plugforge/pkg/interfaces"
	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/mocks"
	"github.com/plugforge/plugforge/pkg/state"
	"github.com/plugforge/plugforge/pkg/types"
)

func testLogger() logger.Logger {
	return logger.CreateLoggerWithOutput("", "debug", &bytes.Buffer{})
}

func installation(major, minor, patch int) types.Installation {
	root := fmt.Sprintf("/engines/UE_%d.%d", major, minor)
	return types.Installation{
		Version:        types.EngineVersion{Major: major, Minor: minor, Patch: patch},
		RootPath:       root,
		BatchFilesPath: filepath.Join(root, "Engine", "Build", "BatchFiles"),
	}
}

type fixture struct {
	scanner  *mocks.MockScanner
	loader   *mocks.MockLoader
	resolver *mocks.MockResolver
	runner   *mocks.MockRunner
	cleaner  *mocks.MockCleaner
	archiver *mocks.MockArchiver
	notifier *mocks.MockNotifier
	history  *mocks.MockHistory
}

func newFixture(installations ...types.Installation) *fixture {
	return &fixture{
		scanner: &mocks.MockScanner{Installations: installations},
		loader: &mocks.MockLoader{
			Path:       "/plugins/MyPlugin/MyPlugin.uplugin",
			Descriptor: &types.PluginDescriptor{FriendlyName: "MyPlugin"},
		},
		resolver: &mocks.MockResolver{},
		runner:   &mocks.MockRunner{},
		cleaner:  &mocks.MockCleaner{},
		archiver: &mocks.MockArchiver{},
		notifier: &mocks.MockNotifier{},
		history:  &mocks.MockHistory{},
	}
}

func newOrchestrator(cfg types.Config, f *fixture) *orchestrator.Orchestrator {
	return orchestrator.New(cfg, testLogger(), interfaces.Dependencies{
		Scanner:  f.scanner,
		Loader:   f.loader,
		Resolver: f.resolver,
		Runner:   f.runner,
		Cleaner:  f.cleaner,
		Archiver: f.archiver,
		Notifier: f.notifier,
		History:  f.history,
	})
}

func baseConfig() types.Config {
	return types.Config{
		EnginePaths:  []string{"/engines"},
		VersionSpecs: []string{"4.26", "5"},
		PluginPath:   "/plugins/MyPlugin",
		OutputPath:   "Packages",
		Platforms:    []types.Platform{types.PlatformWin64, types.PlatformAndroid},
	}
}

func TestRunBuildsEachResolvedVersionInOrder(t *testing.T) {
	f := newFixture(installation(4, 25, 0), installation(4, 26, 2), installation(5, 0, 1))
	cfg := baseConfig()

	o := newOrchestrator(cfg, f)
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	calls := f.runner.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 builds, got %d", len(calls))
	}
	if calls[0].Installation.Version.String() != "4.26.2" {
		t.Errorf("first build = %s, want 4.26.2", calls[0].Installation.Version)
	}
	if calls[1].Installation.Version.String() != "5.0.1" {
		t.Errorf("second build = %s, want 5.0.1", calls[1].Installation.Version)
	}

	wantFirst := filepath.Join("Packages", "MyPlugin_4_26_2")
	if calls[0].OutputDir != wantFirst {
		t.Errorf("first output dir = %s, want %s", calls[0].OutputDir, wantFirst)
	}
	wantSecond := filepath.Join("Packages", "MyPlugin_5_0_1")
	if calls[1].OutputDir != wantSecond {
		t.Errorf("second output dir = %s, want %s", calls[1].OutputDir, wantSecond)
	}

	if len(f.notifier.Successes) != 2 {
		t.Errorf("success notifications = %v", f.notifier.Successes)
	}
	if len(f.history.Entries) != 2 || f.history.Entries[0].Status != state.StatusSucceeded {
		t.Errorf("history = %+v", f.history.Entries)
	}
}

func TestRunFailsFastWhenSpecUnresolved(t *testing.T) {
	f := newFixture(installation(4, 26, 2))
	cfg := baseConfig()
	cfg.VersionSpecs = []string{"4.26", "9"}

	o := newOrchestrator(cfg, f)
	err := o.Run(context.Background())
	if err == nil {
		t.Fatal("expected resolution error")
	}
	if !errors.Is(err, types.ErrResolution) {
		t.Errorf("error = %v, want resolution error", err)
	}
	if len(f.runner.Calls()) != 0 {
		t.Errorf("no build should start when any spec is unresolved, got %d", len(f.runner.Calls()))
	}
	if f.loader.LoadCalls != 0 {
		t.Error("descriptor should not be loaded after resolution failure")
	}
}

func TestRunFailsFastOnBadSpec(t *testing.T) {
	f := newFixture(installation(4, 26, 2))
	cfg := baseConfig()
	cfg.VersionSpecs = []string{"4.x"}

	err := newOrchestrator(cfg, f).Run(context.Background())
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
	if f.scanner.ScanCalls != 0 {
		t.Error("scan should not run with an unparseable version spec")
	}
}

func TestRunAbortsSequenceOnBuildFailure(t *testing.T) {
	f := newFixture(installation(4, 26, 2), installation(5, 0, 1))
	f.runner.FailOn = 1
	f.runner.Err = fmt.Errorf("%w: exit status 1", types.ErrExternalTool)

	cfg := baseConfig()
	err := newOrchestrator(cfg, f).Run(context.Background())
	if err == nil {
		t.Fatal("expected build failure to propagate")
	}
	if !errors.Is(err, types.ErrExternalTool) {
		t.Errorf("error = %v, want external tool error", err)
	}

	if len(f.runner.Calls()) != 1 {
		t.Errorf("second build must not start after a failure, got %d calls", len(f.runner.Calls()))
	}
	if len(f.notifier.Failures) != 1 || f.notifier.Failures[0] != "4.26.2" {
		t.Errorf("failure notifications = %v", f.notifier.Failures)
	}
	if len(f.history.Entries) != 1 || f.history.Entries[0].Status != state.StatusFailed {
		t.Errorf("history = %+v", f.history.Entries)
	}
}

func TestRunRejectsEmptyPlatformFilterBeforeAnyBuild(t *testing.T) {
	f := newFixture(installation(4, 26, 2), installation(5, 0, 1))
	f.resolver.HasResult = true
	f.resolver.Result = []types.Platform{}

	err := newOrchestrator(baseConfig(), f).Run(context.Background())
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, types.ErrValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
	if len(f.runner.Calls()) != 0 {
		t.Error("no build should start when a platform filter comes back empty")
	}
}

func TestRunArchivesWhenZipEnabled(t *testing.T) {
	f := newFixture(installation(4, 26, 2), installation(5, 0, 1))
	cfg := baseConfig()
	cfg.ZipPackages = true

	if err := newOrchestrator(cfg, f).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	dirs := f.archiver.Dirs()
	if len(dirs) != 2 {
		t.Fatalf("expected 2 archives, got %v", dirs)
	}
	want := map[string]bool{
		filepath.Join("Packages", "MyPlugin_4_26_2"): true,
		filepath.Join("Packages", "MyPlugin_5_0_1"):  true,
	}
	for _, dir := range dirs {
		if !want[dir] {
			t.Errorf("unexpected archive dir %s", dir)
		}
	}
}

func TestRunArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture(installation(4, 26, 2))
	f.archiver.Err = fmt.Errorf("%w: disk full", types.ErrExternalTool)
	cfg := baseConfig()
	cfg.ZipPackages = true

	if err := newOrchestrator(cfg, f).Run(context.Background()); err != nil {
		t.Fatalf("archive failure must not fail the run: %v", err)
	}
}

func TestRunCleansWithConfiguredPolicy(t *testing.T) {
	f := newFixture(installation(4, 26, 2))
	cfg := baseConfig()
	cfg.CleanIntermediate = true
	cfg.CleanBinaries = true

	if err := newOrchestrator(cfg, f).Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(f.cleaner.Cleaned) != 1 {
		t.Fatalf("cleaned dirs = %v", f.cleaner.Cleaned)
	}
	policy := f.cleaner.Policies[0]
	if !policy.RemoveIntermediate || !policy.RemoveBinaries {
		t.Errorf("policy = %+v", policy)
	}
}

func TestRunCleanupFailureIsNotFatal(t *testing.T) {
	f := newFixture(installation(4, 26, 2))
	f.cleaner.Err = fmt.Errorf("%w: permission denied", types.ErrFileSystem)
	cfg := baseConfig()
	cfg.CleanIntermediate = true

	if err := newOrchestrator(cfg, f).Run(context.Background()); err != nil {
		t.Fatalf("cleanup failure must not fail the run: %v", err)
	}
	if len(f.notifier.Successes) != 1 {
		t.Errorf("success notifications = %v", f.notifier.Successes)
	}
}

func TestRunScanErrorPropagates(t *testing.T) {
	f := newFixture()
	f.scanner.Err = fmt.Errorf("%w: unreadable root", types.ErrFileSystem)

	err := newOrchestrator(baseConfig(), f).Run(context.Background())
	if !errors.Is(err, types.ErrFileSystem) {
		t.Errorf("error = %v, want filesystem error", err)
	}
}
