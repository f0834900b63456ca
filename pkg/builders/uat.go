// Package builders drives the engine's automation tool and cleans up
// its output.
package builders

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/types"
)

// buildCommand is the automation tool command that packages a plugin
const buildCommand = "BuildPlugin"

// windowsToolchainFlag pins the compiler toolchain on Windows hosts
const windowsToolchainFlag = "-VS2019"

// UATRunner invokes the engine's RunUAT script for one build request
type UATRunner struct {
	logger logger.Logger
	goos   func() string
	stdout io.Writer
	stderr io.Writer
}

// NewUATRunner creates a runner that inherits the process's standard
// streams so build output is visible live
func NewUATRunner(log logger.Logger) *UATRunner {
	return &UATRunner{
		logger: log,
		goos:   func() string { return runtime.GOOS },
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// NewUATRunnerForOS creates a runner pinned to a specific GOOS value
// with captured output, used in tests
func NewUATRunnerForOS(log logger.Logger, goos string, stdout, stderr io.Writer) *UATRunner {
	return &UATRunner{
		logger: log,
		goos:   func() string { return goos },
		stdout: stdout,
		stderr: stderr,
	}
}

// ScriptPath resolves the automation tool script for the host OS under
// the installation's batch files directory
func (r *UATRunner) ScriptPath(installation types.Installation) string {
	script := "RunUAT.sh"
	if r.goos() == "windows" {
		script = "RunUAT.bat"
	}
	return filepath.Join(installation.BatchFilesPath, script)
}

// Args builds the fixed automation tool argument list for a request
func (r *UATRunner) Args(req types.BuildRequest, descriptorPath string) []string {
	args := []string{
		buildCommand,
		fmt.Sprintf("-Plugin=%s", descriptorPath),
		fmt.Sprintf("-TargetPlatforms=%s", types.JoinPlatforms(req.Platforms)),
		fmt.Sprintf("-Package=%s", req.OutputDir),
		"-Rocket",
		"-StrictIncludes",
	}
	if r.goos() == "windows" {
		args = append(args, windowsToolchainFlag)
	}
	return args
}

// Run executes the build tool synchronously. The child process gets the
// batch files directory as its working directory via cmd.Dir, so the
// parent's working directory is never touched. A nonzero exit or a
// launch failure is an external tool error.
func (r *UATRunner) Run(ctx context.Context, req types.BuildRequest, descriptorPath string) error {
	script := r.ScriptPath(req.Installation)
	args := r.Args(req, descriptorPath)

	log := r.logger.WithScope(req.Installation.Version.String())
	log.Info(fmt.Sprintf("Running %s %s", script, buildCommand),
		logger.WithField("platforms", types.JoinPlatforms(req.Platforms)),
		logger.WithField("output", req.OutputDir))

	cmd := exec.CommandContext(ctx, script, args...)
	cmd.Dir = req.Installation.BatchFilesPath
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	cmd.Stdin = os.Stdin

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: build tool failed for engine %s: %v",
			types.ErrExternalTool, req.Installation.Version, err)
	}

	log.Success(fmt.Sprintf("Packaged in %s", time.Since(start).Round(time.Second)))
	return nil
}
