package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/plugforge/plugforge/pkg/interfaces"
	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/types"

	"github.com/plugforge/plugforge/internal/orchestrator"
)

// runBuild executes one packaging run over a merged configuration
func runBuild(ctx context.Context, cfg types.Config) error {
	log := logger.CreateLogger("", verbosity)

	orch := orchestrator.New(cfg, log, interfaces.Dependencies{})
	if err := orch.Run(ctx); err != nil {
		printError(describeFailure(err))
		return err
	}

	printSuccess("All engine versions packaged")
	return nil
}

// describeFailure prefixes the error with its failure category so the
// console message tells the user what kind of problem to look for
func describeFailure(err error) string {
	switch {
	case errors.Is(err, types.ErrValidation):
		return fmt.Sprintf("Invalid input: %v", err)
	case errors.Is(err, types.ErrResolution):
		return fmt.Sprintf("Version resolution failed: %v", err)
	case errors.Is(err, types.ErrExternalTool):
		return fmt.Sprintf("Build tool failed: %v", err)
	case errors.Is(err, types.ErrFileSystem):
		return fmt.Sprintf("Filesystem error: %v", err)
	}
	return err.Error()
}
