package builders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/types"
)

// Subtrees the cleaner may remove from a packaged output directory
const (
	intermediateDir = "Intermediate"
	binariesDir     = "Binaries"
)

// Cleaner removes configured subtrees from a build output directory
type Cleaner struct {
	logger logger.Logger
}

// NewCleaner creates a new output cleaner
func NewCleaner(log logger.Logger) *Cleaner {
	return &Cleaner{logger: log}
}

// Clean applies the cleanup policy to an output directory. Either flag
// removes the Intermediate subtree; RemoveBinaries also removes
// Binaries. Removing an absent path is a no-op, never an error.
func (c *Cleaner) Clean(outputDir string, policy types.CleanPolicy) error {
	if policy.RemoveIntermediate || policy.RemoveBinaries {
		if err := c.remove(filepath.Join(outputDir, intermediateDir)); err != nil {
			return err
		}
	}
	if policy.RemoveBinaries {
		if err := c.remove(filepath.Join(outputDir, binariesDir)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cleaner) remove(path string) error {
	// os.RemoveAll returns nil for paths that do not exist
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: removing %s: %v", types.ErrFileSystem, path, err)
	}
	c.logger.Debug(fmt.Sprintf("Removed %s", path))
	return nil
}
