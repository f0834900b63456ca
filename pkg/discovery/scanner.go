// Package discovery finds engine installations under configured search roots
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/types"
)

const (
	// versionFileRelPath is where an installation keeps its version metadata
	versionFileRelPath = "Engine/Build/Build.version"

	// batchFilesRelPath holds the engine's automation tool scripts
	batchFilesRelPath = "Engine/Build/BatchFiles"
)

// Scanner discovers engine installations on disk
type Scanner struct {
	logger logger.Logger
}

// NewScanner creates a new installation scanner
func NewScanner(log logger.Logger) *Scanner {
	return &Scanner{logger: log}
}

// Scan searches every root concurrently and concatenates the results in
// root order. A root that is itself an installation contributes exactly
// that installation; otherwise its immediate subdirectories are probed,
// one level deep. Candidates that fail to parse are skipped with a
// diagnostic. Duplicates across roots are not removed.
//
// An unreadable root is fatal only when no root produced any
// installation at all.
func (s *Scanner) Scan(ctx context.Context, roots []string) ([]types.Installation, error) {
	perRoot := make([][]types.Installation, len(roots))
	var mu sync.Mutex
	var rootErr error

	g, ctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, err := s.scanRoot(root)
			mu.Lock()
			defer mu.Unlock()
			perRoot[i] = found
			if err != nil && rootErr == nil {
				rootErr = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var installations []types.Installation
	for _, found := range perRoot {
		installations = append(installations, found...)
	}

	if len(installations) == 0 && rootErr != nil {
		return nil, rootErr
	}
	return installations, nil
}

// scanRoot probes one search root
func (s *Scanner) scanRoot(root string) ([]types.Installation, error) {
	if inst, err := s.readInstallation(root); err == nil {
		s.logger.Info(fmt.Sprintf("Found engine %s at %s", inst.Version, inst.RootPath))
		return []types.Installation{*inst}, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Cannot read search root %s: %v", root, err))
		return nil, fmt.Errorf("%w: reading search root %s: %v", types.ErrFileSystem, root, err)
	}

	var found []types.Installation
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(root, entry.Name())
		inst, err := s.readInstallation(candidate)
		if err != nil {
			s.logger.Debug(fmt.Sprintf("Skipping %s: %v", candidate, err))
			continue
		}
		s.logger.Info(fmt.Sprintf("Found engine %s at %s", inst.Version, inst.RootPath))
		found = append(found, *inst)
	}
	return found, nil
}

// readInstallation validates a directory as an engine installation by
// parsing its version metadata file
func (s *Scanner) readInstallation(root string) (*types.Installation, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(versionFileRelPath)))
	if err != nil {
		return nil, fmt.Errorf("no version metadata: %w", err)
	}

	var ver types.EngineVersion
	if err := json.Unmarshal(data, &ver); err != nil {
		return nil, fmt.Errorf("malformed version metadata: %w", err)
	}

	return &types.Installation{
		Version:        ver,
		RootPath:       root,
		BatchFilesPath: filepath.Join(root, filepath.FromSlash(batchFilesRelPath)),
	}, nil
}
