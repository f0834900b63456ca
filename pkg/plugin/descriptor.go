// Package plugin resolves and parses .uplugin descriptor files
package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/types"
)

// DescriptorExt is the plugin descriptor file extension
const DescriptorExt = ".uplugin"

// Loader resolves a plugin path to its descriptor
type Loader struct {
	logger logger.Logger
}

// NewLoader creates a new descriptor loader
func NewLoader(log logger.Logger) *Loader {
	return &Loader{logger: log}
}

// Load accepts either a descriptor file path or a directory expected to
// contain one. It returns the resolved descriptor path and the parsed
// descriptor. When a directory holds several descriptors the
// lexicographically first is picked and the ambiguity is logged.
func (l *Loader) Load(path string) (string, *types.PluginDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: plugin path %s: %v", types.ErrFileSystem, path, err)
	}

	descriptorPath := path
	if info.IsDir() {
		descriptorPath, err = l.findDescriptor(path)
		if err != nil {
			return "", nil, err
		}
	}

	desc, err := l.parse(descriptorPath)
	if err != nil {
		return "", nil, err
	}
	return descriptorPath, desc, nil
}

// findDescriptor locates the descriptor file inside a plugin directory
func (l *Loader) findDescriptor(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: reading plugin directory %s: %v", types.ErrFileSystem, dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), DescriptorExt) {
			candidates = append(candidates, entry.Name())
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no %s file found in %s", types.ErrValidation, DescriptorExt, dir)
	}

	sort.Strings(candidates)
	if len(candidates) > 1 {
		l.logger.Warn(fmt.Sprintf("Multiple plugin descriptors in %s, using %s", dir, candidates[0]))
	}
	return filepath.Join(dir, candidates[0]), nil
}

// parse reads and decodes a descriptor file
func (l *Loader) parse(path string) (*types.PluginDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading plugin descriptor %s: %v", types.ErrFileSystem, path, err)
	}

	var desc types.PluginDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: parsing plugin descriptor %s: %v", types.ErrValidation, path, err)
	}

	if desc.FriendlyName == "" {
		// Fall back to the file name so output directories stay usable
		desc.FriendlyName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		l.logger.Debug(fmt.Sprintf("Descriptor %s has no FriendlyName, using %s", path, desc.FriendlyName))
	}
	return &desc, nil
}
