// Package config handles configuration loading and merging
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/plugforge/plugforge/pkg/types"
)

// DefaultFileName is the configuration file looked up in the working
// directory when no --config flag is given
const DefaultFileName = "plugforge.config.json"

// FlagOverrides carries the values set explicitly on the command line.
// Pointer and slice fields distinguish "not set" from zero values so
// flags only override what the user actually passed.
type FlagOverrides struct {
	EnginePaths       []string
	Versions          []string
	PluginPath        *string
	OutputPath        *string
	Platforms         []string
	CleanBinaries     *bool
	CleanIntermediate *bool
	ZipPackages       *bool
	Notify            *bool
}

// Manager handles configuration operations
type Manager struct{}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// LoadFile loads a configuration file. JSON is tried first, then YAML,
// matching the formats the tool accepts on disk. A missing file is not
// an error; it simply contributes nothing to the merge.
func (m *Manager) LoadFile(path string) (*types.FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading config file %s: %v", types.ErrFileSystem, path, err)
	}

	var cfg types.FileConfig

	// Try JSON first
	if err := json.Unmarshal(data, &cfg); err == nil {
		return &cfg, nil
	}

	// Try YAML, converting through JSON so field matching stays identical
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err == nil {
		jsonData, err := json.Marshal(yamlData)
		if err == nil {
			if err := json.Unmarshal(jsonData, &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: config file %s is not valid JSON or YAML", types.ErrValidation, path)
}

// Default returns the built-in configuration for the current host OS
func Default() types.Config {
	return defaultForOS(runtime.GOOS)
}

func defaultForOS(goos string) types.Config {
	cfg := types.Config{
		VersionSpecs: []string{"4"},
		PluginPath:   ".",
		OutputPath:   "Packages",
		Notify:       true,
	}

	switch goos {
	case "windows":
		cfg.EnginePaths = []string{`C:\Program Files\Epic Games`}
		cfg.Platforms = []types.Platform{types.PlatformWin64}
	case "darwin":
		cfg.EnginePaths = []string{"/Users/Shared/Epic Games"}
		cfg.Platforms = []types.Platform{types.PlatformMac}
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.EnginePaths = []string{filepath.Join(home, "UnrealEngine")}
		cfg.Platforms = []types.Platform{types.PlatformLinux}
	}
	return cfg
}

// Merge builds the immutable run configuration from three layers:
// built-in defaults, then the config file, then command-line flags.
// Later layers win field by field. The result is the only settings
// value the rest of the program sees.
func Merge(defaults types.Config, file *types.FileConfig, flags FlagOverrides) (types.Config, error) {
	cfg := defaults

	if file != nil {
		if len(file.UnrealEnginePaths) > 0 {
			cfg.EnginePaths = file.UnrealEnginePaths
		}
		if len(file.VersionsToInstall) > 0 {
			cfg.VersionSpecs = file.VersionsToInstall
		}
		if file.PluginPath != nil {
			cfg.PluginPath = *file.PluginPath
		}
		if file.OutputPath != nil {
			cfg.OutputPath = *file.OutputPath
		}
		if len(file.Platforms) > 0 {
			platforms, err := parsePlatforms(file.Platforms)
			if err != nil {
				return types.Config{}, err
			}
			cfg.Platforms = platforms
		}
		if file.CleanBinaryFiles != nil {
			cfg.CleanBinaries = *file.CleanBinaryFiles
		}
		if file.CleanIntermediateFiles != nil {
			cfg.CleanIntermediate = *file.CleanIntermediateFiles
		}
		if file.ZipPackages != nil {
			cfg.ZipPackages = *file.ZipPackages
		}
	}

	if len(flags.EnginePaths) > 0 {
		cfg.EnginePaths = flags.EnginePaths
	}
	if len(flags.Versions) > 0 {
		cfg.VersionSpecs = flags.Versions
	}
	if flags.PluginPath != nil {
		cfg.PluginPath = *flags.PluginPath
	}
	if flags.OutputPath != nil {
		cfg.OutputPath = *flags.OutputPath
	}
	if len(flags.Platforms) > 0 {
		platforms, err := parsePlatforms(flags.Platforms)
		if err != nil {
			return types.Config{}, err
		}
		cfg.Platforms = platforms
	}
	if flags.CleanBinaries != nil {
		cfg.CleanBinaries = *flags.CleanBinaries
	}
	if flags.CleanIntermediate != nil {
		cfg.CleanIntermediate = *flags.CleanIntermediate
	}
	if flags.ZipPackages != nil {
		cfg.ZipPackages = *flags.ZipPackages
	}
	if flags.Notify != nil {
		cfg.Notify = *flags.Notify
	}

	return cfg, nil
}

func parsePlatforms(names []string) ([]types.Platform, error) {
	platforms := make([]types.Platform, 0, len(names))
	for _, name := range names {
		p, err := types.ParsePlatform(name)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}
