// Package types defines the core domain types shared across Plugforge
package types

import (
	"fmt"
	"strings"
)

// Platform is a target platform a plugin package can be built for
type Platform string

// Supported target platforms
const (
	PlatformWin64   Platform = "Win64"
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "Android"
	PlatformMac     Platform = "Mac"
	PlatformLinux   Platform = "Linux"
)

// ParsePlatform parses a platform name into its canonical form.
// Matching is case-insensitive; unknown names fail validation.
func ParsePlatform(name string) (Platform, error) {
	for _, p := range []Platform{PlatformWin64, PlatformIOS, PlatformAndroid, PlatformMac, PlatformLinux} {
		if strings.EqualFold(name, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrValidation, name)
}

// JoinPlatforms renders a platform list in the build tool's
// plus-separated argument form, e.g. "Win64+Android".
func JoinPlatforms(platforms []Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return strings.Join(names, "+")
}

// EngineVersion is a concrete three-part engine version
type EngineVersion struct {
	Major int `json:"MajorVersion"`
	Minor int `json:"MinorVersion"`
	Patch int `json:"PatchVersion"`
}

// String returns the dotted form, e.g. "4.26.2"
func (v EngineVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Underscored returns the version with separators rendered as
// underscores, as used in output directory names.
func (v EngineVersion) Underscored() string {
	return fmt.Sprintf("%d_%d_%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions lexicographically by (major, minor, patch).
// Returns -1, 0 or 1.
func (v EngineVersion) Compare(other EngineVersion) int {
	if v.Major != other.Major {
		return sign(v.Major - other.Major)
	}
	if v.Minor != other.Minor {
		return sign(v.Minor - other.Minor)
	}
	return sign(v.Patch - other.Patch)
}

// AtLeast reports whether the installed version v satisfies the required
// minimum. Each level compares installed against required and
// short-circuits: a greater major wins regardless of minor and patch.
func (v EngineVersion) AtLeast(required EngineVersion) bool {
	if v.Major != required.Major {
		return v.Major > required.Major
	}
	if v.Minor != required.Minor {
		return v.Minor > required.Minor
	}
	return v.Patch >= required.Patch
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Installation is one discovered engine copy on disk
type Installation struct {
	Version        EngineVersion
	RootPath       string
	BatchFilesPath string
}

// PluginDescriptor holds the metadata parsed from a .uplugin file
type PluginDescriptor struct {
	FriendlyName string `json:"FriendlyName"`
	VersionName  string `json:"VersionName,omitempty"`
	Description  string `json:"Description,omitempty"`
}

// BuildRequest is the resolved input for one build tool invocation
type BuildRequest struct {
	Installation Installation
	Platforms    []Platform
	OutputDir    string
}

// CleanPolicy controls post-build removal of output subtrees
type CleanPolicy struct {
	RemoveIntermediate bool
	RemoveBinaries     bool
}

// Config is the merged, immutable configuration for one run.
// It is produced once by the config package (defaults, then file,
// then flags) and never mutated afterwards.
type Config struct {
	EnginePaths       []string
	VersionSpecs      []string
	PluginPath        string
	OutputPath        string
	Platforms         []Platform
	CleanBinaries     bool
	CleanIntermediate bool
	ZipPackages       bool
	Notify            bool
}

// FileConfig mirrors the on-disk configuration document. Pointer and
// slice fields distinguish "absent" from zero values so the merge can
// tell which fields the file actually set.
type FileConfig struct {
	UnrealEnginePaths      []string `json:"UnrealEnginePaths,omitempty"`
	VersionsToInstall      []string `json:"VersionsToInstall,omitempty"`
	PluginPath             *string  `json:"PluginPath,omitempty"`
	OutputPath             *string  `json:"OutputPath,omitempty"`
	Platforms              []string `json:"Platforms,omitempty"`
	CleanBinaryFiles       *bool    `json:"CleanBinaryFiles,omitempty"`
	CleanIntermediateFiles *bool    `json:"CleanIntermediateFiles,omitempty"`
	ZipPackages            *bool    `json:"ZipPackages,omitempty"`
}
