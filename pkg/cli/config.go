package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugforge/plugforge/pkg/config"
	"github.com/plugforge/plugforge/pkg/types"
)

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return config.DefaultFileName
}

// buildFlags holds the build command's flag variables
type buildFlags struct {
	enginePaths       []string
	versions          []string
	pluginPath        string
	outputPath        string
	platforms         []string
	cleanBinaries     bool
	cleanIntermediate bool
	zip               bool
	notify            bool
}

// register declares the packaging flags on a command
func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.enginePaths, "engine-path", nil, "engine search root (repeatable)")
	cmd.Flags().StringArrayVarP(&f.versions, "engine-version", "e", nil, "engine version to build against, e.g. 4.26 (repeatable)")
	cmd.Flags().StringVarP(&f.pluginPath, "plugin", "p", "", "plugin directory or .uplugin file")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "output root directory")
	cmd.Flags().StringSliceVar(&f.platforms, "platforms", nil, "target platforms (Win64, IOS, Android, Mac, Linux)")
	cmd.Flags().BoolVar(&f.cleanBinaries, "clean-binaries", false, "remove Binaries and Intermediate from packaged output")
	cmd.Flags().BoolVar(&f.cleanIntermediate, "clean-intermediate", false, "remove Intermediate from packaged output")
	cmd.Flags().BoolVar(&f.zip, "zip", false, "zip each packaged output directory")
	cmd.Flags().BoolVar(&f.notify, "notify", true, "send a desktop notification per packaged version")
}

// overrides converts the flags the user actually passed into merge
// overrides; untouched flags contribute nothing.
func (f *buildFlags) overrides(cmd *cobra.Command) config.FlagOverrides {
	var o config.FlagOverrides

	o.EnginePaths = f.enginePaths
	o.Versions = f.versions
	if cmd.Flags().Changed("plugin") {
		o.PluginPath = &f.pluginPath
	}
	if cmd.Flags().Changed("output") {
		o.OutputPath = &f.outputPath
	}
	o.Platforms = f.platforms
	if cmd.Flags().Changed("clean-binaries") {
		o.CleanBinaries = &f.cleanBinaries
	}
	if cmd.Flags().Changed("clean-intermediate") {
		o.CleanIntermediate = &f.cleanIntermediate
	}
	if cmd.Flags().Changed("zip") {
		o.ZipPackages = &f.zip
	}
	if cmd.Flags().Changed("notify") {
		o.Notify = &f.notify
	}
	return o
}

// resolveConfig performs the three-way merge for one invocation
func resolveConfig(cmd *cobra.Command, flags *buildFlags) (types.Config, error) {
	manager := config.NewManager()

	fileCfg, err := manager.LoadFile(getConfigPath())
	if err != nil {
		return types.Config{}, err
	}

	return config.Merge(config.Default(), fileCfg, flags.overrides(cmd))
}
