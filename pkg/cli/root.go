// Package cli provides the command-line interface for Plugforge
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plugforge/plugforge/pkg/logger"
)

var (
	cfgFile   string
	verbosity string
	version   string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "plugforge",
	Short: "Package an Unreal Engine plugin against multiple engine versions",
	Long: `🔨 Plugforge - Multi-version Unreal Engine plugin packaging

Plugforge discovers the engine installations on this machine, resolves each
requested version to the best installed match, and drives the engine's own
automation tool to build and package your plugin once per version.`,

	Run: func(cmd *cobra.Command, args []string) {
		// Check if version flag is set
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("🔨 Plugforge v%s\n", version)
			return
		}
		// If no subcommand, show help
		cmd.Help()
	},
}

// Execute runs the CLI
func Execute(v string) error {
	version = v

	// Initialize the root command explicitly (avoiding init())
	initializeRootCommand()

	return rootCmd.Execute()
}

// initializeRootCommand sets up the root command and its flags.
// This replaces the init() function to make initialization explicit and testable.
func initializeRootCommand() {
	// Set up config initialization
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: plugforge.config.json)")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")

	// Add version flag
	rootCmd.Flags().Bool("version", false, "Print version information and quit")

	// Add subcommands
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in the working directory
		viper.AddConfigPath(".")
		viper.SetConfigName("plugforge.config")
		viper.SetConfigType("json")
	}

	// Read in environment variables
	viper.SetEnvPrefix("PLUGFORGE")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		if verbosity == "debug" {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}
	}
}

// Console output helpers

var console = logger.NewConsoleLogger()

func printSuccess(message string) {
	console.Success(message)
}

func printError(message string) {
	console.Error(message)
}

func printInfo(message string) {
	console.Info(message)
}

func printWarning(message string) {
	console.Warn(message)
}
