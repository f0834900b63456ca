package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/plugforge/plugforge/pkg/discovery"
	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/state"
)

func newBuildCmd() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and package the plugin for every requested engine version",
		Long: `Resolve each requested engine version against the installations found under
the configured search roots, then run the engine's automation tool once per
resolved version, producing one packaged output directory each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				printError(err.Error())
				return err
			}
			return runBuild(cmd.Context(), cfg)
		},
	}

	flags.register(cmd)
	return cmd
}

func newListCmd() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered engine installations",
		Long:  `Scan the configured search roots and list every engine installation found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				printError(err.Error())
				return err
			}
			return runList(cmd.Context(), cfg.EnginePaths)
		},
	}

	cmd.Flags().StringArrayVar(&flags.enginePaths, "engine-path", nil, "engine search root (repeatable)")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded packaging runs",
		Long:  `Display the packaging attempts recorded under the output root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				printError(err.Error())
				return err
			}
			return runHistory(cfg.OutputPath)
		},
	}

	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "", "output root directory")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Plugforge",
		Long:  `Print the version number of Plugforge`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("🔨 Plugforge v%s\n", version)
		},
	}
}

// Implementation functions

func runList(ctx context.Context, roots []string) error {
	log := logger.CreateLogger("", verbosity)
	scanner := discovery.NewScanner(log)

	installations, err := scanner.Scan(ctx, roots)
	if err != nil {
		printError(fmt.Sprintf("Scan failed: %v", err))
		return err
	}

	if len(installations) == 0 {
		printWarning("No engine installations found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tPATH")
	fmt.Fprintln(w, "-------\t----")
	for _, inst := range installations {
		fmt.Fprintf(w, "%s\t%s\n", inst.Version, inst.RootPath)
	}
	w.Flush()
	return nil
}

func runHistory(outputRoot string) error {
	history := state.NewHistory(outputRoot)

	records, err := history.Records()
	if err != nil {
		printError(fmt.Sprintf("Failed to read history: %v", err))
		return err
	}

	if len(records) == 0 {
		printWarning("No packaging runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tVERSION\tSTATUS\tDURATION\tOUTPUT")
	fmt.Fprintln(w, "----\t-------\t------\t--------\t------")
	for _, rec := range records {
		status := color.WhiteString(rec.Status)
		switch rec.Status {
		case state.StatusSucceeded:
			status = color.GreenString(rec.Status)
		case state.StatusFailed:
			status = color.RedString(rec.Status)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Version,
			status,
			(time.Duration(rec.DurationMS) * time.Millisecond).String(),
			rec.OutputPath,
		)
	}
	w.Flush()
	return nil
}
