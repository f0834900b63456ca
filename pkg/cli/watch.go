package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugforge/plugforge/pkg/logger"
	"github.com/plugforge/plugforge/pkg/process"
	"github.com/plugforge/plugforge/pkg/types"
	"github.com/plugforge/plugforge/pkg/watcher"
)

func newWatchCmd() *cobra.Command {
	flags := &buildFlags{}
	var settling time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-package the plugin whenever its sources change",
		Long: `Run an initial packaging pass, then watch the plugin directory and re-run
the full packaging sequence each time source changes settle. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				printError(err.Error())
				return err
			}
			return runWatch(cmd.Context(), cfg, settling)
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&settling, "settling-delay", 500*time.Millisecond, "quiet period before a change triggers a rebuild")
	return cmd
}

func runWatch(ctx context.Context, cfg types.Config, settling time.Duration) error {
	log := logger.CreateLogger("", verbosity)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := process.NewManager(log)
	manager.RegisterShutdownHandler(cancel)
	manager.Start(ctx)
	defer manager.Stop()

	w, err := watcher.New(log)
	if err != nil {
		printError(err.Error())
		return err
	}
	defer w.Close()
	w.SetSettlingDelay(settling)

	// Initial pass; a failing build is reported but keeps the watch
	// alive so the next save can fix it
	if err := runBuild(ctx, cfg); err != nil {
		printWarning("Initial packaging failed, still watching for changes")
	}

	err = w.Watch(ctx, cfg.PluginPath, func(paths []string) {
		printInfo(fmt.Sprintf("%d file(s) changed, re-packaging", len(paths)))
		if err := runBuild(ctx, cfg); err != nil {
			printWarning("Packaging failed, still watching for changes")
		}
	})
	if err != nil && ctx.Err() == nil {
		return err
	}

	manager.Wait()
	return nil
}
