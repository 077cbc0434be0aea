package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/adapters/driven/catalog"
	"github.com/custodia-labs/storyfeed/internal/adapters/driving/watch"
	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
)

var (
	watchTopic        string
	watchSkipExisting bool
	watchSettle       time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import catalogs as they are dropped into a directory",
	Long: `Watches a directory and imports every *.toml catalog written to it.
Catalogs already present are imported first unless --skip-existing is set.

With --topic, a feed of that topic is kept open and each import is
followed by a freshness check, reporting how many new stories arrived.

Examples:
  storyfeed watch ./inbox
  storyfeed watch ./inbox --topic brighton`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchTopic, "topic", "t", "", "report new stories for this topic after each import")
	watchCmd.Flags().BoolVar(&watchSkipExisting, "skip-existing", false, "do not import catalogs already in the directory")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watch.DefaultSettle, "quiet period before a changed file is imported")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}

	watcher, err := watch.New(args[0], ingestService, catalog.DecodeFile)
	if err != nil {
		return err
	}
	watcher.WithSettle(watchSettle)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var monitor driving.FreshnessMonitor
	if watchTopic != "" {
		if feedService == nil {
			return notConfigured("feed")
		}
		session, err := feedService.Open(ctx, watchTopic)
		if err != nil {
			return fmt.Errorf("opening feed: %w", err)
		}
		defer session.Close()
		if monitor, err = feedService.Monitor(session); err != nil {
			return fmt.Errorf("starting freshness monitor: %w", err)
		}
	}

	if !watchSkipExisting {
		existing, err := watcher.ScanExisting(ctx)
		if err != nil {
			return err
		}
		for _, res := range existing {
			reportImport(ctx, cmd, res, monitor)
		}
	}

	results, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s for catalogs (Ctrl+C to stop)\n", watcher.Dir())

	for res := range results {
		reportImport(ctx, cmd, res, monitor)
	}
	return nil
}

// reportImport prints an import result and, with a monitor, the number of
// new stories it brought. New stories are merged so the next import only
// reports its own.
func reportImport(ctx context.Context, cmd *cobra.Command, res watch.Result, monitor driving.FreshnessMonitor) {
	if res.Err != nil {
		cmd.PrintErrf("%s: %v\n", res.Path, res.Err)
		return
	}
	cmd.Printf("%s: %s\n", res.Path, formatSummary(res.Summary))
	for _, reason := range res.Summary.Rejected {
		cmd.Printf("  skipped: %s\n", reason)
	}

	if monitor == nil {
		return
	}
	n, err := monitor.Reconnect(ctx)
	if err != nil {
		cmd.PrintErrf("freshness check failed: %v\n", err)
		return
	}
	if n > 0 {
		cmd.Printf("  %d new %s for %s\n", n, pluralStories(n), watchTopic)
		monitor.Apply()
	}
}

func pluralStories(n int) string {
	if n == 1 {
		return "story"
	}
	return "stories"
}
