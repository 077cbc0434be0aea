// Package cli provides the storyfeed command-line interface.
// It is a driving adapter: commands translate flags and arguments into
// calls on the core's driving ports.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/storyfeed/internal/core/ports/driving"
	"github.com/custodia-labs/storyfeed/internal/logger"
)

// version is set at build time.
var version = "dev"

// Options are the global flags handed to the bootstrap function.
type Options struct {
	// DataDir holds the SQLite database. Empty selects the default.
	DataDir string

	// Memory selects the in-memory store instead of SQLite.
	Memory bool

	// Verbose enables debug logging.
	Verbose bool
}

// Services are the driving ports commands call.
type Services struct {
	Feed     driving.FeedService
	Topics   driving.TopicService
	Ranking  driving.RankingService
	Settings driving.SettingsService
	Ingest   driving.IngestService
	Slots    driving.SlotDiagnostics
}

// Bootstrap builds the services for a run. The returned cleanup is called
// once the command finishes.
type Bootstrap func(opts Options) (*Services, func() error, error)

var (
	bootstrap Bootstrap
	cleanup   func() error
	opts      Options

	feedService     driving.FeedService
	topicService    driving.TopicService
	rankingService  driving.RankingService
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	slotDiagnostics driving.SlotDiagnostics
)

var rootCmd = &cobra.Command{
	Use:   "storyfeed",
	Short: "Topic-scoped news feeds with side content, filters and roundups",
	Long: `storyfeed assembles topic feeds from a paginated story stream and
independently generated side content (sentiment, quiz, insight, events,
community pulse, parliamentary digest and flashback cards).

Stories are imported from TOML catalogs with 'storyfeed import' or picked up
from a drop directory with 'storyfeed watch'. Feeds can be read in the
terminal UI, printed as text or JSON, or served to AI assistants over MCP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&opts.Memory, "memory", false, "use an in-memory store (nothing is persisted)")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding storyfeed.db (default ~/.storyfeed/data)")
}

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(fn Bootstrap) {
	bootstrap = fn
}

// SetVersion sets the version reported by 'storyfeed version'.
func SetVersion(v string) {
	version = v
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	feedService = s.Feed
	topicService = s.Topics
	rankingService = s.Ranking
	settingsService = s.Settings
	ingestService = s.Ingest
	slotDiagnostics = s.Slots
}

// setup enables logging and runs the bootstrap once per process.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(opts.Verbose)

	if bootstrap == nil || feedService != nil {
		return nil
	}
	services, done, err := bootstrap(opts)
	if err != nil {
		return fmt.Errorf("starting storyfeed: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

// Execute runs the root command and releases resources acquired by the bootstrap.
func Execute() error {
	err := rootCmd.Execute()
	if cleanup != nil {
		if cerr := cleanup(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("closing storyfeed: %w", cerr))
		}
		cleanup = nil
	}
	return err
}

// notConfigured reports a missing service.
func notConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}
