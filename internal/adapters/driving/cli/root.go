// Package cli implements the chatidx command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/adapters/driven/config/file"
	"github.com/openhwy/chatidx/internal/adapters/driven/export"
	"github.com/openhwy/chatidx/internal/adapters/driven/export/claude"
	"github.com/openhwy/chatidx/internal/adapters/driven/export/openai"
	"github.com/openhwy/chatidx/internal/adapters/driven/storage/sqlite"
	"github.com/openhwy/chatidx/internal/core/ports/driving"
	"github.com/openhwy/chatidx/internal/core/services"
	"github.com/openhwy/chatidx/internal/logger"
)

// version is set from main at startup.
var version = "dev"

// Global flags.
var (
	configDir string
	verbose   bool
)

// Services wired by ensureServices or injected by tests.
var (
	indexerService   driving.IndexerService
	queryService     driving.QueryService
	analyticsService driving.AnalyticsService
	artifactService  driving.ArtifactService
	batchService     driving.BatchService
)

// Wiring state shared by the commands.
var (
	configStore *file.ConfigStore
	settings    file.Settings
	store       *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "chatidx",
	Short: "Index and query AI conversation exports",
	Long: `chatidx ingests Claude and OpenAI conversation export archives
into a local database and provides search, analytics, and batch
query tooling on top of it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.chatidx)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

// ensureConfig loads the config store and resolved settings once.
func ensureConfig() error {
	if configStore != nil {
		return nil
	}

	cs, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configStore = cs
	settings = file.ResolveSettings(cs)
	return nil
}

// ensureServices wires the store-backed services once, opening the
// database read-write. Tests inject service fakes instead, which
// short-circuits the wiring.
func ensureServices() error {
	return wireServices(false)
}

// ensureReadServices is ensureServices for commands that never write
// the database; the store is opened read-only and must already exist.
func ensureReadServices() error {
	return wireServices(true)
}

func wireServices(readOnly bool) error {
	if queryService != nil {
		return nil
	}

	if err := ensureConfig(); err != nil {
		return err
	}

	var s *sqlite.Store
	var err error
	if readOnly {
		s, err = sqlite.OpenReadOnly(settings.DatabasePath())
	} else {
		s, err = sqlite.NewStore(settings.DatabasePath())
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	store = s

	scanner := export.NewScanner(settings.ExtractArtifacts, settings.ArtifactsPath())
	indexerService = services.NewIndexerService(
		s.ConversationStore(),
		s.ArtifactStore(),
		scanner,
		claude.NewAdapter(),
		openai.NewAdapter(),
	)
	queryService = services.NewQueryService(s.ConversationStore(), s.TopicStore(), settings.QueriesPath())
	analyticsService = services.NewAnalyticsService(s.AnalyticsStore(), s.ConversationStore())
	artifactService = services.NewArtifactService(s.ArtifactStore())
	batchService = services.NewBatchService(queryService, settings.BatchResultsPath())

	return nil
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	defer func() {
		if store != nil {
			_ = store.Close()
		}
	}()
	return rootCmd.Execute()
}
