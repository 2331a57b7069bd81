package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
)

var indexSource string

var indexCmd = &cobra.Command{
	Use:   "index [archive]",
	Short: "Index conversation export archives",
	Long: `Ingests export archives into the local database.

Without arguments, walks the configured exports directory
(claude-ai/*.zip, then openai-ai/*.zip). With an archive path,
indexes that single archive; --source is required then.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexSource, "source", "", "export source of the archive (claude or openai)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := context.Background()

	if len(args) == 1 {
		source := domain.Source(indexSource)
		if !source.Valid() {
			return fmt.Errorf("--source must be %q or %q", domain.SourceClaude, domain.SourceOpenAI)
		}

		report, err := indexerService.IndexArchive(ctx, args[0], source)
		if err != nil {
			return fmt.Errorf("index archive: %w", err)
		}

		cmd.Printf("Indexed %s: %d conversations, %d messages, %d artifacts\n",
			report.ExportFile, report.Conversations, report.Messages, report.Artifacts)
		return nil
	}

	run, err := indexerService.IndexAll(ctx, settings.ExportsDir)
	if err != nil {
		return fmt.Errorf("index run: %w", err)
	}

	for _, archive := range run.Archives {
		cmd.Printf("  %s (%s): %d conversations, %d messages, %d artifacts\n",
			archive.ExportFile, archive.Source, archive.Conversations, archive.Messages, archive.Artifacts)
	}
	for _, failure := range run.Failures {
		cmd.Printf("  %s: FAILED (%v)\n", failure.ExportFile, failure.Err)
	}

	cmd.Printf("\nIndexed %d archives: %d conversations, %d messages.\n",
		len(run.Archives), run.TotalConversations(), run.TotalMessages())
	if len(run.Failures) > 0 {
		cmd.Printf("%d archives failed.\n", len(run.Failures))
	}
	return nil
}
