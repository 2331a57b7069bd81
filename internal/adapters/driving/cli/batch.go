package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run and manage batch query projects",
}

var batchProcessCmd = &cobra.Command{
	Use:   "process [spec-file]",
	Short: "Run every query of a JSON batch spec",
	Long: `Runs the queries of a batch spec in order. A failing query is
recorded in the summary; the remaining queries still run.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchProcess,
}

var batchIndexCmd = &cobra.Command{
	Use:   "index [project]",
	Short: "Build the result index of a batch project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchIndex,
}

var batchMergeQueries []string

var batchMergeCmd = &cobra.Command{
	Use:   "merge [project] [output-name]",
	Short: "Merge the latest results of named queries into one file",
	Args:  cobra.ExactArgs(2),
	RunE:  runBatchMerge,
}

func init() {
	batchMergeCmd.Flags().StringSliceVar(&batchMergeQueries, "queries", nil, "query names to merge")

	batchCmd.AddCommand(batchProcessCmd)
	batchCmd.AddCommand(batchIndexCmd)
	batchCmd.AddCommand(batchMergeCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatchProcess(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	summary, err := batchService.ProcessFile(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("batch process: %w", err)
	}

	cmd.Printf("Project %s: %d queries, %d successful, %d failed\n",
		summary.ProjectName, summary.TotalQueries, summary.Successful, summary.Failed)
	for _, result := range summary.Results {
		if result.Status == domain.BatchStatusError {
			cmd.Printf("  %s: FAILED (%s)\n", result.QueryName, result.Error)
			continue
		}
		cmd.Printf("  %s: %d results -> %s\n", result.QueryName, result.ResultCount, result.ResultFile)
	}
	return nil
}

func runBatchIndex(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	index, err := batchService.ProjectIndex(args[0])
	if err != nil {
		return fmt.Errorf("batch index: %w", err)
	}

	cmd.Printf("Project %s: %d queries\n", index.ProjectName, len(index.Queries))
	for name, records := range index.Queries {
		cmd.Printf("  %s: %d result files\n", name, len(records))
	}
	return nil
}

func runBatchMerge(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	if len(batchMergeQueries) == 0 {
		return fmt.Errorf("--queries is required")
	}

	count, path, err := batchService.Merge(args[0], batchMergeQueries, args[1])
	if err != nil {
		return fmt.Errorf("batch merge: %w", err)
	}

	cmd.Printf("Merged %d elements into %s\n", count, path)
	return nil
}
