package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var exportQuery string

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export conversations to CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var historyCmd = &cobra.Command{
	Use:   "history [query-name]",
	Short: "List saved query results, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	exportCmd.Flags().StringVarP(&exportQuery, "query", "q", "", "restrict to conversations matching a keyword")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	count, err := queryService.ExportCSV(context.Background(), args[0], exportQuery)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cmd.Printf("Exported %d conversations to %s\n", count, args[0])
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	queryName := ""
	if len(args) == 1 {
		queryName = args[0]
	}

	history, err := queryService.History(queryName)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	if len(history) == 0 {
		cmd.Println("No saved results.")
		return nil
	}

	for _, entry := range history {
		cmd.Printf("  %v  %v (%v results)\n",
			entry["timestamp"], entry["query_name"], entry["result_count"])
		if file, ok := entry["result_file"]; ok {
			cmd.Printf("      %v\n", file)
		}
	}
	return nil
}
