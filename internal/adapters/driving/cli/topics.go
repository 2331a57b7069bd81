package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	topicsLimit         int
	topicsMinWordLength int
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Extract common topics from conversation titles",
	RunE:  runTopics,
}

var relatedLimit int

var relatedCmd = &cobra.Command{
	Use:   "related [id]",
	Short: "Find conversations related to one",
	Long: `Finds conversations sharing frequent keywords with the given
conversation, ranked by keyword overlap.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

var categorizeCmd = &cobra.Command{
	Use:   "categorize [file]",
	Short: "Categorise conversations by keyword lists",
	Long: `Reads a JSON file mapping category names to keyword lists,
assigns matching conversations to each category, and records the
assignments as topics.

Example file:
  {"infrastructure": ["terraform", "docker"], "frontend": ["react"]}`,
	Args: cobra.ExactArgs(1),
	RunE: runCategorize,
}

func init() {
	topicsCmd.Flags().IntVarP(&topicsLimit, "limit", "n", 50, "number of topics")
	topicsCmd.Flags().IntVar(&topicsMinWordLength, "min-word-length", 4, "minimum keyword length")
	rootCmd.AddCommand(topicsCmd)

	relatedCmd.Flags().IntVarP(&relatedLimit, "limit", "n", 10, "number of results")
	rootCmd.AddCommand(relatedCmd)

	rootCmd.AddCommand(categorizeCmd)
}

func runTopics(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	topics, err := queryService.Topics(context.Background(), topicsLimit, topicsMinWordLength)
	if err != nil {
		return fmt.Errorf("extract topics: %w", err)
	}

	if len(topics) == 0 {
		cmd.Println("No topics found.")
		return nil
	}

	cmd.Println("Top Topics:")
	for i, topic := range topics {
		cmd.Printf("%3d. %-30s %5d\n", i+1, topic.Topic, topic.Count)
	}
	return nil
}

func runRelated(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	hits, err := queryService.Related(context.Background(), args[0], relatedLimit)
	if err != nil {
		return fmt.Errorf("find related: %w", err)
	}

	if len(hits) == 0 {
		cmd.Println("No related conversations found.")
		return nil
	}

	cmd.Printf("Conversations related to %s:\n\n", args[0])
	for _, hit := range hits {
		title := hit.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [score %d] %s\n", hit.Score, title)
		cmd.Printf("      ID: %s | Created: %s\n", hit.ID, formatDate(hit.CreatedAt))
	}
	return nil
}

// Categorise records topics, so the store opens read-write here.
func runCategorize(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read keyword map: %w", err)
	}

	var keywordMap map[string][]string
	if err := json.Unmarshal(data, &keywordMap); err != nil {
		return fmt.Errorf("parse keyword map: %w", err)
	}

	categories, err := queryService.Categorise(context.Background(), keywordMap)
	if err != nil {
		return fmt.Errorf("categorise: %w", err)
	}

	for category, convs := range categories {
		cmd.Printf("%s: %d conversations\n", category, len(convs))
	}
	return nil
}
