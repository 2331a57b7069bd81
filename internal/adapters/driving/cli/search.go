package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
)

var (
	searchSource      string
	searchStartDate   string
	searchEndDate     string
	searchMinMessages int
	searchMaxMessages int
	searchLimit       int
	searchMessages    bool
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed conversations",
	Long: `Searches the conversation index by keyword. All filters are
conjunctive; results are ordered newest first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var (
	getMessages bool
	getFormat   string
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one conversation by full or partial ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var detailsCmd = &cobra.Command{
	Use:   "details [id]",
	Short: "Show one conversation with its full message history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetails,
}

func init() {
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to one source (claude or openai)")
	searchCmd.Flags().StringVar(&searchStartDate, "start-date", "", "earliest creation date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchEndDate, "end-date", "", "latest creation date (YYYY-MM-DD)")
	searchCmd.Flags().IntVar(&searchMinMessages, "min-messages", 0, "minimum message count")
	searchCmd.Flags().IntVar(&searchMaxMessages, "max-messages", 0, "maximum message count")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default 50)")
	searchCmd.Flags().BoolVar(&searchMessages, "messages", false, "include full message texts")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)

	getCmd.Flags().BoolVar(&getMessages, "messages", false, "include full message texts")
	getCmd.Flags().StringVar(&getFormat, "format", "text", "output format (text, markdown, or json)")
	rootCmd.AddCommand(getCmd)

	rootCmd.AddCommand(detailsCmd)
}

// parseDateFlag parses a YYYY-MM-DD flag value, empty meaning unset.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("--%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	startDate, err := parseDateFlag("start-date", searchStartDate)
	if err != nil {
		return err
	}
	endDate, err := parseDateFlag("end-date", searchEndDate)
	if err != nil {
		return err
	}

	filter := domain.SearchFilter{
		Query:           args[0],
		Source:          domain.Source(searchSource),
		StartDate:       startDate,
		EndDate:         endDate,
		MinMessages:     searchMinMessages,
		MaxMessages:     searchMaxMessages,
		Limit:           searchLimit,
		IncludeMessages: searchMessages,
	}

	results, err := queryService.Search(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}
	printConversations(cmd, results)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	conv, err := queryService.Get(context.Background(), args[0], getMessages)
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}

	switch getFormat {
	case "json":
		return printJSON(cmd, conv)
	case "markdown":
		printConversationMarkdown(cmd, conv)
		return nil
	case "text":
		printConversationText(cmd, conv)
		return nil
	default:
		return fmt.Errorf("--format must be text, markdown, or json")
	}
}

func runDetails(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	conv, err := queryService.Get(context.Background(), args[0], true)
	if err != nil {
		return fmt.Errorf("conversation details: %w", err)
	}

	printConversationText(cmd, conv)
	return nil
}
