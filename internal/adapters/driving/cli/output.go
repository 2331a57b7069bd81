package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// printJSON renders any value as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// formatDate renders an optional timestamp for table output.
func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

// printConversations renders a compact conversation listing.
func printConversations(cmd *cobra.Command, convs []domain.Conversation) {
	if len(convs) == 0 {
		cmd.Println("No conversations found.")
		return
	}

	for i := range convs {
		c := &convs[i]
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [%s] %s\n", c.Source, title)
		cmd.Printf("      ID: %s | Created: %s | Messages: %d\n",
			c.ID, formatDate(c.CreatedAt), c.MessageCount)
		if c.Summary != "" {
			cmd.Printf("      %s\n", c.Summary)
		}
		cmd.Println()
	}
	cmd.Printf("%d conversations.\n", len(convs))
}

// printConversationText renders one conversation with any inlined
// messages.
func printConversationText(cmd *cobra.Command, conv *domain.Conversation) {
	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	cmd.Printf("%s\n", title)
	cmd.Printf("ID: %s | Source: %s | Created: %s | Messages: %d\n",
		conv.ID, conv.Source, formatDate(conv.CreatedAt), conv.MessageCount)
	if conv.Summary != "" {
		cmd.Printf("Summary: %s\n", conv.Summary)
	}

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		cmd.Printf("\n[%s] %s\n", msg.Sender, formatDate(msg.CreatedAt))
		cmd.Println(msg.Text)
	}
}

// printConversationMarkdown renders one conversation as a Markdown
// document.
func printConversationMarkdown(cmd *cobra.Command, conv *domain.Conversation) {
	title := conv.Title
	if title == "" {
		title = "(untitled)"
	}
	cmd.Printf("# %s\n\n", title)
	cmd.Printf("- **ID**: %s\n", conv.ID)
	cmd.Printf("- **Source**: %s\n", conv.Source)
	cmd.Printf("- **Created**: %s\n", formatDate(conv.CreatedAt))
	cmd.Printf("- **Messages**: %d\n", conv.MessageCount)
	if conv.Summary != "" {
		cmd.Printf("- **Summary**: %s\n", conv.Summary)
	}

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		cmd.Printf("\n## %s (%s)\n\n", msg.Sender, formatDate(msg.CreatedAt))
		cmd.Println(msg.Text)
	}
}

// printArtifacts renders a compact artifact listing.
func printArtifacts(cmd *cobra.Command, artifacts []domain.Artifact) {
	if len(artifacts) == 0 {
		cmd.Println("No artifacts found.")
		return
	}

	for i := range artifacts {
		a := &artifacts[i]
		cmd.Printf("  %s (%s, %s)\n", a.FileName, a.FileType, humanize.Bytes(uint64(a.FileSize)))
		cmd.Printf("      Archive: %s | Path: %s\n", a.ExportFile, a.FilePath)
		if a.ExtractedTo != "" {
			cmd.Printf("      Extracted: %s\n", a.ExtractedTo)
		}
	}
	cmd.Printf("\n%d artifacts.\n", len(artifacts))
}
