package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	codeLanguage string
	codeJSON     bool
	codeSave     bool
)

var extractCodeCmd = &cobra.Command{
	Use:   "extract-code [query]",
	Short: "Extract fenced code blocks from matching conversations",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtractCode,
}

func init() {
	extractCodeCmd.Flags().StringVar(&codeLanguage, "language", "", "restrict to one declared language")
	extractCodeCmd.Flags().BoolVar(&codeJSON, "json", false, "output as JSON")
	extractCodeCmd.Flags().BoolVar(&codeSave, "save", false, "save the result under the output directory")
	rootCmd.AddCommand(extractCodeCmd)
}

func runExtractCode(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	blocks, err := queryService.ExtractCode(context.Background(), args[0], codeLanguage)
	if err != nil {
		return fmt.Errorf("extract code: %w", err)
	}

	if codeSave {
		path, err := queryService.SaveResult(blocks, args[0], map[string]any{
			"search":   args[0],
			"language": codeLanguage,
		})
		if err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		cmd.Printf("Saved %d code blocks to %s\n", len(blocks), path)
		return nil
	}

	if codeJSON {
		return printJSON(cmd, blocks)
	}

	if len(blocks) == 0 {
		cmd.Println("No code blocks found.")
		return nil
	}

	for i := range blocks {
		b := &blocks[i]
		cmd.Printf("--- %s (%s, %s) ---\n", b.ConversationTitle, b.Language, b.Sender)
		cmd.Println(b.Code)
		cmd.Println()
	}
	cmd.Printf("%d code blocks.\n", len(blocks))
	return nil
}
