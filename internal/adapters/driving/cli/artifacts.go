package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Query export archive artifacts",
	RunE:  runArtifactStats,
}

var artifactStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show artifact statistics",
	RunE:  runArtifactStats,
}

var artifactListCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List artifacts of one type, largest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactList,
}

var artifactFindCmd = &cobra.Command{
	Use:   "find [pattern]",
	Short: "Find artifacts by file name",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactFind,
}

var artifactLargestLimit int

var artifactLargestCmd = &cobra.Command{
	Use:   "largest",
	Short: "List the largest artifacts",
	RunE:  runArtifactLargest,
}

var artifactImagesConversation string

var artifactImagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Summarise image artifacts per conversation",
	RunE:  runArtifactImages,
}

var artifactExportType string

var artifactExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export artifacts to CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactExport,
}

var artifactExtractCmd = &cobra.Command{
	Use:   "extract [type] [output-dir]",
	Short: "Copy extracted artifacts of one type into a directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runArtifactExtract,
}

func init() {
	artifactLargestCmd.Flags().IntVarP(&artifactLargestLimit, "limit", "n", 10, "number of artifacts")
	artifactImagesCmd.Flags().StringVar(&artifactImagesConversation, "conversation", "", "list images of one conversation (partial ID)")
	artifactExportCmd.Flags().StringVar(&artifactExportType, "type", "", "restrict to one artifact type")

	artifactsCmd.AddCommand(artifactStatsCmd)
	artifactsCmd.AddCommand(artifactListCmd)
	artifactsCmd.AddCommand(artifactFindCmd)
	artifactsCmd.AddCommand(artifactLargestCmd)
	artifactsCmd.AddCommand(artifactImagesCmd)
	artifactsCmd.AddCommand(artifactExportCmd)
	artifactsCmd.AddCommand(artifactExtractCmd)
	rootCmd.AddCommand(artifactsCmd)
}

func runArtifactStats(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	types, extensions, count, size, err := artifactService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("artifact stats: %w", err)
	}

	cmd.Printf("Artifacts: %d (%s)\n\n", count, humanize.Bytes(uint64(size)))

	cmd.Println("By type:")
	for _, t := range types {
		cmd.Printf("  %-10s %5d  %s\n", t.FileType, t.Count, humanize.Bytes(uint64(t.TotalSize)))
	}

	cmd.Println("\nTop extensions:")
	for _, ext := range extensions {
		cmd.Printf("  %-10s %5d\n", ext.Extension, ext.Count)
	}
	return nil
}

func runArtifactList(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	artifacts, err := artifactService.ListByType(context.Background(), domain.ArtifactType(args[0]))
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	printArtifacts(cmd, artifacts)
	return nil
}

func runArtifactFind(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	artifacts, err := artifactService.FindByName(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("find artifacts: %w", err)
	}
	printArtifacts(cmd, artifacts)
	return nil
}

func runArtifactLargest(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	artifacts, err := artifactService.Largest(context.Background(), artifactLargestLimit)
	if err != nil {
		return fmt.Errorf("largest artifacts: %w", err)
	}
	printArtifacts(cmd, artifacts)
	return nil
}

func runArtifactImages(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}
	ctx := context.Background()

	if artifactImagesConversation != "" {
		images, err := artifactService.ImagesByConversation(ctx, artifactImagesConversation)
		if err != nil {
			return fmt.Errorf("conversation images: %w", err)
		}
		printArtifacts(cmd, images)
		return nil
	}

	summaries, err := artifactService.ImageConversations(ctx)
	if err != nil {
		return fmt.Errorf("image conversations: %w", err)
	}

	if len(summaries) == 0 {
		cmd.Println("No image artifacts found.")
		return nil
	}

	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(unattributed)"
		}
		cmd.Printf("  %s: %d images (%s)\n", title, s.ImageCount, humanize.Bytes(uint64(s.TotalSize)))
	}
	return nil
}

func runArtifactExport(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	count, err := artifactService.ExportCSV(context.Background(), args[0],
		domain.ArtifactType(artifactExportType))
	if err != nil {
		return fmt.Errorf("export artifacts: %w", err)
	}

	cmd.Printf("Exported %d artifacts to %s\n", count, args[0])
	return nil
}

func runArtifactExtract(cmd *cobra.Command, args []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	copied, err := artifactService.CopyExtracted(context.Background(),
		domain.ArtifactType(args[0]), args[1])
	if err != nil {
		return fmt.Errorf("copy artifacts: %w", err)
	}

	cmd.Printf("Copied %d artifacts to %s\n", copied, args[1])
	return nil
}
