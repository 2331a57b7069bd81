package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runStats,
}

var timelineGranularity string

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show activity over time",
	RunE:  runTimeline,
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Analyse conversation patterns",
	RunE:  runPatterns,
}

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "Show programming language statistics",
	RunE:  runLanguages,
}

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the full analytics report",
	Long:  `Writes the analytics report as JSON and Markdown side by side.`,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	timelineCmd.Flags().StringVar(&timelineGranularity, "granularity", "month", "bucket size (day, week, or month)")
	rootCmd.AddCommand(timelineCmd)

	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(languagesCmd)

	reportCmd.Flags().StringVar(&reportOutput, "output", "analytics_report", "output base path (without extension)")
	rootCmd.AddCommand(reportCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	stats, err := analyticsService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return printJSON(cmd, stats)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	buckets, err := analyticsService.Timeline(context.Background(),
		domain.TimelineGranularity(timelineGranularity))
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}

	if len(buckets) == 0 {
		cmd.Println("No activity recorded.")
		return nil
	}

	period := ""
	for _, bucket := range buckets {
		if bucket.Period != period {
			period = bucket.Period
			cmd.Printf("\n%s:\n", period)
		}
		cmd.Printf("  %s: %d conversations, %d messages\n",
			bucket.Source, bucket.Conversations, bucket.Messages)
	}
	return nil
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	patterns, err := analyticsService.Patterns(context.Background())
	if err != nil {
		return fmt.Errorf("patterns: %w", err)
	}
	return printJSON(cmd, patterns)
}

func runLanguages(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	languages, err := analyticsService.Languages(context.Background())
	if err != nil {
		return fmt.Errorf("languages: %w", err)
	}

	if len(languages) == 0 {
		cmd.Println("No code blocks found.")
		return nil
	}

	cmd.Println("Programming Languages:")
	for _, lang := range languages {
		cmd.Printf("  %-20s %5d code blocks\n", lang.Language, lang.Count)
	}
	return nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	if err := ensureReadServices(); err != nil {
		return err
	}

	basePath := reportOutput
	if !filepath.IsAbs(basePath) && settings.OutputDir != "" {
		basePath = filepath.Join(settings.OutputDir, basePath)
	}

	if _, err := analyticsService.Report(context.Background(), basePath); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	cmd.Printf("Report written to %s.json and %s.md\n", basePath, basePath)
	return nil
}
