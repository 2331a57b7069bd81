package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/services"
)

var (
	templateName      string
	templateKeywords  []string
	templateLanguage  string
	templateFromTech  string
	templateToTech    string
	templateStartDate string
	templateEndDate   string
	templateOutput    string
)

var templateCmd = &cobra.Command{
	Use:   "template [type]",
	Short: "Generate a batch query spec from a template",
	Long: `Generates a pre-built batch spec for a common research scenario
and writes it as JSON, ready for 'chatidx batch process'.

Types: project-kickoff, tech-stack, language-dive, feature, debug,
domain, architecture, timeline, migration.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplate,
}

func init() {
	templateCmd.Flags().StringVar(&templateName, "name", "", "project, feature, or technology name")
	templateCmd.Flags().StringSliceVar(&templateKeywords, "keywords", nil, "keywords for search")
	templateCmd.Flags().StringVar(&templateLanguage, "language", "", "programming language")
	templateCmd.Flags().StringVar(&templateFromTech, "from-tech", "", "technology to migrate from")
	templateCmd.Flags().StringVar(&templateToTech, "to-tech", "", "technology to migrate to")
	templateCmd.Flags().StringVar(&templateStartDate, "start-date", "", "start date (YYYY-MM-DD)")
	templateCmd.Flags().StringVar(&templateEndDate, "end-date", "", "end date (YYYY-MM-DD)")
	templateCmd.Flags().StringVar(&templateOutput, "output", "template.json", "output file")
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	project, err := buildTemplate(args[0])
	if err != nil {
		return err
	}

	if err := services.WriteTemplate(project, templateOutput); err != nil {
		return err
	}

	cmd.Printf("Template saved to %s\n", templateOutput)
	cmd.Printf("Run it with: chatidx batch process %s\n", templateOutput)
	return nil
}

func buildTemplate(templateType string) (*domain.BatchProject, error) {
	switch templateType {
	case "project-kickoff":
		if templateName == "" || len(templateKeywords) == 0 {
			return nil, fmt.Errorf("--name and --keywords required for project-kickoff")
		}
		return services.ProjectKickoffTemplate(templateName, templateKeywords), nil

	case "tech-stack":
		if templateName == "" {
			return nil, fmt.Errorf("--name required for tech-stack")
		}
		return services.TechStackTemplate(templateName), nil

	case "language-dive":
		if templateLanguage == "" {
			return nil, fmt.Errorf("--language required for language-dive")
		}
		return services.LanguageDeepDiveTemplate(templateLanguage), nil

	case "feature":
		if templateName == "" || len(templateKeywords) == 0 {
			return nil, fmt.Errorf("--name and --keywords required for feature")
		}
		return services.FeatureTemplate(templateName, templateKeywords), nil

	case "debug":
		if len(templateKeywords) == 0 {
			return nil, fmt.Errorf("--keywords required for debug")
		}
		return services.DebuggingTemplate(templateKeywords), nil

	case "domain":
		if templateName == "" {
			return nil, fmt.Errorf("--name required for domain")
		}
		return services.DomainExpertiseTemplate(templateName), nil

	case "architecture":
		if len(templateKeywords) == 0 {
			return nil, fmt.Errorf("--keywords required for architecture")
		}
		return services.ArchitectureReviewTemplate(templateKeywords), nil

	case "timeline":
		if len(templateKeywords) == 0 || templateStartDate == "" || templateEndDate == "" {
			return nil, fmt.Errorf("--keywords, --start-date, and --end-date required for timeline")
		}
		return services.TimelineAnalysisTemplate(templateKeywords, templateStartDate, templateEndDate), nil

	case "migration":
		if templateFromTech == "" || templateToTech == "" {
			return nil, fmt.Errorf("--from-tech and --to-tech required for migration")
		}
		return services.MigrationTemplate(templateFromTech, templateToTech), nil

	default:
		return nil, fmt.Errorf("unknown template type %q", templateType)
	}
}
