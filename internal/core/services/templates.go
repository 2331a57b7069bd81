package services

import (
	"fmt"
	"strings"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// Pre-built batch projects for common research scenarios. Each
// generator returns a spec ready for BatchService.Process or for
// writing to disk with WriteTemplate.

// ProjectKickoffTemplate gathers all recorded knowledge about a new
// project.
func ProjectKickoffTemplate(projectName string, keywords []string) *domain.BatchProject {
	joined := strings.Join(keywords, " ")
	return &domain.BatchProject{
		ProjectName: projectName,
		Queries: []domain.BatchQuery{
			{
				Name:            "all_mentions",
				Search:          joined,
				IncludeMessages: true,
				Filters:         domain.BatchFilters{MinMessages: 3, Limit: 100},
			},
			{
				Name:            "architecture_decisions",
				Search:          joined + " architecture design decision",
				IncludeMessages: true,
				Filters:         domain.BatchFilters{MinMessages: 5},
			},
			{
				Name:            "technical_discussions",
				Search:          joined + " backend frontend database API",
				IncludeMessages: true,
			},
			{
				Name:        "code_snippets",
				Search:      joined,
				ExtractCode: true,
			},
		},
	}
}

// TechStackTemplate researches one technology.
func TechStackTemplate(technology string) *domain.BatchProject {
	return &domain.BatchProject{
		ProjectName: technology + "_research",
		Queries: []domain.BatchQuery{
			{
				Name:            "all_discussions",
				Search:          technology,
				IncludeMessages: true,
				Filters:         domain.BatchFilters{Limit: 100},
			},
			{
				Name:         "code_examples",
				Search:       technology,
				ExtractCode:  true,
				CodeLanguage: strings.ToLower(technology),
			},
			{
				Name:            "best_practices",
				Search:          technology + " best practice pattern architecture",
				IncludeMessages: true,
			},
			{
				Name:            "problems_solutions",
				Search:          technology + " error problem issue fix solution",
				IncludeMessages: true,
			},
		},
	}
}

// LanguageDeepDiveTemplate gathers all knowledge about a programming
// language.
func LanguageDeepDiveTemplate(language string) *domain.BatchProject {
	return &domain.BatchProject{
		ProjectName: language + "_knowledge",
		Queries: []domain.BatchQuery{
			{
				Name:         "all_code",
				Search:       language,
				ExtractCode:  true,
				CodeLanguage: strings.ToLower(language),
			},
			{
				Name:            "tutorials_learning",
				Search:          language + " learn tutorial example how to",
				IncludeMessages: true,
			},
			{
				Name:            "advanced_concepts",
				Search:          language + " advanced async concurrency optimization",
				IncludeMessages: true,
			},
			{
				Name:            "frameworks_libraries",
				Search:          language + " framework library crate package",
				IncludeMessages: true,
			},
		},
	}
}

// FeatureTemplate collects material for implementing one feature.
func FeatureTemplate(featureName string, keywords []string) *domain.BatchProject {
	joined := strings.Join(keywords, " ")
	return &domain.BatchProject{
		ProjectName: "feature_" + featureName,
		Queries: []domain.BatchQuery{
			{
				Name:            "requirements",
				Search:          featureName + " " + joined + " requirement need should",
				IncludeMessages: true,
			},
			{
				Name:            "implementation_ideas",
				Search:          featureName + " " + joined + " implement build create",
				IncludeMessages: true,
			},
			{
				Name:        "code_examples",
				Search:      featureName + " " + joined,
				ExtractCode: true,
			},
			{
				Name:            "similar_features",
				Search:          joined,
				IncludeMessages: true,
				Filters:         domain.BatchFilters{MinMessages: 5},
			},
		},
	}
}

// DebuggingTemplate finds past solutions to errors.
func DebuggingTemplate(errorKeywords []string) *domain.BatchProject {
	joined := strings.Join(errorKeywords, " ")
	return &domain.BatchProject{
		ProjectName: "debugging",
		Queries: []domain.BatchQuery{
			{
				Name:            "error_discussions",
				Search:          joined + " error bug issue problem",
				IncludeMessages: true,
			},
			{
				Name:            "solutions",
				Search:          joined + " fix solve solution workaround",
				IncludeMessages: true,
			},
			{
				Name:        "related_code",
				Search:      joined,
				ExtractCode: true,
			},
		},
	}
}

// DomainExpertiseTemplate gathers knowledge about a business domain.
func DomainExpertiseTemplate(domainName string) *domain.BatchProject {
	return &domain.BatchProject{
		ProjectName: domainName + "_domain",
		Queries: []domain.BatchQuery{
			{
				Name:            "domain_knowledge",
				Search:          domainName,
				IncludeMessages: true,
				Filters:         domain.BatchFilters{Limit: 200},
			},
			{
				Name:            "terminology",
				Search:          domainName + " term definition means what is",
				IncludeMessages: true,
			},
			{
				Name:            "workflows",
				Search:          domainName + " process workflow flow step",
				IncludeMessages: true,
			},
			{
				Name:            "requirements",
				Search:          domainName + " requirement regulation compliance rule",
				IncludeMessages: true,
			},
		},
	}
}

// ArchitectureReviewTemplate collects material for a system
// architecture review.
func ArchitectureReviewTemplate(keywords []string) *domain.BatchProject {
	joined := strings.Join(keywords, " ")
	return &domain.BatchProject{
		ProjectName: "architecture_review",
		Queries: []domain.BatchQuery{
			{
				Name:            "architecture_decisions",
				Search:          joined + " architecture design pattern",
				IncludeMessages: true,
			},
			{
				Name:            "database_design",
				Search:          joined + " database schema model table",
				IncludeMessages: true,
			},
			{
				Name:            "api_design",
				Search:          joined + " API endpoint route REST GraphQL",
				IncludeMessages: true,
			},
			{
				Name:            "infrastructure",
				Search:          joined + " infrastructure deployment docker kubernetes",
				IncludeMessages: true,
			},
			{
				Name:            "security",
				Search:          joined + " security auth authentication authorization",
				IncludeMessages: true,
			},
		},
	}
}

// TimelineAnalysisTemplate analyses project evolution over a date
// window. Dates use the YYYY-MM-DD layout.
func TimelineAnalysisTemplate(keywords []string, startDate, endDate string) *domain.BatchProject {
	joined := strings.Join(keywords, " ")
	window := domain.BatchFilters{StartDate: startDate, EndDate: endDate}
	return &domain.BatchProject{
		ProjectName: "timeline_analysis",
		Queries: []domain.BatchQuery{
			{
				Name:            "early_phase",
				Search:          joined,
				IncludeMessages: true,
				Filters:         window,
			},
			{
				Name:            "decisions_made",
				Search:          joined + " decide decision chose",
				IncludeMessages: true,
				Filters:         window,
			},
			{
				Name:            "problems_encountered",
				Search:          joined + " problem issue error bug challenge",
				IncludeMessages: true,
				Filters:         window,
			},
		},
	}
}

// MigrationTemplate collects material for migrating between
// technologies.
func MigrationTemplate(fromTech, toTech string) *domain.BatchProject {
	return &domain.BatchProject{
		ProjectName: fmt.Sprintf("migrate_%s_to_%s", fromTech, toTech),
		Queries: []domain.BatchQuery{
			{
				Name:         "old_tech_code",
				Search:       fromTech,
				ExtractCode:  true,
				CodeLanguage: strings.ToLower(fromTech),
			},
			{
				Name:         "new_tech_examples",
				Search:       toTech,
				ExtractCode:  true,
				CodeLanguage: strings.ToLower(toTech),
			},
			{
				Name:            "migration_discussions",
				Search:          fromTech + " " + toTech + " migrate convert port rewrite",
				IncludeMessages: true,
			},
			{
				Name:            "comparison",
				Search:          fromTech + " vs " + toTech + " difference compare",
				IncludeMessages: true,
			},
		},
	}
}

// WriteTemplate saves a batch project spec as indented JSON.
func WriteTemplate(project *domain.BatchProject, path string) error {
	if err := writeJSON(path, project); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
