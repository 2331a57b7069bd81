package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driving"
	"github.com/openhwy/chatidx/internal/logger"
)

// Ensure BatchService implements the interface.
var _ driving.BatchService = (*BatchService)(nil)

// batchDateLayout is the date format of batch spec filters.
const batchDateLayout = "2006-01-02"

// BatchService executes declarative batch query projects.
type BatchService struct {
	query       driving.QueryService
	resultsRoot string
}

// NewBatchService creates a new batch service. Results land under
// resultsRoot/{project}/{query}.
func NewBatchService(query driving.QueryService, resultsRoot string) *BatchService {
	return &BatchService{
		query:       query,
		resultsRoot: resultsRoot,
	}
}

// ProcessFile loads a JSON batch spec and runs every query in order.
func (s *BatchService) ProcessFile(ctx context.Context, path string) (*domain.BatchSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch spec: %w", err)
	}

	var project domain.BatchProject
	if err := json.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("%w: parse batch spec: %v", domain.ErrInvalidInput, err)
	}

	return s.Process(ctx, &project)
}

// Process runs an in-memory batch project. A single query's failure is
// recorded in the summary, never aborting the remaining queries.
func (s *BatchService) Process(ctx context.Context, project *domain.BatchProject) (*domain.BatchSummary, error) {
	if project.ProjectName == "" {
		return nil, fmt.Errorf("%w: empty project name", domain.ErrInvalidInput)
	}

	logger.Section("Batch Run")
	logger.Info("Project: %s (%d queries)", project.ProjectName, len(project.Queries))

	timestamp := time.Now().Format(resultTimestampLayout)
	summary := &domain.BatchSummary{
		ProjectName:  project.ProjectName,
		RunID:        uuid.NewString(),
		Timestamp:    timestamp,
		TotalQueries: len(project.Queries),
	}

	for i := range project.Queries {
		q := &project.Queries[i]
		result := domain.BatchQueryResult{
			QueryName: q.Name,
			Search:    q.Search,
			Status:    domain.BatchStatusSuccess,
		}

		count, file, err := s.runQuery(ctx, project.ProjectName, q, timestamp)
		if err != nil {
			logger.Error("Query %s failed: %v", q.Name, err)
			result.Status = domain.BatchStatusError
			result.Error = err.Error()
			summary.Failed++
		} else {
			result.ResultCount = count
			result.ResultFile = file
			summary.Successful++
		}
		summary.Results = append(summary.Results, result)
	}

	if err := s.writeSummary(summary); err != nil {
		return nil, err
	}

	logger.Info("Batch complete: %d successful, %d failed", summary.Successful, summary.Failed)
	return summary, nil
}

// runQuery executes one batch query and persists its result file with
// a metadata sidecar.
func (s *BatchService) runQuery(
	ctx context.Context, projectName string, q *domain.BatchQuery, timestamp string,
) (int, string, error) {
	if q.Name == "" {
		return 0, "", fmt.Errorf("%w: query without a name", domain.ErrInvalidInput)
	}

	var payload any
	var count int

	if q.ExtractCode {
		blocks, err := s.query.ExtractCode(ctx, q.Search, q.CodeLanguage)
		if err != nil {
			return 0, "", err
		}
		payload, count = blocks, len(blocks)
	} else {
		filter, err := batchFilter(q)
		if err != nil {
			return 0, "", err
		}
		results, err := s.query.Search(ctx, filter)
		if err != nil {
			return 0, "", err
		}
		if results == nil {
			results = []domain.Conversation{}
		}
		payload, count = results, len(results)
	}

	dir := filepath.Join(s.resultsRoot, projectName, q.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, "", fmt.Errorf("create query directory: %w", err)
	}

	resultFile := filepath.Join(dir, timestamp+"_result.json")
	if err := writeJSON(resultFile, payload); err != nil {
		return 0, "", fmt.Errorf("write result: %w", err)
	}

	meta := map[string]any{
		"query_name":   q.Name,
		"search":       q.Search,
		"timestamp":    timestamp,
		"result_file":  resultFile,
		"result_count": count,
	}
	if err := writeJSON(filepath.Join(dir, timestamp+"_metadata.json"), meta); err != nil {
		return 0, "", fmt.Errorf("write metadata: %w", err)
	}

	return count, resultFile, nil
}

// batchFilter converts batch spec filters to a search filter.
func batchFilter(q *domain.BatchQuery) (domain.SearchFilter, error) {
	filter := domain.SearchFilter{
		Query:           q.Search,
		Source:          domain.Source(q.Filters.Source),
		MinMessages:     q.Filters.MinMessages,
		MaxMessages:     q.Filters.MaxMessages,
		Limit:           q.Filters.Limit,
		IncludeMessages: q.IncludeMessages,
	}

	if q.Filters.Source != "" && !filter.Source.Valid() {
		return filter, fmt.Errorf("%w: source %q", domain.ErrInvalidInput, q.Filters.Source)
	}

	if q.Filters.StartDate != "" {
		t, err := time.Parse(batchDateLayout, q.Filters.StartDate)
		if err != nil {
			return filter, fmt.Errorf("%w: start_date %q", domain.ErrInvalidInput, q.Filters.StartDate)
		}
		filter.StartDate = &t
	}
	if q.Filters.EndDate != "" {
		t, err := time.Parse(batchDateLayout, q.Filters.EndDate)
		if err != nil {
			return filter, fmt.Errorf("%w: end_date %q", domain.ErrInvalidInput, q.Filters.EndDate)
		}
		filter.EndDate = &t
	}

	return filter, nil
}

// writeSummary writes the JSON summary and its Markdown rendering to
// the project directory.
func (s *BatchService) writeSummary(summary *domain.BatchSummary) error {
	dir := filepath.Join(s.resultsRoot, summary.ProjectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create project directory: %w", err)
	}

	jsonPath := filepath.Join(dir, summary.Timestamp+"_batch_summary.json")
	if err := writeJSON(jsonPath, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	mdPath := filepath.Join(dir, summary.Timestamp+"_batch_summary.md")
	if err := os.WriteFile(mdPath, []byte(renderBatchSummary(summary)), 0644); err != nil {
		return fmt.Errorf("write summary markdown: %w", err)
	}
	return nil
}

// renderBatchSummary renders the human-readable summary variant.
func renderBatchSummary(summary *domain.BatchSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Batch Query Summary: %s\n\n", summary.ProjectName)
	fmt.Fprintf(&b, "**Run ID**: %s\n", summary.RunID)
	fmt.Fprintf(&b, "**Timestamp**: %s\n", summary.Timestamp)
	fmt.Fprintf(&b, "**Total Queries**: %d\n", summary.TotalQueries)
	fmt.Fprintf(&b, "**Successful**: %d\n", summary.Successful)
	fmt.Fprintf(&b, "**Failed**: %d\n", summary.Failed)

	b.WriteString("\n## Query Results\n")
	for _, result := range summary.Results {
		icon := "✅"
		if result.Status == domain.BatchStatusError {
			icon = "❌"
		}
		fmt.Fprintf(&b, "\n### %s %s\n", icon, result.QueryName)
		if result.Search != "" {
			fmt.Fprintf(&b, "- **Search**: %s\n", result.Search)
		}
		fmt.Fprintf(&b, "- **Status**: %s\n", result.Status)
		if result.Status == domain.BatchStatusError {
			fmt.Fprintf(&b, "- **Error**: %s\n", result.Error)
		} else {
			fmt.Fprintf(&b, "- **Results**: %d\n", result.ResultCount)
			fmt.Fprintf(&b, "- **File**: %s\n", result.ResultFile)
		}
	}

	return b.String()
}

// ProjectIndex builds an index of all past query result files of a
// project and writes it to the project directory.
func (s *BatchService) ProjectIndex(project string) (*domain.ProjectIndex, error) {
	if project == "" {
		return nil, fmt.Errorf("%w: empty project name", domain.ErrInvalidInput)
	}

	projectDir := filepath.Join(s.resultsRoot, project)
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project directory: %w", err)
	}

	index := &domain.ProjectIndex{
		ProjectName: project,
		Queries:     make(map[string][]domain.QueryRecord),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		records, err := s.queryRecords(filepath.Join(projectDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			index.Queries[entry.Name()] = records
		}
	}

	if err := writeJSON(filepath.Join(projectDir, "project_index.json"), index); err != nil {
		return nil, fmt.Errorf("write project index: %w", err)
	}

	logger.Info("Indexed %d queries for project %s", len(index.Queries), project)
	return index, nil
}

// queryRecords lists the result files of one query directory, newest
// first.
func (s *BatchService) queryRecords(queryDir string) ([]domain.QueryRecord, error) {
	resultFiles, err := filepath.Glob(filepath.Join(queryDir, "*_result.json"))
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	var records []domain.QueryRecord
	for _, resultFile := range resultFiles {
		timestamp := strings.TrimSuffix(filepath.Base(resultFile), "_result.json")
		record := domain.QueryRecord{
			Timestamp:  timestamp,
			ResultFile: resultFile,
		}

		metaFile := filepath.Join(queryDir, timestamp+"_metadata.json")
		if data, err := os.ReadFile(metaFile); err == nil {
			var meta struct {
				Search      string `json:"search"`
				ResultCount int    `json:"result_count"`
			}
			if err := json.Unmarshal(data, &meta); err == nil {
				record.Search = meta.Search
				record.ResultCount = meta.ResultCount
			}
		}

		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// Merge combines the latest results of the named queries into one
// file, returning the merged element count and output path.
func (s *BatchService) Merge(project string, queries []string, outputName string) (int, string, error) {
	if project == "" || outputName == "" {
		return 0, "", fmt.Errorf("%w: project and output name required", domain.ErrInvalidInput)
	}

	projectDir := filepath.Join(s.resultsRoot, project)
	merged := []json.RawMessage{}

	for _, query := range queries {
		resultFiles, err := filepath.Glob(filepath.Join(projectDir, query, "*_result.json"))
		if err != nil {
			return 0, "", fmt.Errorf("list results for %s: %w", query, err)
		}
		if len(resultFiles) == 0 {
			logger.Warn("No results for query %s, skipping", query)
			continue
		}

		// Timestamped names sort chronologically; the last is the latest.
		sort.Strings(resultFiles)
		latest := resultFiles[len(resultFiles)-1]

		data, err := os.ReadFile(latest)
		if err != nil {
			return 0, "", fmt.Errorf("read %s: %w", latest, err)
		}

		var elements []json.RawMessage
		if err := json.Unmarshal(data, &elements); err != nil {
			return 0, "", fmt.Errorf("parse %s: %w", latest, err)
		}
		merged = append(merged, elements...)
	}

	timestamp := time.Now().Format(resultTimestampLayout)
	outputPath := filepath.Join(projectDir, outputName+"_"+timestamp+"_merged.json")
	if err := writeJSON(outputPath, merged); err != nil {
		return 0, "", fmt.Errorf("write merged output: %w", err)
	}

	logger.Info("Merged %d elements into %s", len(merged), outputPath)
	return len(merged), outputPath, nil
}
