package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/core/ports/driving"
	"github.com/openhwy/chatidx/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// extractCodeScanLimit bounds the search feeding code extraction.
const extractCodeScanLimit = 100

// categoriseScanLimit bounds the per-keyword scan during categorise.
const categoriseScanLimit = 1000

// resultTimestampLayout names saved result files.
const resultTimestampLayout = "20060102_150405"

// codeBlockRe matches fenced code blocks with an optional language tag.
var codeBlockRe = regexp.MustCompile("(?s)```" + `(\w+)?` + "\n" + `(.*?)` + "```")

// wordRe tokenises searchable text for the similarity heuristic.
var wordRe = regexp.MustCompile(`\b\w+\b`)

// unsafeNameRe matches characters replaced when building file names.
var unsafeNameRe = regexp.MustCompile(`[^\w-]`)

// QueryService implements the read-side query surface.
type QueryService struct {
	conversations driven.ConversationStore
	topics        driven.TopicStore
	outputDir     string
}

// NewQueryService creates a new query service. outputDir is the
// queries tree (outputs/queries in the default layout); saved results
// land under outputDir/{query_name}.
func NewQueryService(
	conversations driven.ConversationStore,
	topics driven.TopicStore,
	outputDir string,
) *QueryService {
	return &QueryService{
		conversations: conversations,
		topics:        topics,
		outputDir:     outputDir,
	}
}

// Search applies the conjunctive filter, optionally hydrating messages.
func (s *QueryService) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Conversation, error) {
	logger.Debug("Search: query=%q source=%q limit=%d", filter.Query, filter.Source, filter.Limit)

	results, err := s.conversations.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	if filter.IncludeMessages {
		for i := range results {
			msgs, err := s.conversations.Messages(ctx, results[i].ID)
			if err != nil {
				return nil, fmt.Errorf("messages for %s: %w", results[i].ID, err)
			}
			results[i].Messages = msgs
		}
	}

	logger.Debug("Search: %d results", len(results))
	return results, nil
}

// Get retrieves a conversation by full or partial ID.
func (s *QueryService) Get(ctx context.Context, id string, includeMessages bool) (*domain.Conversation, error) {
	conv, err := s.conversations.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get conversation %q: %w", id, err)
	}

	if includeMessages {
		msgs, err := s.conversations.Messages(ctx, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("messages for %s: %w", conv.ID, err)
		}
		conv.Messages = msgs
	}

	return conv, nil
}

// Topics extracts the most frequent keywords from conversation titles.
func (s *QueryService) Topics(ctx context.Context, topN, minWordLength int) ([]domain.TopicCount, error) {
	titles, err := s.conversations.Titles(ctx)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	return extractTopics(titles, topN, minWordLength), nil
}

// Related finds conversations overlapping the given one, ranked by
// how many of its frequent keywords they share. A crude proxy for
// similarity, not a real metric.
func (s *QueryService) Related(ctx context.Context, id string, limit int) ([]domain.SimilarityHit, error) {
	if limit <= 0 {
		limit = 10
	}

	conv, err := s.conversations.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get conversation %q: %w", id, err)
	}

	text, err := s.conversations.SearchableText(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("searchable text for %s: %w", conv.ID, err)
	}

	keywords := frequentKeywords(text)
	if len(keywords) == 0 {
		return []domain.SimilarityHit{}, nil
	}

	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	pattern := "(?i)(" + strings.Join(quoted, "|") + ")"
	logger.Debug("Related: pattern=%q", pattern)

	hits, err := s.conversations.MatchCounts(ctx, pattern, conv.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("match counts: %w", err)
	}
	return hits, nil
}

// frequentKeywords returns up to ten of the twenty most frequent
// words longer than four characters.
func frequentKeywords(text string) []string {
	counts := make(map[string]int)
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > 20 {
		words = words[:20]
	}

	keywords := make([]string, 0, 10)
	for _, word := range words {
		if len(word) <= 4 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 10 {
			break
		}
	}
	return keywords
}

// ExtractCode returns fenced code blocks from conversations matching
// the query, optionally filtered by declared language.
func (s *QueryService) ExtractCode(ctx context.Context, query, language string) ([]domain.CodeBlock, error) {
	results, err := s.Search(ctx, domain.SearchFilter{
		Query:           query,
		Limit:           extractCodeScanLimit,
		IncludeMessages: true,
	})
	if err != nil {
		return nil, err
	}

	blocks := []domain.CodeBlock{}
	for i := range results {
		conv := &results[i]
		for j := range conv.Messages {
			msg := &conv.Messages[j]
			for _, m := range codeBlockRe.FindAllStringSubmatch(msg.Text, -1) {
				lang := m[1]
				if language != "" && !strings.EqualFold(lang, language) {
					continue
				}
				if lang == "" {
					lang = "unknown"
				}
				blocks = append(blocks, domain.CodeBlock{
					ConversationID:    conv.ID,
					ConversationTitle: conv.Title,
					MessageID:         msg.ID,
					Sender:            msg.Sender,
					Language:          strings.ToLower(lang),
					Code:              strings.TrimSpace(m[2]),
					CreatedAt:         msg.CreatedAt,
				})
			}
		}
	}

	logger.Debug("ExtractCode: %d blocks from %d conversations", len(blocks), len(results))
	return blocks, nil
}

// Categorise maps conversations to categories by keyword lists and
// records each assignment as a topic.
func (s *QueryService) Categorise(
	ctx context.Context, keywordMap map[string][]string,
) (map[string][]domain.Conversation, error) {
	categories := make([]string, 0, len(keywordMap))
	for category := range keywordMap {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	out := make(map[string][]domain.Conversation, len(keywordMap))
	for _, category := range categories {
		matched, err := s.matchCategory(ctx, keywordMap[category])
		if err != nil {
			return nil, fmt.Errorf("categorise %s: %w", category, err)
		}

		for i := range matched {
			topic := domain.Topic{
				ConversationID: matched[i].ID,
				Topic:          category,
				Confidence:     1.0,
			}
			if err := s.topics.UpsertTopic(ctx, topic); err != nil {
				return nil, fmt.Errorf("record topic %s: %w", category, err)
			}
		}

		out[category] = matched
		logger.Debug("Categorise: %s matched %d conversations", category, len(matched))
	}

	return out, nil
}

// matchCategory unions per-keyword search results, newest first.
func (s *QueryService) matchCategory(ctx context.Context, keywords []string) ([]domain.Conversation, error) {
	seen := make(map[string]struct{})
	var matched []domain.Conversation

	for _, keyword := range keywords {
		results, err := s.conversations.Search(ctx, domain.SearchFilter{
			Query: keyword,
			Limit: categoriseScanLimit,
		})
		if err != nil {
			return nil, err
		}
		for i := range results {
			if _, dup := seen[results[i].ID]; dup {
				continue
			}
			seen[results[i].ID] = struct{}{}
			matched = append(matched, results[i])
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].CreatedAt, matched[j].CreatedAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
	return matched, nil
}

// ExportCSV writes the conversations CSV export, returning the row
// count.
func (s *QueryService) ExportCSV(ctx context.Context, path, query string) (int, error) {
	rows, err := s.conversations.ExportRows(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("export rows: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"id", "source", "title", "created_at", "message_count", "summary"}
	if err := w.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		created := ""
		if row.CreatedAt != nil {
			created = row.CreatedAt.Format(time.RFC3339)
		}
		record := []string{
			row.ID,
			string(row.Source),
			row.Title,
			created,
			strconv.Itoa(row.MessageCount),
			row.Summary,
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}

	logger.Info("Exported %d conversations to %s", len(rows), path)
	return len(rows), nil
}

// ChunkConversation splits a hydrated conversation into chunks fitting
// within maxTokens, estimated at four characters per token. The
// conversation envelope counts against every chunk's budget.
func (s *QueryService) ChunkConversation(conv *domain.Conversation, maxTokens int) []domain.ConversationChunk {
	if maxTokens <= 0 {
		maxTokens = 100000
	}

	envelope := *conv
	envelope.Messages = nil
	baseTokens := estimateTokens(mustJSON(envelope))

	var groups [][]domain.Message
	var current []domain.Message
	currentTokens := baseTokens

	for _, msg := range conv.Messages {
		msgTokens := estimateTokens(mustJSON(msg))
		if currentTokens+msgTokens > maxTokens && len(current) > 0 {
			groups = append(groups, current)
			current = nil
			currentTokens = baseTokens
		}
		current = append(current, msg)
		currentTokens += msgTokens
	}
	if len(current) > 0 || len(groups) == 0 {
		groups = append(groups, current)
	}

	chunked := len(groups) > 1
	chunks := make([]domain.ConversationChunk, len(groups))
	for i, group := range groups {
		c := envelope
		c.Messages = group
		chunks[i] = domain.ConversationChunk{
			Conversation: c,
			ChunkIndex:   i,
			IsChunked:    chunked,
		}
	}
	return chunks
}

// estimateTokens approximates the token count of a payload.
func estimateTokens(payload []byte) int {
	return len(payload) / 4
}

// mustJSON marshals for size estimation; domain types never fail.
func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// SaveResult persists a query result with a metadata sidecar and
// returns the result file path.
func (s *QueryService) SaveResult(result any, queryName string, metadata map[string]any) (string, error) {
	if queryName == "" {
		return "", fmt.Errorf("%w: empty query name", domain.ErrInvalidInput)
	}

	safeName := unsafeNameRe.ReplaceAllString(strings.ToLower(queryName), "_")
	dir := filepath.Join(s.outputDir, safeName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create result directory: %w", err)
	}

	timestamp := time.Now().Format(resultTimestampLayout)
	resultFile := filepath.Join(dir, timestamp+"_result.json")

	if err := writeJSON(resultFile, result); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}

	meta := make(map[string]any, len(metadata)+4)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["query_name"] = queryName
	meta["timestamp"] = timestamp
	meta["result_file"] = resultFile
	meta["result_count"] = resultLen(result)

	metaFile := filepath.Join(dir, timestamp+"_metadata.json")
	if err := writeJSON(metaFile, meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	logger.Info("Saved result to %s", resultFile)
	return resultFile, nil
}

// History lists past saved query metadata, newest first. An empty
// queryName spans all saved queries.
func (s *QueryService) History(queryName string) ([]map[string]any, error) {
	pattern := filepath.Join(s.outputDir, "*", "*_metadata.json")
	if queryName != "" {
		safeName := unsafeNameRe.ReplaceAllString(strings.ToLower(queryName), "_")
		pattern = filepath.Join(s.outputDir, safeName, "*_metadata.json")
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	var history []map[string]any
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("Skipping unreadable metadata %s: %v", file, err)
			continue
		}
		var meta map[string]any
		if err := json.Unmarshal(data, &meta); err != nil {
			logger.Warn("Skipping malformed metadata %s: %v", file, err)
			continue
		}
		history = append(history, meta)
	}

	sort.Slice(history, func(i, j int) bool {
		ti, _ := history[i]["timestamp"].(string)
		tj, _ := history[j]["timestamp"].(string)
		return ti > tj
	})
	return history, nil
}

// resultLen counts elements of slice results, 1 otherwise.
func resultLen(result any) int {
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len()
	default:
		return 1
	}
}

// writeJSON marshals v with indentation and writes it to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
