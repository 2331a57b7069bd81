package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/core/ports/driving"
	"github.com/openhwy/chatidx/internal/logger"
)

// Ensure AnalyticsService implements the interface.
var _ driving.AnalyticsService = (*AnalyticsService)(nil)

// cooccurrenceScanLimit bounds the per-keyword scan.
const cooccurrenceScanLimit = 1000

// reportTopicCount is the number of topics in a generated report.
const reportTopicCount = 50

// languageHistogramSize caps the language histogram.
const languageHistogramSize = 20

// AnalyticsService aggregates statistics over the index.
type AnalyticsService struct {
	analytics     driven.AnalyticsStore
	conversations driven.ConversationStore
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(
	analytics driven.AnalyticsStore,
	conversations driven.ConversationStore,
) *AnalyticsService {
	return &AnalyticsService{
		analytics:     analytics,
		conversations: conversations,
	}
}

// Stats returns the overall statistics block.
func (s *AnalyticsService) Stats(ctx context.Context) (*domain.Stats, error) {
	totalConvs, totalMsgs, err := s.analytics.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}

	stats := &domain.Stats{
		TotalConversations: totalConvs,
		TotalMessages:      totalMsgs,
		BySource:           make(map[domain.Source]domain.SourceStats),
	}
	if totalConvs > 0 {
		stats.AvgMessagesPerConv = float64(totalMsgs) / float64(totalConvs)
	}

	bySource, err := s.analytics.SourceBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("source breakdown: %w", err)
	}
	for _, src := range bySource {
		stats.BySource[src.Source] = src
	}

	earliest, latest, err := s.analytics.DateRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("date range: %w", err)
	}
	if earliest != nil && latest != nil {
		stats.EarliestConv = earliest
		stats.LatestConv = latest
		stats.DaysSpan = int(latest.Sub(*earliest).Hours() / 24)
		if stats.DaysSpan > 0 {
			stats.ConversationsPerDay = float64(totalConvs) / float64(stats.DaysSpan)
		}
	}

	lengths, err := s.analytics.MessageLengths(ctx)
	if err != nil {
		return nil, fmt.Errorf("message lengths: %w", err)
	}
	stats.MessageLengths = lengths

	histogram, err := s.analytics.LengthHistogram(ctx)
	if err != nil {
		return nil, fmt.Errorf("length histogram: %w", err)
	}
	stats.LengthDistribution = histogram

	return stats, nil
}

// Timeline buckets conversation activity by period and source.
func (s *AnalyticsService) Timeline(
	ctx context.Context, granularity domain.TimelineGranularity,
) ([]domain.TimelineBucket, error) {
	if !granularity.Valid() {
		return nil, fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, granularity)
	}
	return s.analytics.Timeline(ctx, granularity)
}

// Patterns analyses question ratio, conversation durations, and code
// frequency.
func (s *AnalyticsService) Patterns(ctx context.Context) (*domain.Patterns, error) {
	questions, totalHuman, err := s.analytics.HumanMessageCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("human message counts: %w", err)
	}

	patterns := &domain.Patterns{
		DurationDistribution: map[string]int{
			"< 1 min":  0,
			"1-5 min":  0,
			"5-30 min": 0,
			"30+ min":  0,
		},
	}
	if totalHuman > 0 {
		patterns.QuestionRatio = float64(questions) / float64(totalHuman)
	}

	spans, err := s.analytics.ConversationSpans(ctx)
	if err != nil {
		return nil, fmt.Errorf("conversation spans: %w", err)
	}

	totalMinutes := 0.0
	for _, span := range spans {
		minutes := span.End.Sub(span.Start).Minutes()
		totalMinutes += minutes

		switch {
		case minutes < 1:
			patterns.DurationDistribution["< 1 min"]++
		case minutes < 5:
			patterns.DurationDistribution["1-5 min"]++
		case minutes < 30:
			patterns.DurationDistribution["5-30 min"]++
		default:
			patterns.DurationDistribution["30+ min"]++
		}
	}
	if len(spans) > 0 {
		patterns.AvgDurationMinutes = totalMinutes / float64(len(spans))
	}

	codeCount, err := s.analytics.CodeMessageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("code message count: %w", err)
	}
	patterns.MessagesWithCode = codeCount

	_, totalMsgs, err := s.analytics.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counts: %w", err)
	}
	if totalMsgs > 0 {
		patterns.CodePercentage = float64(codeCount) / float64(totalMsgs) * 100
	}

	return patterns, nil
}

// Languages returns the fenced-code-block language histogram.
func (s *AnalyticsService) Languages(ctx context.Context) ([]domain.LanguageCount, error) {
	texts, err := s.analytics.CodeMessageTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("code message texts: %w", err)
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for _, m := range languageTagRe.FindAllStringSubmatch(text, -1) {
			lang := strings.ToLower(m[1])
			if lang == "" {
				lang = "unknown"
			}
			counts[lang]++
		}
	}

	languages := make([]domain.LanguageCount, 0, len(counts))
	for lang, count := range counts {
		languages = append(languages, domain.LanguageCount{Language: lang, Count: count})
	}
	sort.Slice(languages, func(i, j int) bool {
		if languages[i].Count != languages[j].Count {
			return languages[i].Count > languages[j].Count
		}
		return languages[i].Language < languages[j].Language
	})

	if len(languages) > languageHistogramSize {
		languages = languages[:languageHistogramSize]
	}
	return languages, nil
}

// languageTagRe matches the opening fence of a code block.
var languageTagRe = regexp.MustCompile("```" + `(\w*)`)

// Cooccurrence counts conversations containing each keyword pair,
// keeping pairs at or above minCount.
func (s *AnalyticsService) Cooccurrence(
	ctx context.Context, keywords []string, minCount int,
) (map[string]map[string]int, error) {
	if minCount <= 0 {
		minCount = 2
	}

	// One scan per keyword; pair counts come from set intersection.
	matches := make(map[string]map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		results, err := s.conversations.Search(ctx, domain.SearchFilter{
			Query: kw,
			Limit: cooccurrenceScanLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("scan keyword %q: %w", kw, err)
		}
		ids := make(map[string]struct{}, len(results))
		for i := range results {
			ids[results[i].ID] = struct{}{}
		}
		matches[kw] = ids
	}

	out := make(map[string]map[string]int)
	for _, kw1 := range keywords {
		for _, kw2 := range keywords {
			if kw1 >= kw2 {
				continue
			}
			count := 0
			for id := range matches[kw1] {
				if _, ok := matches[kw2][id]; ok {
					count++
				}
			}
			if count >= minCount {
				if out[kw1] == nil {
					out[kw1] = make(map[string]int)
				}
				out[kw1][kw2] = count
			}
		}
	}
	return out, nil
}

// Report generates the full analytics report and writes it to
// basePath.json and basePath.md.
func (s *AnalyticsService) Report(ctx context.Context, basePath string) (*domain.Report, error) {
	logger.Section("Analytics Report")

	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	timeline, err := s.Timeline(ctx, domain.GranularityMonth)
	if err != nil {
		return nil, err
	}

	titles, err := s.conversations.Titles(ctx)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	topics := extractTopics(titles, reportTopicCount, 4)

	patterns, err := s.Patterns(ctx)
	if err != nil {
		return nil, err
	}

	languages, err := s.Languages(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		GeneratedAt:          time.Now(),
		Stats:                *stats,
		Timeline:             timeline,
		TopTopics:            topics,
		Patterns:             *patterns,
		ProgrammingLanguages: languages,
	}

	jsonPath := basePath
	if !strings.HasSuffix(jsonPath, ".json") {
		jsonPath += ".json"
	}
	if dir := filepath.Dir(jsonPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := writeJSON(jsonPath, report); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	mdPath := strings.TrimSuffix(jsonPath, ".json") + ".md"
	if err := os.WriteFile(mdPath, []byte(renderMarkdownReport(report)), 0644); err != nil {
		return nil, fmt.Errorf("write markdown report: %w", err)
	}

	logger.Info("Report written to %s and %s", jsonPath, mdPath)
	return report, nil
}

// renderMarkdownReport renders the human-readable report variant.
func renderMarkdownReport(report *domain.Report) string {
	var b strings.Builder

	b.WriteString("# Conversation Analytics Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	stats := report.Stats
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **Total Conversations**: %d\n", stats.TotalConversations)
	fmt.Fprintf(&b, "- **Total Messages**: %d\n", stats.TotalMessages)
	fmt.Fprintf(&b, "- **Average Messages per Conversation**: %.1f\n", stats.AvgMessagesPerConv)

	if stats.EarliestConv != nil && stats.LatestConv != nil {
		fmt.Fprintf(&b, "- **Date Range**: %s to %s\n",
			stats.EarliestConv.Format("2006-01-02"), stats.LatestConv.Format("2006-01-02"))
		fmt.Fprintf(&b, "- **Days Span**: %d days\n", stats.DaysSpan)
		fmt.Fprintf(&b, "- **Conversations per Day**: %.2f\n", stats.ConversationsPerDay)
	}

	b.WriteString("\n### By Source\n\n")
	sources := make([]domain.Source, 0, len(stats.BySource))
	for src := range stats.BySource {
		sources = append(sources, src)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	for _, src := range sources {
		data := stats.BySource[src]
		fmt.Fprintf(&b, "- **%s**: %d conversations, %d messages\n",
			strings.ToUpper(string(src)), data.Conversations, data.Messages)
	}

	b.WriteString("\n### Conversation Length Distribution\n\n")
	for _, bucket := range []string{"1-5", "6-10", "11-20", "21-50", "50+"} {
		if count, ok := stats.LengthDistribution[bucket]; ok {
			fmt.Fprintf(&b, "- **%s messages**: %d conversations\n", bucket, count)
		}
	}

	b.WriteString("\n## Top Topics\n\n")
	for i, topic := range report.TopTopics {
		if i == 30 {
			break
		}
		fmt.Fprintf(&b, "%d. **%s**: %d mentions\n", i+1, topic.Topic, topic.Count)
	}

	if len(report.ProgrammingLanguages) > 0 {
		b.WriteString("\n## Programming Languages\n\n")
		for _, lang := range report.ProgrammingLanguages {
			fmt.Fprintf(&b, "- **%s**: %d code blocks\n", lang.Language, lang.Count)
		}
	}

	patterns := report.Patterns
	b.WriteString("\n## Conversation Patterns\n\n")
	fmt.Fprintf(&b, "- **Question Ratio**: %.1f%%\n", patterns.QuestionRatio*100)
	fmt.Fprintf(&b, "- **Average Duration**: %.1f minutes\n", patterns.AvgDurationMinutes)
	fmt.Fprintf(&b, "- **Messages with Code**: %d (%.1f%%)\n",
		patterns.MessagesWithCode, patterns.CodePercentage)

	b.WriteString("\n### Duration Distribution\n\n")
	for _, bucket := range []string{"< 1 min", "1-5 min", "5-30 min", "30+ min"} {
		fmt.Fprintf(&b, "- **%s**: %d conversations\n", bucket, patterns.DurationDistribution[bucket])
	}

	b.WriteString("\n## Activity Timeline (by Month)\n\n")
	for _, period := range timelinePeriods(report.Timeline, 12) {
		fmt.Fprintf(&b, "\n### %s\n", period)
		total := 0
		perSource := make(map[domain.Source]domain.TimelineBucket)
		for _, bucket := range report.Timeline {
			if bucket.Period == period {
				total += bucket.Conversations
				perSource[bucket.Source] = bucket
			}
		}
		fmt.Fprintf(&b, "- Total: %d conversations\n", total)
		for _, src := range []domain.Source{domain.SourceClaude, domain.SourceOpenAI} {
			if bucket, ok := perSource[src]; ok {
				fmt.Fprintf(&b, "- %s: %d conversations, %d messages\n",
					capitalise(string(src)), bucket.Conversations, bucket.Messages)
			}
		}
	}

	return b.String()
}

// capitalise upper-cases the first letter of an ASCII word.
func capitalise(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// timelinePeriods returns up to n distinct periods, newest first.
func timelinePeriods(buckets []domain.TimelineBucket, n int) []string {
	seen := make(map[string]struct{})
	var periods []string
	for _, bucket := range buckets {
		if _, dup := seen[bucket.Period]; dup {
			continue
		}
		seen[bucket.Period] = struct{}{}
		periods = append(periods, bucket.Period)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(periods)))
	if len(periods) > n {
		periods = periods[:n]
	}
	return periods
}
