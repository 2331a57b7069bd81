package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhwy/chatidx/internal/adapters/driven/storage/sqlite"
	"github.com/openhwy/chatidx/internal/core/domain"
)

func newTestAnalytics(store *sqlite.Store) *AnalyticsService {
	return NewAnalyticsService(store.AnalyticsStore(), store.ConversationStore())
}

// ==================== Stats Tests ====================

func TestAnalyticsService_Stats(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc := newTestAnalytics(store)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalConversations)
	assert.Equal(t, 6, stats.TotalMessages)
	assert.InDelta(t, 2.0, stats.AvgMessagesPerConv, 0.001)

	require.Contains(t, stats.BySource, domain.SourceClaude)
	assert.Equal(t, 2, stats.BySource[domain.SourceClaude].Conversations)
	assert.Equal(t, 1, stats.BySource[domain.SourceOpenAI].Conversations)

	require.NotNil(t, stats.EarliestConv)
	require.NotNil(t, stats.LatestConv)
	assert.Equal(t, 61, stats.DaysSpan)
	assert.Greater(t, stats.ConversationsPerDay, 0.0)

	assert.Equal(t, 3, stats.LengthDistribution["1-5"])
	assert.Greater(t, stats.MessageLengths.Avg, 0.0)
}

func TestAnalyticsService_Stats_EmptyIndex(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAnalytics(store)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalConversations)
	assert.Equal(t, 0.0, stats.AvgMessagesPerConv)
	assert.Nil(t, stats.EarliestConv)
}

// ==================== Timeline Tests ====================

func TestAnalyticsService_Timeline(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc := newTestAnalytics(store)

	buckets, err := svc.Timeline(context.Background(), domain.GranularityMonth)

	require.NoError(t, err)
	require.Len(t, buckets, 3)
	// Most recent period first
	assert.Equal(t, "2024-05", buckets[0].Period)
}

func TestAnalyticsService_Timeline_InvalidGranularity(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAnalytics(store)

	_, err := svc.Timeline(context.Background(), "decade")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ==================== Patterns Tests ====================

func TestAnalyticsService_Patterns(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc := newTestAnalytics(store)

	patterns, err := svc.Patterns(context.Background())

	require.NoError(t, err)
	// Every seeded human message asks a question
	assert.InDelta(t, 1.0, patterns.QuestionRatio, 0.001)
	// Every seeded conversation spans two minutes
	assert.InDelta(t, 2.0, patterns.AvgDurationMinutes, 0.001)
	assert.Equal(t, 3, patterns.DurationDistribution["1-5 min"])
	assert.Equal(t, 0, patterns.DurationDistribution["30+ min"])
	assert.Equal(t, 0, patterns.MessagesWithCode)
}

func TestAnalyticsService_Patterns_CodeFrequency(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAnalytics(store)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	seedConversation(t, store, "conv-code", domain.SourceClaude, "Go snippets",
		"```go\nfunc main() {}\n```", base)

	patterns, err := svc.Patterns(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, patterns.MessagesWithCode)
	assert.InDelta(t, 50.0, patterns.CodePercentage, 0.001)
}

// ==================== Languages Tests ====================

func TestAnalyticsService_Languages(t *testing.T) {
	store := newTestStore(t)
	svc := newTestAnalytics(store)
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	seedConversation(t, store, "conv-code", domain.SourceClaude, "Polyglot",
		"```go\nfunc main() {}\n```\n```GO\nvar x int\n```\n```\nuntagged\n```", base)

	languages, err := svc.Languages(context.Background())

	require.NoError(t, err)
	byLang := make(map[string]int)
	for _, lc := range languages {
		byLang[lc.Language] = lc.Count
	}
	assert.Equal(t, 2, byLang["go"])
	assert.GreaterOrEqual(t, byLang["unknown"], 1)
}

// ==================== Cooccurrence Tests ====================

func TestAnalyticsService_Cooccurrence(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc := newTestAnalytics(store)

	pairs, err := svc.Cooccurrence(context.Background(), []string{"terraform", "docker"}, 1)

	require.NoError(t, err)
	// Only conv-docker mentions both
	require.Contains(t, pairs, "docker")
	assert.Equal(t, 1, pairs["docker"]["terraform"])
}

func TestAnalyticsService_Cooccurrence_MinCount(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc := newTestAnalytics(store)

	pairs, err := svc.Cooccurrence(context.Background(), []string{"terraform", "docker"}, 5)

	require.NoError(t, err)
	assert.Empty(t, pairs)
}

// ==================== Report Tests ====================

func TestAnalyticsService_Report(t *testing.T) {
	store := newTestStore(t)
	seedQueryFixtures(t, store)
	svc := newTestAnalytics(store)

	basePath := filepath.Join(t.TempDir(), "reports", "analytics_report")
	report, err := svc.Report(context.Background(), basePath)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Stats.TotalConversations)
	assert.NotEmpty(t, report.Timeline)
	assert.NotEmpty(t, report.TopTopics)
	assert.False(t, report.GeneratedAt.IsZero())

	jsonData, err := os.ReadFile(basePath + ".json")
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "total_conversations")

	mdData, err := os.ReadFile(basePath + ".md")
	require.NoError(t, err)
	md := string(mdData)
	assert.Contains(t, md, "# Conversation Analytics Report")
	assert.Contains(t, md, "**Total Conversations**: 3")
	assert.Contains(t, md, "## Activity Timeline (by Month)")
}
