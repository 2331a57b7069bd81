package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
)

// analyticsStore implements driven.AnalyticsStore.
type analyticsStore struct {
	store *Store
}

var _ driven.AnalyticsStore = (*analyticsStore)(nil)

// Counts returns total conversations and messages.
func (s *analyticsStore) Counts(ctx context.Context) (int, int, error) {
	var conversations, messages int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM conversations),
		       (SELECT COUNT(*) FROM messages)
	`).Scan(&conversations, &messages)
	if err != nil {
		return 0, 0, fmt.Errorf("querying counts: %w", err)
	}
	return conversations, messages, nil
}

// SourceBreakdown aggregates conversations and messages per source.
func (s *analyticsStore) SourceBreakdown(ctx context.Context) ([]domain.SourceStats, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.source, COUNT(DISTINCT c.id), COUNT(m.id)
		FROM conversations c
		LEFT JOIN messages m ON c.id = m.conversation_id
		GROUP BY c.source
		ORDER BY c.source
	`)
	if err != nil {
		return nil, fmt.Errorf("querying source breakdown: %w", err)
	}
	defer rows.Close()

	var stats []domain.SourceStats //nolint:prealloc // size unknown from query
	for rows.Next() {
		var st domain.SourceStats
		var source string
		if err := rows.Scan(&source, &st.Conversations, &st.Messages); err != nil {
			return nil, fmt.Errorf("scanning source stats: %w", err)
		}
		st.Source = domain.Source(source)
		stats = append(stats, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source stats: %w", err)
	}

	return stats, nil
}

// DateRange returns the earliest and latest conversation timestamps.
func (s *analyticsStore) DateRange(ctx context.Context) (*time.Time, *time.Time, error) {
	var earliest, latest sql.NullTime
	err := s.store.db.QueryRowContext(ctx, `
		SELECT MIN(created_at), MAX(created_at) FROM conversations
	`).Scan(&earliest, &latest)
	if err != nil {
		return nil, nil, fmt.Errorf("querying date range: %w", err)
	}

	var e, l *time.Time
	if earliest.Valid {
		t := earliest.Time
		e = &t
	}
	if latest.Valid {
		t := latest.Time
		l = &t
	}
	return e, l, nil
}

// MessageLengths summarises message text lengths.
func (s *analyticsStore) MessageLengths(ctx context.Context) (domain.MessageLengthStats, error) {
	var avg sql.NullFloat64
	var minLen, maxLen sql.NullInt64
	err := s.store.db.QueryRowContext(ctx, `
		SELECT AVG(LENGTH(text)), MIN(LENGTH(text)), MAX(LENGTH(text))
		FROM messages
		WHERE text IS NOT NULL AND text != ''
	`).Scan(&avg, &minLen, &maxLen)
	if err != nil {
		return domain.MessageLengthStats{}, fmt.Errorf("querying message lengths: %w", err)
	}

	return domain.MessageLengthStats{
		Avg: avg.Float64,
		Min: int(minLen.Int64),
		Max: int(maxLen.Int64),
	}, nil
}

// LengthHistogram buckets conversations by message count.
func (s *analyticsStore) LengthHistogram(ctx context.Context) (map[string]int, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT
			CASE
				WHEN message_count <= 5 THEN '1-5'
				WHEN message_count <= 10 THEN '6-10'
				WHEN message_count <= 20 THEN '11-20'
				WHEN message_count <= 50 THEN '21-50'
				ELSE '50+'
			END as bucket,
			COUNT(*)
		FROM conversations
		WHERE message_count > 0
		GROUP BY bucket
	`)
	if err != nil {
		return nil, fmt.Errorf("querying length histogram: %w", err)
	}
	defer rows.Close()

	histogram := make(map[string]int)
	for rows.Next() {
		var bucket string
		var count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("scanning histogram bucket: %w", err)
		}
		histogram[bucket] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating histogram buckets: %w", err)
	}

	return histogram, nil
}

// Timeline buckets conversation activity by period and source.
func (s *analyticsStore) Timeline(ctx context.Context, granularity domain.TimelineGranularity) ([]domain.TimelineBucket, error) {
	var format string
	switch granularity {
	case domain.GranularityDay:
		format = "%Y-%m-%d"
	case domain.GranularityWeek:
		format = "%Y-W%W"
	case domain.GranularityMonth:
		format = "%Y-%m"
	default:
		return nil, fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, granularity)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT strftime(?, created_at) as period, source,
		       COUNT(*), COALESCE(SUM(message_count), 0)
		FROM conversations
		WHERE created_at IS NOT NULL
		GROUP BY period, source
		ORDER BY period DESC
	`, format)
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	var buckets []domain.TimelineBucket //nolint:prealloc // size unknown from query
	for rows.Next() {
		var b domain.TimelineBucket
		var source string
		if err := rows.Scan(&b.Period, &source, &b.Conversations, &b.Messages); err != nil {
			return nil, fmt.Errorf("scanning timeline bucket: %w", err)
		}
		b.Source = domain.Source(source)
		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline buckets: %w", err)
	}

	return buckets, nil
}

// HumanMessageCounts returns question and total counts for human
// messages.
func (s *analyticsStore) HumanMessageCounts(ctx context.Context) (int, int, error) {
	var questions, total int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN text LIKE '%?%' THEN 1 ELSE 0 END), 0),
		       COUNT(*)
		FROM messages
		WHERE sender = 'human'
	`).Scan(&questions, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("querying human message counts: %w", err)
	}
	return questions, total, nil
}

// ConversationSpans returns first/last message times for
// conversations with at least two timestamped messages.
func (s *analyticsStore) ConversationSpans(ctx context.Context) ([]domain.ConversationSpan, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT conversation_id, MIN(created_at), MAX(created_at)
		FROM messages
		WHERE created_at IS NOT NULL
		GROUP BY conversation_id
		HAVING COUNT(*) > 1
	`)
	if err != nil {
		return nil, fmt.Errorf("querying conversation spans: %w", err)
	}
	defer rows.Close()

	var spans []domain.ConversationSpan //nolint:prealloc // size unknown from query
	for rows.Next() {
		var span domain.ConversationSpan
		if err := rows.Scan(&span.ConversationID, &span.Start, &span.End); err != nil {
			return nil, fmt.Errorf("scanning conversation span: %w", err)
		}
		spans = append(spans, span)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation spans: %w", err)
	}

	return spans, nil
}

// CodeMessageTexts returns the text of every message containing a
// fenced code block marker.
func (s *analyticsStore) CodeMessageTexts(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT text FROM messages WHERE text LIKE '%` + "```" + `%'
	`)
	if err != nil {
		return nil, fmt.Errorf("querying code messages: %w", err)
	}
	defer rows.Close()

	var texts []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scanning code message: %w", err)
		}
		texts = append(texts, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating code messages: %w", err)
	}

	return texts, nil
}

// CodeMessageCount counts messages containing a fenced code block
// marker.
func (s *analyticsStore) CodeMessageCount(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE text LIKE '%`+"```"+`%'
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting code messages: %w", err)
	}
	return count, nil
}
