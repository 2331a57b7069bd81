package domain

import "time"

// SourceStats aggregates conversations and messages for one vendor.
type SourceStats struct {
	Source        Source `json:"source"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
}

// MessageLengthStats summarises message text lengths in characters.
type MessageLengthStats struct {
	Avg float64 `json:"avg"`
	Min int     `json:"min"`
	Max int     `json:"max"`
}

// Stats is the overall index statistics block.
type Stats struct {
	TotalConversations int                    `json:"total_conversations"`
	TotalMessages      int                    `json:"total_messages"`
	AvgMessagesPerConv float64                `json:"avg_messages_per_conversation"`
	BySource           map[Source]SourceStats `json:"by_source"`
	EarliestConv       *time.Time             `json:"earliest_conversation,omitempty"`
	LatestConv         *time.Time             `json:"latest_conversation,omitempty"`
	DaysSpan           int                    `json:"days_span"`
	ConversationsPerDay float64               `json:"conversations_per_day"`
	MessageLengths     MessageLengthStats     `json:"message_lengths"`
	// LengthDistribution buckets conversations by message count:
	// "1-5", "6-10", "11-20", "21-50", "50+".
	LengthDistribution map[string]int `json:"conversation_length_distribution"`
}

// TimelineGranularity selects the activity bucket size.
type TimelineGranularity string

// Timeline granularities.
const (
	GranularityDay   TimelineGranularity = "day"
	GranularityWeek  TimelineGranularity = "week"
	GranularityMonth TimelineGranularity = "month"
)

// Valid reports whether the granularity is a known value.
func (g TimelineGranularity) Valid() bool {
	return g == GranularityDay || g == GranularityWeek || g == GranularityMonth
}

// TimelineBucket is one period of activity for one source.
type TimelineBucket struct {
	Period        string `json:"period"`
	Source        Source `json:"source"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
}

// ConversationSpan holds the first and last message time of a
// conversation with at least two timestamped messages.
type ConversationSpan struct {
	ConversationID string
	Start          time.Time
	End            time.Time
}

// Patterns summarises conversational behaviour across the index.
type Patterns struct {
	// QuestionRatio is the fraction of human messages containing "?".
	QuestionRatio float64 `json:"question_ratio"`

	// AvgDurationMinutes averages time between first and last message
	// over conversations with two or more timestamped messages.
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`

	// DurationDistribution buckets: "< 1 min", "1-5 min", "5-30 min",
	// "30+ min".
	DurationDistribution map[string]int `json:"duration_distribution"`

	MessagesWithCode int     `json:"messages_with_code"`
	CodePercentage   float64 `json:"code_percentage"`
}

// Report is the full analytics report, serialised to JSON and
// rendered to Markdown side by side.
type Report struct {
	GeneratedAt          time.Time        `json:"generated_at"`
	Stats                Stats            `json:"stats"`
	Timeline             []TimelineBucket `json:"timeline"`
	TopTopics            []TopicCount     `json:"top_topics"`
	Patterns             Patterns         `json:"patterns"`
	ProgrammingLanguages []LanguageCount  `json:"programming_languages"`
}

// LanguageCount is one entry of the fenced-code-block language
// histogram. Blocks with no language tag count as "unknown".
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}
