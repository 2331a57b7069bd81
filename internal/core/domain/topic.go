package domain

// Topic is a categorisation label attached to a conversation.
// Topics are populated only by the optional categorise operation,
// never by the core indexer.
type Topic struct {
	ConversationID string
	Topic          string
	Confidence     float64
}

// TopicCount is one entry of a frequency-ranked topic listing
// extracted from conversation titles.
type TopicCount struct {
	Topic string
	Count int
}
