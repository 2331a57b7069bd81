package domain

// ConversationChunk is a slice of a conversation sized to fit a token
// budget for downstream consumption. Token counts are estimated at
// four characters per token.
type ConversationChunk struct {
	Conversation

	// ChunkIndex is the ordinal position of this chunk.
	ChunkIndex int `json:"chunk_index"`

	// IsChunked is false only when the whole conversation fit in a
	// single chunk.
	IsChunked bool `json:"is_chunked"`
}
