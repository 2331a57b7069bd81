package domain

import "time"

// Source identifies the vendor an export archive came from.
type Source string

// Known export sources.
const (
	SourceClaude Source = "claude"
	SourceOpenAI Source = "openai"
)

// Valid reports whether the source is one of the known vendors.
func (s Source) Valid() bool {
	return s == SourceClaude || s == SourceOpenAI
}

// Conversation is the normalised representation of one exported
// conversation, regardless of vendor.
type Conversation struct {
	// ID is the vendor-native identifier (UUID for Claude,
	// conversation_id or id for OpenAI). Unique across sources.
	ID string

	// Source is the vendor this record came from.
	Source Source

	// Title is the conversation title. May be empty.
	Title string

	// Summary is the conversation summary. Claude only; empty for OpenAI.
	Summary string

	// CreatedAt and UpdatedAt are nil when the export payload omits
	// them or supplies an unparsable value.
	CreatedAt *time.Time
	UpdatedAt *time.Time

	// IsStarred and IsArchived are OpenAI-only flags, always false
	// for Claude.
	IsStarred  bool
	IsArchived bool

	// MessageCount is the number of messages ingested for this
	// conversation. Computed once at ingest time and not reconciled
	// afterwards.
	MessageCount int

	// ExportFile is the base name of the archive this record came from.
	ExportFile string

	// RawData is the original JSON payload, preserved verbatim.
	// Downstream logic never deserialises it.
	RawData string

	// Messages is populated only when a query explicitly inlines them,
	// ordered by created_at ascending.
	Messages []Message
}

// Message is one normalised message within a conversation.
type Message struct {
	// ID is the vendor-native message identifier.
	ID string

	// ConversationID links to the owning Conversation.
	ConversationID string

	// Sender is one of "human", "assistant", "system", or "unknown".
	// OpenAI's "user" role is mapped to "human" at ingest time.
	Sender string

	// Text is the concatenation of all textual content parts.
	Text string

	// CreatedAt is nil when absent or unparsable.
	CreatedAt *time.Time

	// HasAttachments is true when the raw payload references
	// attachments or files.
	HasAttachments bool

	// RawData is the original message payload, preserved verbatim.
	RawData string
}

// Normalised sender values.
const (
	SenderHuman     = "human"
	SenderAssistant = "assistant"
	SenderSystem    = "system"
	SenderUnknown   = "unknown"
)
