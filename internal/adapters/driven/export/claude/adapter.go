// Package claude parses Claude export archives into normalised
// conversation records.
package claude

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/openhwy/chatidx/internal/adapters/driven/export"
	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/logger"
)

// rawConversation mirrors one entry of the Claude conversations.json
// manifest. Messages are kept as raw JSON so the original payload
// survives into RawData verbatim.
type rawConversation struct {
	UUID         string            `json:"uuid"`
	Name         string            `json:"name"`
	Summary      string            `json:"summary"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
	ChatMessages []json.RawMessage `json:"chat_messages"`
}

type rawMessage struct {
	UUID        string            `json:"uuid"`
	Sender      string            `json:"sender"`
	Text        string            `json:"text"`
	CreatedAt   string            `json:"created_at"`
	Attachments []json.RawMessage `json:"attachments"`
	Files       []json.RawMessage `json:"files"`
}

// Adapter parses Claude export archives.
type Adapter struct{}

var _ driven.ExportAdapter = (*Adapter)(nil)

// NewAdapter returns a Claude export adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Source identifies the vendor this adapter handles.
func (a *Adapter) Source() domain.Source {
	return domain.SourceClaude
}

// Parse reads the archive at path and returns every conversation in
// its conversations.json manifest. Records without a uuid are skipped.
func (a *Adapter) Parse(ctx context.Context, path string) ([]driven.ParsedConversation, error) {
	var entries []json.RawMessage
	if err := export.ReadManifest(path, &entries); err != nil {
		return nil, err
	}

	exportFile := filepath.Base(path)

	var parsed []driven.ParsedConversation //nolint:prealloc // records may be skipped
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var conv rawConversation
		if err := json.Unmarshal(entry, &conv); err != nil {
			logger.Warn("Skipping undecodable conversation record: %v", err)
			continue
		}
		if conv.UUID == "" {
			logger.Debug("Skipping conversation without uuid")
			continue
		}

		parsed = append(parsed, normalise(conv, entry, exportFile))
	}

	return parsed, nil
}

func normalise(conv rawConversation, raw json.RawMessage, exportFile string) driven.ParsedConversation {
	messages := make([]domain.Message, 0, len(conv.ChatMessages))
	searchParts := make([]string, 0, len(conv.ChatMessages))

	for _, rawMsg := range conv.ChatMessages {
		var msg rawMessage
		if err := json.Unmarshal(rawMsg, &msg); err != nil {
			logger.Warn("Skipping undecodable message in %s: %v", conv.UUID, err)
			continue
		}
		if msg.UUID == "" {
			continue
		}

		sender := msg.Sender
		if sender == "" {
			sender = domain.SenderUnknown
		}

		messages = append(messages, domain.Message{
			ID:             msg.UUID,
			ConversationID: conv.UUID,
			Sender:         sender,
			Text:           msg.Text,
			CreatedAt:      parseTimestamp(msg.CreatedAt),
			HasAttachments: len(msg.Attachments) > 0 || len(msg.Files) > 0,
			RawData:        string(rawMsg),
		})
		searchParts = append(searchParts, msg.Text)
	}

	// Searchable text only exists for conversations with messages
	var searchText string
	if len(messages) > 0 {
		searchText = conv.Name + " " + conv.Summary + " " + strings.Join(searchParts, " ")
	}

	return driven.ParsedConversation{
		Conversation: domain.Conversation{
			ID:           conv.UUID,
			Source:       domain.SourceClaude,
			Title:        conv.Name,
			Summary:      conv.Summary,
			CreatedAt:    parseTimestamp(conv.CreatedAt),
			UpdatedAt:    parseTimestamp(conv.UpdatedAt),
			MessageCount: len(messages),
			ExportFile:   exportFile,
			RawData:      string(raw),
		},
		Messages:   messages,
		SearchText: searchText,
	}
}

// parseTimestamp parses the ISO 8601 timestamps Claude exports use.
// A trailing Z is accepted as UTC. Unparsable values yield nil.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
