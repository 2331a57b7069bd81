// Package openai parses OpenAI (ChatGPT) export archives into
// normalised conversation records.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/openhwy/chatidx/internal/adapters/driven/export"
	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
	"github.com/openhwy/chatidx/internal/logger"
)

// millisThreshold is the epoch value for Jan 1, 3000. Timestamps
// above it are taken to be milliseconds rather than seconds.
const millisThreshold = 32503680000

// rawConversation mirrors one entry of the OpenAI conversations.json
// manifest. Mapping values stay raw so message RawData is verbatim.
type rawConversation struct {
	ConversationID string                     `json:"conversation_id"`
	ID             string                     `json:"id"`
	Title          string                     `json:"title"`
	CreateTime     float64                    `json:"create_time"`
	UpdateTime     float64                    `json:"update_time"`
	IsStarred      bool                       `json:"is_starred"`
	IsArchived     bool                       `json:"is_archived"`
	Mapping        map[string]json.RawMessage `json:"mapping"`
}

type rawMappingEntry struct {
	Message json.RawMessage `json:"message"`
}

type rawMessage struct {
	Author struct {
		Role string `json:"role"`
	} `json:"author"`
	Content    json.RawMessage `json:"content"`
	CreateTime float64         `json:"create_time"`
}

type rawContent struct {
	Parts []any `json:"parts"`
}

// Adapter parses OpenAI export archives.
type Adapter struct{}

var _ driven.ExportAdapter = (*Adapter)(nil)

// NewAdapter returns an OpenAI export adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Source identifies the vendor this adapter handles.
func (a *Adapter) Source() domain.Source {
	return domain.SourceOpenAI
}

// Parse reads the archive at path and returns every conversation in
// its conversations.json manifest. Records without a conversation_id
// or id are skipped.
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

		convID := conv.ConversationID
		if convID == "" {
			convID = conv.ID
		}
		if convID == "" {
			logger.Debug("Skipping conversation without id")
			continue
		}

		parsed = append(parsed, normalise(conv, convID, entry, exportFile))
	}

	return parsed, nil
}

// mappingMessage is one content-bearing message pulled out of the
// conversation's mapping graph.
type mappingMessage struct {
	id  string
	msg rawMessage
	raw json.RawMessage
}

func normalise(conv rawConversation, convID string, raw json.RawMessage, exportFile string) driven.ParsedConversation {
	candidates := collectMessages(conv.Mapping, convID)

	messages := make([]domain.Message, 0, len(candidates))
	searchParts := make([]string, 0, len(candidates))

	for _, c := range candidates {
		var content rawContent
		_ = json.Unmarshal(c.msg.Content, &content)
		text := joinParts(content.Parts)

		sender := c.msg.Author.Role
		switch sender {
		case "":
			sender = domain.SenderUnknown
		case "user":
			sender = domain.SenderHuman
		}

		messages = append(messages, domain.Message{
			ID:             c.id,
			ConversationID: convID,
			Sender:         sender,
			Text:           text,
			CreatedAt:      epochToTime(c.msg.CreateTime),
			HasAttachments: false,
			RawData:        string(c.raw),
		})
		searchParts = append(searchParts, text)
	}

	var searchText string
	if len(messages) > 0 {
		searchText = conv.Title + " " + strings.Join(searchParts, " ")
	}

	return driven.ParsedConversation{
		Conversation: domain.Conversation{
			ID:           convID,
			Source:       domain.SourceOpenAI,
			Title:        conv.Title,
			CreatedAt:    epochToTime(conv.CreateTime),
			UpdatedAt:    epochToTime(conv.UpdateTime),
			IsStarred:    conv.IsStarred,
			IsArchived:   conv.IsArchived,
			MessageCount: len(messages),
			ExportFile:   exportFile,
			RawData:      string(raw),
		},
		Messages:   messages,
		SearchText: searchText,
	}
}

// collectMessages pulls every content-bearing message out of the
// mapping graph. Entries are ordered by create_time, then by mapping
// key for messages without one, so ingestion order is deterministic.
func collectMessages(mapping map[string]json.RawMessage, convID string) []mappingMessage {
	candidates := make([]mappingMessage, 0, len(mapping))
	for id, rawEntry := range mapping {
		var entry rawMappingEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			logger.Warn("Skipping undecodable mapping entry in %s: %v", convID, err)
			continue
		}
		if len(entry.Message) == 0 || string(entry.Message) == "null" {
			continue
		}

		var msg rawMessage
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			logger.Warn("Skipping undecodable message in %s: %v", convID, err)
			continue
		}
		// Messages with no content block (system stubs) are dropped
		switch strings.TrimSpace(string(msg.Content)) {
		case "", "null", "{}":
			continue
		}

		candidates = append(candidates, mappingMessage{id: id, msg: msg, raw: entry.Message})
	}

	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := candidates[i].msg.CreateTime, candidates[j].msg.CreateTime
		if ti != tj {
			return ti < tj
		}
		return candidates[i].id < candidates[j].id
	})

	return candidates
}

// joinParts space-joins the non-empty content parts. Non-string parts
// (multimodal content pointers) are stringified.
func joinParts(parts []any) string {
	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case nil:
			continue
		case string:
			if v == "" {
				continue
			}
			joined = append(joined, v)
		default:
			joined = append(joined, fmt.Sprintf("%v", v))
		}
	}
	return strings.Join(joined, " ")
}

// epochToTime converts a Unix timestamp to UTC time. Values past the
// year 3000 are treated as milliseconds; zero means absent.
func epochToTime(epoch float64) *time.Time {
	if epoch == 0 {
		return nil
	}
	if epoch > millisThreshold {
		epoch = epoch / 1000
	}
	sec, frac := math.Modf(epoch)
	t := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
	return &t
}
