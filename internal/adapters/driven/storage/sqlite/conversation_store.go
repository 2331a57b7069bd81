package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openhwy/chatidx/internal/core/domain"
	"github.com/openhwy/chatidx/internal/core/ports/driven"
)

// defaultSearchLimit caps unbounded searches.
const defaultSearchLimit = 50

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// UpsertConversation inserts or replaces a conversation by ID.
func (s *conversationStore) UpsertConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversations
			(id, source, title, summary, created_at, updated_at,
			 is_starred, is_archived, message_count, export_file, raw_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			summary = excluded.summary,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			is_starred = excluded.is_starred,
			is_archived = excluded.is_archived,
			message_count = excluded.message_count,
			export_file = excluded.export_file,
			raw_data = excluded.raw_data
	`, conv.ID, string(conv.Source), conv.Title, conv.Summary,
		conv.CreatedAt, conv.UpdatedAt, conv.IsStarred, conv.IsArchived,
		conv.MessageCount, conv.ExportFile, conv.RawData)

	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}

// UpsertMessage inserts or replaces a message by ID.
func (s *conversationStore) UpsertMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" || msg.ConversationID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO messages
			(id, conversation_id, sender, text, created_at, has_attachments, raw_data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			sender = excluded.sender,
			text = excluded.text,
			created_at = excluded.created_at,
			has_attachments = excluded.has_attachments,
			raw_data = excluded.raw_data
	`, msg.ID, msg.ConversationID, msg.Sender, msg.Text,
		msg.CreatedAt, msg.HasAttachments, msg.RawData)

	if err != nil {
		return fmt.Errorf("saving message: %w", err)
	}
	return nil
}

// UpsertSearchText replaces the searchable text of a conversation.
func (s *conversationStore) UpsertSearchText(ctx context.Context, conversationID, text string) error {
	if conversationID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversation_fts (conversation_id, searchable_text)
		VALUES (?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			searchable_text = excluded.searchable_text
	`, conversationID, text)

	if err != nil {
		return fmt.Errorf("saving searchable text: %w", err)
	}
	return nil
}

// Get retrieves a conversation by full or partial ID.
func (s *conversationStore) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, title, summary, created_at, updated_at,
		       is_starred, is_archived, message_count, export_file
		FROM conversations
		WHERE id LIKE '%' || ? || '%'
		LIMIT 1
	`, id)

	conv, err := scanConversation(row)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Messages returns all messages of a conversation, oldest first.
func (s *conversationStore) Messages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, conversation_id, sender, text, created_at, has_attachments
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.Message
		var createdAt sql.NullTime
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Sender,
			&msg.Text, &createdAt, &msg.HasAttachments); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		if createdAt.Valid {
			t := createdAt.Time
			msg.CreatedAt = &t
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}

// Search applies the conjunctive filter, newest first.
func (s *conversationStore) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Conversation, error) {
	conditions := []string{"1=1"}
	var params []any

	if filter.Query != "" {
		conditions = append(conditions, "lower(fts.searchable_text) LIKE '%' || lower(?) || '%'")
		params = append(params, filter.Query)
	}
	if filter.Source != "" {
		conditions = append(conditions, "c.source = ?")
		params = append(params, string(filter.Source))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "c.created_at >= ?")
		params = append(params, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "c.created_at <= ?")
		params = append(params, *filter.EndDate)
	}
	if filter.MinMessages > 0 {
		conditions = append(conditions, "c.message_count >= ?")
		params = append(params, filter.MinMessages)
	}
	if filter.MaxMessages > 0 {
		conditions = append(conditions, "c.message_count <= ?")
		params = append(params, filter.MaxMessages)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	params = append(params, limit)

	query := `
		SELECT c.id, c.source, c.title, c.summary, c.created_at, c.updated_at,
		       c.is_starred, c.is_archived, c.message_count, c.export_file
		FROM conversations c
		LEFT JOIN conversation_fts fts ON c.id = fts.conversation_id
		WHERE ` + joinAnd(conditions) + `
		ORDER BY c.created_at DESC
		LIMIT ?
	`

	rows, err := s.store.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("searching conversations: %w", err)
	}
	defer rows.Close()

	var convs []domain.Conversation //nolint:prealloc // size unknown from query
	for rows.Next() {
		conv, err := scanConversationRows(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversations: %w", err)
	}

	return convs, nil
}

// Titles returns all non-empty conversation titles.
func (s *conversationStore) Titles(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT title FROM conversations
		WHERE title IS NOT NULL AND title != ''
	`)
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	var titles []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating titles: %w", err)
	}

	return titles, nil
}

// SearchableText returns the indexed text of one conversation.
func (s *conversationStore) SearchableText(ctx context.Context, conversationID string) (string, error) {
	var text string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT searchable_text FROM conversation_fts WHERE conversation_id = ?
	`, conversationID).Scan(&text)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying searchable text: %w", err)
	}
	return text, nil
}

// MatchCounts ranks conversations by number of index rows matching
// the pattern. With the 1:1 text index this is a coarse overlap
// signal, kept deliberately.
func (s *conversationStore) MatchCounts(ctx context.Context, pattern, excludeID string, limit int) ([]domain.SimilarityHit, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.source, c.created_at, COUNT(*) as match_score
		FROM conversations c
		JOIN conversation_fts fts ON c.id = fts.conversation_id
		WHERE c.id != ?
		  AND fts.searchable_text REGEXP ?
		GROUP BY c.id, c.title, c.source, c.created_at
		ORDER BY match_score DESC
		LIMIT ?
	`, excludeID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("querying similar conversations: %w", err)
	}
	defer rows.Close()

	var hits []domain.SimilarityHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var hit domain.SimilarityHit
		var source string
		var createdAt sql.NullTime
		if err := rows.Scan(&hit.ID, &hit.Title, &source, &createdAt, &hit.Score); err != nil {
			return nil, fmt.Errorf("scanning similarity hit: %w", err)
		}
		hit.Source = domain.Source(source)
		if createdAt.Valid {
			t := createdAt.Time
			hit.CreatedAt = &t
		}
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating similarity hits: %w", err)
	}

	return hits, nil
}

// ExportRows returns the CSV export projection, newest first.
func (s *conversationStore) ExportRows(ctx context.Context, query string) ([]domain.ExportRow, error) {
	where := "1=1"
	var params []any
	if query != "" {
		where = "lower(fts.searchable_text) LIKE '%' || lower(?) || '%'"
		params = append(params, query)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.source, c.title, c.created_at, c.message_count, c.summary
		FROM conversations c
		LEFT JOIN conversation_fts fts ON c.id = fts.conversation_id
		WHERE `+where+`
		ORDER BY c.created_at DESC
	`, params...)
	if err != nil {
		return nil, fmt.Errorf("querying export rows: %w", err)
	}
	defer rows.Close()

	var result []domain.ExportRow //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.ExportRow
		var source string
		var createdAt sql.NullTime
		if err := rows.Scan(&r.ID, &source, &r.Title, &createdAt, &r.MessageCount, &r.Summary); err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		r.Source = domain.Source(source)
		if createdAt.Valid {
			t := createdAt.Time
			r.CreatedAt = &t
		}
		result = append(result, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating export rows: %w", err)
	}

	return result, nil
}

// ==================== Topic Store ====================

// topicStore implements driven.TopicStore.
type topicStore struct {
	store *Store
}

var _ driven.TopicStore = (*topicStore)(nil)

// UpsertTopic inserts or replaces a topic assignment.
func (s *topicStore) UpsertTopic(ctx context.Context, topic domain.Topic) error {
	if topic.ConversationID == "" || topic.Topic == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversation_topics (conversation_id, topic, confidence)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id, topic) DO UPDATE SET
			confidence = excluded.confidence
	`, topic.ConversationID, topic.Topic, topic.Confidence)

	if err != nil {
		return fmt.Errorf("saving topic: %w", err)
	}
	return nil
}

// TopicsFor returns all topics assigned to a conversation.
func (s *topicStore) TopicsFor(ctx context.Context, conversationID string) ([]domain.Topic, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT conversation_id, topic, confidence
		FROM conversation_topics
		WHERE conversation_id = ?
		ORDER BY topic
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.Topic //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.ConversationID, &t.Topic, &t.Confidence); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		topics = append(topics, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topics: %w", err)
	}

	return topics, nil
}

// ==================== Helper Functions ====================

func joinAnd(conditions []string) string {
	result := conditions[0]
	for _, c := range conditions[1:] {
		result += " AND " + c
	}
	return result
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversationFields(scanner rowScanner) (*domain.Conversation, error) {
	var conv domain.Conversation
	var source string
	var title, summary, exportFile sql.NullString
	var createdAt, updatedAt sql.NullTime

	if err := scanner.Scan(&conv.ID, &source, &title, &summary,
		&createdAt, &updatedAt, &conv.IsStarred, &conv.IsArchived,
		&conv.MessageCount, &exportFile); err != nil {
		return nil, err
	}

	conv.Source = domain.Source(source)
	conv.Title = title.String
	conv.Summary = summary.String
	conv.ExportFile = exportFile.String
	if createdAt.Valid {
		t := createdAt.Time
		conv.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		conv.UpdatedAt = &t
	}

	return &conv, nil
}

// scanConversation scans a single conversation row.
func scanConversation(row *sql.Row) (*domain.Conversation, error) {
	conv, err := scanConversationFields(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}
	return conv, nil
}

// scanConversationRows scans a conversation from *sql.Rows.
func scanConversationRows(rows *sql.Rows) (*domain.Conversation, error) {
	conv, err := scanConversationFields(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}
	return conv, nil
}
