// ABOUTME: SQLite-backed persistence for conversations, chat messages, and latest documents.
// ABOUTME: Provides upsert, load, and list operations so sessions survive restarts.

package editor

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/2389-research/pagesmith/page"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// ConversationLog is a SQLite-backed mirror of conversation history and the
// latest document per conversation. Sessions in memory remain the live state;
// the log exists so a restarted server can restore them.
type ConversationLog struct {
	db *sql.DB
}

// OpenConversationLog opens or creates the SQLite database at the given path
// and runs migrations to ensure the schema is up to date.
func OpenConversationLog(path string) (*ConversationLog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			conversation_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			input_tokens INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
		);

		CREATE TABLE IF NOT EXISTS documents (
			conversation_id TEXT PRIMARY KEY,
			html TEXT NOT NULL,
			css TEXT NOT NULL,
			javascript TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (conversation_id) REFERENCES conversations(conversation_id)
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ConversationLog{db: db}, nil
}

// Close closes the SQLite database connection.
func (l *ConversationLog) Close() error {
	return l.db.Close()
}

// CreateConversation registers a conversation id. Re-registering an existing
// id is a no-op.
func (l *ConversationLog) CreateConversation(id string, createdAt time.Time) error {
	_, err := l.db.Exec(
		`INSERT INTO conversations (conversation_id, created_at)
		 VALUES (?, ?)
		 ON CONFLICT(conversation_id) DO NOTHING`,
		id, createdAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// SaveMessage appends a chat message row.
func (l *ConversationLog) SaveMessage(conversationID string, msg ChatMessage) error {
	_, err := l.db.Exec(
		`INSERT INTO messages (message_id, conversation_id, role, text, input_tokens, output_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, conversationID, msg.Role, msg.Text,
		msg.Usage.InputTokens, msg.Usage.OutputTokens,
		msg.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// SaveDocument upserts the latest document for a conversation.
func (l *ConversationLog) SaveDocument(conversationID string, doc page.Document) error {
	_, err := l.db.Exec(
		`INSERT INTO documents (conversation_id, html, css, javascript, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
			html = excluded.html,
			css = excluded.css,
			javascript = excluded.javascript,
			updated_at = excluded.updated_at`,
		conversationID, doc.HTML, doc.CSS, doc.JavaScript,
		time.Now().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// LoadDocument returns the latest persisted document for a conversation.
func (l *ConversationLog) LoadDocument(conversationID string) (page.Document, bool, error) {
	var doc page.Document
	err := l.db.QueryRow(
		"SELECT html, css, javascript FROM documents WHERE conversation_id = ?",
		conversationID).Scan(&doc.HTML, &doc.CSS, &doc.JavaScript)
	if err == sql.ErrNoRows {
		return page.Document{}, false, nil
	}
	if err != nil {
		return page.Document{}, false, fmt.Errorf("query document: %w", err)
	}
	return doc, true, nil
}

// ListMessages returns a conversation's messages ordered by message id.
// ULIDs sort chronologically, so id order is creation order.
func (l *ConversationLog) ListMessages(conversationID string) ([]ChatMessage, error) {
	rows, err := l.db.Query(
		`SELECT message_id, role, text, input_tokens, output_tokens, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY message_id ASC`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []ChatMessage
	for rows.Next() {
		var m ChatMessage
		var created string
		if err := rows.Scan(&m.ID, &m.Role, &m.Text,
			&m.Usage.InputTokens, &m.Usage.OutputTokens, &created); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.Usage.TotalTokens = m.Usage.InputTokens + m.Usage.OutputTokens
		if t, err := time.Parse(timeFormat, created); err == nil {
			m.CreatedAt = t
		}
		if m.Role == "assistant" {
			m.HTML = MarkdownToHTML(m.Text)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ListConversations returns all conversation ids, newest first.
func (l *ConversationLog) ListConversations() ([]string, error) {
	rows, err := l.db.Query(
		"SELECT conversation_id FROM conversations ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
