// ABOUTME: Conversation session holding the document, chat history, and undo/redo stacks.
// ABOUTME: All mutations run under the session lock; document snapshots are value copies.

package editor

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/page"
)

// maxUndoDepth caps both history stacks. The oldest entry is dropped when the
// cap is exceeded.
const maxUndoDepth = 50

// ChatMessage is one entry in a conversation's chat history.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	HTML      string    `json:"html,omitempty"`
	Usage     llm.Usage `json:"usage"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one editing conversation: the current document, the chat
// history that produced it, and undo/redo history of document states.
type Session struct {
	mu         sync.RWMutex
	ID         string
	Document   page.Document
	Messages   []ChatMessage
	UndoStack  []page.Document
	RedoStack  []page.Document
	Usage      llm.Usage
	CreatedAt  time.Time
	LastAccess time.Time
}

// RLock acquires a read lock for safe concurrent reads of session data.
func (sess *Session) RLock() {
	sess.mu.RLock()
}

// RUnlock releases a read lock.
func (sess *Session) RUnlock() {
	sess.mu.RUnlock()
}

// Snapshot returns a copy of the current document.
func (sess *Session) Snapshot() page.Document {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.Document
}

// SetDocument replaces the current document, pushing the old state onto the
// undo stack and clearing the redo stack.
func (sess *Session) SetDocument(doc page.Document) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.pushUndo()
	sess.Document = doc
}

// Undo restores the previous document state.
func (sess *Session) Undo() (page.Document, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.UndoStack) == 0 {
		return page.Document{}, fmt.Errorf("nothing to undo")
	}

	prev := sess.UndoStack[len(sess.UndoStack)-1]
	sess.UndoStack = sess.UndoStack[:len(sess.UndoStack)-1]

	sess.RedoStack = append(sess.RedoStack, sess.Document)
	if len(sess.RedoStack) > maxUndoDepth {
		sess.RedoStack = sess.RedoStack[1:]
	}

	sess.Document = prev
	return prev, nil
}

// Redo restores a previously undone document state.
func (sess *Session) Redo() (page.Document, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.RedoStack) == 0 {
		return page.Document{}, fmt.Errorf("nothing to redo")
	}

	next := sess.RedoStack[len(sess.RedoStack)-1]
	sess.RedoStack = sess.RedoStack[:len(sess.RedoStack)-1]

	sess.UndoStack = append(sess.UndoStack, sess.Document)
	if len(sess.UndoStack) > maxUndoDepth {
		sess.UndoStack = sess.UndoStack[1:]
	}

	sess.Document = next
	return next, nil
}

// AddUserMessage appends a user chat message and returns it.
func (sess *Session) AddUserMessage(text string) ChatMessage {
	return sess.addMessage(ChatMessage{Role: "user", Text: text})
}

// AddAssistantMessage appends an assistant chat message with its rendered
// markdown and token usage, accumulating usage on the session total.
func (sess *Session) AddAssistantMessage(text string, usage llm.Usage) ChatMessage {
	return sess.addMessage(ChatMessage{
		Role:  "assistant",
		Text:  text,
		HTML:  MarkdownToHTML(text),
		Usage: usage,
	})
}

func (sess *Session) addMessage(msg ChatMessage) ChatMessage {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	msg.ID = newMessageID()
	msg.CreatedAt = time.Now()
	sess.Messages = append(sess.Messages, msg)
	sess.Usage.Add(msg.Usage)
	return msg
}

// pushUndo saves the current document to the undo stack and clears redo.
// Callers must hold the write lock.
func (sess *Session) pushUndo() {
	sess.UndoStack = append(sess.UndoStack, sess.Document)
	if len(sess.UndoStack) > maxUndoDepth {
		sess.UndoStack = sess.UndoStack[1:]
	}
	sess.RedoStack = nil
}

// newMessageID generates a ULID using crypto/rand entropy, so message ids
// sort chronologically within a conversation.
func newMessageID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
