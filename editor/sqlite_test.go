// ABOUTME: Tests for the SQLite conversation log covering upsert, load, and message ordering.
// ABOUTME: Each test opens a fresh database under t.TempDir.

package editor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/page"
)

func openTestLog(t *testing.T) *ConversationLog {
	t.Helper()
	log, err := OpenConversationLog(filepath.Join(t.TempDir(), "pagesmith.db"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func TestConversationLogDocumentUpsert(t *testing.T) {
	log := openTestLog(t)

	if err := log.CreateConversation("c1", time.Now()); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	// Creating again is a no-op, not an error.
	if err := log.CreateConversation("c1", time.Now()); err != nil {
		t.Fatalf("re-create conversation: %v", err)
	}

	if err := log.SaveDocument("c1", page.Document{HTML: "<p>v1</p>"}); err != nil {
		t.Fatalf("save document: %v", err)
	}
	if err := log.SaveDocument("c1", page.Document{HTML: "<p>v2</p>", CSS: "p{}"}); err != nil {
		t.Fatalf("upsert document: %v", err)
	}

	doc, found, err := log.LoadDocument("c1")
	if err != nil || !found {
		t.Fatalf("load document: found=%t err=%v", found, err)
	}
	if doc.HTML != "<p>v2</p>" || doc.CSS != "p{}" {
		t.Errorf("latest document lost: %+v", doc)
	}

	if _, found, err := log.LoadDocument("missing"); err != nil || found {
		t.Errorf("missing conversation must report found=false, got found=%t err=%v", found, err)
	}
}

func TestConversationLogMessagesRoundTrip(t *testing.T) {
	log := openTestLog(t)
	if err := log.CreateConversation("c1", time.Now()); err != nil {
		t.Fatalf("create conversation: %v", err)
	}

	user := ChatMessage{ID: newMessageID(), Role: "user", Text: "make it blue", CreatedAt: time.Now()}
	assistant := ChatMessage{
		ID: newMessageID(), Role: "assistant", Text: "Done, it is **blue**.",
		Usage:     llm.Usage{InputTokens: 100, OutputTokens: 20, TotalTokens: 120},
		CreatedAt: time.Now(),
	}
	for _, m := range []ChatMessage{user, assistant} {
		if err := log.SaveMessage("c1", m); err != nil {
			t.Fatalf("save message: %v", err)
		}
	}

	msgs, err := log.ListMessages("c1")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("ULID ordering lost: %+v", msgs)
	}
	if msgs[1].Usage.TotalTokens != 120 {
		t.Errorf("usage lost: %+v", msgs[1].Usage)
	}
	if msgs[1].HTML == "" {
		t.Error("assistant messages must be re-rendered on load")
	}
}

func TestConversationLogListConversations(t *testing.T) {
	log := openTestLog(t)

	older := time.Now().Add(-time.Hour)
	if err := log.CreateConversation("old", older); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := log.CreateConversation("new", time.Now()); err != nil {
		t.Fatalf("create: %v", err)
	}

	ids, err := log.ListConversations()
	if err != nil {
		t.Fatalf("list conversations: %v", err)
	}
	if len(ids) != 2 || ids[0] != "new" {
		t.Errorf("expected newest first, got %v", ids)
	}
}
