// ABOUTME: HTTP handler methods for conversation lifecycle, edit requests, undo/redo, preview, and export.
// ABOUTME: Persists messages and documents to the conversation log when one is configured.

package editor

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/2389-research/pagesmith/llm"
	"github.com/2389-research/pagesmith/page"
	"github.com/2389-research/pagesmith/pipeline"
)

// maxBodySize limits request bodies; attached images ride inside the JSON as
// data URLs, so the cap is generous.
const maxBodySize = 20 << 20

type createConversationRequest struct {
	HTML       string `json:"html"`
	CSS        string `json:"css"`
	JavaScript string `json:"javascript"`
}

type conversationResponse struct {
	ID       string        `json:"id"`
	Document page.Document `json:"document"`
	Messages []ChatMessage `json:"messages"`
	Usage    llm.Usage     `json:"usage"`
	CanUndo  bool          `json:"can_undo"`
	CanRedo  bool          `json:"can_redo"`
}

type editRequest struct {
	Message string `json:"message"`
	Image   string `json:"image,omitempty"`
	Model   string `json:"model,omitempty"`
}

type editResponse struct {
	Message     string          `json:"message"`
	MessageHTML string          `json:"message_html"`
	Document    page.Document   `json:"document"`
	Usage       llm.Usage       `json:"usage"`
	Trace       []pipeline.Step `json:"trace"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// handleCreateConversation starts a conversation seeded with the posted
// document (all fields optional; an empty page is fine).
func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	sess := s.store.Create(page.Document{
		HTML:       req.HTML,
		CSS:        req.CSS,
		JavaScript: req.JavaScript,
	})

	if s.log != nil {
		if err := s.log.CreateConversation(sess.ID, sess.CreatedAt); err != nil {
			log.Printf("component=editor action=persist_conversation_failed id=%s err=%v", sess.ID, err)
		} else if err := s.log.SaveDocument(sess.ID, sess.Snapshot()); err != nil {
			log.Printf("component=editor action=persist_document_failed id=%s err=%v", sess.ID, err)
		}
	}

	writeJSON(w, http.StatusCreated, s.conversationResponse(sess))
}

// handleGetConversation returns the current state of a conversation,
// restoring it from persistence if it aged out of memory.
func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, s.conversationResponse(sess))
}

// handleEditRequest runs one edit request through the pipeline and applies
// the result to the conversation's document.
func (s *Server) handleEditRequest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}

	doc := sess.Snapshot()
	res, err := s.pipe.Process(r.Context(), req.Message, doc, pipeline.Options{
		Image:       req.Image,
		ModelChoice: model,
	})
	if err != nil {
		// Total pipeline failure: report and leave the document unchanged.
		log.Printf("component=editor action=pipeline_failed id=%s err=%v", sess.ID, err)
		writeError(w, http.StatusBadGateway, "the edit could not be applied; the page was left unchanged")
		return
	}

	if doc.Changed(res.Patch) {
		sess.SetDocument(res.Document)
	}

	userMsg := sess.AddUserMessage(req.Message)
	assistantMsg := sess.AddAssistantMessage(res.Message, res.Usage)

	if s.log != nil {
		s.persistEdit(sess, userMsg, assistantMsg)
	}

	writeJSON(w, http.StatusOK, editResponse{
		Message:     assistantMsg.Text,
		MessageHTML: assistantMsg.HTML,
		Document:    sess.Snapshot(),
		Usage:       res.Usage,
		Trace:       res.Trace,
		Warnings:    res.Warnings,
	})
}

// handleUndo restores the previous document state.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, func(sess *Session) (page.Document, error) { return sess.Undo() })
}

// handleRedo restores a previously undone document state.
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, func(sess *Session) (page.Document, error) { return sess.Redo() })
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, step func(*Session) (page.Document, error)) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	doc, err := step(sess)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	if s.log != nil {
		if err := s.log.SaveDocument(sess.ID, doc); err != nil {
			log.Printf("component=editor action=persist_document_failed id=%s err=%v", sess.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, s.conversationResponse(sess))
}

// handlePreview returns the composed sandbox document for the conversation's
// current state, suitable for an iframe srcdoc.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	srcdoc := s.previews.Compose(sess.Snapshot())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(srcdoc))
}

// handleExport returns the current document as a downloadable YAML bundle.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	out, err := ExportYAML(sess.ID, sess.Snapshot())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "page-"+sess.ID+".yaml"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// session fetches a live session, falling back to the conversation log for
// sessions evicted from memory.
func (s *Server) session(id string) (*Session, bool) {
	if sess, ok := s.store.Get(id); ok {
		return sess, true
	}
	if s.log == nil {
		return nil, false
	}

	doc, found, err := s.log.LoadDocument(id)
	if err != nil || !found {
		return nil, false
	}
	msgs, err := s.log.ListMessages(id)
	if err != nil {
		log.Printf("component=editor action=restore_messages_failed id=%s err=%v", id, err)
	}

	sess := &Session{ID: id, Document: doc, Messages: msgs}
	for _, m := range msgs {
		sess.Usage.Add(m.Usage)
	}
	s.store.Restore(sess)
	log.Printf("component=editor action=session_restored id=%s messages=%d", id, len(msgs))
	return sess, true
}

func (s *Server) persistEdit(sess *Session, msgs ...ChatMessage) {
	for _, m := range msgs {
		if err := s.log.SaveMessage(sess.ID, m); err != nil {
			log.Printf("component=editor action=persist_message_failed id=%s err=%v", sess.ID, err)
		}
	}
	if err := s.log.SaveDocument(sess.ID, sess.Snapshot()); err != nil {
		log.Printf("component=editor action=persist_document_failed id=%s err=%v", sess.ID, err)
	}
}

func (s *Server) conversationResponse(sess *Session) conversationResponse {
	sess.RLock()
	defer sess.RUnlock()
	return conversationResponse{
		ID:       sess.ID,
		Document: sess.Document,
		Messages: sess.Messages,
		Usage:    sess.Usage,
		CanUndo:  len(sess.UndoStack) > 0,
		CanRedo:  len(sess.RedoStack) > 0,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
