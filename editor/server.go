// ABOUTME: HTTP server with chi router wiring the conversation store to the mutation pipeline.
// ABOUTME: JSON API plus preview and export endpoints; bearer auth when a token is configured.

package editor

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/2389-research/pagesmith/page"
	"github.com/2389-research/pagesmith/pipeline"
	"github.com/2389-research/pagesmith/render"
)

// Processor runs one edit request through the mutation pipeline. Satisfied by
// *pipeline.Pipeline; tests substitute a fake.
type Processor interface {
	Process(ctx context.Context, message string, doc page.Document, opts pipeline.Options) (*pipeline.Result, error)
}

// ServerOption configures optional Server behavior.
type ServerOption func(*Server)

// WithConversationLog enables SQLite persistence of conversations.
func WithConversationLog(log *ConversationLog) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithAuthToken requires a bearer token on every request.
func WithAuthToken(token string) ServerOption {
	return func(s *Server) { s.authToken = token }
}

// WithDefaultModel sets the model choice used when a request names none.
func WithDefaultModel(model string) ServerOption {
	return func(s *Server) { s.defaultModel = model }
}

// Server holds the chi router, conversation store, pipeline, and preview cache.
type Server struct {
	router       chi.Router
	store        *Store
	pipe         Processor
	previews     *render.PreviewCache
	log          *ConversationLog
	authToken    string
	defaultModel string
}

// NewServer creates a Server with all routes configured.
func NewServer(store *Store, pipe Processor, opts ...ServerOption) *Server {
	s := &Server{
		store:    store,
		pipe:     pipe,
		previews: render.NewPreviewCache(10 * time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.authToken != "" {
		r.Use(s.requireAuth)
	}

	r.Post("/conversations", s.handleCreateConversation)
	r.Get("/conversations/{id}", s.handleGetConversation)
	r.Post("/conversations/{id}/messages", s.handleEditRequest)
	r.Post("/conversations/{id}/undo", s.handleUndo)
	r.Post("/conversations/{id}/redo", s.handleRedo)
	r.Get("/conversations/{id}/preview", s.handlePreview)
	r.Get("/conversations/{id}/export", s.handleExport)

	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requireAuth rejects requests without the configured bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token != s.authToken {
			writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
