// Package server provides the HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/chat"
	"github.com/vedlang/shabd/internal/config"
	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/pipeline"
	"github.com/vedlang/shabd/internal/search"
	"github.com/vedlang/shabd/internal/store"
)

// Server is the HTTP server for the word lifecycle API.
type Server struct {
	chat      *chat.Service
	pipeline  *pipeline.Pipeline
	pending   *store.PendingStore
	validated *store.SQLiteStore
	index     *search.VocabIndex
	prober    connectivity.Prober
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. index may be nil;
// the word search endpoint then reports 501.
func NewServer(
	chatSvc *chat.Service,
	p *pipeline.Pipeline,
	pending *store.PendingStore,
	validated *store.SQLiteStore,
	index *search.VocabIndex,
	prober connectivity.Prober,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:      chatSvc,
		pipeline:  p,
		pending:   pending,
		validated: validated,
		index:     index,
		prober:    prober,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/chat/text", s.handleChat)
	r.Post("/api/translate", s.handleTranslate)
	r.Post("/api/sync", s.handleSync)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/translations", s.handleListTranslations)
	r.Get("/api/conversations", s.handleListConversations)
	r.Get("/api/words/search", s.handleWordSearch)
	r.Get("/api/words/{word}", s.handleWordDetail)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
