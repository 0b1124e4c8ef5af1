package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/store"
)

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	resp, err := s.chat.Chat(r.Context(), req.SessionID, req.Text)
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type translateRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	ts, source, err := s.chat.Translate(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("translate failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"translations": ts,
		"source":       source,
	})
}

// handleSync triggers a manual reconciliation pass. While the provider is
// unreachable the backlog cannot move, so the request is refused rather than
// silently doing nothing.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if !s.prober.Online() {
		s.respondJSON(w, http.StatusServiceUnavailable, models.SyncResult{
			Status:         "error",
			RemainingCount: s.pending.Count(),
		})
		return
	}
	res := s.pipeline.Drain(r.Context())
	s.respondJSON(w, http.StatusOK, models.SyncResult{
		Status:         "success",
		ProcessedCount: res.Processed,
		FailedCount:    len(res.Failures),
		RemainingCount: res.Remaining,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	validated, err := s.validated.CountValidated(r.Context())
	if err != nil {
		s.logger.Error("status: count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.Stats{
		PendingCount:   s.pending.Count(),
		ValidatedCount: validated,
		Online:         s.prober.Online(),
	})
}

func (s *Server) handleListTranslations(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	limit := queryInt(r, "limit", 100)
	recs, err := s.validated.List(r.Context(), language, limit)
	if err != nil {
		s.logger.Error("list translations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.ValidatedRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"translations": recs,
		"count":        len(recs),
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		s.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	recs, err := s.validated.ListConversations(r.Context(), sessionID, queryInt(r, "limit", 50))
	if err != nil {
		s.logger.Error("list conversations failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.ConversationRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversations": recs,
		"count":         len(recs),
	})
}

func (s *Server) handleWordDetail(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	language := r.URL.Query().Get("language")
	if language == "" {
		// Try each supported language until one matches. Only a clean miss
		// in every language is a 404; a storage failure is not.
		for _, lang := range models.Languages {
			rec, err := s.validated.Get(r.Context(), word, lang)
			if err == nil {
				s.respondJSON(w, http.StatusOK, rec)
				return
			}
			if !errors.Is(err, store.ErrNotFound) {
				s.logger.Error("word detail failed", zap.Error(err))
				s.respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		s.respondError(w, http.StatusNotFound, "word not found")
		return
	}
	rec, err := s.validated.Get(r.Context(), word, language)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "word not found")
			return
		}
		s.logger.Error("word detail failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleWordSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search not enabled")
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	hits, err := s.index.Search(r.Context(), query, queryInt(r, "limit", 20))
	if err != nil {
		s.logger.Error("word search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": hits,
		"count":   len(hits),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
