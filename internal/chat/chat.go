// Package chat implements the conversational surface: trilingual replies,
// conversation logging, and offline word capture.
package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/extract"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/offline"
	"github.com/vedlang/shabd/internal/store"
	"github.com/vedlang/shabd/internal/translate"
)

// Translation sources reported in responses and the conversation log.
const (
	SourceOnline  = "online"
	SourceOffline = "offline"
)

// Response is one chat turn.
type Response struct {
	SessionID     string                 `json:"session_id"`
	Reply         string                 `json:"reply"`
	InputLanguage string                 `json:"input_language"`
	Translations  *models.TranslationSet `json:"translations"`
	Source        string                 `json:"source"`
}

// Service answers chat and translation requests, preferring the online
// provider and degrading to the offline path when the probe says the network
// is down or the provider errors.
type Service struct {
	online    translate.Translator
	offline   *offline.Translator
	prober    connectivity.Prober
	extractor *extract.Extractor
	pending   *store.PendingStore
	log       *store.SQLiteStore
	logger    *zap.Logger
}

// NewService creates a chat service. pending and log may be nil in tests;
// offline word capture and conversation logging are then skipped.
func NewService(online translate.Translator, off *offline.Translator, prober connectivity.Prober,
	extractor *extract.Extractor, pending *store.PendingStore, log *store.SQLiteStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		online:    online,
		offline:   off,
		prober:    prober,
		extractor: extractor,
		pending:   pending,
		log:       log,
		logger:    logger,
	}
}

// Translate resolves text into all supported languages and reports which path
// answered. An online provider error falls back to the offline path rather
// than failing the request.
func (s *Service) Translate(ctx context.Context, text string) (*models.TranslationSet, string, error) {
	if s.prober.Online() {
		ts, err := s.online.TranslateToAll(ctx, text)
		if err == nil {
			return ts, SourceOnline, nil
		}
		s.logger.Warn("online translation failed, falling back to offline path",
			zap.Error(err))
	}
	ts, err := s.offline.TranslateToAll(ctx, text)
	if err != nil {
		return nil, SourceOffline, err
	}
	return ts, SourceOffline, nil
}

// Chat handles one user turn: translate the input, format a trilingual reply,
// log the exchange, and, when answered offline, queue the input's words for
// later enrichment. A blank sessionID starts a new session.
func (s *Service) Chat(ctx context.Context, sessionID, text string) (*Response, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ts, source, err := s.Translate(ctx, text)
	if err != nil {
		return nil, err
	}

	if source == SourceOffline {
		s.queueWords(text, ts.DetectedLang)
	}

	resp := &Response{
		SessionID:     sessionID,
		Reply:         formatReply(ts),
		InputLanguage: ts.DetectedLang,
		Translations:  ts,
		Source:        source,
	}

	if s.log != nil {
		rec := &models.ConversationRecord{
			SessionID:         sessionID,
			UserInput:         text,
			InputLanguage:     ts.DetectedLang,
			ResponseEn:        ts.En,
			ResponseEs:        ts.Es,
			ResponseHi:        ts.Hi,
			TranslationSource: source,
		}
		if err := s.log.AppendConversation(ctx, rec); err != nil {
			s.logger.Error("failed to log conversation", zap.Error(err))
		}
	}
	return resp, nil
}

// queueWords captures the input's words for the reconciliation backlog.
func (s *Service) queueWords(text, language string) {
	if s.pending == nil || s.extractor == nil {
		return
	}
	for _, c := range s.extractor.Candidates(text, language, "") {
		if _, err := s.pending.InsertIfAbsent(c.Word, c.Language, c.Context, models.SourceChat, true); err != nil {
			s.logger.Error("failed to queue chat word",
				zap.String("word", c.Word), zap.Error(err))
		}
	}
}

// formatReply renders the trilingual answer shown to the user.
func formatReply(ts *models.TranslationSet) string {
	return fmt.Sprintf("English: %s\nEspañol: %s\nहिन्दी: %s", ts.En, ts.Es, ts.Hi)
}
