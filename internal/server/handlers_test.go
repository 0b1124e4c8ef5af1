package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/chat"
	"github.com/vedlang/shabd/internal/config"
	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/extract"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/offline"
	"github.com/vedlang/shabd/internal/pipeline"
	"github.com/vedlang/shabd/internal/store"
	"github.com/vedlang/shabd/internal/translate"
)

type testEnv struct {
	server    *Server
	handler   http.Handler
	pending   *store.PendingStore
	validated *store.SQLiteStore
	stub      *translate.Stub
	online    connectivity.Static
}

func newTestEnv(t *testing.T, stub *translate.Stub, online bool) *testEnv {
	t.Helper()
	dir := t.TempDir()
	pending, err := store.NewPendingStore(filepath.Join(dir, "unvalidated.json"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	validated, err := store.NewSQLiteStore(filepath.Join(dir, "words.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { validated.Close() })

	prober := connectivity.Static(online)
	extractor := extract.NewExtractor(nil)
	chatSvc := chat.NewService(stub, offline.NewTranslator(validated, nil), prober,
		extractor, pending, validated, zap.NewNop())
	p := pipeline.New(pending, validated, nil, stub, nil, 2, zap.NewNop())

	srv := NewServer(chatSvc, p, pending, validated, nil, prober,
		&config.ServerConfig{Host: "127.0.0.1", Port: 0}, zap.NewNop())
	return &testEnv{
		server:    srv,
		handler:   srv.Router(),
		pending:   pending,
		validated: validated,
		stub:      stub,
		online:    prober,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func aguaSet() *models.TranslationSet {
	return &models.TranslationSet{DetectedLang: "es", En: "water", Es: "agua", Hi: "पानी"}
}

func TestChatEndpoint(t *testing.T) {
	stub := &translate.Stub{Responses: map[string]*models.TranslationSet{
		"hola": {DetectedLang: "es", En: "hello", Es: "hola", Hi: "नमस्ते"},
	}}
	env := newTestEnv(t, stub, true)

	w := env.do(t, http.MethodPost, "/api/chat/text", chatRequest{Text: "hola"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp chat.Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Source != chat.SourceOnline || resp.SessionID == "" {
		t.Errorf("response = %+v", resp)
	}
}

func TestChatRejectsEmptyText(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	w := env.do(t, http.MethodPost, "/api/chat/text", chatRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSyncEndpointDrainsBacklog(t *testing.T) {
	stub := &translate.Stub{Responses: map[string]*models.TranslationSet{"agua": aguaSet()}}
	env := newTestEnv(t, stub, true)
	if _, err := env.pending.InsertIfAbsent("agua", "es", "", models.SourceTranscription, false); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodPost, "/api/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res models.SyncResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "success" || res.ProcessedCount != 1 || res.RemainingCount != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestSyncEndpointRefusesOffline(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, false)
	if _, err := env.pending.InsertIfAbsent("agua", "es", "", models.SourceTranscription, false); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodPost, "/api/sync", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
	var res models.SyncResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Status != "error" || res.RemainingCount != 1 {
		t.Errorf("result = %+v", res)
	}
	if env.pending.Count() != 1 {
		t.Error("offline sync must leave the backlog untouched")
	}
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	if _, err := env.pending.InsertIfAbsent("agua", "es", "", models.SourceTranscription, false); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats models.Stats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.PendingCount != 1 || stats.ValidatedCount != 0 || !stats.Online {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWordDetailEndpoint(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	rec := &models.ValidatedRecord{
		OriginalWord:     "agua",
		DetectedLanguage: "es",
		TranslationEn:    "water",
		TranslationEs:    "agua",
		TranslationHi:    "पानी",
	}
	if err := env.validated.Upsert(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/api/words/agua?language=es", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got models.ValidatedRecord
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.TranslationEn != "water" {
		t.Errorf("record = %+v", got)
	}

	// Lookup without an explicit language still finds it.
	w = env.do(t, http.MethodGet, "/api/words/agua", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/words/missing?language=en", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}

	// A clean miss in every language is still a 404.
	w = env.do(t, http.MethodGet, "/api/words/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestWordDetailStorageFailureIsNotAMiss(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	env.validated.Close()

	w := env.do(t, http.MethodGet, "/api/words/agua", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestListTranslationsEndpoint(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	ctx := context.Background()
	for _, w := range []struct{ word, lang string }{{"agua", "es"}, {"water", "en"}} {
		rec := &models.ValidatedRecord{
			OriginalWord: w.word, DetectedLanguage: w.lang,
			TranslationEn: "water", TranslationEs: "agua", TranslationHi: "पानी",
		}
		if err := env.validated.Upsert(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	w := env.do(t, http.MethodGet, "/api/translations?language=es", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 {
		t.Errorf("count = %d, want 1", out.Count)
	}
}

func TestConversationsEndpointRequiresSession(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	w := env.do(t, http.MethodGet, "/api/conversations", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestWordSearchWithoutIndex(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	w := env.do(t, http.MethodGet, "/api/words/search?q=water", nil)
	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &translate.Stub{}, true)
	w := env.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
