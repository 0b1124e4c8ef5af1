package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/extract"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/offline"
	"github.com/vedlang/shabd/internal/store"
	"github.com/vedlang/shabd/internal/translate"
)

func newTestService(t *testing.T, stub *translate.Stub, online bool) (*Service, *store.PendingStore, *store.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()
	pending, err := store.NewPendingStore(filepath.Join(dir, "unvalidated.json"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	db, err := store.NewSQLiteStore(filepath.Join(dir, "words.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	svc := NewService(stub, offline.NewTranslator(db, nil), connectivity.Static(online),
		extract.NewExtractor(nil), pending, db, zap.NewNop())
	return svc, pending, db
}

func TestChatOnline(t *testing.T) {
	stub := &translate.Stub{Responses: map[string]*models.TranslationSet{
		"quiero agua": {DetectedLang: "es", En: "I want water", Es: "quiero agua", Hi: "मुझे पानी चाहिए"},
	}}
	svc, pending, db := newTestService(t, stub, true)
	ctx := context.Background()

	resp, err := svc.Chat(ctx, "", "quiero agua")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Source != SourceOnline {
		t.Errorf("source = %q", resp.Source)
	}
	if resp.SessionID == "" {
		t.Error("blank session id should be replaced")
	}
	if !strings.Contains(resp.Reply, "I want water") || !strings.Contains(resp.Reply, "quiero agua") {
		t.Errorf("reply = %q", resp.Reply)
	}
	// Online turns do not queue words.
	if pending.Count() != 0 {
		t.Errorf("pending = %d, want 0", pending.Count())
	}

	recs, err := db.ListConversations(ctx, resp.SessionID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].TranslationSource != SourceOnline {
		t.Errorf("conversation log = %+v", recs)
	}
}

func TestChatOfflineQueuesWords(t *testing.T) {
	svc, pending, _ := newTestService(t, &translate.Stub{}, false)

	resp, err := svc.Chat(context.Background(), "sess-1", "manzana roja")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Source != SourceOffline {
		t.Errorf("source = %q", resp.Source)
	}
	if resp.SessionID != "sess-1" {
		t.Errorf("session id = %q", resp.SessionID)
	}

	words := map[string]bool{}
	for _, e := range pending.ListPending() {
		words[e.Word] = true
		if !e.IsOffline {
			t.Errorf("entry %q should be marked offline", e.Word)
		}
		if e.Source != models.SourceChat {
			t.Errorf("entry %q source = %q, want %q", e.Word, e.Source, models.SourceChat)
		}
	}
	if !words["manzana"] || !words["roja"] {
		t.Errorf("queued words = %v", words)
	}
}

func TestTranslateFallsBackOnProviderError(t *testing.T) {
	// Probe says online, but the provider errors on every call.
	stub := &translate.Stub{Err: translate.ErrUnavailable}
	svc, _, _ := newTestService(t, stub, true)

	ts, source, err := svc.Translate(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if source != SourceOffline {
		t.Errorf("source = %q, want offline fallback", source)
	}
	// "hello" is in the offline phrase table.
	if ts.Es != "hola" {
		t.Errorf("es = %q", ts.Es)
	}
}

func TestSessionContinuity(t *testing.T) {
	stub := &translate.Stub{Responses: map[string]*models.TranslationSet{
		"hello":   {DetectedLang: "en", En: "hello", Es: "hola", Hi: "नमस्ते"},
		"goodbye": {DetectedLang: "en", En: "goodbye", Es: "adiós", Hi: "अलविदा"},
	}}
	svc, _, db := newTestService(t, stub, true)
	ctx := context.Background()

	first, err := svc.Chat(ctx, "", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Chat(ctx, first.SessionID, "goodbye"); err != nil {
		t.Fatal(err)
	}

	recs, err := db.ListConversations(ctx, first.SessionID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Errorf("conversation log = %d records, want 2", len(recs))
	}
}
