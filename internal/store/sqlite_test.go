package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vedlang/shabd/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func validRecord(word, lang string) *models.ValidatedRecord {
	return &models.ValidatedRecord{
		OriginalWord:     word,
		DetectedLanguage: lang,
		TranslationEn:    "water",
		TranslationEs:    "agua",
		TranslationHi:    "पानी",
		MeaningEn:        "Clear liquid essential for life",
		PartOfSpeech:     "noun",
		Synonyms:         []string{"aqua"},
		Source:           models.SourceTranscription,
	}
}

func TestUpsertAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := validRecord("agua", "es")
	if err := s.Upsert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if !rec.IsValidated {
		t.Error("upsert should mark the record validated")
	}
	if rec.ValidatedAt.IsZero() {
		t.Error("upsert should stamp validated_at")
	}

	got, err := s.Get(ctx, "agua", "es")
	if err != nil {
		t.Fatal(err)
	}
	if got.TranslationHi != "पानी" {
		t.Errorf("hi translation = %q", got.TranslationHi)
	}
	if len(got.Synonyms) != 1 || got.Synonyms[0] != "aqua" {
		t.Errorf("synonyms = %v", got.Synonyms)
	}
}

func TestUpsertOverwritesByKey(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	first := validRecord("agua", "es")
	if err := s.Upsert(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := validRecord("agua", "es")
	second.MeaningEn = "updated meaning"
	if err := s.Upsert(ctx, second); err != nil {
		t.Fatal(err)
	}

	count, err := s.CountValidated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (re-upsert must not duplicate)", count)
	}
	got, err := s.Get(ctx, "agua", "es")
	if err != nil {
		t.Fatal(err)
	}
	if got.MeaningEn != "updated meaning" {
		t.Errorf("meaning = %q", got.MeaningEn)
	}
}

func TestUpsertValidationGate(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.ValidatedRecord)
	}{
		{"missing hindi", func(r *models.ValidatedRecord) { r.TranslationHi = "" }},
		{"whitespace english", func(r *models.ValidatedRecord) { r.TranslationEn = "   " }},
		{"offline marker", func(r *models.ValidatedRecord) { r.TranslationEs = "agua [offline]" }},
		{"failure marker", func(r *models.ValidatedRecord) { r.TranslationEn = "Translation failed" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord("agua", "es")
			tc.mutate(rec)
			err := s.Upsert(ctx, rec)
			if !errors.Is(err, ErrInvalidTranslation) {
				t.Fatalf("err = %v, want ErrInvalidTranslation", err)
			}
		})
	}

	count, err := s.CountValidated(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("rejected records must not reach the table, count = %d", count)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.Get(context.Background(), "missing", "en")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListByLanguage(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, w := range []struct{ word, lang string }{
		{"agua", "es"}, {"manzana", "es"}, {"water", "en"},
	} {
		if err := s.Upsert(ctx, validRecord(w.word, w.lang)); err != nil {
			t.Fatal(err)
		}
	}

	spanish, err := s.List(ctx, "es", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(spanish) != 2 {
		t.Errorf("es records = %d, want 2", len(spanish))
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all records = %d, want 3", len(all))
	}
}

func TestConversationLog(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, input := range []string{"hola", "gracias"} {
		rec := &models.ConversationRecord{
			SessionID:         "sess-1",
			UserInput:         input,
			InputLanguage:     "es",
			ResponseEn:        "reply",
			TranslationSource: "online",
		}
		if err := s.AppendConversation(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if rec.ID == 0 {
			t.Error("append should backfill the record id")
		}
	}
	if err := s.AppendConversation(ctx, &models.ConversationRecord{SessionID: "sess-2", UserInput: "hi"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListConversations(ctx, "sess-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].UserInput != "gracias" {
		t.Errorf("first record = %q, want newest", got[0].UserInput)
	}
}
