// Package models defines core data structures for pending words, validated
// records, and conversations.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Supported language codes. Every validated record carries a translation for
// each of these.
const (
	LangEnglish = "en"
	LangSpanish = "es"
	LangHindi   = "hi"
)

// Languages lists the supported language codes in canonical order.
var Languages = []string{LangEnglish, LangSpanish, LangHindi}

// Entry status values for the pending store.
const (
	StatusPending   = "pending"
	StatusValidated = "validated"
)

// Record sources.
const (
	SourceTranscription = "transcription"
	SourceChat          = "chat"
	SourceOffline       = "offline"
)

// WordCandidate is a word extracted from transcription or chat text. It is
// transient; persisting it turns it into a PendingEntry.
type WordCandidate struct {
	Word          string `json:"word"`
	Language      string `json:"language"`
	Context       string `json:"context"`
	AudioRef      string `json:"audio_ref,omitempty"`
	CapturedWhile string `json:"captured_while,omitempty"`
}

// PendingEntry is a word awaiting translation enrichment. At most one pending
// entry exists per (word, language) pair.
type PendingEntry struct {
	Word      string    `json:"word"`
	Language  string    `json:"language"`
	Context   string    `json:"context"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	IsOffline bool      `json:"is_offline"`
	Status    string    `json:"status"`
}

// Key returns the dedupe key for the entry.
func (e *PendingEntry) Key() string {
	return e.Word + "|" + e.Language
}

// TranslationSet holds a text and its translations into all supported
// languages, as returned by the translation collaborator.
type TranslationSet struct {
	Original     string `json:"original"`
	DetectedLang string `json:"detected_lang"`
	En           string `json:"en"`
	Es           string `json:"es"`
	Hi           string `json:"hi"`
}

// Get returns the translation for lang, or "" for an unknown code.
func (t *TranslationSet) Get(lang string) string {
	switch lang {
	case LangEnglish:
		return t.En
	case LangSpanish:
		return t.Es
	case LangHindi:
		return t.Hi
	}
	return ""
}

// Set stores text as the translation for lang. Unknown codes are ignored.
func (t *TranslationSet) Set(lang, text string) {
	switch lang {
	case LangEnglish:
		t.En = text
	case LangSpanish:
		t.Es = text
	case LangHindi:
		t.Hi = text
	}
}

// errorMarkers are substrings that identify placeholder or failed
// translations. A translation containing any of them must never be promoted
// to the validated store.
var errorMarkers = []string{
	"[offline]",
	"[translation failed]",
	"translation failed",
	"failed to translate",
	"error",
	"none",
}

// Validate reports whether the set is complete enough to promote: every
// supported language must have a non-blank translation free of error markers.
func (t *TranslationSet) Validate() error {
	for _, lang := range Languages {
		text := t.Get(lang)
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("missing %s translation", lang)
		}
		lower := strings.ToLower(text)
		for _, marker := range errorMarkers {
			if strings.Contains(lower, marker) {
				return fmt.Errorf("%s translation contains error marker %q", lang, marker)
			}
		}
	}
	return nil
}

// MeaningBundle holds optional dictionary enrichment for a word. All fields
// may be empty; meaning lookup failures degrade to an empty bundle.
type MeaningBundle struct {
	Meanings        map[string]string `json:"meanings"`
	PartOfSpeech    map[string]string `json:"part_of_speech"`
	Synonyms        []string          `json:"synonyms"`
	ExampleSentence string            `json:"example_sentence"`
}

// ValidatedRecord is a fully enriched word, keyed by
// (original_word, detected_language).
type ValidatedRecord struct {
	ID               int64     `json:"id" db:"id"`
	OriginalWord     string    `json:"original_word" db:"original_word"`
	DetectedLanguage string    `json:"detected_language" db:"detected_language"`
	TranslationEn    string    `json:"translation_en" db:"translation_en"`
	TranslationEs    string    `json:"translation_es" db:"translation_es"`
	TranslationHi    string    `json:"translation_hi" db:"translation_hi"`
	MeaningEn        string    `json:"meaning_en,omitempty" db:"meaning_en"`
	MeaningEs        string    `json:"meaning_es,omitempty" db:"meaning_es"`
	MeaningHi        string    `json:"meaning_hi,omitempty" db:"meaning_hi"`
	PartOfSpeech     string    `json:"part_of_speech,omitempty" db:"part_of_speech"`
	ExampleSentence  string    `json:"example_sentence,omitempty" db:"example_sentence"`
	Synonyms         []string  `json:"synonyms,omitempty" db:"synonyms"`
	FrequencyScore   float64   `json:"frequency_score" db:"frequency_score"`
	Context          string    `json:"context,omitempty" db:"context"`
	Source           string    `json:"source" db:"source"`
	IsValidated      bool      `json:"is_validated" db:"is_validated"`
	IsOffline        bool      `json:"is_offline" db:"is_offline"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	ValidatedAt      time.Time `json:"validated_at" db:"validated_at"`
}

// Translations returns the record's translations as a TranslationSet.
func (r *ValidatedRecord) Translations() *TranslationSet {
	return &TranslationSet{
		Original:     r.OriginalWord,
		DetectedLang: r.DetectedLanguage,
		En:           r.TranslationEn,
		Es:           r.TranslationEs,
		Hi:           r.TranslationHi,
	}
}
