package meaning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/translate"
	"go.uber.org/zap"
)

// DefaultAPIBase is the free English dictionary API. Spanish and Hindi have
// no dictionary source; their meanings are translated from the English one.
const DefaultAPIBase = "https://api.dictionaryapi.dev/api/v2/entries/en/"

// Service resolves meanings from the dictionary API with an offline built-in
// dictionary fallback, translating the English meaning into the other
// supported languages when a translator is available.
type Service struct {
	apiBase    string
	client     *http.Client
	translator translate.Translator
	logger     *zap.Logger
}

// NewService creates a meaning service. translator may be nil, in which case
// Spanish/Hindi meanings fall back to the English text.
func NewService(apiBase string, timeout time.Duration, translator translate.Translator, logger *zap.Logger) *Service {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		apiBase:    apiBase,
		client:     &http.Client{Timeout: timeout},
		translator: translator,
		logger:     logger,
	}
}

// ComprehensiveMeaning builds a bundle for word. The English meaning comes
// from the dictionary API, then the built-in dictionary, then a template
// generated from the translation. Other languages get a translated English
// meaning on a best-effort basis. Never fails hard: missing sources produce
// emptier bundles.
func (s *Service) ComprehensiveMeaning(ctx context.Context, word, language string, ts *models.TranslationSet) (*models.MeaningBundle, error) {
	bundle := &models.MeaningBundle{
		Meanings:     make(map[string]string),
		PartOfSpeech: make(map[string]string),
	}

	englishWord := word
	if language != models.LangEnglish && ts != nil && ts.En != "" {
		englishWord = ts.En
	}

	entry, err := s.lookupOnline(ctx, englishWord)
	if err != nil {
		s.logger.Debug("dictionary API lookup failed, using offline dictionary",
			zap.String("word", englishWord), zap.Error(err))
		entry = lookupOffline(englishWord)
	}
	if entry != nil {
		bundle.Meanings[models.LangEnglish] = entry.Definition
		bundle.PartOfSpeech[models.LangEnglish] = entry.PartOfSpeech
		bundle.Synonyms = entry.Synonyms
		bundle.ExampleSentence = entry.Example
	} else if ts != nil && ts.En != "" {
		bundle.Meanings[models.LangEnglish] = generatedMeaning(word, ts.En, language)
		bundle.PartOfSpeech[models.LangEnglish] = "unknown"
	}

	if en := bundle.Meanings[models.LangEnglish]; en != "" {
		s.translateMeaning(ctx, bundle, en)
	}
	if bundle.ExampleSentence == "" {
		bundle.ExampleSentence = exampleSentence(word, language)
	}
	return bundle, nil
}

// translateMeaning fills es/hi meanings from the English one. Translation
// failure falls back to the English text.
func (s *Service) translateMeaning(ctx context.Context, bundle *models.MeaningBundle, englishMeaning string) {
	if s.translator == nil {
		bundle.Meanings[models.LangSpanish] = englishMeaning
		bundle.Meanings[models.LangHindi] = englishMeaning
		return
	}
	translated, err := s.translator.TranslateToAll(ctx, englishMeaning)
	if err != nil {
		s.logger.Debug("meaning translation failed, falling back to English",
			zap.Error(err))
		bundle.Meanings[models.LangSpanish] = englishMeaning
		bundle.Meanings[models.LangHindi] = englishMeaning
		return
	}
	for _, lang := range []string{models.LangSpanish, models.LangHindi} {
		if text := translated.Get(lang); text != "" {
			bundle.Meanings[lang] = text
		} else {
			bundle.Meanings[lang] = englishMeaning
		}
	}
}

// dictEntry is the distilled form of one dictionary lookup.
type dictEntry struct {
	Definition   string
	PartOfSpeech string
	Example      string
	Synonyms     []string
}

// apiEntry mirrors the relevant parts of the dictionary API response.
type apiEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string   `json:"definition"`
			Example    string   `json:"example"`
			Synonyms   []string `json:"synonyms"`
		} `json:"definitions"`
		Synonyms []string `json:"synonyms"`
	} `json:"meanings"`
}

func (s *Service) lookupOnline(ctx context.Context, word string) (*dictEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+word, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dictionary request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dictionary body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("decode dictionary response: %w", err)
	}
	if len(entries) == 0 || len(entries[0].Meanings) == 0 {
		return nil, fmt.Errorf("no meanings for %q", word)
	}

	m := entries[0].Meanings[0]
	out := &dictEntry{PartOfSpeech: m.PartOfSpeech, Synonyms: m.Synonyms}
	if len(m.Definitions) > 0 {
		out.Definition = m.Definitions[0].Definition
		out.Example = m.Definitions[0].Example
		if len(out.Synonyms) == 0 {
			out.Synonyms = m.Definitions[0].Synonyms
		}
	}
	if out.Definition == "" {
		return nil, fmt.Errorf("empty definition for %q", word)
	}
	return out, nil
}

func generatedMeaning(word, englishTranslation, sourceLang string) string {
	if sourceLang == models.LangEnglish || englishTranslation == word {
		return fmt.Sprintf("'%s'", word)
	}
	return fmt.Sprintf("The %s word '%s' means '%s' in English.", languageName(sourceLang), word, englishTranslation)
}

func languageName(code string) string {
	switch code {
	case models.LangEnglish:
		return "English"
	case models.LangSpanish:
		return "Spanish"
	case models.LangHindi:
		return "Hindi"
	}
	return code
}
