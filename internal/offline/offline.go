// Package offline provides a degraded translation path used when the network
// probe reports no connectivity. It answers from a small phrase table and the
// validated store cache; anything unknown gets an offline-marked placeholder
// that the validation gate will reject, so offline output never pollutes the
// validated vocabulary.
package offline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/extract"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/store"
)

// Marker prefixes every placeholder produced for text the offline path cannot
// translate. It is one of the validation gate's error markers.
const Marker = "[offline]"

// phrase holds a known utterance in all supported languages, keyed by its
// lowercase English form.
type phrase struct {
	En string
	Es string
	Hi string
}

var phrases = []phrase{
	{"hello", "hola", "नमस्ते"},
	{"thank you", "gracias", "धन्यवाद"},
	{"good morning", "buenos días", "सुप्रभात"},
	{"good night", "buenas noches", "शुभ रात्रि"},
	{"how are you", "cómo estás", "आप कैसे हैं"},
	{"yes", "sí", "हाँ"},
	{"no", "no", "नहीं"},
	{"please", "por favor", "कृपया"},
	{"water", "agua", "पानी"},
	{"food", "comida", "खाना"},
	{"help", "ayuda", "मदद"},
	{"goodbye", "adiós", "अलविदा"},
}

// Translator answers translation requests without network access.
type Translator struct {
	cache  *store.SQLiteStore
	logger *zap.Logger
}

// NewTranslator creates an offline translator. cache may be nil; validated
// records are then not consulted.
func NewTranslator(cache *store.SQLiteStore, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{cache: cache, logger: logger}
}

// TranslateToAll resolves text from the phrase table, then the validated
// store, then falls back to offline-marked placeholders. It never returns an
// error; the caller distinguishes real translations from placeholders via the
// validation gate.
func (t *Translator) TranslateToAll(ctx context.Context, text string) (*models.TranslationSet, error) {
	lang := extract.DetectLanguage(text)
	normalized := strings.ToLower(strings.TrimSpace(text))

	if p := matchPhrase(normalized, lang); p != nil {
		return &models.TranslationSet{
			Original:     text,
			DetectedLang: lang,
			En:           p.En,
			Es:           p.Es,
			Hi:           p.Hi,
		}, nil
	}

	if t.cache != nil {
		if rec, err := t.cache.Get(ctx, normalized, lang); err == nil {
			t.logger.Debug("offline translation served from validated cache",
				zap.String("word", normalized), zap.String("language", lang))
			return rec.Translations(), nil
		}
	}

	placeholder := fmt.Sprintf("%s %s", Marker, text)
	ts := &models.TranslationSet{Original: text, DetectedLang: lang}
	for _, l := range models.Languages {
		if l == lang {
			ts.Set(l, text)
		} else {
			ts.Set(l, placeholder)
		}
	}
	return ts, nil
}

// matchPhrase looks text up in the phrase table using the column for lang.
func matchPhrase(text, lang string) *phrase {
	for i := range phrases {
		p := &phrases[i]
		var known string
		switch lang {
		case models.LangSpanish:
			known = p.Es
		case models.LangHindi:
			known = p.Hi
		default:
			known = p.En
		}
		if strings.EqualFold(text, known) {
			return p
		}
	}
	return nil
}
