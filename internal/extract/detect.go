package extract

import (
	"strings"

	"github.com/vedlang/shabd/internal/models"
)

// spanishIndicators are common Spanish words and phrases used for cheap
// offline language detection.
var spanishIndicators = []string{"hola", "cómo", "qué", "por qué", "gracias", "adiós", "está", "buenos"}

// DetectLanguage guesses the language of text without network access:
// any Devanagari rune means Hindi, a Spanish-specific character or indicator
// word means Spanish, anything else defaults to English. Intended for the
// offline path only; online requests rely on the translation provider's
// detection.
func DetectLanguage(text string) string {
	if text == "" {
		return models.LangEnglish
	}
	for _, r := range text {
		if r >= 0x0900 && r <= 0x097F {
			return models.LangHindi
		}
	}
	lower := strings.ToLower(text)
	if strings.ContainsAny(lower, "áéíóúñ¿¡") {
		return models.LangSpanish
	}
	for _, indicator := range spanishIndicators {
		if strings.Contains(lower, indicator) {
			return models.LangSpanish
		}
	}
	return models.LangEnglish
}
