// Package extract turns raw transcription or chat text into normalized word
// candidates for the pending store.
package extract

import (
	"strings"
	"unicode"

	"github.com/vedlang/shabd/internal/models"
)

// minWordLength is the shortest candidate kept, in runes.
const minWordLength = 3

// stopWords holds per-language function words that are never worth enriching.
// Membership is checked across all sets regardless of the detected language,
// so e.g. Spanish "la" in English-tagged text is still suppressed.
var stopWords = map[string]map[string]struct{}{
	models.LangEnglish: toSet("the", "and", "for", "are", "was", "but", "not",
		"you", "all", "can", "had", "has", "have", "this", "that", "with"),
	models.LangSpanish: toSet("los", "las", "una", "unos", "unas", "que",
		"por", "para", "con", "del", "ser", "son", "como", "más", "pero"),
	models.LangHindi: toSet("और", "है", "से", "का", "एक", "में", "की", "को",
		"यह", "वह", "हैं", "था", "थी", "पर", "भी"),
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Extractor produces word candidates from text.
type Extractor struct {
	languages []string
}

// NewExtractor creates an extractor covering the given language codes.
// Languages without a built-in stop-word set contribute nothing to filtering.
func NewExtractor(languages []string) *Extractor {
	if len(languages) == 0 {
		languages = models.Languages
	}
	return &Extractor{languages: append([]string(nil), languages...)}
}

// Extract splits text on whitespace and returns the normalized words worth
// enriching: lower-cased, punctuation-trimmed, longer than two runes, purely
// alphabetic in a single script, and not a stop word in any configured
// language. Duplicates collapse; result order is first occurrence, but
// callers must not rely on it.
func (e *Extractor) Extract(text, language string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range strings.Fields(text) {
		word := normalize(token)
		if word == "" {
			continue
		}
		if e.isStopWord(word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

// Candidates wraps Extract, attaching language and context to each word.
func (e *Extractor) Candidates(text, language, audioRef string) []models.WordCandidate {
	words := e.Extract(text, language)
	cands := make([]models.WordCandidate, 0, len(words))
	for _, w := range words {
		cands = append(cands, models.WordCandidate{
			Word:     w,
			Language: language,
			Context:  text,
			AudioRef: audioRef,
		})
	}
	return cands
}

func (e *Extractor) isStopWord(word string) bool {
	for _, lang := range e.languages {
		if set, ok := stopWords[lang]; ok {
			if _, hit := set[word]; hit {
				return true
			}
		}
	}
	return false
}

// normalize trims surrounding punctuation, lower-cases, and returns "" if the
// token is too short or not alphabetic in a single script.
func normalize(token string) string {
	word := strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	word = strings.ToLower(word)
	runes := []rune(word)
	if len(runes) < minWordLength {
		return ""
	}
	if !isAlphabetic(runes) {
		return ""
	}
	return word
}

// isAlphabetic reports whether all runes are letters drawn from one script:
// Latin (covering the extended-Latin range used by Spanish) or Devanagari.
// Mixed-script and digit-bearing tokens are rejected.
func isAlphabetic(runes []rune) bool {
	latin, devanagari := 0, 0
	for _, r := range runes {
		// Script membership alone admits Devanagari digits (U+0966-U+096F),
		// so each rune must also be a letter or a combining vowel mark.
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			return false
		}
		switch {
		case unicode.Is(unicode.Latin, r):
			latin++
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		default:
			return false
		}
	}
	return latin == 0 || devanagari == 0
}
