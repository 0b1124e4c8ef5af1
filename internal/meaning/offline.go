package meaning

import (
	"fmt"
	"strings"

	"github.com/vedlang/shabd/internal/models"
)

// offlineDictionary covers a handful of common words so enrichment still
// produces something when the dictionary API is unreachable.
var offlineDictionary = map[string]dictEntry{
	"hello": {Definition: "A greeting", PartOfSpeech: "interjection", Synonyms: []string{"hi", "hey"}},
	"thank": {Definition: "Express gratitude", PartOfSpeech: "verb", Synonyms: []string{"appreciate"}},
	"water": {Definition: "Clear liquid essential for life", PartOfSpeech: "noun", Synonyms: []string{"aqua"}},
	"eat":   {Definition: "Put food into the mouth and chew", PartOfSpeech: "verb", Synonyms: []string{"consume"}},
	"book":  {Definition: "A set of written or printed pages", PartOfSpeech: "noun", Synonyms: []string{"volume"}},
}

func lookupOffline(word string) *dictEntry {
	if entry, ok := offlineDictionary[strings.ToLower(word)]; ok {
		out := entry
		return &out
	}
	return nil
}

// builtinExamples holds canned example sentences for the offline dictionary words.
var builtinExamples = map[string]string{
	"hello": "Hello, how are you today?",
	"thank": "I want to thank you for your help.",
	"water": "Please bring me a glass of water.",
	"eat":   "I like to eat healthy food.",
	"book":  "I'm reading an interesting book.",
}

// exampleSentence returns a canned or templated example sentence for word.
func exampleSentence(word, language string) string {
	if ex, ok := builtinExamples[strings.ToLower(word)]; ok {
		return ex
	}
	switch language {
	case models.LangSpanish:
		return fmt.Sprintf("Uso la palabra '%s' en mis conversaciones diarias.", word)
	case models.LangHindi:
		return fmt.Sprintf("मैं अपनी दैनिक बातचीत में '%s' शब्द का प्रयोग करता हूं।", word)
	default:
		return fmt.Sprintf("I use the word '%s' in my daily conversations.", word)
	}
}
