// Package meaning provides optional dictionary enrichment for words:
// definitions, part of speech, synonyms, and example sentences.
package meaning

import (
	"context"

	"github.com/vedlang/shabd/internal/models"
)

// Provider looks up a comprehensive meaning for a word. Lookup failure is not
// an error condition; implementations degrade to emptier bundles rather than
// blocking enrichment.
type Provider interface {
	ComprehensiveMeaning(ctx context.Context, word, language string, ts *models.TranslationSet) (*models.MeaningBundle, error)
}

// Stub returns a fixed bundle for every word. Used in tests.
type Stub struct {
	Bundle *models.MeaningBundle
	Err    error
}

// ComprehensiveMeaning returns the configured bundle.
func (s *Stub) ComprehensiveMeaning(ctx context.Context, word, language string, ts *models.TranslationSet) (*models.MeaningBundle, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Bundle == nil {
		return &models.MeaningBundle{
			Meanings:     map[string]string{},
			PartOfSpeech: map[string]string{},
		}, nil
	}
	return s.Bundle, nil
}
