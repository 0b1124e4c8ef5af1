// Package search provides a Bleve index over validated vocabulary records.
package search

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/vedlang/shabd/internal/models"
)

// vocabDoc is the indexed shape of a validated record. Translations and
// meanings are searchable; the language code is a keyword filter field.
type vocabDoc struct {
	Word     string `json:"word"`
	Language string `json:"language"`
	En       string `json:"en"`
	Es       string `json:"es"`
	Hi       string `json:"hi"`
	Meaning  string `json:"meaning"`
}

// Result is one search hit.
type Result struct {
	Word     string  `json:"word"`
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

// VocabIndex indexes validated words for full-text lookup across all
// supported languages.
type VocabIndex struct {
	index bleve.Index
}

// NewVocabIndex creates or opens a Bleve index at path. An existing index is
// reused so records indexed in earlier runs stay searchable.
func NewVocabIndex(path string) (*VocabIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open vocab index: %w", openErr)
		}
		return &VocabIndex{index: index}, nil
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	// Standard analyzer (lowercase + tokenize, no stemming) so a query for
	// the exact word form always matches.
	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = standard.Name
	for _, field := range []string{"word", "en", "es", "hi", "meaning"} {
		docMapping.AddFieldMappingsAt(field, textMapping)
	}
	docMapping.AddFieldMappingsAt("language", bleve.NewKeywordFieldMapping())
	im.DefaultMapping = docMapping

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create vocab index: %w", err)
	}
	return &VocabIndex{index: index}, nil
}

func docID(word, language string) string {
	return word + "|" + language
}

// Index adds or updates a record in the index.
func (v *VocabIndex) Index(ctx context.Context, rec *models.ValidatedRecord) error {
	doc := vocabDoc{
		Word:     rec.OriginalWord,
		Language: rec.DetectedLanguage,
		En:       rec.TranslationEn,
		Es:       rec.TranslationEs,
		Hi:       rec.TranslationHi,
		Meaning:  rec.MeaningEn,
	}
	return v.index.Index(docID(rec.OriginalWord, rec.DetectedLanguage), doc)
}

// Search runs a match query across word, translations and meaning, returning
// up to limit hits ordered by score.
func (v *VocabIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 20
	}
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	req.Fields = []string{"word", "language"}

	res, err := v.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("vocab search failed: %w", err)
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &Result{Score: hit.Score}
		if w, ok := hit.Fields["word"].(string); ok {
			r.Word = w
		}
		if l, ok := hit.Fields["language"].(string); ok {
			r.Language = l
		}
		out = append(out, r)
	}
	return out, nil
}

// Delete removes a record from the index.
func (v *VocabIndex) Delete(ctx context.Context, word, language string) error {
	return v.index.Delete(docID(word, language))
}

// Count returns the number of indexed records.
func (v *VocabIndex) Count() (uint64, error) {
	return v.index.DocCount()
}

// Close closes the index.
func (v *VocabIndex) Close() error {
	return v.index.Close()
}
