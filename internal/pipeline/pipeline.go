// Package pipeline promotes pending words into the validated store.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vedlang/shabd/internal/meaning"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/search"
	"github.com/vedlang/shabd/internal/store"
	"github.com/vedlang/shabd/internal/translate"
	"github.com/vedlang/shabd/pkg/utils"
)

// Failure records one entry that could not be promoted in this pass.
type Failure struct {
	Entry  models.PendingEntry
	Reason string
}

// Result summarizes one reconciliation pass.
type Result struct {
	Processed int
	Failures  []Failure
	Remaining int
}

// Pipeline enriches pending entries one at a time and promotes the ones that
// pass the validation gate. A failing entry never blocks the rest of the
// batch; it stays pending for a future pass.
type Pipeline struct {
	pending       *store.PendingStore
	validated     *store.SQLiteStore
	index         *search.VocabIndex
	translator    translate.Translator
	meanings      meaning.Provider
	logger        *zap.Logger
	maxConcurrent int
}

// New creates a pipeline. index and meanings may be nil; promotion then skips
// search indexing and meaning enrichment respectively.
func New(pending *store.PendingStore, validated *store.SQLiteStore, index *search.VocabIndex,
	translator translate.Translator, meanings meaning.Provider, maxConcurrent int, logger *zap.Logger) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		pending:       pending,
		validated:     validated,
		index:         index,
		translator:    translator,
		meanings:      meanings,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Drain processes the whole pending backlog.
func (p *Pipeline) Drain(ctx context.Context) *Result {
	return p.ProcessBatch(ctx, p.pending.ListPending())
}

// ProcessBatch promotes entries concurrently, bounded by maxConcurrent. Each
// entry succeeds or fails on its own; the result counts both and reports the
// backlog size left afterwards.
func (p *Pipeline) ProcessBatch(ctx context.Context, entries []models.PendingEntry) *Result {
	result := &Result{}
	if len(entries) == 0 {
		result.Remaining = p.pending.Count()
		return result
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			err := p.processOne(gctx, entry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, Failure{Entry: entry, Reason: err.Error()})
			} else {
				result.Processed++
			}
			// Individual failures are recorded, never propagated, so the
			// group keeps going.
			return nil
		})
	}
	_ = g.Wait()

	result.Remaining = p.pending.Count()
	p.logResult(result)
	return result
}

// processOne runs the full enrichment for a single entry. On success the
// entry is removed from the pending store; on failure it is left in place.
func (p *Pipeline) processOne(ctx context.Context, entry models.PendingEntry) error {
	word := strings.TrimSpace(entry.Word)
	if word == "" {
		// Defective entry. Drop it so it does not fail forever.
		if err := p.pending.Remove(entry); err != nil {
			p.logger.Error("failed to drop empty pending entry", zap.Error(err))
		}
		return errors.New("empty word dropped")
	}

	ts, err := p.translator.TranslateToAll(ctx, word)
	if err != nil {
		return err
	}

	rec := &models.ValidatedRecord{
		OriginalWord:     word,
		DetectedLanguage: detectedLanguage(entry, ts),
		TranslationEn:    ts.En,
		TranslationEs:    ts.Es,
		TranslationHi:    ts.Hi,
		FrequencyScore:   1.0,
		Context:          entry.Context,
		Source:           entrySource(entry),
		IsOffline:        entry.IsOffline,
		CreatedAt:        entry.Timestamp,
	}

	if p.meanings != nil {
		bundle, mErr := p.meanings.ComprehensiveMeaning(ctx, word, rec.DetectedLanguage, ts)
		if mErr != nil {
			p.logger.Warn("meaning enrichment failed, promoting without meanings",
				zap.String("word", word), zap.Error(mErr))
		} else if bundle != nil {
			rec.MeaningEn = bundle.Meanings[models.LangEnglish]
			rec.MeaningEs = bundle.Meanings[models.LangSpanish]
			rec.MeaningHi = bundle.Meanings[models.LangHindi]
			rec.PartOfSpeech = bundle.PartOfSpeech[models.LangEnglish]
			rec.ExampleSentence = bundle.ExampleSentence
			rec.Synonyms = bundle.Synonyms
		}
	}

	if err := p.validated.Upsert(ctx, rec); err != nil {
		// Gate rejections and storage errors both leave the entry pending.
		return err
	}

	if err := p.pending.Remove(entry); err != nil {
		// The record is validated; a pending-store hiccup here means the
		// entry gets re-promoted next pass, which Upsert tolerates.
		p.logger.Error("failed to remove promoted entry from pending store",
			zap.String("word", word), zap.Error(err))
	}

	if p.index != nil {
		if err := p.index.Index(ctx, rec); err != nil {
			p.logger.Warn("failed to index promoted word",
				zap.String("word", word), zap.Error(err))
		}
	}

	p.logger.Info("word promoted",
		zap.String("word", word),
		zap.String("language", rec.DetectedLanguage))
	return nil
}

// entrySource preserves where the word was captured. Entries written before
// the source field existed default to transcription.
func entrySource(entry models.PendingEntry) string {
	if entry.Source != "" {
		return entry.Source
	}
	return models.SourceTranscription
}

// detectedLanguage prefers the provider's detection, falling back to the
// language recorded at capture time.
func detectedLanguage(entry models.PendingEntry, ts *models.TranslationSet) string {
	if ts.DetectedLang != "" {
		return ts.DetectedLang
	}
	return entry.Language
}

func (p *Pipeline) logResult(result *Result) {
	if len(result.Failures) == 0 {
		p.logger.Info("reconciliation pass complete",
			zap.Int("processed", result.Processed),
			zap.Int("remaining", result.Remaining))
		return
	}
	reasons := make([]string, len(result.Failures))
	for i, f := range result.Failures {
		reasons[i] = f.Entry.Word + ": " + f.Reason
	}
	p.logger.Warn("reconciliation pass complete with failures",
		zap.Int("processed", result.Processed),
		zap.Int("failed", len(result.Failures)),
		zap.Int("remaining", result.Remaining),
		zap.Strings("sample", utils.Sample(reasons, 3)))
}
