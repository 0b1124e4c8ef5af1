package translate

import (
	"context"
	"time"

	"github.com/vedlang/shabd/internal/models"
	"go.uber.org/zap"
)

// Retrying wraps a Translator with a fixed-delay retry policy. This is the
// single retry point at the provider boundary; the pipeline's own requeue
// cycle retries on a much longer, schedule-driven cadence.
type Retrying struct {
	inner    Translator
	attempts int
	delay    time.Duration
	logger   *zap.Logger
}

// WithRetry wraps inner so each TranslateToAll makes up to attempts tries
// with delay between them.
func WithRetry(inner Translator, attempts int, delay time.Duration, logger *zap.Logger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{inner: inner, attempts: attempts, delay: delay, logger: logger}
}

// TranslateToAll retries the wrapped translator, honoring ctx between attempts.
func (r *Retrying) TranslateToAll(ctx context.Context, text string) (*models.TranslationSet, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		ts, err := r.inner.TranslateToAll(ctx, text)
		if err == nil {
			return ts, nil
		}
		lastErr = err
		r.logger.Warn("translation attempt failed",
			zap.String("text", text),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == r.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return nil, lastErr
}
