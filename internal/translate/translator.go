// Package translate provides the translation collaborator boundary: an
// interface, an HTTP provider, and a shared retry policy.
package translate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vedlang/shabd/internal/models"
)

// ErrUnavailable wraps transient provider failures (network errors, non-200
// responses). Callers requeue and retry on a later pass.
var ErrUnavailable = errors.New("translation provider unavailable")

// Translator detects the language of text and translates it into all
// supported languages. Implementations must be safe to retry.
type Translator interface {
	TranslateToAll(ctx context.Context, text string) (*models.TranslationSet, error)
}

// Stub is a scripted Translator for tests. Responses are keyed by input text;
// FailFirst makes the first call for each text fail before succeeding,
// simulating a transient provider outage.
type Stub struct {
	Responses map[string]*models.TranslationSet
	Err       error
	FailFirst bool

	mu    sync.Mutex
	calls map[string]int
}

// TranslateToAll returns the scripted response for text.
func (s *Stub) TranslateToAll(ctx context.Context, text string) (*models.TranslationSet, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[text]++
	n := s.calls[text]
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if s.FailFirst && n == 1 {
		return nil, fmt.Errorf("%w: simulated outage", ErrUnavailable)
	}
	ts, ok := s.Responses[text]
	if !ok {
		return nil, fmt.Errorf("%w: no scripted response for %q", ErrUnavailable, text)
	}
	out := *ts
	if out.Original == "" {
		out.Original = text
	}
	return &out, nil
}

// Calls returns how many times text was requested.
func (s *Stub) Calls(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[text]
}
