// Package store provides the durable pending and validated word stores.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vedlang/shabd/internal/models"
	"go.uber.org/zap"
)

// PendingStore is a durable, dedupe-on-insert store of words awaiting
// translation. It is backed by a flat JSON file; every mutation is flushed
// before the call returns, and a corrupted file resets to an empty list
// instead of failing startup. Safe for concurrent use.
type PendingStore struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	entries []models.PendingEntry
}

// NewPendingStore opens or creates the pending file at path. Parent
// directories are created if they do not exist. An unreadable or malformed
// file is reset to an empty list (logged, not fatal); only an unwritable
// location is an error.
func NewPendingStore(path string, logger *zap.Logger) (*PendingStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create pending store directory: %w", err)
		}
	}

	s := &PendingStore{path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run.
	case err != nil:
		return nil, fmt.Errorf("failed to read pending store: %w", err)
	default:
		if jsonErr := json.Unmarshal(data, &s.entries); jsonErr != nil {
			logger.Error("pending store corrupted, resetting to empty",
				zap.String("path", path), zap.Error(jsonErr))
			s.entries = nil
		}
	}

	if err := s.flushLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// InsertIfAbsent adds a pending entry for (word, language) unless one already
// exists, returning whether an entry was inserted. The check-and-insert is
// atomic with respect to other writers.
func (s *PendingStore) InsertIfAbsent(word, language, context, source string, isOffline bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Word == word && e.Language == language && e.Status == models.StatusPending {
			return false, nil
		}
	}
	s.entries = append(s.entries, models.PendingEntry{
		Word:      word,
		Language:  language,
		Context:   context,
		Source:    source,
		Timestamp: time.Now(),
		IsOffline: isOffline,
		Status:    models.StatusPending,
	})
	if err := s.flushLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return false, err
	}
	return true, nil
}

// ListPending returns a copy of all pending entries in insertion order.
func (s *PendingStore) ListPending() []models.PendingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PendingEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Status == models.StatusPending {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of pending entries.
func (s *PendingStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.Status == models.StatusPending {
			n++
		}
	}
	return n
}

// Remove deletes the pending entry matching entry's (word, language) key.
// Removing an absent entry is a no-op. Used by the enrichment pipeline after
// a successful promotion or to drop a permanently defective entry.
func (s *PendingStore) Remove(entry models.PendingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.Word == entry.Word && e.Language == entry.Language && e.Status == models.StatusPending {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return s.flushLocked()
		}
	}
	return nil
}

// Requeue ensures entry is present for a future pass, preserving its
// original timestamp. A still-present entry is left untouched.
func (s *PendingStore) Requeue(entry models.PendingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Word == entry.Word && e.Language == entry.Language && e.Status == models.StatusPending {
			return nil
		}
	}
	entry.Status = models.StatusPending
	s.entries = append(s.entries, entry)
	if err := s.flushLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return err
	}
	return nil
}

// flushLocked writes the full entry list durably via a temp file + rename so
// a crash mid-write never leaves a truncated store. Caller holds mu.
func (s *PendingStore) flushLocked() error {
	entries := s.entries
	if entries == nil {
		entries = []models.PendingEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pending entries: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write pending store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace pending store: %w", err)
	}
	return nil
}
