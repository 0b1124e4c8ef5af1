// Package ingest watches a drop directory for transcript files and feeds
// their words into the pending store.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/extract"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/store"
)

const debounceDelay = 400 * time.Millisecond

// Transcript is one transcription result dropped by the speech recognizer.
// A file holds either a single object or an array of them.
type Transcript struct {
	Text      string `json:"text"`
	Language  string `json:"language"`
	AudioFile string `json:"audio_file,omitempty"`
}

// Watcher tails a drop directory for .json transcript files. Each file is
// parsed, its words queued for enrichment, and the file removed so the
// directory stays a queue rather than an archive.
type Watcher struct {
	dir       string
	extractor *extract.Extractor
	pending   *store.PendingStore
	logger    *zap.Logger

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	debounceMap map[string]*time.Timer
	done        chan struct{}
	started     bool
	stopOnce    sync.Once
}

// NewWatcher creates a transcript watcher over dir.
func NewWatcher(dir string, extractor *extract.Extractor, pending *store.PendingStore, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:         dir,
		extractor:   extractor,
		pending:     pending,
		logger:      logger,
		debounceMap: make(map[string]*time.Timer),
		done:        make(chan struct{}),
	}
}

// Start creates the drop directory if needed, processes files already
// present, and begins watching for new ones.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("failed to create transcript directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = watcher
	w.started = true
	w.mu.Unlock()

	w.ProcessExisting()
	go w.run()
	w.logger.Info("transcript watcher started", zap.String("dir", w.dir))
	return nil
}

// ProcessExisting handles transcript files already sitting in the directory,
// left over from a previous run.
func (w *Watcher) ProcessExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("failed to list transcript directory", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTranscript(entry.Name()) {
			continue
		}
		w.processFile(filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isTranscript(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.debounceProcess(ev.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("transcript watcher error", zap.Error(err))
			}
		}
	}
}

// debounceProcess delays handling so a file still being written settles
// before it is parsed.
func (w *Watcher) debounceProcess(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.debounceMap[path]; ok {
		t.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
		w.processFile(path)
	})
}

// processFile parses one transcript file, queues its words, and deletes the
// file. A malformed file is deleted too, with an error log, so it cannot wedge
// the queue.
func (w *Watcher) processFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("failed to read transcript", zap.String("path", path), zap.Error(err))
		}
		return
	}

	transcripts, err := parseTranscripts(data)
	if err != nil {
		w.logger.Error("malformed transcript file dropped",
			zap.String("path", path), zap.Error(err))
		_ = os.Remove(path)
		return
	}

	queued := 0
	for _, tr := range transcripts {
		lang := tr.Language
		if lang == "" {
			lang = extract.DetectLanguage(tr.Text)
		}
		for _, c := range w.extractor.Candidates(tr.Text, lang, tr.AudioFile) {
			inserted, err := w.pending.InsertIfAbsent(c.Word, c.Language, c.Context, models.SourceTranscription, false)
			if err != nil {
				w.logger.Error("failed to queue word", zap.String("word", c.Word), zap.Error(err))
				continue
			}
			if inserted {
				queued++
			}
		}
	}

	if err := os.Remove(path); err != nil {
		w.logger.Warn("failed to remove processed transcript", zap.String("path", path), zap.Error(err))
	}
	w.logger.Info("transcript processed",
		zap.String("path", path),
		zap.Int("segments", len(transcripts)),
		zap.Int("queued", queued))
}

// parseTranscripts accepts a single transcript object or an array.
func parseTranscripts(data []byte) ([]Transcript, error) {
	var many []Transcript
	if err := json.Unmarshal(data, &many); err == nil {
		return many, nil
	}
	var one Transcript
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []Transcript{one}, nil
}

func isTranscript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Stop stops the watcher and cancels pending debounce timers.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.debounceMap {
		t.Stop()
		delete(w.debounceMap, path)
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
