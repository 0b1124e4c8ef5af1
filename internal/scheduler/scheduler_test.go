package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vedlang/shabd/internal/connectivity"
	"github.com/vedlang/shabd/internal/models"
	"github.com/vedlang/shabd/internal/pipeline"
	"github.com/vedlang/shabd/internal/store"
	"github.com/vedlang/shabd/internal/translate"
)

func newTestPipeline(t *testing.T, stub *translate.Stub) (*pipeline.Pipeline, *store.PendingStore) {
	t.Helper()
	dir := t.TempDir()
	pending, err := store.NewPendingStore(filepath.Join(dir, "unvalidated.json"), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	validated, err := store.NewSQLiteStore(filepath.Join(dir, "words.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { validated.Close() })
	return pipeline.New(pending, validated, nil, stub, nil, 2, zap.NewNop()), pending
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSchedulerDrainsWhenOnline(t *testing.T) {
	stub := &translate.Stub{Responses: map[string]*models.TranslationSet{
		"agua": {DetectedLang: "es", En: "water", Es: "agua", Hi: "पानी"},
	}}
	p, pending := newTestPipeline(t, stub)
	if _, err := pending.InsertIfAbsent("agua", "es", "", models.SourceTranscription, false); err != nil {
		t.Fatal(err)
	}

	s := New(p, connectivity.Static(true), 20*time.Millisecond, zap.NewNop())
	s.Start()
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return pending.Count() == 0 })
}

func TestSchedulerSkipsWhenOffline(t *testing.T) {
	stub := &translate.Stub{Responses: map[string]*models.TranslationSet{
		"agua": {DetectedLang: "es", En: "water", Es: "agua", Hi: "पानी"},
	}}
	p, pending := newTestPipeline(t, stub)
	if _, err := pending.InsertIfAbsent("agua", "es", "", models.SourceTranscription, false); err != nil {
		t.Fatal(err)
	}

	s := New(p, connectivity.Static(false), 20*time.Millisecond, zap.NewNop())
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if pending.Count() != 1 {
		t.Error("offline scheduler must not drain the backlog")
	}
	if stub.Calls("agua") != 0 {
		t.Error("offline scheduler must not call the provider")
	}
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	p, _ := newTestPipeline(t, &translate.Stub{})
	s := New(p, connectivity.Static(true), time.Hour, zap.NewNop())

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	// Restart works after a stop.
	s.Start()
	s.Stop()
}
