package archiver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"tvscribe/internal/config"
	"tvscribe/internal/logging"
	"tvscribe/internal/objstore"
	"tvscribe/internal/queue"
	"tvscribe/internal/testsupport"
)

func newTestWatcher(t *testing.T, cfg *config.Config, tasks *queue.Bounded, storage objstore.Client) *Watcher {
	t.Helper()
	w := NewWatcher(cfg, cfg.Channels[0], tasks, storage, context.Background(), logging.NewNop())
	w.scanEvery = 10 * time.Millisecond
	w.settleEvery = 2 * time.Millisecond
	w.convert = func(_ context.Context, src, dst string) error {
		return os.WriteFile(dst, []byte("wav"), 0o644)
	}
	t.Cleanup(w.Stop)
	return w
}

func writeSegment(t *testing.T, cfg *config.Config, channel string, hhmmss string) string {
	t.Helper()
	name := fmt.Sprintf("%s_20260825T%s.ts", channel, hhmmss)
	path := filepath.Join(cfg.ArchiveDirFor(channel), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("segmentdata"), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func drainTasks(t *testing.T, tasks *queue.Bounded, n int, timeout time.Duration) []queue.Task {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	out := make([]queue.Task, 0, n)
	for i := 0; i < n; i++ {
		task, err := tasks.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		out = append(out, task)
	}
	return out
}

func TestWatcherEnqueuesInChronologicalOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tasks := queue.NewBounded(8)
	storage := objstore.NewMemory()
	w := newTestWatcher(t, cfg, tasks, storage)

	// Written out of lexical order on purpose; the sorted scan must fix it.
	writeSegment(t, cfg, "itv", "120016")
	writeSegment(t, cfg, "itv", "120000")
	writeSegment(t, cfg, "itv", "120008")

	if err := w.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	got := drainTasks(t, tasks, 3, 5*time.Second)
	prev := time.Time{}
	for i, task := range got {
		if !task.Start.After(prev) {
			t.Fatalf("task %d start %v not after %v", i, task.Start, prev)
		}
		prev = task.Start
	}
	if got[0].Start != time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) {
		t.Fatalf("first task should carry the filename timestamp, got %v", got[0].Start)
	}

	// Replication should have been scheduled for every queued segment.
	w.WaitUploads()
	if keys := storage.Keys(); len(keys) != 3 {
		t.Fatalf("expected 3 uploads, got %v", keys)
	}
}

func TestWatcherQueueFullDropsAudioAndRetries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithQueueSize(2))
	tasks := queue.NewBounded(2)
	w := newTestWatcher(t, cfg, tasks, nil)

	writeSegment(t, cfg, "itv", "120000")
	writeSegment(t, cfg, "itv", "120008")
	third := writeSegment(t, cfg, "itv", "120016")

	if err := w.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	// Wait until the queue saturates.
	deadline := time.Now().Add(5 * time.Second)
	for tasks.Len() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("queue never filled")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Give the scan loop a few passes at the third segment.
	time.Sleep(100 * time.Millisecond)

	if tasks.Len() != 2 {
		t.Fatalf("expected exactly 2 queued tasks, got %d", tasks.Len())
	}
	thirdAudio := filepath.Join(cfg.AudioDirFor("itv"), "itv_20260825T120016.wav")
	if _, err := os.Stat(thirdAudio); !os.IsNotExist(err) {
		t.Fatal("dropped task's audio file should be removed")
	}
	if w.isProcessed(third) {
		t.Fatal("dropped segment must stay unprocessed for retry")
	}

	// Free a slot; the retried segment must eventually be queued.
	drainTasks(t, tasks, 1, time.Second)
	retried := drainTasks(t, tasks, 2, 5*time.Second)
	last := retried[len(retried)-1]
	if last.Start != time.Date(2026, 8, 25, 12, 0, 16, 0, time.UTC) {
		t.Fatalf("expected retried third segment, got %v", last.Start)
	}
}

func TestWatcherConversionFailureLeavesSegmentUnprocessed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tasks := queue.NewBounded(4)
	w := newTestWatcher(t, cfg, tasks, nil)

	var fail atomic.Bool
	fail.Store(true)
	w.convert = func(_ context.Context, src, dst string) error {
		if fail.Load() {
			return fmt.Errorf("converter exploded")
		}
		return os.WriteFile(dst, []byte("wav"), 0o644)
	}

	name := writeSegment(t, cfg, "itv", "120000")
	if err := w.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if w.isProcessed(name) || tasks.Len() != 0 {
		t.Fatal("failed conversion must not mark or enqueue the segment")
	}

	fail.Store(false)
	got := drainTasks(t, tasks, 1, 5*time.Second)
	if got[0].Channel != "itv" {
		t.Fatalf("unexpected task %+v", got[0])
	}
}

func TestWatcherStartClearsStaleAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tasks := queue.NewBounded(4)
	w := newTestWatcher(t, cfg, tasks, nil)

	stale := filepath.Join(cfg.AudioDirFor("itv"), "itv_20260101T000000.wav")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := w.Start(); err != nil {
		t.Fatalf("start watcher: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale audio should be cleared on start")
	}
}

func TestWatcherStartStopIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w := newTestWatcher(t, cfg, queue.NewBounded(1), nil)

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.Running() {
		t.Fatal("watcher should be running")
	}
	w.Stop()
	w.Stop()
	if w.Running() {
		t.Fatal("watcher should be stopped")
	}
}
