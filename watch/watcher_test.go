package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"meetscribe/queue"
)

type recordingIngester struct {
	mu    sync.Mutex
	paths []string
	done  chan string
}

func newRecordingIngester() *recordingIngester {
	return &recordingIngester{done: make(chan string, 16)}
}

func (r *recordingIngester) IngestFile(ctx context.Context, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.done <- path
	return nil
}

func TestWatcherEnqueuesDroppedAudio(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.New(8, 1, time.Second)
	q.Start(ctx)
	ingester := newRecordingIngester()
	w := New(dir, q, ingester)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	path := filepath.Join(dir, "recording.wav")
	if err := os.WriteFile(path, []byte("fake"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case got := <-ingester.done:
		if got != path {
			t.Fatalf("ingested %s, want %s", got, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("dropped file was not ingested")
	}
}

func TestWatcherIgnoresNonAudio(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.New(8, 1, time.Second)
	q.Start(ctx)
	ingester := newRecordingIngester()
	w := New(dir, q, ingester)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case got := <-ingester.done:
		t.Fatalf("non-audio file was ingested: %s", got)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestBackfillEnqueuesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.wav", "b.pcm", "skip.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := queue.New(8, 1, time.Second)
	q.Start(ctx)
	ingester := newRecordingIngester()
	w := New(dir, q, ingester)
	if err := w.Backfill(ctx); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case p := <-ingester.done:
			got[filepath.Base(p)] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 2 ingested files, got %v", got)
		}
	}
	if !got["a.wav"] || !got["b.pcm"] {
		t.Fatalf("unexpected ingested set %v", got)
	}
	select {
	case p := <-ingester.done:
		t.Fatalf("unexpected extra ingest %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}
