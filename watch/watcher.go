// Package watch monitors a drop directory for recorded audio files and
// feeds them through recognition into the running utterance log.
package watch

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"meetscribe/queue"
)

// Ingester transcribes one dropped file and merges the result.
type Ingester interface {
	IngestFile(ctx context.Context, path string) error
}

// Watcher monitors the ingest directory and enqueues recognition jobs
// for files dropped into it.
type Watcher struct {
	dir      string
	jobs     *queue.Queue
	ingester Ingester
}

// New builds a watcher over dir dispatching to the given queue.
func New(dir string, jobs *queue.Queue, ingester Ingester) *Watcher {
	return &Watcher{dir: dir, jobs: jobs, ingester: ingester}
}

// Start begins watching. It returns after registering the directory;
// events are handled in a background goroutine until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && isAudio(evt.Name) {
					w.enqueue(ctx, evt.Name)
				}
			case err := <-watcher.Errors:
				log.Printf("watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(w.dir)
}

// Backfill enqueues ingest for files already present in the directory.
func (w *Watcher) Backfill(ctx context.Context) error {
	entries, err := filepath.Glob(filepath.Join(w.dir, "*"))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if isAudio(e) {
			w.enqueue(ctx, e)
		}
	}
	return nil
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	w.jobs.Enqueue(queue.Job{
		ID:   uuid.NewString(),
		Path: path,
		Work: func(jobCtx context.Context) error {
			return w.ingester.IngestFile(jobCtx, path)
		},
	})
}

func isAudio(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".pcm", ".mp3", ".m4a", ".flac", ".ogg":
		return true
	default:
		return false
	}
}
