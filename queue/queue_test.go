package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueProcessesJob(t *testing.T) {
	q := New(10, 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	var processed int32
	done := make(chan struct{})
	ok := q.Enqueue(Job{
		ID:   "job1",
		Path: "rec1.wav",
		Work: func(ctx context.Context) error {
			atomic.AddInt32(&processed, 1)
			close(done)
			return nil
		},
	})
	if !ok {
		t.Fatalf("expected enqueue to succeed")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job did not complete")
	}
	if atomic.LoadInt32(&processed) != 1 {
		t.Fatalf("job not processed")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := New(1, 0, 100*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	ok := q.Enqueue(Job{ID: "slow", Path: "a.wav", Work: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})
	if !ok {
		t.Fatalf("expected first enqueue to succeed")
	}

	if ok := q.Enqueue(Job{ID: "drop", Path: "b.wav", Work: func(ctx context.Context) error { return nil }}); ok {
		t.Fatalf("expected enqueue to be rejected when queue is full")
	}
	if got := q.Stats().Dropped; got != 1 {
		t.Fatalf("expected 1 dropped job, got %d", got)
	}
}

func TestQueueEnqueueBeforeStartFails(t *testing.T) {
	q := New(1, 1, time.Second)
	if q.Enqueue(Job{ID: "early", Work: func(ctx context.Context) error { return nil }}) {
		t.Fatal("enqueue before start should fail")
	}
}

func TestQueueRecoversFromPanicAndCountsFailure(t *testing.T) {
	q := New(4, 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	failDone := make(chan struct{})
	q.Enqueue(Job{ID: "fail", Work: func(ctx context.Context) error {
		return errors.New("boom")
	}, OnFinish: func(err error) {
		if err == nil {
			t.Error("expected error passed to OnFinish")
		}
		close(failDone)
	}})
	select {
	case <-failDone:
	case <-time.After(time.Second):
		t.Fatal("failing job did not finish")
	}

	q.Enqueue(Job{ID: "panic", Work: func(ctx context.Context) error {
		panic("boom")
	}})
	okDone := make(chan struct{})
	q.Enqueue(Job{ID: "after", Work: func(ctx context.Context) error {
		close(okDone)
		return nil
	}})
	select {
	case <-okDone:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panic")
	}

	stats := q.Stats()
	if stats.Failed < 1 {
		t.Fatalf("expected failed count >= 1, got %d", stats.Failed)
	}
}

func TestQueueStopDrainsPending(t *testing.T) {
	q := New(4, 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	var done atomic.Int32
	for i := 0; i < 3; i++ {
		q.Enqueue(Job{ID: "j", Work: func(ctx context.Context) error {
			done.Add(1)
			return nil
		}})
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	q.Stop(stopCtx)
	if got := done.Load(); got != 3 {
		t.Fatalf("expected 3 jobs drained, got %d", got)
	}
	if q.Enqueue(Job{ID: "late", Work: func(ctx context.Context) error { return nil }}) {
		t.Fatal("enqueue after stop should fail")
	}
}
