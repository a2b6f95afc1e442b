package recognize

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meetscribe/audio"
)

type fakeRecognizer struct {
	mu       sync.Mutex
	inUse    bool
	resets   atomic.Int64
	maxInUse *atomic.Int64
	active   *atomic.Int64
	result   string
	err      error
}

func (f *fakeRecognizer) Reset() { f.resets.Add(1) }

func (f *fakeRecognizer) Recognize(ctx context.Context, seg audio.Segment, language string) (string, error) {
	f.mu.Lock()
	if f.inUse {
		f.mu.Unlock()
		panic("recognizer used concurrently")
	}
	f.inUse = true
	f.mu.Unlock()

	if f.active != nil {
		cur := f.active.Add(1)
		for {
			prev := f.maxInUse.Load()
			if cur <= prev || f.maxInUse.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		f.active.Add(-1)
	}

	f.mu.Lock()
	f.inUse = false
	f.mu.Unlock()
	return f.result, f.err
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var active, maxInUse atomic.Int64
	pool, err := NewPool(2, func() Recognizer {
		return &fakeRecognizer{active: &active, maxInUse: &maxInUse, result: "ok"}
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pool.Recognize(context.Background(), audio.Segment{PCM: []byte{0, 0}}, "th-TH"); err != nil {
				t.Errorf("recognize: %v", err)
			}
		}()
	}
	wg.Wait()
	if got := maxInUse.Load(); got > 2 {
		t.Fatalf("pool exceeded bound: %d concurrent", got)
	}
}

func TestPoolReturnsInstanceOnFailure(t *testing.T) {
	boom := errors.New("boom")
	pool, err := NewPool(1, func() Recognizer {
		return &fakeRecognizer{err: boom}
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := pool.Recognize(ctx, audio.Segment{PCM: []byte{0, 0}}, "th-TH")
		cancel()
		if !errors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v (instance not returned?)", i, err)
		}
	}
}

func TestPoolResetsOnCheckout(t *testing.T) {
	fake := &fakeRecognizer{result: "ok"}
	pool, err := NewPool(1, func() Recognizer { return fake })
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := pool.Recognize(context.Background(), audio.Segment{PCM: []byte{0, 0}}, "th-TH"); err != nil {
			t.Fatalf("recognize: %v", err)
		}
	}
	if got := fake.resets.Load(); got != 4 {
		t.Fatalf("expected 4 resets, got %d", got)
	}
}

func TestPoolCheckoutHonorsContext(t *testing.T) {
	pool, err := NewPool(1, func() Recognizer { return &fakeRecognizer{result: "ok"} })
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	// Drain the only instance.
	r := <-pool.instances
	defer func() { pool.instances <- r }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Recognize(ctx, audio.Segment{PCM: []byte{0, 0}}, "th-TH")
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError on checkout timeout, got %v", err)
	}
}
