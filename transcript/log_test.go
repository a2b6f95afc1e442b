package transcript

import (
	"fmt"
	"sync"
	"testing"
)

func TestAppendSuppressesImmediateDuplicate(t *testing.T) {
	log := NewLog(5)
	if !log.Append("สวัสดีครับ") {
		t.Fatal("first append should be accepted")
	}
	if log.Append("สวัสดีครับ") {
		t.Fatal("immediate duplicate should be dropped")
	}
	if got := log.Len(); got != 1 {
		t.Fatalf("expected 1 utterance, got %d", got)
	}
}

func TestAppendAllowsNonAdjacentRepeat(t *testing.T) {
	log := NewLog(5)
	log.Append("a")
	log.Append("b")
	if !log.Append("a") {
		t.Fatal("repeat separated by other text should be accepted")
	}
	if got := log.Len(); got != 3 {
		t.Fatalf("expected 3 utterances, got %d", got)
	}
}

func TestAppendRejectsEmpty(t *testing.T) {
	log := NewLog(5)
	if log.Append("   ") {
		t.Fatal("whitespace-only text should be dropped")
	}
	if got := log.Len(); got != 0 {
		t.Fatalf("expected empty log, got %d", got)
	}
}

func TestRecentIsSuffixOfLog(t *testing.T) {
	log := NewLog(3)
	for i := 0; i < 7; i++ {
		log.Append(fmt.Sprintf("u%d", i))
	}
	recent := log.Recent()
	if len(recent) != 3 {
		t.Fatalf("expected window of 3, got %d", len(recent))
	}
	all := log.Snapshot()
	tail := all[len(all)-3:]
	for i, u := range tail {
		if recent[i] != u.Text {
			t.Fatalf("recent[%d]=%s, want %s", i, recent[i], u.Text)
		}
	}
}

func TestRecentShorterThanWindow(t *testing.T) {
	log := NewLog(5)
	log.Append("only")
	if got := log.Recent(); len(got) != 1 || got[0] != "only" {
		t.Fatalf("unexpected recent window %v", got)
	}
}

func TestConcurrentAppendKeepsAllDistinct(t *testing.T) {
	log := NewLog(5)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				log.Append(fmt.Sprintf("g%d-%d", g, i))
			}
		}(g)
	}
	wg.Wait()
	if got := log.Len(); got != 400 {
		t.Fatalf("expected 400 utterances, got %d", got)
	}
	if got := log.Recent(); len(got) != 5 {
		t.Fatalf("expected window of 5, got %d", len(got))
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	log := NewLog(5)
	log.Append("a")
	snap := log.Snapshot()
	snap[0].Text = "mutated"
	if got := log.Snapshot()[0].Text; got != "a" {
		t.Fatalf("snapshot mutation leaked into log: %s", got)
	}
}
