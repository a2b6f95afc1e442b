package transcript

import (
	"strings"
	"sync"
	"time"
)

// Utterance is one accepted recognition result.
type Utterance struct {
	Text   string
	At     time.Time
	Offset time.Duration
}

// Log is an append-only, thread-safe utterance buffer. Appends suppress
// bursts: text identical to the immediately preceding accepted utterance
// is dropped. A bounded recent window tracks the tail for live display.
type Log struct {
	mu      sync.Mutex
	entries []Utterance
	recent  []string
	window  int
	start   time.Time
}

// NewLog returns a log whose recent window holds at most window entries.
func NewLog(window int) *Log {
	if window <= 0 {
		window = 5
	}
	return &Log{window: window, start: time.Now()}
}

// Start marks the session origin used for utterance offsets.
func (l *Log) Start(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start = t
}

// Append records text unless it duplicates the previous accepted
// utterance. It reports whether the text was accepted.
func (l *Log) Append(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.entries); n > 0 && l.entries[n-1].Text == text {
		return false
	}
	now := time.Now()
	l.entries = append(l.entries, Utterance{
		Text:   text,
		At:     now,
		Offset: now.Sub(l.start),
	})
	l.recent = append(l.recent, text)
	if len(l.recent) > l.window {
		l.recent = l.recent[len(l.recent)-l.window:]
	}
	return true
}

// Snapshot returns a copy of all accepted utterances in append order.
func (l *Log) Snapshot() []Utterance {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Utterance, len(l.entries))
	copy(out, l.entries)
	return out
}

// Recent returns a copy of the tail window of accepted texts, oldest first.
func (l *Log) Recent() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.recent))
	copy(out, l.recent)
	return out
}

// Len reports the number of accepted utterances.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
