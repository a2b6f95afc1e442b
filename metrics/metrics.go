package metrics

import "sync/atomic"

// Metrics captures shared operational stats for the capture pipeline.
type Metrics struct {
	segmentsRecognized int64
	unintelligible     int64
	serviceErrors      int64
	summaryPasses      int64
	llmFallbacks       int64
	ingestedFiles      int64
}

// Snapshot provides a consistent view of the current metrics.
type Snapshot struct {
	SegmentsRecognized int64
	Unintelligible     int64
	ServiceErrors      int64
	SummaryPasses      int64
	LLMFallbacks       int64
	IngestedFiles      int64
}

// New creates a zeroed Metrics instance.
func New() *Metrics {
	return &Metrics{}
}

// RecordRecognized counts one accepted transcription.
func (m *Metrics) RecordRecognized() {
	atomic.AddInt64(&m.segmentsRecognized, 1)
}

// RecordUnintelligible counts one silently discarded segment.
func (m *Metrics) RecordUnintelligible() {
	atomic.AddInt64(&m.unintelligible, 1)
}

// RecordServiceError counts one recognition service failure.
func (m *Metrics) RecordServiceError() {
	atomic.AddInt64(&m.serviceErrors, 1)
}

// RecordSummaryPass counts one completed summarize pass, noting whether
// it fell back to the heuristic engine.
func (m *Metrics) RecordSummaryPass(fellBack bool) {
	atomic.AddInt64(&m.summaryPasses, 1)
	if fellBack {
		atomic.AddInt64(&m.llmFallbacks, 1)
	}
}

// RecordIngestedFile counts one drop-directory file merged into the log.
func (m *Metrics) RecordIngestedFile() {
	atomic.AddInt64(&m.ingestedFiles, 1)
}

// Snapshot returns a read-only view of metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		SegmentsRecognized: atomic.LoadInt64(&m.segmentsRecognized),
		Unintelligible:     atomic.LoadInt64(&m.unintelligible),
		ServiceErrors:      atomic.LoadInt64(&m.serviceErrors),
		SummaryPasses:      atomic.LoadInt64(&m.summaryPasses),
		LLMFallbacks:       atomic.LoadInt64(&m.llmFallbacks),
		IngestedFiles:      atomic.LoadInt64(&m.ingestedFiles),
	}
}
