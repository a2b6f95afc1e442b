package summarize

import (
	"context"
	"log"

	"meetscribe/transcript"
)

// Summarizer produces summary documents, preferring the LLM when one is
// configured and silently falling back to the heuristic pass on any LLM
// failure. The capability is fixed at construction.
type Summarizer struct {
	rules Rules
	llm   *LLMClient
}

// NewSummarizer builds a summarizer. llm may be nil for heuristic-only.
func NewSummarizer(rules Rules, llm *LLMClient) *Summarizer {
	return &Summarizer{rules: rules, llm: llm}
}

// LLMEnabled reports whether an LLM pass is configured.
func (s *Summarizer) LLMEnabled() bool { return s.llm != nil }

// Summarize builds a document from the utterances. It reports whether
// the LLM produced it; false means the heuristic result.
func (s *Summarizer) Summarize(ctx context.Context, entries []transcript.Utterance) (Document, bool) {
	if s.llm != nil && len(entries) > 0 {
		doc, err := s.llm.Summarize(ctx, entries)
		if err == nil {
			return doc, true
		}
		log.Printf("llm summarize failed, using heuristic: %v", err)
	}
	return Extract(entries, s.rules), false
}
