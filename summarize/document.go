// Package summarize builds meeting summary documents from an utterance
// log, through keyword heuristics with an optional LLM pass on top.
package summarize

// ActionItem is one assignable task extracted from the conversation.
type ActionItem struct {
	Assignee string `json:"assignee"`
	Task     string `json:"task"`
	Due      string `json:"due"`
}

// Document is a point-in-time meeting summary.
type Document struct {
	Summary     string       `json:"summary"`
	Topics      []string     `json:"topics"`
	Decisions   []string     `json:"decisions"`
	ActionItems []ActionItem `json:"action_items"`
	Risks       []string     `json:"risks_or_followups"`
	Highlights  []string     `json:"highlights"`
}

// Presentation caps applied after extraction completes.
const (
	maxTopics      = 6
	maxDecisions   = 10
	maxActionItems = 20
	maxRisks       = 10
	maxHighlights  = 8
)
