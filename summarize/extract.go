package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"meetscribe/transcript"
)

// OfflineHeadline is the fixed summary line of heuristic documents.
const OfflineHeadline = "สรุปอัตโนมัติแบบออฟไลน์ (heuristic) จากการสนทนา"

var (
	sentenceSplit = regexp.MustCompile(`[.!?\n]|[ ]{2,}|\|`)
	wordSplit     = regexp.MustCompile(`\s+`)
)

// Extract builds a summary document from accepted utterances using the
// compiled keyword rules. The pass is deterministic: the same utterances
// and rules always produce the same document.
func Extract(entries []transcript.Utterance, rules Rules) Document {
	doc := Document{Summary: OfflineHeadline}

	var all strings.Builder
	for _, u := range entries {
		if all.Len() > 0 {
			all.WriteString("\n")
		}
		all.WriteString(u.Text)
	}
	doc.Topics = extractTopics(all.String(), rules)

	for _, u := range entries {
		for _, sent := range splitSentences(u.Text) {
			if matchAny(sent, rules.DecisionTriggers) {
				doc.Decisions = append(doc.Decisions, sent)
			}
			if matchAny(sent, rules.ActionTriggers) {
				doc.ActionItems = append(doc.ActionItems, ActionItem{
					Assignee: firstMatch(sent, rules.AssigneePatterns, rules.Unspecified),
					Task:     sent,
					Due:      firstMatch(sent, rules.DuePatterns, rules.Unspecified),
				})
			}
			if matchAny(sent, rules.RiskTriggers) {
				doc.Risks = append(doc.Risks, sent)
			}
		}
	}

	for _, u := range entries {
		n := utf8.RuneCountInString(u.Text)
		if n < 25 {
			continue
		}
		if n > 60 || matchAny(u.Text, rules.DecisionTriggers) || matchAny(u.Text, rules.ActionTriggers) {
			doc.Highlights = append(doc.Highlights, u.Text)
		}
	}

	return capDocument(doc)
}

// capDocument truncates each list to its presentation limit. Extraction
// always completes first so the caps never change what is counted.
func capDocument(doc Document) Document {
	if len(doc.Topics) > maxTopics {
		doc.Topics = doc.Topics[:maxTopics]
	}
	if len(doc.Decisions) > maxDecisions {
		doc.Decisions = doc.Decisions[:maxDecisions]
	}
	if len(doc.ActionItems) > maxActionItems {
		doc.ActionItems = doc.ActionItems[:maxActionItems]
	}
	if len(doc.Risks) > maxRisks {
		doc.Risks = doc.Risks[:maxRisks]
	}
	if len(doc.Highlights) > maxHighlights {
		doc.Highlights = doc.Highlights[:maxHighlights]
	}
	return doc
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// extractTopics ranks non-stopword tokens by frequency. Ties keep first
// occurrence order.
func extractTopics(allText string, rules Rules) []string {
	type topicCount struct {
		word  string
		count int
		first int
	}
	counts := make(map[string]*topicCount)
	order := make([]*topicCount, 0)
	idx := 0
	for _, w := range wordSplit.Split(allText, -1) {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, stop := rules.Stopwords[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		tc, ok := counts[w]
		if !ok {
			tc = &topicCount{word: w, first: idx}
			counts[w] = tc
			order = append(order, tc)
		}
		tc.count++
		idx++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})
	topics := make([]string, 0, len(order))
	for _, tc := range order {
		topics = append(topics, tc.word)
	}
	return topics
}

func matchAny(text string, triggers []string) bool {
	for _, t := range triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func firstMatch(text string, patterns []*regexp.Regexp, fallback string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return fallback
}
