package summarize

import (
	"testing"
)

const validLLMJSON = `{
  "summary": "ประชุมสรุปงบประมาณ",
  "topics": ["งบประมาณ"],
  "decisions": ["อนุมัติงบ"],
  "action_items": [{"assignee": "คุณสมชาย", "task": "ทำรายงาน", "due": "ภายใน 3 วัน"}],
  "risks_or_followups": [],
  "highlights": []
}`

func TestParseLLMDocumentValid(t *testing.T) {
	doc, err := parseLLMDocument(validLLMJSON)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.Summary != "ประชุมสรุปงบประมาณ" {
		t.Fatalf("unexpected summary %q", doc.Summary)
	}
	if len(doc.ActionItems) != 1 || doc.ActionItems[0].Assignee != "คุณสมชาย" {
		t.Fatalf("unexpected action items %v", doc.ActionItems)
	}
}

func TestParseLLMDocumentSurroundingProse(t *testing.T) {
	doc, err := parseLLMDocument("Here you go:\n" + validLLMJSON + "\nHope that helps!")
	if err != nil {
		t.Fatalf("parse with prose: %v", err)
	}
	if doc.Summary == "" {
		t.Fatal("expected extracted document")
	}
}

func TestParseLLMDocumentRejectsUnknownKey(t *testing.T) {
	input := `{"summary":"s","topics":[],"decisions":[],"action_items":[],"risks_or_followups":[],"highlights":[],"extra":1}`
	if _, err := parseLLMDocument(input); err == nil {
		t.Fatal("expected rejection of unknown key")
	}
}

func TestParseLLMDocumentRejectsMissingKey(t *testing.T) {
	input := `{"summary":"s","topics":[],"decisions":[],"action_items":[],"risks_or_followups":[]}`
	if _, err := parseLLMDocument(input); err == nil {
		t.Fatal("expected rejection of missing key")
	}
}

func TestParseLLMDocumentRejectsEmptySummary(t *testing.T) {
	input := `{"summary":"  ","topics":[],"decisions":[],"action_items":[],"risks_or_followups":[],"highlights":[]}`
	if _, err := parseLLMDocument(input); err == nil {
		t.Fatal("expected rejection of empty summary")
	}
}

func TestParseLLMDocumentFillsActionItemDefaults(t *testing.T) {
	input := `{"summary":"s","topics":[],"decisions":[],"action_items":[{"assignee":"","task":"ทำงาน","due":""}],"risks_or_followups":[],"highlights":[]}`
	doc, err := parseLLMDocument(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.ActionItems[0].Assignee != "ไม่ระบุ" || doc.ActionItems[0].Due != "ไม่ระบุ" {
		t.Fatalf("expected unspecified defaults, got %+v", doc.ActionItems[0])
	}
}

func TestParseLLMDocumentRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "no json here", "{broken", `["array"]`} {
		if _, err := parseLLMDocument(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestExtractJSONObjectIgnoresBracesInStrings(t *testing.T) {
	input := `prefix {"a": "brace } inside", "b": {"c": 1}} suffix`
	want := `{"a": "brace } inside", "b": {"c": 1}}`
	if got := extractJSONObject(input); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
