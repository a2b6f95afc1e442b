package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"meetscribe/summarize"
	"meetscribe/transcript"
)

func testDoc() summarize.Document {
	return summarize.Document{
		Summary:   summarize.OfflineHeadline,
		Topics:    []string{"งบประมาณ"},
		Decisions: []string{"อนุมัติงบ"},
		ActionItems: []summarize.ActionItem{
			{Assignee: "คุณสมชาย", Task: "ทำรายงาน", Due: "ภายใน 3 วัน"},
		},
		Risks:      []string{"เสี่ยงเรื่องเวลา"},
		Highlights: []string{"เราตัดสินใจอนุมัติงบประมาณประจำไตรมาส"},
	}
}

func testEntries() []transcript.Utterance {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return []transcript.Utterance{
		{Text: "สวัสดีครับ", At: base, Offset: 0},
		{Text: "เราตัดสินใจอนุมัติงบ", At: base.Add(5 * time.Second), Offset: 5 * time.Second},
		{Text: "คุณสมชายต้องทำรายงานภายใน 3 วัน", At: base.Add(12 * time.Second), Offset: 12 * time.Second},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "meetings.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	entries := testEntries()
	doc := testDoc()
	sess := Session{
		ID:        "sess-1",
		Language:  "th-TH",
		StartedAt: entries[0].At,
		EndedAt:   entries[0].At.Add(time.Minute),
		LLMUsed:   true,
	}
	if err := s.SaveSession(sess, entries, doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	gotSess, gotEntries, gotDoc, err := s.LoadSession("sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotSess.Language != "th-TH" || !gotSess.LLMUsed {
		t.Fatalf("unexpected session %+v", gotSess)
	}
	if len(gotEntries) != len(entries) {
		t.Fatalf("utterances out %d != in %d", len(gotEntries), len(entries))
	}
	for i := range entries {
		if gotEntries[i].Text != entries[i].Text {
			t.Fatalf("utterance %d text %q != %q", i, gotEntries[i].Text, entries[i].Text)
		}
		if gotEntries[i].Offset != entries[i].Offset {
			t.Fatalf("utterance %d offset %v != %v", i, gotEntries[i].Offset, entries[i].Offset)
		}
	}
	wantJSON, _ := json.Marshal(doc)
	gotJSON, _ := json.Marshal(gotDoc)
	if string(wantJSON) != string(gotJSON) {
		t.Fatalf("summary mismatch:\n got %s\nwant %s", gotJSON, wantJSON)
	}
}

func TestLoadMissingSession(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "meetings.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, _, _, err := s.LoadSession("nope"); err == nil {
		t.Fatal("expected error for missing session")
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	paths, err := WriteArtifacts(dir, "meeting_20250601_090000", testEntries(), testDoc())
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	transcriptText, err := os.ReadFile(paths.Transcript)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(transcriptText)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 transcript lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "[+0.0s] ") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[+5.0s] ") {
		t.Fatalf("unexpected second line %q", lines[1])
	}

	jsonBytes, err := os.ReadFile(paths.SummaryJSON)
	if err != nil {
		t.Fatalf("read summary json: %v", err)
	}
	var doc summarize.Document
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		t.Fatalf("summary json does not parse: %v", err)
	}
	if len(doc.ActionItems) != 1 || doc.ActionItems[0].Assignee != "คุณสมชาย" {
		t.Fatalf("unexpected action items %v", doc.ActionItems)
	}

	txt, err := os.ReadFile(paths.SummaryTXT)
	if err != nil {
		t.Fatalf("read summary txt: %v", err)
	}
	for _, want := range []string{"สรุปการประชุม (อัตโนมัติ)", "หัวข้อหลัก", "การตัดสินใจ", "ผู้รับผิดชอบ: คุณสมชาย"} {
		if !strings.Contains(string(txt), want) {
			t.Fatalf("summary txt missing %q", want)
		}
	}
}

func TestWriteArtifactsEmptySession(t *testing.T) {
	dir := t.TempDir()
	doc := summarize.Document{Summary: summarize.OfflineHeadline}
	paths, err := WriteArtifacts(dir, "meeting_empty", nil, doc)
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if _, err := os.Stat(paths.SummaryJSON); err != nil {
		t.Fatalf("summary json missing: %v", err)
	}
}
