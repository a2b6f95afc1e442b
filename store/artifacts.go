package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"meetscribe/summarize"
	"meetscribe/transcript"
)

// Artifacts names the files written for one session.
type Artifacts struct {
	Transcript  string
	SummaryJSON string
	SummaryTXT  string
}

// WriteArtifacts writes the transcript, summary JSON, and readable
// summary text for a finished session.
func WriteArtifacts(outputDir, baseName string, entries []transcript.Utterance, doc summarize.Document) (Artifacts, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output dir: %w", err)
	}
	paths := Artifacts{
		Transcript:  filepath.Join(outputDir, baseName+".transcript.txt"),
		SummaryJSON: filepath.Join(outputDir, baseName+".summary.json"),
		SummaryTXT:  filepath.Join(outputDir, baseName+".summary.txt"),
	}

	var tb strings.Builder
	for _, u := range entries {
		tb.WriteString(fmt.Sprintf("[+%.1fs] %s\n", u.Offset.Seconds(), u.Text))
	}
	if err := os.WriteFile(paths.Transcript, []byte(tb.String()), 0o644); err != nil {
		return paths, fmt.Errorf("write transcript: %w", err)
	}

	summaryJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return paths, fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(paths.SummaryJSON, summaryJSON, 0o644); err != nil {
		return paths, fmt.Errorf("write summary json: %w", err)
	}

	if err := os.WriteFile(paths.SummaryTXT, []byte(renderSummaryText(doc)), 0o644); err != nil {
		return paths, fmt.Errorf("write summary text: %w", err)
	}
	return paths, nil
}

func renderSummaryText(doc summarize.Document) string {
	lines := []string{"สรุปการประชุม (อัตโนมัติ)", ""}
	if doc.Summary != "" {
		lines = append(lines, fmt.Sprintf("- สรุปย่อ: %s", doc.Summary))
	}
	if len(doc.Topics) > 0 {
		lines = append(lines, "- หัวข้อหลัก:")
		for _, t := range doc.Topics {
			lines = append(lines, fmt.Sprintf("  • %s", t))
		}
	}
	if len(doc.Decisions) > 0 {
		lines = append(lines, "- การตัดสินใจ:")
		for _, d := range doc.Decisions {
			lines = append(lines, fmt.Sprintf("  • %s", d))
		}
	}
	if len(doc.ActionItems) > 0 {
		lines = append(lines, "- Action items:")
		for _, a := range doc.ActionItems {
			lines = append(lines, fmt.Sprintf("  • ผู้รับผิดชอบ: %s, งาน: %s, เส้นตาย: %s", a.Assignee, a.Task, a.Due))
		}
	}
	if len(doc.Risks) > 0 {
		lines = append(lines, "- ความเสี่ยง/ประเด็นติดตาม:")
		for _, r := range doc.Risks {
			lines = append(lines, fmt.Sprintf("  • %s", r))
		}
	}
	if len(doc.Highlights) > 0 {
		lines = append(lines, "- ไฮไลต์:")
		for _, h := range doc.Highlights {
			lines = append(lines, fmt.Sprintf("  • %s", h))
		}
	}
	return strings.Join(lines, "\n")
}
