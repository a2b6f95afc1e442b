// Package dashboard renders live session state as styled terminal text.
// Render is pure: it never touches shared state or the terminal itself.
package dashboard

import (
	"fmt"
	"strings"

	"meetscribe/summarize"
)

// State is everything one dashboard frame shows.
type State struct {
	SessionState string
	Language     string
	Recent       []string
	Notice       string
	Summary      *summarize.Document
	UtteranceLen int
	LLMActive    bool
}

const divider = "----------------------------------------------------------------------"

// Render produces one dashboard frame.
func Render(s State) string {
	var b strings.Builder

	b.WriteString(dividerStyle.Render(strings.ReplaceAll(divider, "-", "=")))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("--- Real-time Meeting Summarizer ---"))
	b.WriteString("\n")
	b.WriteString(stateStyle.Render(fmt.Sprintf("สถานะ: %s  ภาษา: %s  (Ctrl+C เพื่อหยุด)", s.SessionState, s.Language)))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.ReplaceAll(divider, "-", "=")))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Live Transcript:"))
	b.WriteString("\n")
	if len(s.Recent) == 0 {
		b.WriteString(dimStyle.Render("   ..."))
		b.WriteString("\n")
	} else {
		for _, line := range s.Recent {
			b.WriteString(transcriptStyle.Render("   - " + line))
			b.WriteString("\n")
		}
	}
	if s.Notice != "" {
		b.WriteString(noticeStyle.Render("   " + s.Notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Live Meeting Summary (ล่าสุด):"))
	b.WriteString("\n")
	if s.Summary == nil {
		b.WriteString(dimStyle.Render("   ..."))
		b.WriteString("\n")
	} else {
		topics := strings.Join(headTopics(s.Summary.Topics, 5), ", ")
		if topics == "" {
			topics = "-"
		}
		b.WriteString(summaryStyle.Render(fmt.Sprintf("   • หัวข้อหลัก: %s", topics)))
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(fmt.Sprintf("   • การตัดสินใจ: %d รายการ", len(s.Summary.Decisions))))
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(fmt.Sprintf("   • Action items: %d รายการ", len(s.Summary.ActionItems))))
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render(fmt.Sprintf("   • ความเสี่ยง/ติดตาม: %d รายการ", len(s.Summary.Risks))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("ข้อความทั้งหมด: %d", s.UtteranceLen)
	if s.LLMActive {
		footer += "  [LLM]"
	}
	b.WriteString(dimStyle.Render(footer))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(divider))
	b.WriteString("\n")

	return b.String()
}

func headTopics(topics []string, n int) []string {
	if len(topics) > n {
		return topics[:n]
	}
	return topics
}
