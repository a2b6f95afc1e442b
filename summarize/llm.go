package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"meetscribe/transcript"
)

const llmSystemPrompt = "คุณเป็นเลขานุการการประชุม ช่วยสรุปข้อความการสนทนาเป็นภาษาไทย " +
	"ส่งคืน STRICT JSON เท่านั้น กับคีย์: summary, topics, decisions, " +
	"action_items (แต่ละรายการมี assignee, task, due), risks_or_followups, highlights " +
	"หากไม่พบผู้รับผิดชอบหรือเส้นตายให้ใส่ 'ไม่ระบุ'"

// LLMClient summarizes a conversation via an OpenAI-compatible chat
// completions endpoint. Responses are validated strictly; anything
// off-schema is an error so callers can fall back.
type LLMClient struct {
	Model   string
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// Summarize requests a structured summary of the given utterances.
func (c *LLMClient) Summarize(ctx context.Context, entries []transcript.Utterance) (Document, error) {
	if len(entries) == 0 {
		return Document{}, errors.New("nothing to summarize")
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	endpoint := strings.TrimRight(c.BaseURL, "/") + "/v1/chat/completions"

	var convo strings.Builder
	for _, u := range entries {
		convo.WriteString(u.Text)
		convo.WriteString("\n")
	}
	payload := map[string]interface{}{
		"model":       c.Model,
		"temperature": 0.2,
		"response_format": map[string]string{
			"type": "json_object",
		},
		"messages": []map[string]string{
			{"role": "system", "content": llmSystemPrompt},
			{"role": "user", "content": convo.String()},
		},
	}
	buf, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return Document{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Document{}, fmt.Errorf("llm status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var wrapper struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return Document{}, err
	}
	if len(wrapper.Choices) == 0 {
		return Document{}, errors.New("empty llm response")
	}
	return parseLLMDocument(strings.TrimSpace(wrapper.Choices[0].Message.Content))
}

func parseLLMDocument(content string) (Document, error) {
	obj := extractJSONObject(content)
	if obj == "" {
		return Document{}, errors.New("no json object found")
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Document{}, err
	}
	allowed := map[string]struct{}{
		"summary": {}, "topics": {}, "decisions": {},
		"action_items": {}, "risks_or_followups": {}, "highlights": {},
	}
	for key := range raw {
		if _, ok := allowed[key]; !ok {
			return Document{}, fmt.Errorf("unexpected key %q", key)
		}
	}
	for _, key := range []string{"summary", "topics", "decisions", "action_items", "risks_or_followups", "highlights"} {
		if _, ok := raw[key]; !ok {
			return Document{}, fmt.Errorf("missing key %q", key)
		}
	}
	var doc Document
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return Document{}, err
	}
	doc.Summary = strings.TrimSpace(doc.Summary)
	if doc.Summary == "" {
		return Document{}, errors.New("empty summary")
	}
	for i, item := range doc.ActionItems {
		if strings.TrimSpace(item.Task) == "" {
			return Document{}, errors.New("action item with empty task")
		}
		if strings.TrimSpace(item.Assignee) == "" {
			doc.ActionItems[i].Assignee = "ไม่ระบุ"
		}
		if strings.TrimSpace(item.Due) == "" {
			doc.ActionItems[i].Due = "ไม่ระบุ"
		}
	}
	return capDocument(doc), nil
}

func extractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if ch == '\\' {
				escaped = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}
