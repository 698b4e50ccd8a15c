package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

const dashScopeDefaultBaseURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

// dashScopeDialect implements the DashScope provider dialect of C4. No Go
// SDK for DashScope exists to depend on, so the stream is hand-rolled the
// same way the teacher's ollama.go provider hand-rolls Ollama: a raw
// net/http POST with a buffered line scanner over the response body, one
// JSON object per line. gjson pulls the one field this dialect cares about
// (output.choices.0.message.content) without a bespoke response struct.
type dashScopeDialect struct{}

type dashScopeMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type dashScopeRequest struct {
	Model      string          `json:"model"`
	Input      dashScopeInput  `json:"input"`
	Parameters dashScopeParams `json:"parameters"`
}

type dashScopeInput struct {
	Messages []dashScopeMessage `json:"messages"`
}

type dashScopeParams struct {
	ResultFormat      string `json:"result_format"`
	IncrementalOutput bool   `json:"incremental_output"`
}

func (dashScopeDialect) stream(ctx context.Context, req streamRequest, emit func(string)) (string, error) {
	base := strings.TrimSuffix(strings.TrimSpace(req.provider.APIURL), "/")
	if base == "" {
		base = dashScopeDefaultBaseURL
	}

	payload := dashScopeRequest{
		Model: req.provider.Model,
		Input: dashScopeInput{Messages: buildDashScopeMessages(req)},
		Parameters: dashScopeParams{
			ResultFormat:      "message",
			IncrementalOutput: true,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("dashscope: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("dashscope: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.provider.APIKey)
	httpReq.Header.Set("X-DashScope-SSE", "enable")

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("dashscope: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("dashscope: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 1024*64)
	scanner.Buffer(buf, 1024*1024)

	var accumulated strings.Builder
	for scanner.Scan() {
		frame, ok := dashScopeFrame(scanner.Text())
		if !ok {
			continue
		}
		if frame.done {
			return accumulated.String(), nil
		}
		if frame.errMsg != "" {
			return accumulated.String(), fmt.Errorf("dashscope: %s", frame.errMsg)
		}
		if frame.delta != "" {
			accumulated.WriteString(frame.delta)
			emit(frame.delta)
		}
		if frame.finished {
			return accumulated.String(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return accumulated.String(), fmt.Errorf("dashscope: %w", err)
	}
	return accumulated.String(), nil
}

// dashScopeEvent is one parsed SSE data frame from a DashScope stream.
type dashScopeEvent struct {
	delta    string
	finished bool
	done     bool
	errMsg   string
}

// dashScopeFrame strips SSE framing from one scanner line and extracts its
// payload fields via gjson. ok is false for lines carrying no data payload
// (blank lines, "event:"/"id:" framing lines).
func dashScopeFrame(rawLine string) (dashScopeEvent, bool) {
	line := strings.TrimSpace(rawLine)
	if line == "" || strings.HasPrefix(line, "event:") || strings.HasPrefix(line, "id:") {
		return dashScopeEvent{}, false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if line == "" {
		return dashScopeEvent{}, false
	}
	if line == "[DONE]" {
		return dashScopeEvent{done: true}, true
	}

	if errMsg := gjson.Get(line, "message"); errMsg.Exists() && gjson.Get(line, "code").Exists() {
		return dashScopeEvent{errMsg: errMsg.String()}, true
	}

	return dashScopeEvent{
		delta:    gjson.Get(line, "output.choices.0.message.content").String(),
		finished: gjson.Get(line, "output.choices.0.finish_reason").String() == "stop",
	}, true
}

// buildDashScopeMessages converts the system prompt, history, and new
// message into DashScope's message shape. Like OpenAIStyle, the system
// prompt is a message-array entry rather than a top-level field.
func buildDashScopeMessages(req streamRequest) []dashScopeMessage {
	msgs := make([]dashScopeMessage, 0, len(req.history)+2)
	if req.systemPrompt != "" {
		msgs = append(msgs, dashScopeMessage{Role: "system", Content: req.systemPrompt})
	}
	for _, m := range req.history {
		msgs = append(msgs, convertDashScopeMessage(m))
	}
	msgs = append(msgs, convertDashScopeMessage(req.message))
	return msgs
}

func convertDashScopeMessage(m models.LLMMessage) dashScopeMessage {
	role := dashScopeRole(m.Role)
	if !m.HasImage() {
		return dashScopeMessage{Role: role, Content: m.Content}
	}

	var parts []map[string]any
	if m.Content != "" {
		parts = append(parts, map[string]any{"type": "text", "text": m.Content})
	}
	parts = append(parts, map[string]any{
		"type":  "image",
		"image": fmt.Sprintf("data:%s;base64,%s", m.ImageMimeType, m.ImageBase64),
	})
	return dashScopeMessage{Role: role, Content: parts}
}

func dashScopeRole(role models.Role) string {
	switch role {
	case models.RoleSystem:
		return "system"
	case models.RoleAssistant:
		return "assistant"
	default:
		return "user"
	}
}
