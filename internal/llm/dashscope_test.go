package llm

import (
	"testing"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

func TestBuildDashScopeMessages_IncludesSystemAsMessage(t *testing.T) {
	req := streamRequest{
		systemPrompt: "be terse",
		message:      models.LLMMessage{Role: models.RoleUser, Content: "hi"},
	}
	msgs := buildDashScopeMessages(req)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != "be terse" {
		t.Errorf("system message = %+v", msgs[0])
	}
}

func TestConvertDashScopeMessage_ImageContentIsTextThenImage(t *testing.T) {
	m := models.LLMMessage{
		Role:          models.RoleUser,
		Content:       "what is this",
		ImageBase64:   "Zm9v",
		ImageMimeType: "image/png",
	}
	got := convertDashScopeMessage(m)
	parts, ok := got.Content.([]map[string]any)
	if !ok {
		t.Fatalf("Content type = %T, want []map[string]any", got.Content)
	}
	if len(parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(parts))
	}
	if parts[0]["type"] != "text" {
		t.Errorf("part 0 type = %v, want %q", parts[0]["type"], "text")
	}
	if _, hasText := parts[0]["text"]; !hasText {
		t.Errorf("part 0 = %v, want text part first", parts[0])
	}
	if parts[1]["type"] != "image" {
		t.Errorf("part 1 type = %v, want %q", parts[1]["type"], "image")
	}
	if _, hasImage := parts[1]["image"]; !hasImage {
		t.Errorf("part 1 = %v, want image part second", parts[1])
	}
}

func TestConvertDashScopeMessage_NoImageUsesPlainStringContent(t *testing.T) {
	got := convertDashScopeMessage(models.LLMMessage{Role: models.RoleAssistant, Content: "hello"})
	if got.Content != "hello" {
		t.Errorf("Content = %v, want %q", got.Content, "hello")
	}
}

func TestDashScopeFrame_ParsesIncrementalDeltasAndFinish(t *testing.T) {
	lines := []string{
		`data:{"output":{"choices":[{"message":{"content":"Hel"},"finish_reason":"null"}]}}`,
		`data:{"output":{"choices":[{"message":{"content":"lo"},"finish_reason":"null"}]}}`,
		`data:{"output":{"choices":[{"message":{"content":""},"finish_reason":"stop"}]}}`,
	}
	var accumulated string
	for i, line := range lines {
		frame, ok := dashScopeFrame(line)
		if !ok {
			t.Fatalf("line %d: expected ok=true", i)
		}
		accumulated += frame.delta
		if i == len(lines)-1 && !frame.finished {
			t.Error("expected last frame to report finished")
		}
	}
	if accumulated != "Hello" {
		t.Errorf("accumulated = %q, want %q", accumulated, "Hello")
	}
}

func TestDashScopeFrame_SkipsFramingLines(t *testing.T) {
	for _, line := range []string{"", "event:result", "id:1"} {
		if _, ok := dashScopeFrame(line); ok {
			t.Errorf("line %q: expected ok=false", line)
		}
	}
}

func TestDashScopeFrame_DoneSentinel(t *testing.T) {
	frame, ok := dashScopeFrame("data:[DONE]")
	if !ok || !frame.done {
		t.Errorf("frame=%+v ok=%v, want done=true", frame, ok)
	}
}

func TestDashScopeFrame_ErrorPayload(t *testing.T) {
	frame, ok := dashScopeFrame(`data:{"code":"InvalidParameter","message":"bad model"}`)
	if !ok || frame.errMsg != "bad model" {
		t.Errorf("frame=%+v ok=%v, want errMsg=%q", frame, ok, "bad model")
	}
}
