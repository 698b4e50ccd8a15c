package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

const anthropicAPIVersion = "2023-06-01"
const defaultMaxTokens = 4096

// anthropicDialect implements the Anthropic provider dialect of C4: auth
// via x-api-key, system prompt passed top-level rather than as a message,
// and image blocks ordered before text per spec §4.4.
type anthropicDialect struct{}

func (anthropicDialect) stream(ctx context.Context, req streamRequest, emit func(string)) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(req.provider.APIKey),
		option.WithHeader("anthropic-version", anthropicAPIVersion),
	}
	if strings.TrimSpace(req.provider.APIURL) != "" {
		opts = append(opts, option.WithBaseURL(req.provider.APIURL))
	}
	client := anthropic.NewClient(opts...)

	messages, err := buildAnthropicMessages(req.history, req.message)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.provider.Model),
		Messages:  messages,
		MaxTokens: int64(defaultMaxTokens),
	}
	if req.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.systemPrompt}}
	}

	stream := client.Messages.NewStreaming(ctx, params)

	var accumulated strings.Builder
	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_delta":
			delta := event.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" && delta.Delta.Text != "" {
				accumulated.WriteString(delta.Delta.Text)
				emit(delta.Delta.Text)
			}
		case "message_stop":
			return accumulated.String(), nil
		case "error":
			return accumulated.String(), fmt.Errorf("anthropic: stream error event")
		}
	}
	if err := stream.Err(); err != nil {
		return accumulated.String(), fmt.Errorf("anthropic: %w", err)
	}
	return accumulated.String(), nil
}

// buildAnthropicMessages converts history+message to Anthropic's message
// format. System-role entries are dropped; the system prompt travels
// separately via MessageNewParams.System.
func buildAnthropicMessages(history []models.LLMMessage, message models.LLMMessage) ([]anthropic.MessageParam, error) {
	all := make([]models.LLMMessage, 0, len(history)+1)
	all = append(all, history...)
	all = append(all, message)

	result := make([]anthropic.MessageParam, 0, len(all))
	for _, m := range all {
		if m.Role == models.RoleSystem {
			continue
		}

		var content []anthropic.ContentBlockParamUnion
		if m.HasImage() {
			content = append(content, anthropic.NewImageBlockBase64(m.ImageMimeType, m.ImageBase64))
		}
		if m.Content != "" {
			content = append(content, anthropic.NewTextBlock(m.Content))
		}

		var mp anthropic.MessageParam
		if m.Role == models.RoleAssistant {
			mp = anthropic.NewAssistantMessage(content...)
		} else {
			mp = anthropic.NewUserMessage(content...)
		}
		result = append(result, mp)
	}
	return result, nil
}
