package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/oakbridge-labs/studyrag/pkg/models"
)

// openAIStyleDialect implements the OpenAIStyle and Custom provider
// dialects of C4. provider.APIURL is treated as the SDK base URL (the
// convention teacher code uses for OpenAI-compatible gateways such as
// OpenRouter and Azure: set ClientConfig.BaseURL, let the SDK append
// /chat/completions).
type openAIStyleDialect struct{}

func (openAIStyleDialect) stream(ctx context.Context, req streamRequest, emit func(string)) (string, error) {
	cfg := openai.DefaultConfig(req.provider.APIKey)
	if base := strings.TrimSuffix(strings.TrimSpace(req.provider.APIURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	client := openai.NewClientWithConfig(cfg)

	chatReq := openai.ChatCompletionRequest{
		Model:     req.provider.Model,
		Messages:  buildOpenAIMessages(req),
		Stream:    true,
		MaxTokens: defaultMaxTokens,
	}

	stream, err := client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("openai-style: create stream: %w", err)
	}
	defer stream.Close()

	var accumulated strings.Builder
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return accumulated.String(), nil
			}
			return accumulated.String(), fmt.Errorf("openai-style: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta != "" {
			accumulated.WriteString(delta)
			emit(delta)
		}
	}
}

// buildOpenAIMessages converts the system prompt, history, and new message
// into OpenAI chat messages. Unlike Anthropic, System-role entries are
// included directly in the messages array.
func buildOpenAIMessages(req streamRequest) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.history)+2)
	if req.systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.systemPrompt,
		})
	}
	for _, m := range req.history {
		msgs = append(msgs, convertOpenAIMessage(m))
	}
	msgs = append(msgs, convertOpenAIMessage(req.message))
	return msgs
}

func convertOpenAIMessage(m models.LLMMessage) openai.ChatCompletionMessage {
	role := openAIRole(m.Role)
	if !m.HasImage() {
		return openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}

	var parts []openai.ChatMessagePart
	if m.Content != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: m.Content,
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: fmt.Sprintf("data:%s;base64,%s", m.ImageMimeType, m.ImageBase64),
		},
	})
	return openai.ChatCompletionMessage{Role: role, MultiContent: parts}
}

func openAIRole(role models.Role) string {
	switch role {
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
