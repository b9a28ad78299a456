package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"brainnotes/pkg/domain"
)

// OpenAICompatGenerator streams chat completions from any OpenAI-compatible
// endpoint (OpenRouter, vLLM, LiteLLM, self-hosted models, ...).
type OpenAICompatGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAICompatGenerator builds a streaming generator.
// baseURL should include the /v1 prefix, e.g. "https://openrouter.ai/api/v1".
// apiKey can be empty for local models that do not require authentication.
func NewOpenAICompatGenerator(baseURL, apiKey, model string) (*OpenAICompatGenerator, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("generation model required")
	}
	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompatGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// StreamChat implements StreamGenerator over the chat completions API.
// Provider deltas are pushed into the returned channel in arrival order; the
// reader goroutine exits on stream end, provider error, or ctx cancellation.
func (g *OpenAICompatGenerator) StreamChat(ctx context.Context, messages []domain.ChatMessage) (<-chan Chunk, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: toOpenAIMessages(messages),
		Stream:   true,
	}
	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create completion stream: %w", err)
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case out <- Chunk{Err: fmt.Errorf("recv stream: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- Chunk{Content: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func toOpenAIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
