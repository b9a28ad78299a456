package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"brainnotes/pkg/ai"
	"brainnotes/pkg/domain"
)

// HTTPTransport streams chat completions from the backend chat endpoint.
type HTTPTransport struct {
	// BaseURL is the backend origin, e.g. "http://localhost:8080".
	BaseURL string
	// Token is sent as a bearer credential.
	Token  string
	Client *http.Client
}

type chatRequestBody struct {
	Messages      []domain.ChatMessage `json:"messages"`
	SystemContext string               `json:"systemContext,omitempty"`
}

// Send posts the conversation and relays the plain-text response body as
// chunks. The channel closes when the stream ends or ctx is cancelled.
func (t *HTTPTransport) Send(ctx context.Context, messages []domain.ChatMessage, systemContext string) (<-chan ai.Chunk, error) {
	body, err := json.Marshal(chatRequestBody{Messages: messages, SystemContext: systemContext})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send chat request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("chat request failed: status %d", resp.StatusCode)
	}

	out := make(chan ai.Chunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		buf := make([]byte, 4096)
		for {
			n, err := resp.Body.Read(buf)
			if n > 0 {
				select {
				case out <- ai.Chunk{Content: string(buf[:n])}:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF && ctx.Err() == nil {
					select {
					case out <- ai.Chunk{Err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()
	return out, nil
}
