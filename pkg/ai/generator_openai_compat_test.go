package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brainnotes/pkg/domain"
)

func sseProvider(t *testing.T, deltas []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
}

func TestStreamChatDeliversDeltasInOrder(t *testing.T) {
	provider := sseProvider(t, []string{"Hel", "lo ", "there"})
	defer provider.Close()

	gen, err := NewOpenAICompatGenerator(provider.URL+"/v1", "test-key", "test-model")
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	chunks, err := gen.StreamChat(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("stream chat: %v", err)
	}

	var sb strings.Builder
	for c := range chunks {
		if c.Err != nil {
			t.Fatalf("unexpected chunk error: %v", c.Err)
		}
		sb.WriteString(c.Content)
	}
	if got := sb.String(); got != "Hello there" {
		t.Fatalf("assembled reply = %q, want %q", got, "Hello there")
	}
}

func TestStreamChatProviderFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer provider.Close()

	gen, err := NewOpenAICompatGenerator(provider.URL+"/v1", "test-key", "test-model")
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := gen.StreamChat(context.Background(), nil); err == nil {
		t.Fatal("expected provider failure to surface")
	}
}

func TestStreamChatCancellationClosesStream(t *testing.T) {
	release := make(chan struct{})
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer provider.Close()
	defer close(release)

	gen, err := NewOpenAICompatGenerator(provider.URL+"/v1", "", "test-model")
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	chunks, err := gen.StreamChat(ctx, []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("stream chat: %v", err)
	}

	first := <-chunks
	if first.Err != nil || first.Content != "partial" {
		t.Fatalf("first chunk = %+v", first)
	}
	cancel()

	select {
	case _, open := <-chunks:
		if open {
			// A chunk may race the cancellation; the channel must still close.
			if _, open = <-chunks; open {
				t.Fatal("stream channel not closed after cancellation")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream channel not closed after cancellation")
	}
}

func TestNewOpenAICompatGeneratorRequiresModel(t *testing.T) {
	if _, err := NewOpenAICompatGenerator("http://localhost/v1", "", "  "); err == nil {
		t.Fatal("expected missing model to fail")
	}
}
