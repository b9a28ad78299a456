package ai

import (
	"context"

	"brainnotes/pkg/domain"
)

// Chunk is one increment of a streamed model reply. Err is terminal: the
// channel is closed right after a chunk carrying it.
type Chunk struct {
	Content string
	Err     error
}

// StreamGenerator produces a model reply for a conversation as a stream of
// chunks. Cancelling the context tears down the in-flight provider call and
// closes the channel; there are no resume semantics.
type StreamGenerator interface {
	StreamChat(ctx context.Context, messages []domain.ChatMessage) (<-chan Chunk, error)
}
