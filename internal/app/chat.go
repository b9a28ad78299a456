package app

import (
	"context"
	"fmt"

	"brainnotes/pkg/ai"
	"brainnotes/pkg/domain"
)

// Chat assembles the system prompt for the authenticated user and forwards
// the full conversation to the inference provider, returning its chunk
// stream. Note content enters the prompt only in notes-assistant mode.
func (a *App) Chat(ctx context.Context, user domain.User, messages []domain.ChatMessage, systemContext string) (<-chan ai.Chunk, error) {
	if len(messages) == 0 {
		return nil, ErrMessagesRequired
	}

	var systemPrompt string
	if systemContext == SystemContextNotesAssistant {
		notes, err := a.RecentNotesForContext(user.ID)
		if err != nil {
			return nil, fmt.Errorf("assemble notes context: %w", err)
		}
		systemPrompt = notesAssistantSystemPrompt(notes, a.appBaseURL)
	} else {
		systemPrompt = genericSystemPrompt
	}

	conversation := make([]domain.ChatMessage, 0, len(messages)+1)
	conversation = append(conversation, domain.ChatMessage{
		Role:    domain.RoleSystem,
		Content: systemPrompt,
	})
	conversation = append(conversation, messages...)

	stream, err := a.generator.StreamChat(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("start generation: %w", err)
	}
	return stream, nil
}
