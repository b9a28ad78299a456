package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"brainnotes/pkg/domain"
)

func TestBuildNotesContextZeroNotes(t *testing.T) {
	if got := BuildNotesContext(nil, "http://localhost:3000"); got != noNotesSentence {
		t.Fatalf("zero-notes block = %q, want %q", got, noNotesSentence)
	}
}

func TestBuildNotesContextFormatsEachNote(t *testing.T) {
	notes := []domain.Note{
		{ID: "id-1", Title: "Groceries", Body: "milk, eggs", CreatedAt: 1760000000000, UpdatedAt: 1760100000000},
		{ID: "id-2", Title: "Ideas", Body: "build a boat", CreatedAt: 1750000000000, UpdatedAt: 1750000000000},
	}
	block := BuildNotesContext(notes, "https://notes.example.com/")

	for i, n := range notes {
		if !strings.Contains(block, fmt.Sprintf("Note %d: %q", i+1, n.Title)) {
			t.Fatalf("missing indexed title for %s in:\n%s", n.ID, block)
		}
		link := "https://notes.example.com/?noteId=" + n.ID
		if !strings.Contains(block, link) {
			t.Fatalf("missing deep link %q in:\n%s", link, block)
		}
		if !strings.Contains(block, n.Body+"...") {
			t.Fatalf("missing body with ellipsis for %s", n.ID)
		}
	}
	if !strings.Contains(block, formatDate(notes[0].CreatedAt)) {
		t.Fatalf("missing formatted creation date in:\n%s", block)
	}
}

func TestChatNotesAssistantInjectsContext(t *testing.T) {
	a, _, gen := newTestApp(t)
	note, err := a.CreateNote("user-1", "Groceries", "milk, eggs")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = a.Chat(context.Background(), domain.User{ID: "user-1"},
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "what do I need to buy?"}},
		SystemContextNotesAssistant)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	sent := gen.received[0]
	if sent[0].Role != domain.RoleSystem {
		t.Fatalf("first message role = %s, want system", sent[0].Role)
	}
	if !strings.Contains(sent[0].Content, "Groceries") || !strings.Contains(sent[0].Content, "?noteId="+note.ID) {
		t.Fatalf("system prompt missing note context:\n%s", sent[0].Content)
	}
	if !strings.Contains(sent[0].Content, "markdown link") {
		t.Fatalf("system prompt missing citation instruction:\n%s", sent[0].Content)
	}
}

func TestChatOtherContextsNeverLeakNotes(t *testing.T) {
	a, _, gen := newTestApp(t)
	if _, err := a.CreateNote("user-1", "SecretTitle", "secret body"); err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, systemContext := range []string{"", "generic", "notes-assistant-v2", "NOTES-ASSISTANT"} {
		_, err := a.Chat(context.Background(), domain.User{ID: "user-1"},
			[]domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}}, systemContext)
		if err != nil {
			t.Fatalf("chat(%q): %v", systemContext, err)
		}
		sent := gen.received[len(gen.received)-1]
		if sent[0].Content != genericSystemPrompt {
			t.Fatalf("systemContext %q: prompt = %q, want generic", systemContext, sent[0].Content)
		}
		for _, m := range sent {
			if strings.Contains(m.Content, "SecretTitle") || strings.Contains(m.Content, "secret body") {
				t.Fatalf("note content leaked for systemContext %q", systemContext)
			}
		}
	}
}

func TestChatRequiresMessages(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, err := a.Chat(context.Background(), domain.User{ID: "user-1"}, nil, ""); err != ErrMessagesRequired {
		t.Fatalf("got %v, want ErrMessagesRequired", err)
	}
}

func TestChatPrependsSystemAndPreservesOrder(t *testing.T) {
	a, _, gen := newTestApp(t)
	history := []domain.ChatMessage{
		{Role: domain.RoleAssistant, Content: "Hi! I'm your notes assistant."},
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "how can I help?"},
		{Role: domain.RoleUser, Content: "summarize my notes"},
	}
	if _, err := a.Chat(context.Background(), domain.User{ID: "user-1"}, history, ""); err != nil {
		t.Fatalf("chat: %v", err)
	}
	sent := gen.received[0]
	if len(sent) != len(history)+1 {
		t.Fatalf("sent %d messages, want %d", len(sent), len(history)+1)
	}
	for i, m := range history {
		if sent[i+1] != m {
			t.Fatalf("message %d reordered: %+v", i, sent[i+1])
		}
	}
}
