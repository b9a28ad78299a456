package app

import (
	"fmt"
	"strings"
	"time"

	"brainnotes/pkg/domain"
)

// SystemContextNotesAssistant is the only request value that causes note
// content to be injected into the system prompt. Any other value gets the
// generic prompt with no note data at all.
const SystemContextNotesAssistant = "notes-assistant"

const genericSystemPrompt = "You are a helpful AI assistant."

const noNotesSentence = "The user hasn't created any notes yet."

// BuildNotesContext renders recent notes into a human-readable block for
// prompt injection: index, title, creation/update dates, a deep link into the
// app, and the truncated body.
func BuildNotesContext(notes []domain.Note, baseURL string) string {
	if len(notes) == 0 {
		return noNotesSentence
	}
	baseURL = strings.TrimRight(baseURL, "/")
	var sb strings.Builder
	for i, note := range notes {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Note %d: %q\n", i+1, note.Title)
		fmt.Fprintf(&sb, "Created: %s | Updated: %s\n", formatDate(note.CreatedAt), formatDate(note.UpdatedAt))
		fmt.Fprintf(&sb, "Link: %s/?noteId=%s\n", baseURL, note.ID)
		fmt.Fprintf(&sb, "Content: %s...", note.Body)
	}
	return sb.String()
}

func notesAssistantSystemPrompt(notes []domain.Note, baseURL string) string {
	var sb strings.Builder
	sb.WriteString("You are a notes assistant. You help the user find and summarize information saved in their notes. ")
	sb.WriteString("When you reference a note, always cite it with a markdown link to its Link URL, like [Title](url). ")
	sb.WriteString("Only use the notes below; if they don't contain the answer, say so.\n\n")
	sb.WriteString("The user's most recent notes:\n\n")
	sb.WriteString(BuildNotesContext(notes, baseURL))
	return sb.String()
}

// formatDate renders an epoch-millisecond timestamp the way the web client's
// locale date format does.
func formatDate(millis int64) string {
	return time.UnixMilli(millis).Format("1/2/2006")
}
