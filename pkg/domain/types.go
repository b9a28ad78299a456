package domain

// MessageRole identifies who produced a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Note is an owner-scoped record. Timestamps are epoch milliseconds,
// matching what the web client renders.
type Note struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// ChatMessage is one entry of a conversation. Conversations live only in
// client memory and are never persisted.
type ChatMessage struct {
	ID      string      `json:"id,omitempty"`
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// User is the identity resolved from a bearer credential.
type User struct {
	ID string `json:"id"`
}
