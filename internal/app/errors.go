package app

import "errors"

var (
	// ErrTitleRequired indicates a create/update with an empty title after trimming.
	ErrTitleRequired = errors.New("title cannot be empty")
	// ErrNoteNotFound indicates an unknown note ID.
	ErrNoteNotFound = errors.New("note not found")
	// ErrNotOwner indicates the note exists but belongs to someone else.
	ErrNotOwner = errors.New("not the note owner")
	// ErrMessagesRequired indicates a chat request without any messages.
	ErrMessagesRequired = errors.New("messages required")
)
