package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"brainnotes/internal/store"
	"brainnotes/pkg/ai"
	"brainnotes/pkg/domain"
)

const (
	defaultContextNoteLimit = 10
	defaultContextBodyRunes = 300
	defaultAppBaseURL       = "http://localhost:3000"
)

// Config holds runtime configuration for the core application.
type Config struct {
	Store            store.Store
	Generator        ai.StreamGenerator
	AppBaseURL       string
	ContextNoteLimit int
	ContextBodyRunes int
}

// App is the core application service wiring together note storage, context
// assembly, and the inference provider.
type App struct {
	store            store.Store
	generator        ai.StreamGenerator
	appBaseURL       string
	contextNoteLimit int
	contextBodyRunes int
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.AppBaseURL), "/")
	if baseURL == "" {
		baseURL = defaultAppBaseURL
	}
	noteLimit := cfg.ContextNoteLimit
	if noteLimit <= 0 {
		noteLimit = defaultContextNoteLimit
	}
	bodyRunes := cfg.ContextBodyRunes
	if bodyRunes <= 0 {
		bodyRunes = defaultContextBodyRunes
	}
	return &App{
		store:            cfg.Store,
		generator:        cfg.Generator,
		appBaseURL:       baseURL,
		contextNoteLimit: noteLimit,
		contextBodyRunes: bodyRunes,
	}, nil
}

// ListNotes returns the owner's notes, newest first. An owner with no notes
// gets an empty list, never an error.
func (a *App) ListNotes(ownerID string) ([]domain.Note, error) {
	notes, err := a.store.ListNotesByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// CreateNote validates and stores a new note for the owner.
func (a *App) CreateNote(ownerID, title, body string) (domain.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Note{}, ErrTitleRequired
	}
	now := time.Now().UnixMilli()
	note := domain.Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateNote(note); err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// UpdateNote replaces title and body of an owned note and bumps UpdatedAt.
func (a *App) UpdateNote(ownerID, id, title, body string) (domain.Note, error) {
	note, err := a.loadOwnedNote(ownerID, id)
	if err != nil {
		return domain.Note{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Note{}, ErrTitleRequired
	}
	note.Title = title
	note.Body = body
	// Guarantee UpdatedAt strictly increases even inside one millisecond.
	now := time.Now().UnixMilli()
	if now <= note.UpdatedAt {
		now = note.UpdatedAt + 1
	}
	note.UpdatedAt = now
	if err := a.store.UpdateNote(note); err != nil {
		return domain.Note{}, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

// DeleteNote permanently removes an owned note.
func (a *App) DeleteNote(ownerID, id string) error {
	if _, err := a.loadOwnedNote(ownerID, id); err != nil {
		return err
	}
	if err := a.store.DeleteNote(id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// RecentNotesForContext returns up to the configured limit of the owner's
// newest notes with bodies truncated for prompt-size control. Internal: only
// the chat flow calls this, with an already-authenticated identity.
func (a *App) RecentNotesForContext(ownerID string) ([]domain.Note, error) {
	notes, err := a.store.ListRecentNotesByOwner(ownerID, a.contextNoteLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent notes: %w", err)
	}
	for i := range notes {
		notes[i].Body = truncateRunes(notes[i].Body, a.contextBodyRunes)
	}
	return notes, nil
}

func (a *App) loadOwnedNote(ownerID, id string) (domain.Note, error) {
	note, ok, err := a.store.GetNote(id)
	if err != nil {
		return domain.Note{}, fmt.Errorf("load note: %w", err)
	}
	if !ok {
		return domain.Note{}, ErrNoteNotFound
	}
	if err := requireOwnership(note, ownerID); err != nil {
		return domain.Note{}, err
	}
	return note, nil
}

// requireOwnership is the single owner-scoped access guard shared by every
// mutating operation.
func requireOwnership(note domain.Note, callerID string) error {
	if note.OwnerID != callerID {
		return ErrNotOwner
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
