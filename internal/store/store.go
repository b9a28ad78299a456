package store

import "brainnotes/pkg/domain"

// Store defines persistence operations for notes. Listing is always
// newest-first by creation time; ownership checks live in the app layer.
type Store interface {
	CreateNote(domain.Note) error
	GetNote(id string) (domain.Note, bool, error)
	UpdateNote(domain.Note) error
	DeleteNote(id string) error
	ListNotesByOwner(ownerID string) ([]domain.Note, error)
	ListRecentNotesByOwner(ownerID string, limit int) ([]domain.Note, error)
}
