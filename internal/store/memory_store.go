package store

import (
	"sort"
	"sync"

	"brainnotes/pkg/domain"
)

// MemoryStore keeps notes in-process. Used by tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[string]domain.Note
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]domain.Note)}
}

// CreateNote inserts a note record.
func (m *MemoryStore) CreateNote(n domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[n.ID] = n
	return nil
}

// GetNote retrieves a note by ID.
func (m *MemoryStore) GetNote(id string) (domain.Note, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[id]
	return n, ok, nil
}

// UpdateNote replaces the mutable fields of an existing note.
func (m *MemoryStore) UpdateNote(n domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.notes[n.ID]
	if !ok {
		return nil
	}
	existing.Title = n.Title
	existing.Body = n.Body
	existing.UpdatedAt = n.UpdatedAt
	m.notes[n.ID] = existing
	return nil
}

// DeleteNote removes a note.
func (m *MemoryStore) DeleteNote(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notes, id)
	return nil
}

// ListNotesByOwner returns the owner's notes, newest first.
func (m *MemoryStore) ListNotesByOwner(ownerID string) ([]domain.Note, error) {
	return m.listNotes(ownerID, 0)
}

// ListRecentNotesByOwner returns up to limit of the owner's newest notes.
func (m *MemoryStore) ListRecentNotesByOwner(ownerID string, limit int) ([]domain.Note, error) {
	return m.listNotes(ownerID, limit)
}

func (m *MemoryStore) listNotes(ownerID string, limit int) ([]domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Note, 0)
	for _, n := range m.notes {
		if n.OwnerID == ownerID {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt != res[j].CreatedAt {
			return res[i].CreatedAt > res[j].CreatedAt
		}
		return res[i].ID > res[j].ID
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
