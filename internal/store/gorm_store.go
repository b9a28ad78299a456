package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"brainnotes/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&NoteModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateNote inserts a new note record.
func (s *GormStore) CreateNote(n domain.Note) error {
	model := noteToModel(n)
	return s.db.Create(&model).Error
}

// GetNote retrieves a note by ID.
func (s *GormStore) GetNote(id string) (domain.Note, bool, error) {
	var model NoteModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Note{}, false, nil
		}
		return domain.Note{}, false, err
	}
	return noteFromModel(model), true, nil
}

// UpdateNote replaces the mutable fields of an existing note.
func (s *GormStore) UpdateNote(n domain.Note) error {
	return s.db.Model(&NoteModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"title":      n.Title,
			"body":       n.Body,
			"updated_at": n.UpdatedAt,
		}).Error
}

// DeleteNote removes a note permanently.
func (s *GormStore) DeleteNote(id string) error {
	return s.db.Delete(&NoteModel{}, "id = ?", id).Error
}

// ListNotesByOwner returns the owner's notes, newest first.
func (s *GormStore) ListNotesByOwner(ownerID string) ([]domain.Note, error) {
	return s.listNotes(ownerID, 0)
}

// ListRecentNotesByOwner returns up to limit of the owner's newest notes.
func (s *GormStore) ListRecentNotesByOwner(ownerID string, limit int) ([]domain.Note, error) {
	return s.listNotes(ownerID, limit)
}

func (s *GormStore) listNotes(ownerID string, limit int) ([]domain.Note, error) {
	var models []NoteModel
	tx := s.db.Where("owner_id = ?", ownerID).Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Note, 0, len(models))
	for _, m := range models {
		res = append(res, noteFromModel(m))
	}
	return res, nil
}

func noteToModel(n domain.Note) NoteModel {
	return NoteModel{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Body:      n.Body,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func noteFromModel(m NoteModel) domain.Note {
	return domain.Note{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
