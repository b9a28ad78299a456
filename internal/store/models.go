package store

// NoteModel is the GORM model backing the notes table. Timestamps are epoch
// milliseconds assigned by the app layer, not GORM-managed time columns.
type NoteModel struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   string `gorm:"not null;index;index:idx_notes_owner_created,priority:1"`
	Title     string `gorm:"not null"`
	Body      string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false;index:idx_notes_owner_created,priority:2"`
	UpdatedAt int64  `gorm:"not null;autoUpdateTime:false"`
}

// TableName keeps the collection name the web client knows.
func (NoteModel) TableName() string { return "notes" }
