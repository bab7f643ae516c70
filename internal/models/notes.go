package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is the legacy flat note model that predates repositories and timeline
// nodes. It backs the /api/notes surface and does not participate in quota
// accounting. Deprecated in favour of TimelineNode.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"userId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"size:100;not null;default:General" json:"category"`
	Tags      []string  `gorm:"serializer:json" json:"tags"`
	IsPinned  bool      `gorm:"not null;default:false" json:"isPinned"`
	Color     string    `gorm:"size:20;not null;default:#FFFFFF" json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Attachments []NoteAttachment `gorm:"foreignKey:NoteID" json:"attachments"`
}

type NoteAttachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	NoteID     uuid.UUID `gorm:"type:uuid;not null;index" json:"noteId"`
	Filename   string    `gorm:"size:255" json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}
