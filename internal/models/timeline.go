package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment file type enum.
const (
	FileTypePDF   = "pdf"
	FileTypeWord  = "word"
	FileTypeExcel = "excel"
	FileTypeImage = "image"
	FileTypeAudio = "audio"
	FileTypeVideo = "video"
	FileTypeOther = "other"
)

// TimelineNode is a dated entry inside a repository. Access control is
// inherited transitively through the owning repository.
type TimelineNode struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	RepositoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"repositoryId"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	Content      string    `gorm:"type:text" json:"content"`
	Tags         []string  `gorm:"serializer:json" json:"tags"`
	Color        string    `gorm:"size:20;not null;default:#FFFFFF" json:"color"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Attachments []Attachment `gorm:"foreignKey:NodeID" json:"attachments"`
}

// Attachment is a stored file bound to a timeline node. FileSize contributes
// to the owner's storage counter once persisted.
type Attachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	NodeID     uuid.UUID `gorm:"type:uuid;not null;index" json:"nodeId"`
	Filename   string    `gorm:"size:255;not null" json:"filename"`
	FileType   string    `gorm:"size:20;not null;default:other" json:"fileType"`
	FileSize   int64     `gorm:"not null;default:0" json:"fileSize"`
	StorageKey string    `gorm:"size:512" json:"storageKey"`
	FileURL    string    `json:"fileUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}
