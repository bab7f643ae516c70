package models

import (
	"time"

	"github.com/google/uuid"
)

// Repository is a user-owned grouping of timeline nodes. Every query against
// repositories must carry the owner's user id as a filter term.
type Repository struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:20;not null;default:#3B82F6" json:"color"`
	IsArchived  bool      `gorm:"not null;default:false" json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
