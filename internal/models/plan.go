package models

import "time"

type PlanFeature struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// Plan is a named subscription tier. Changing a user's plan must copy the
// plan's StorageLimit onto the user record.
type Plan struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Name            string        `gorm:"size:20;not null;unique" json:"name"`
	StorageLimit    int64         `gorm:"not null" json:"storageLimit"`
	MaxFileSize     int64         `gorm:"not null" json:"maxFileSize"`
	MaxRepositories int64         `gorm:"not null" json:"maxRepositories"` // -1 for unlimited
	Features        []PlanFeature `gorm:"serializer:json" json:"features"`
	MonthlyPrice    float64       `gorm:"not null;default:0" json:"monthlyPrice"`
	YearlyPrice     float64       `gorm:"not null;default:0" json:"yearlyPrice"`
	Description     string        `json:"description"`
	IsActive        bool          `gorm:"not null;default:true" json:"isActive"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
