package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// DefaultStorageLimit is the free-tier storage limit (5 GiB).
const DefaultStorageLimit = 5 * 1024 * 1024 * 1024

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Username      string     `gorm:"size:150;not null;unique" json:"username"`
	Email         string     `gorm:"size:255;not null;unique" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	DisplayName   string     `gorm:"size:150" json:"displayName"`
	ProfileImage  string     `json:"profileImage,omitempty"`
	Role          string     `gorm:"size:20;not null;default:user" json:"role"`
	Plan          string     `gorm:"size:20;not null;default:free" json:"plan"`
	StorageUsed   int64      `gorm:"not null;default:0" json:"storageUsed"`
	StorageLimit  int64      `gorm:"not null" json:"storageLimit"`
	IsActive      bool       `gorm:"not null;default:true" json:"isActive"`
	EmailVerified bool       `gorm:"not null;default:false" json:"emailVerified"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
}

// RefreshToken is one entry of a user's bounded session list. At most
// MaxRefreshTokens rows are kept per user; the oldest is evicted on login.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Token     string    `gorm:"size:512;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// MaxRefreshTokens caps concurrent sessions per user.
const MaxRefreshTokens = 5
