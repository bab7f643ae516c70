package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded for administrative operations.
const (
	ActionUserCreated     = "USER_CREATED"
	ActionUserUpdated     = "USER_UPDATED"
	ActionUserDeleted     = "USER_DELETED"
	ActionUserSuspended   = "USER_SUSPENDED"
	ActionPlanChanged     = "PLAN_CHANGED"
	ActionStorageAdjusted = "STORAGE_ADJUSTED"
	ActionPasswordReset   = "PASSWORD_RESET"
	ActionAdminAccess     = "ADMIN_ACCESS"
)

// AuditLog is an append-only record of an admin action. Rows are written once
// and never mutated.
type AuditLog struct {
	ID         uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	AdminID    uuid.UUID              `gorm:"type:uuid;not null;index" json:"adminId"`
	Action     string                 `gorm:"size:40;not null;index" json:"action"`
	TargetUser *uuid.UUID             `gorm:"type:uuid;index" json:"targetUser,omitempty"`
	Details    map[string]interface{} `gorm:"serializer:json" json:"details"`
	IPAddress  string                 `gorm:"size:64" json:"ipAddress"`
	UserAgent  string                 `gorm:"size:255" json:"userAgent"`
	Timestamp  time.Time              `gorm:"not null;index" json:"timestamp"`
}
