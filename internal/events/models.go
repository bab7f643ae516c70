package events

import (
	"time"

	"github.com/google/uuid"
)

// AdminEvent mirrors one audit-log record onto the admin.activity topic.
type AdminEvent struct {
	Action       string                 `json:"action"`
	AdminID      string                 `json:"adminId"`
	TargetUserID string                 `json:"targetUserId,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// AssetEvent represents a repository or timeline-node mutation.
type AssetEvent struct {
	EventType string    `json:"eventType"`
	AssetType string    `json:"assetType"`
	AssetID   string    `json:"assetId"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAdminEvent creates a new admin event
func NewAdminEvent(action string, adminID uuid.UUID, targetUser *uuid.UUID, details map[string]interface{}) *AdminEvent {
	event := &AdminEvent{
		Action:    action,
		AdminID:   adminID.String(),
		Details:   details,
		Timestamp: time.Now(),
	}
	if targetUser != nil {
		event.TargetUserID = targetUser.String()
	}
	return event
}

// NewAssetEvent creates a new asset event
func NewAssetEvent(eventType, assetType string, assetID, ownerID uuid.UUID) *AssetEvent {
	return &AssetEvent{
		EventType: eventType,
		AssetType: assetType,
		AssetID:   assetID.String(),
		OwnerID:   ownerID.String(),
		Timestamp: time.Now(),
	}
}
