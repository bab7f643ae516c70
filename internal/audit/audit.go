package audit

import (
	"context"
	"log"
	"time"

	"github.com/nadil1995/notehive2/internal/events"
	"github.com/nadil1995/notehive2/internal/kafka"
	"github.com/nadil1995/notehive2/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recorder appends immutable audit entries for admin actions. Recording is
// best-effort: a failed write is logged and swallowed, never propagated to
// the action that triggered it.
type Recorder struct {
	db       *gorm.DB
	producer *kafka.Producer
}

func NewRecorder(db *gorm.DB, producer *kafka.Producer) *Recorder {
	return &Recorder{db: db, producer: producer}
}

// Record writes one audit row and mirrors it onto the admin.activity topic.
func (r *Recorder) Record(adminID uuid.UUID, action string, targetUser *uuid.UUID, details map[string]interface{}) {
	entry := models.AuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     action,
		TargetUser: targetUser,
		Details:    details,
		IPAddress:  "0.0.0.0",
		UserAgent:  "AdminAPI",
		Timestamp:  time.Now(),
	}

	if err := r.db.Create(&entry).Error; err != nil {
		log.Printf("Failed to record audit entry %s: %v", action, err)
	}

	if r.producer != nil {
		event := events.NewAdminEvent(action, adminID, targetUser, details)
		if err := r.producer.PublishAdminEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish admin event %s: %v", action, err)
		}
	}
}
