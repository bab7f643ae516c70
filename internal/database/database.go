package database

import (
	"fmt"

	"github.com/nadil1995/notehive2/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and runs migrations. A failure here
// is fatal by design: the process must not start without a database.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs auto-migration for every model. Tests reuse it against sqlite.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Repository{},
		&models.TimelineNode{},
		&models.Attachment{},
		&models.Note{},
		&models.NoteAttachment{},
		&models.Plan{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SeedPlans upserts the three built-in plans. Idempotent; runs at startup.
func SeedPlans(db *gorm.DB) error {
	plans := []models.Plan{
		{
			Name:            models.PlanFree,
			StorageLimit:    5 * 1024 * 1024 * 1024,
			MaxFileSize:     100 * 1024 * 1024,
			MaxRepositories: 10,
			MonthlyPrice:    0,
			Description:     "Free",
			IsActive:        true,
		},
		{
			Name:            models.PlanPro,
			StorageLimit:    50 * 1024 * 1024 * 1024,
			MaxFileSize:     500 * 1024 * 1024,
			MaxRepositories: 100,
			MonthlyPrice:    9.99,
			Description:     "Pro",
			IsActive:        true,
		},
		{
			Name:            models.PlanEnterprise,
			StorageLimit:    1000 * 1024 * 1024 * 1024,
			MaxFileSize:     2 * 1024 * 1024 * 1024,
			MaxRepositories: -1,
			MonthlyPrice:    0,
			Description:     "Enterprise (custom pricing)",
			IsActive:        true,
		},
	}

	for _, plan := range plans {
		var existing models.Plan
		err := db.Where("name = ?", plan.Name).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&plan).Error; err != nil {
				return fmt.Errorf("failed to seed plan %s: %w", plan.Name, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check plan %s: %w", plan.Name, err)
		}
	}
	return nil
}
