package quota

import (
	"errors"
	"fmt"

	"github.com/nadil1995/notehive2/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrQuotaExceeded means committing the upload would push the user's
	// aggregate usage past their plan limit.
	ErrQuotaExceeded = errors.New("storage limit would be exceeded")
	// ErrFileTooLarge means a single file exceeds the per-plan maximum.
	ErrFileTooLarge = errors.New("file exceeds plan limit")
)

// Per-plan single-file ceilings, independent of the aggregate quota.
var maxFileSizes = map[string]int64{
	models.PlanFree:       100 * 1024 * 1024,
	models.PlanPro:        500 * 1024 * 1024,
	models.PlanEnterprise: 2 * 1024 * 1024 * 1024,
}

// MaxFileSize returns the single-file ceiling for a plan. Unknown plans fall
// back to the free tier.
func MaxFileSize(plan string) int64 {
	if limit, ok := maxFileSizes[plan]; ok {
		return limit
	}
	return maxFileSizes[models.PlanFree]
}

// CheckResult is the outcome of a pure quota pre-check.
type CheckResult struct {
	CanUpload    bool  `json:"canUpload"`
	CurrentUsage int64 `json:"currentUsage"`
	Limit        int64 `json:"limit"`
	FileSize     int64 `json:"fileSize"`
	WouldBeTotal int64 `json:"wouldBeTotalUsage"`
	SpaceNeeded  int64 `json:"spaceNeeded"`
}

// RepositoryUsage is one row of the per-repository storage breakdown.
type RepositoryUsage struct {
	RepositoryID   uuid.UUID `json:"repositoryId"`
	RepositoryName string    `json:"repositoryName"`
	StorageUsed    int64     `json:"storageUsed"`
	FileCount      int64     `json:"fileCount"`
	Percentage     int       `json:"percentage"`
}

// Service does the storage-quota bookkeeping for user accounts.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CheckUpload reports whether the user can fit fileSize more bytes, and the
// shortfall when they cannot. Read-only.
func (s *Service) CheckUpload(userID uuid.UUID, fileSize int64) (*CheckResult, error) {
	var user models.User
	if err := s.db.Select("storage_used", "storage_limit").First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	wouldBe := user.StorageUsed + fileSize
	result := &CheckResult{
		CanUpload:    wouldBe <= user.StorageLimit,
		CurrentUsage: user.StorageUsed,
		Limit:        user.StorageLimit,
		FileSize:     fileSize,
		WouldBeTotal: wouldBe,
	}
	if !result.CanUpload {
		result.SpaceNeeded = wouldBe - user.StorageLimit
	}
	return result, nil
}

// CommitUpload adds fileSize to the user's counter with a ceiling guard in a
// single conditional UPDATE, so two concurrent commits cannot race past the
// limit. Returns the refreshed user on success.
func (s *Service) CommitUpload(userID uuid.UUID, fileSize int64) (*models.User, error) {
	res := s.db.Model(&models.User{}).
		Where("id = ? AND storage_used + ? <= storage_limit", userID, fileSize).
		Update("storage_used", gorm.Expr("storage_used + ?", fileSize))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to commit upload: %w", res.Error)
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return &user, ErrQuotaExceeded
	}
	return &user, nil
}

// Release subtracts fileSize from the user's counter, never going below zero.
// Used by the upload rollback path and admin adjustments.
func (s *Service) Release(userID uuid.UUID, fileSize int64) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("storage_used", gorm.Expr(
			"CASE WHEN storage_used > ? THEN storage_used - ? ELSE 0 END", fileSize, fileSize)).Error
}

// CheckFileSize validates a single file against the user's plan ceiling.
func (s *Service) CheckFileSize(plan string, fileSize int64) error {
	if fileSize > MaxFileSize(plan) {
		return ErrFileTooLarge
	}
	return nil
}

// Breakdown sums attachment bytes per repository for a user and expresses
// each repository as a percentage of the user's tracked usage, sorted
// descending by bytes.
func (s *Service) Breakdown(userID uuid.UUID) ([]RepositoryUsage, int64, error) {
	var rows []RepositoryUsage
	err := s.db.Table("repositories").
		Select("repositories.id AS repository_id, repositories.name AS repository_name, "+
			"COALESCE(SUM(attachments.file_size), 0) AS storage_used, "+
			"COUNT(attachments.id) AS file_count").
		Joins("LEFT JOIN timeline_nodes ON timeline_nodes.repository_id = repositories.id").
		Joins("LEFT JOIN attachments ON attachments.node_id = timeline_nodes.id").
		Where("repositories.user_id = ?", userID).
		Group("repositories.id, repositories.name").
		Order("storage_used DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	var user models.User
	if err := s.db.Select("storage_used").First(&user, "id = ?", userID).Error; err != nil {
		return nil, 0, err
	}

	for i := range rows {
		if user.StorageUsed > 0 {
			rows[i].Percentage = int(float64(rows[i].StorageUsed)/float64(user.StorageUsed)*100 + 0.5)
		}
	}
	return rows, user.StorageUsed, nil
}
