package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/nadil1995/notehive2/internal/dto"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/quota"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StorageHandler struct {
	db    *gorm.DB
	quota *quota.Service
}

func NewStorageHandler(db *gorm.DB, quotaService *quota.Service) *StorageHandler {
	return &StorageHandler{db: db, quota: quotaService}
}

func (h *StorageHandler) currentUser(c *gin.Context) (*models.User, bool) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return nil, false
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID.(uuid.UUID)).Error; err != nil {
		log.Printf("Failed to load user: %v", err)
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("User not found", nil))
		return nil, false
	}
	return &user, true
}

// GetUsage reports the caller's aggregate usage with threshold warnings.
func (h *StorageHandler) GetUsage(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	percent := 0.0
	if user.StorageLimit > 0 {
		percent = float64(user.StorageUsed) / float64(user.StorageLimit) * 100
	}
	remaining := user.StorageLimit - user.StorageUsed
	if remaining < 0 {
		remaining = 0
	}

	var warning string
	switch {
	case percent >= 90:
		warning = "Storage almost full. Upgrade your plan or remove files."
	case percent >= 75:
		warning = "Storage usage is above 75% of your limit."
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"storageUsed":  user.StorageUsed,
			"storageLimit": user.StorageLimit,
			"remaining":    remaining,
			"percentUsed":  percent,
			"plan":         user.Plan,
			"warning":      warning,
		},
	})
}

// GetBreakdown reports per-repository usage.
func (h *StorageHandler) GetBreakdown(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	rows, total, err := h.quota.Breakdown(user.ID)
	if err != nil {
		log.Printf("Failed to compute storage breakdown: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to compute storage breakdown", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"totalUsed":    total,
			"repositories": rows,
		},
	})
}

// CheckUpload is the read-only pre-flight for a prospective upload.
func (h *StorageHandler) CheckUpload(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req dto.FileSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("fileSize must be a positive number", err.Error()))
		return
	}

	result, err := h.quota.CheckUpload(user.ID, req.FileSize)
	if err != nil {
		log.Printf("Failed to check upload quota: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to check storage quota", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{Success: true, Data: result})
}

// UpdateUsage commits bytes to the caller's counter. 422 with the shortfall
// when the commit would exceed the limit.
func (h *StorageHandler) UpdateUsage(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req dto.FileSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("fileSize must be a positive number", err.Error()))
		return
	}

	updated, err := h.quota.CommitUpload(user.ID, req.FileSize)
	if errors.Is(err, quota.ErrQuotaExceeded) {
		c.JSON(http.StatusUnprocessableEntity, responses.NewErrorResponse("Storage limit exceeded", gin.H{
			"storageUsed":   updated.StorageUsed,
			"storageLimit":  updated.StorageLimit,
			"fileSize":      req.FileSize,
			"wouldExceedBy": updated.StorageUsed + req.FileSize - updated.StorageLimit,
		}))
		return
	}
	if err != nil {
		log.Printf("Failed to update storage usage: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update storage usage", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Storage usage updated", gin.H{
		"storageUsed":  updated.StorageUsed,
		"storageLimit": updated.StorageLimit,
	}))
}

// GetPlan returns the plan catalog plus the caller's current plan and limit.
func (h *StorageHandler) GetPlan(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var plans []models.Plan
	if err := h.db.Where("is_active = ?", true).Order("storage_limit ASC").Find(&plans).Error; err != nil {
		log.Printf("Failed to load plans: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to load plans", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"currentPlan":  user.Plan,
			"storageUsed":  user.StorageUsed,
			"storageLimit": user.StorageLimit,
			"maxFileSize":  quota.MaxFileSize(user.Plan),
			"plans":        plans,
		},
	})
}
