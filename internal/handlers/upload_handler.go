package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/nadil1995/notehive2/internal/dto"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/quota"
	"github.com/nadil1995/notehive2/internal/storage"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const signedURLExpiry = time.Hour

type UploadHandler struct {
	db       *gorm.DB
	quota    *quota.Service
	store    storage.Store
	timeline *TimelineHandler
}

func NewUploadHandler(db *gorm.DB, quotaService *quota.Service, store storage.Store) *UploadHandler {
	return &UploadHandler{
		db:       db,
		quota:    quotaService,
		store:    store,
		timeline: &TimelineHandler{db: db},
	}
}

// Upload stores a multipart file against a timeline node. The quota commit
// runs after the object is stored; when the commit fails the object is
// removed so rejected uploads leave no orphans behind.
func (h *UploadHandler) Upload(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}
	userID := currentUserID.(uuid.UUID)

	nodeID, err := uuid.Parse(c.Param("nodeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid node ID format", nil))
		return
	}

	node, _, ok := h.timeline.findNodeWithAccess(c, nodeID, userID, false)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("No file provided", nil))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.AllowedMime(contentType) {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("File type not allowed", gin.H{
			"contentType": contentType,
		}))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("Failed to load user for upload: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	if err := h.quota.CheckFileSize(user.Plan, fileHeader.Size); err != nil {
		c.JSON(http.StatusUnprocessableEntity, responses.NewErrorResponse("File exceeds plan limit", gin.H{
			"fileSize":    fileHeader.Size,
			"maxFileSize": quota.MaxFileSize(user.Plan),
			"plan":        user.Plan,
		}))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Printf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}
	defer src.Close()

	key := storage.ObjectKey(userID, fileHeader.Filename)
	fileURL, err := h.store.Put(c.Request.Context(), key, src, contentType)
	if err != nil {
		log.Printf("Failed to store uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	committed, err := h.quota.CommitUpload(userID, fileHeader.Size)
	if errors.Is(err, quota.ErrQuotaExceeded) {
		if delErr := h.store.Delete(context.Background(), key); delErr != nil {
			log.Printf("Failed to delete rejected upload %s: %v", key, delErr)
		}
		c.JSON(http.StatusUnprocessableEntity, responses.NewErrorResponse("Storage limit exceeded", gin.H{
			"storageUsed":   committed.StorageUsed,
			"storageLimit":  committed.StorageLimit,
			"fileSize":      fileHeader.Size,
			"wouldExceedBy": committed.StorageUsed + fileHeader.Size - committed.StorageLimit,
		}))
		return
	}
	if err != nil {
		if delErr := h.store.Delete(context.Background(), key); delErr != nil {
			log.Printf("Failed to delete orphaned upload %s: %v", key, delErr)
		}
		log.Printf("Failed to commit upload quota: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	attachment := models.Attachment{
		ID:         uuid.New(),
		NodeID:     node.ID,
		Filename:   fileHeader.Filename,
		FileType:   storage.FileTypeFor(contentType),
		FileSize:   fileHeader.Size,
		StorageKey: key,
		FileURL:    fileURL,
		UploadedAt: time.Now(),
	}

	if err := h.db.Create(&attachment).Error; err != nil {
		log.Printf("Failed to record attachment: %v", err)
		if delErr := h.store.Delete(context.Background(), key); delErr != nil {
			log.Printf("Failed to delete orphaned upload %s: %v", key, delErr)
		}
		if relErr := h.quota.Release(userID, fileHeader.Size); relErr != nil {
			log.Printf("Failed to release quota after failed attachment record: %v", relErr)
		}
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Upload failed", nil))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("File uploaded successfully", gin.H{
		"attachment":   attachment,
		"storageUsed":  committed.StorageUsed,
		"storageLimit": committed.StorageLimit,
	}))
}

// Check is the upload pre-flight: plan file-size ceiling first, then the
// aggregate quota.
func (h *UploadHandler) Check(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}
	userID := currentUserID.(uuid.UUID)

	var req dto.FileSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("fileSize must be a positive number", err.Error()))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		log.Printf("Failed to load user for upload check: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to check upload", nil))
		return
	}

	if err := h.quota.CheckFileSize(user.Plan, req.FileSize); err != nil {
		c.JSON(http.StatusOK, responses.APIResponse{
			Success: true,
			Data: gin.H{
				"canUpload":   false,
				"reason":      "File exceeds plan limit",
				"fileSize":    req.FileSize,
				"maxFileSize": quota.MaxFileSize(user.Plan),
			},
		})
		return
	}

	result, err := h.quota.CheckUpload(userID, req.FileSize)
	if err != nil {
		log.Printf("Failed to check upload quota: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to check upload", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{Success: true, Data: result})
}

// GenerateURL returns a presigned download URL for one of the caller's
// attachments.
func (h *UploadHandler) GenerateURL(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	nodeID, err := uuid.Parse(c.Param("nodeId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid node ID format", nil))
		return
	}
	attachmentID, err := uuid.Parse(c.Param("attachmentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid attachment ID format", nil))
		return
	}

	node, _, ok := h.timeline.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), false)
	if !ok {
		return
	}

	var attachment models.Attachment
	err = h.db.Where("id = ? AND node_id = ?", attachmentID, node.ID).First(&attachment).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Attachment not found", nil))
		return
	}
	if err != nil {
		log.Printf("Database error when finding attachment: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to generate download URL", nil))
		return
	}

	url, err := h.store.SignedURL(c.Request.Context(), attachment.StorageKey, signedURLExpiry)
	if err != nil {
		log.Printf("Failed to presign download URL: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to generate download URL", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"url":       url,
			"expiresIn": int(signedURLExpiry.Seconds()),
			"filename":  attachment.Filename,
		},
	})
}
