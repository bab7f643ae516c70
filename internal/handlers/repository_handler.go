package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/nadil1995/notehive2/internal/dto"
	"github.com/nadil1995/notehive2/internal/events"
	"github.com/nadil1995/notehive2/internal/kafka"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/redis"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RepositoryHandler struct {
	db            *gorm.DB
	kafkaProducer *kafka.Producer
	redisService  *redis.Service
}

func NewRepositoryHandler(db *gorm.DB, kafkaProducer *kafka.Producer, redisService *redis.Service) *RepositoryHandler {
	return &RepositoryHandler{
		db:            db,
		kafkaProducer: kafkaProducer,
		redisService:  redisService,
	}
}

// CreateRepository creates a new repository for the authenticated user
func (h *RepositoryHandler) CreateRepository(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	var req dto.CreateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Repository name is required", err.Error()))
		return
	}

	color := req.Color
	if color == "" {
		color = "#3B82F6"
	}

	repo := models.Repository{
		ID:          uuid.New(),
		UserID:      currentUserID.(uuid.UUID),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Color:       color,
		IsArchived:  false,
	}

	if err := h.db.Create(&repo).Error; err != nil {
		log.Printf("Failed to create repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to create repository", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.RepositoryCreated, events.AssetTypeRepository, repo.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish repository created event: %v", err)
		}
	}

	if h.redisService != nil {
		if err := h.redisService.SetRepositoryMetadata(context.Background(), &repo); err != nil {
			log.Printf("Failed to cache repository metadata: %v", err)
		}
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Repository created successfully", repo))
}

// ListRepositories returns the caller's repositories, optionally filtered by
// archive status.
func (h *RepositoryHandler) ListRepositories(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	query := h.db.Where("user_id = ?", currentUserID)
	switch c.Query("archived") {
	case "true":
		query = query.Where("is_archived = ?", true)
	case "false":
		query = query.Where("is_archived = ?", false)
	}

	var repos []models.Repository
	if err := query.Order("created_at DESC").Find(&repos).Error; err != nil {
		log.Printf("Failed to list repositories: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch repositories", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewListResponse(repos, len(repos)))
}

// findOwnedRepository loads a repository filtered by both id and owner. A
// repository owned by someone else is indistinguishable from a missing one.
func (h *RepositoryHandler) findOwnedRepository(c *gin.Context, repoID uuid.UUID, userID uuid.UUID) (*models.Repository, bool) {
	var repo models.Repository
	err := h.db.Where("id = ? AND user_id = ?", repoID, userID).First(&repo).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Repository not found", nil))
		return nil, false
	}
	if err != nil {
		log.Printf("Database error when finding repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to retrieve repository", nil))
		return nil, false
	}
	return &repo, true
}

// GetRepository returns one repository with its node count.
func (h *RepositoryHandler) GetRepository(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	repoID, err := uuid.Parse(c.Param("repositoryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
		return
	}

	userID := currentUserID.(uuid.UUID)

	// Cache is consulted first, but the ownership filter still applies: a
	// cached repository owned by someone else reads as not found.
	var repo *models.Repository
	if h.redisService != nil {
		cached, err := h.redisService.GetRepositoryMetadata(context.Background(), repoID)
		if err != nil {
			log.Printf("Cache error when getting repository metadata: %v", err)
		}
		if cached != nil && cached.UserID == userID {
			repo = cached
		}
	}

	if repo == nil {
		found, ok := h.findOwnedRepository(c, repoID, userID)
		if !ok {
			return
		}
		repo = found

		if h.redisService != nil {
			if err := h.redisService.SetRepositoryMetadata(context.Background(), repo); err != nil {
				log.Printf("Failed to cache repository metadata: %v", err)
			}
		}
	}

	var nodeCount int64
	if err := h.db.Model(&models.TimelineNode{}).Where("repository_id = ?", repoID).Count(&nodeCount).Error; err != nil {
		log.Printf("Failed to count timeline nodes: %v", err)
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"id":          repo.ID,
			"userId":      repo.UserID,
			"name":        repo.Name,
			"description": repo.Description,
			"color":       repo.Color,
			"isArchived":  repo.IsArchived,
			"createdAt":   repo.CreatedAt,
			"updatedAt":   repo.UpdatedAt,
			"nodeCount":   nodeCount,
		},
	})
}

// UpdateRepository updates name/description/color.
func (h *RepositoryHandler) UpdateRepository(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	repoID, err := uuid.Parse(c.Param("repositoryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
		return
	}

	var req dto.UpdateRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	repo, ok := h.findOwnedRepository(c, repoID, currentUserID.(uuid.UUID))
	if !ok {
		return
	}

	if req.Name != nil && *req.Name != "" {
		repo.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		repo.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil && *req.Color != "" {
		repo.Color = *req.Color
	}

	if err := h.db.Save(repo).Error; err != nil {
		log.Printf("Failed to update repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update repository", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.RepositoryUpdated, events.AssetTypeRepository, repo.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish repository updated event: %v", err)
		}
	}

	if h.redisService != nil {
		if err := h.redisService.SetRepositoryMetadata(context.Background(), repo); err != nil {
			log.Printf("Failed to update repository cache: %v", err)
		}
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Repository updated successfully", repo))
}

// DeleteRepository archives by default; ?permanent=true cascades a hard
// delete through the repository's timeline nodes and their attachments.
func (h *RepositoryHandler) DeleteRepository(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	repoID, err := uuid.Parse(c.Param("repositoryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
		return
	}

	repo, ok := h.findOwnedRepository(c, repoID, currentUserID.(uuid.UUID))
	if !ok {
		return
	}

	if c.Query("permanent") == "true" {
		err := h.db.Transaction(func(tx *gorm.DB) error {
			return hardDeleteRepository(tx, repo.ID)
		})
		if err != nil {
			log.Printf("Failed to delete repository: %v", err)
			c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete repository", nil))
			return
		}

		if h.kafkaProducer != nil {
			event := events.NewAssetEvent(events.RepositoryDeleted, events.AssetTypeRepository, repo.ID, repo.UserID)
			if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
				log.Printf("Failed to publish repository deleted event: %v", err)
			}
		}

		if h.redisService != nil {
			if err := h.redisService.InvalidateRepositoryMetadata(context.Background(), repo.ID); err != nil {
				log.Printf("Failed to invalidate repository cache: %v", err)
			}
		}

		c.JSON(http.StatusOK, responses.NewSuccessResponse("Repository permanently deleted", nil))
		return
	}

	repo.IsArchived = true
	if err := h.db.Save(repo).Error; err != nil {
		log.Printf("Failed to archive repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete repository", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.RepositoryArchived, events.AssetTypeRepository, repo.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish repository archived event: %v", err)
		}
	}

	if h.redisService != nil {
		if err := h.redisService.SetRepositoryMetadata(context.Background(), repo); err != nil {
			log.Printf("Failed to update repository cache: %v", err)
		}
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Repository archived successfully", repo))
}

// hardDeleteRepository removes a repository and everything under it.
// Children go first so a failure cannot orphan nodes.
func hardDeleteRepository(tx *gorm.DB, repoID uuid.UUID) error {
	var nodeIDs []uuid.UUID
	if err := tx.Model(&models.TimelineNode{}).
		Where("repository_id = ?", repoID).
		Pluck("id", &nodeIDs).Error; err != nil {
		return err
	}

	if len(nodeIDs) > 0 {
		if err := tx.Where("node_id IN ?", nodeIDs).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("repository_id = ?", repoID).Delete(&models.TimelineNode{}).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&models.Repository{}, "id = ?", repoID).Error
}

// RestoreRepository clears the archived flag.
func (h *RepositoryHandler) RestoreRepository(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	repoID, err := uuid.Parse(c.Param("repositoryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
		return
	}

	repo, ok := h.findOwnedRepository(c, repoID, currentUserID.(uuid.UUID))
	if !ok {
		return
	}

	repo.IsArchived = false
	if err := h.db.Save(repo).Error; err != nil {
		log.Printf("Failed to restore repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to restore repository", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.RepositoryRestored, events.AssetTypeRepository, repo.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish repository restored event: %v", err)
		}
	}

	if h.redisService != nil {
		if err := h.redisService.SetRepositoryMetadata(context.Background(), repo); err != nil {
			log.Printf("Failed to update repository cache: %v", err)
		}
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Repository restored successfully", repo))
}

// GetRepositoryTimeline lists the repository's nodes with sorting and tag
// filtering.
func (h *RepositoryHandler) GetRepositoryTimeline(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	repoID, err := uuid.Parse(c.Param("repositoryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
		return
	}

	if _, ok := h.findOwnedRepository(c, repoID, currentUserID.(uuid.UUID)); !ok {
		return
	}

	query := h.db.Preload("Attachments").Where("repository_id = ?", repoID)

	if cond := tagFilter(h.db, c.Query("tags")); cond != nil {
		query = query.Where(cond)
	}

	sortField := "date"
	if c.Query("sort") == "created" {
		sortField = "created_at"
	}
	order := "DESC"
	if c.Query("order") == "asc" {
		order = "ASC"
	}

	var nodes []models.TimelineNode
	if err := query.Order(sortField + " " + order).Find(&nodes).Error; err != nil {
		log.Printf("Failed to fetch timeline: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch timeline", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewListResponse(nodes, len(nodes)))
}
