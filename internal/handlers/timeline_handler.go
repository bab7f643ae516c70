package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nadil1995/notehive2/internal/dto"
	"github.com/nadil1995/notehive2/internal/events"
	"github.com/nadil1995/notehive2/internal/kafka"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimelineHandler struct {
	db            *gorm.DB
	kafkaProducer *kafka.Producer
}

func NewTimelineHandler(db *gorm.DB, kafkaProducer *kafka.Producer) *TimelineHandler {
	return &TimelineHandler{db: db, kafkaProducer: kafkaProducer}
}

// tagFilter builds an OR'd condition matching any of the comma-separated
// tags against the JSON-serialized tags column. Nil when no usable tag was
// given.
func tagFilter(db *gorm.DB, tags string) *gorm.DB {
	var cond *gorm.DB
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		pattern := "%\"" + tag + "\"%"
		if cond == nil {
			cond = db.Where("tags LIKE ?", pattern)
		} else {
			cond = cond.Or("tags LIKE ?", pattern)
		}
	}
	return cond
}

// findNodeWithAccess enforces the transitive ownership rule: a missing node
// is 404, a node whose parent repository belongs to someone else is 403.
func (h *TimelineHandler) findNodeWithAccess(c *gin.Context, nodeID uuid.UUID, userID uuid.UUID, preloadAttachments bool) (*models.TimelineNode, *models.Repository, bool) {
	query := h.db
	if preloadAttachments {
		query = query.Preload("Attachments")
	}

	var node models.TimelineNode
	err := query.First(&node, "id = ?", nodeID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Timeline node not found", nil))
		return nil, nil, false
	}
	if err != nil {
		log.Printf("Database error when finding timeline node: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to retrieve timeline node", nil))
		return nil, nil, false
	}

	var repo models.Repository
	if err := h.db.First(&repo, "id = ?", node.RepositoryID).Error; err != nil {
		log.Printf("Database error when finding parent repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to retrieve timeline node", nil))
		return nil, nil, false
	}
	if repo.UserID != userID {
		c.JSON(http.StatusForbidden, responses.NewErrorResponse("Access denied", nil))
		return nil, nil, false
	}

	return &node, &repo, true
}

// CreateNode creates a timeline node inside one of the caller's repositories.
func (h *TimelineHandler) CreateNode(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	var req dto.CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("repositoryId, title and date are required", err.Error()))
		return
	}

	date, err := parseNodeDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid date format", nil))
		return
	}

	// Direct repository lookup carries the owner filter, so a repository
	// owned by someone else is indistinguishable from a missing one.
	var repo models.Repository
	err = h.db.Where("id = ? AND user_id = ?", req.RepositoryID, currentUserID.(uuid.UUID)).First(&repo).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("Repository not found", nil))
		return
	}
	if err != nil {
		log.Printf("Database error when finding repository: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to create timeline node", nil))
		return
	}

	color := req.Color
	if color == "" {
		color = "#FFFFFF"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	node := models.TimelineNode{
		ID:           uuid.New(),
		RepositoryID: repo.ID,
		Title:        strings.TrimSpace(req.Title),
		Date:         date,
		Content:      req.Content,
		Tags:         tags,
		Color:        color,
	}

	if err := h.db.Create(&node).Error; err != nil {
		log.Printf("Failed to create timeline node: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to create timeline node", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.NodeCreated, events.AssetTypeNode, node.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish node created event: %v", err)
		}
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Timeline node created successfully", node))
}

// ListNodes lists nodes across all of the caller's repositories with
// optional repository, tag and date-range filters.
func (h *TimelineHandler) ListNodes(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	query := h.db.Preload("Attachments").
		Joins("JOIN repositories ON repositories.id = timeline_nodes.repository_id").
		Where("repositories.user_id = ?", currentUserID)

	if repoParam := c.Query("repositoryId"); repoParam != "" {
		repoID, err := uuid.Parse(repoParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
			return
		}
		query = query.Where("timeline_nodes.repository_id = ?", repoID)
	}

	if cond := tagFilter(h.db, c.Query("tags")); cond != nil {
		query = query.Where(cond)
	}

	if start := c.Query("startDate"); start != "" {
		startDate, err := parseNodeDate(start)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid startDate format", nil))
			return
		}
		query = query.Where("timeline_nodes.date >= ?", startDate)
	}
	if end := c.Query("endDate"); end != "" {
		endDate, err := parseNodeDate(end)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid endDate format", nil))
			return
		}
		query = query.Where("timeline_nodes.date <= ?", endDate)
	}

	sortField := "timeline_nodes.date"
	if c.Query("sort") == "created" {
		sortField = "timeline_nodes.created_at"
	}
	order := "DESC"
	if c.Query("order") == "asc" {
		order = "ASC"
	}

	var nodes []models.TimelineNode
	if err := query.Order(sortField + " " + order).Find(&nodes).Error; err != nil {
		log.Printf("Failed to list timeline nodes: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch timeline nodes", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewListResponse(nodes, len(nodes)))
}

// SearchNodes performs a case-insensitive search over title, content and
// tags within the caller's repositories.
func (h *TimelineHandler) SearchNodes(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Search query is required", nil))
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	query := h.db.Preload("Attachments").
		Joins("JOIN repositories ON repositories.id = timeline_nodes.repository_id").
		Where("repositories.user_id = ?", currentUserID).
		Where(h.db.Where("LOWER(timeline_nodes.title) LIKE ?", pattern).
			Or("LOWER(timeline_nodes.content) LIKE ?", pattern).
			Or("LOWER(timeline_nodes.tags) LIKE ?", pattern))

	if repoParam := c.Query("repositoryId"); repoParam != "" {
		repoID, err := uuid.Parse(repoParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid repository ID format", nil))
			return
		}
		query = query.Where("timeline_nodes.repository_id = ?", repoID)
	}

	var nodes []models.TimelineNode
	if err := query.Order("timeline_nodes.date DESC").Find(&nodes).Error; err != nil {
		log.Printf("Failed to search timeline nodes: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Search failed", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewListResponse(nodes, len(nodes)))
}

// GetNode returns one node with its attachments.
func (h *TimelineHandler) GetNode(c *gin.Context) {
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

	node, _, ok := h.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{Success: true, Data: node})
}

// UpdateNode updates title/date/content/tags/color.
func (h *TimelineHandler) UpdateNode(c *gin.Context) {
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

	var req dto.UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	node, repo, ok := h.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), false)
	if !ok {
		return
	}

	if req.Title != nil && *req.Title != "" {
		node.Title = strings.TrimSpace(*req.Title)
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseNodeDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid date format", nil))
			return
		}
		node.Date = date
	}
	if req.Content != nil {
		node.Content = *req.Content
	}
	if req.Tags != nil {
		node.Tags = *req.Tags
	}
	if req.Color != nil && *req.Color != "" {
		node.Color = *req.Color
	}

	if err := h.db.Save(node).Error; err != nil {
		log.Printf("Failed to update timeline node: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update timeline node", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.NodeUpdated, events.AssetTypeNode, node.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish node updated event: %v", err)
		}
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Timeline node updated successfully", node))
}

// DeleteNode removes a node and its attachment rows.
func (h *TimelineHandler) DeleteNode(c *gin.Context) {
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

	node, repo, ok := h.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), false)
	if !ok {
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("node_id = ?", node.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TimelineNode{}, "id = ?", node.ID).Error
	})
	if err != nil {
		log.Printf("Failed to delete timeline node: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete timeline node", nil))
		return
	}

	if h.kafkaProducer != nil {
		event := events.NewAssetEvent(events.NodeDeleted, events.AssetTypeNode, node.ID, repo.UserID)
		if err := h.kafkaProducer.PublishAssetEvent(context.Background(), event); err != nil {
			log.Printf("Failed to publish node deleted event: %v", err)
		}
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Timeline node deleted successfully", nil))
}

// ListAttachments lists a node's attachments.
func (h *TimelineHandler) ListAttachments(c *gin.Context) {
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

	node, _, ok := h.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), true)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, responses.NewListResponse(node.Attachments, len(node.Attachments)))
}

// AddAttachment registers an already-stored file against a node. The upload
// endpoint handles quota; this path is for externally uploaded objects.
func (h *TimelineHandler) AddAttachment(c *gin.Context) {
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

	var req dto.AddAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("filename, fileType, storageKey and fileUrl are required", err.Error()))
		return
	}

	node, _, ok := h.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), false)
	if !ok {
		return
	}

	attachment := models.Attachment{
		ID:         uuid.New(),
		NodeID:     node.ID,
		Filename:   req.Filename,
		FileType:   req.FileType,
		FileSize:   req.FileSize,
		StorageKey: req.StorageKey,
		FileURL:    req.FileURL,
		UploadedAt: time.Now(),
	}

	if err := h.db.Create(&attachment).Error; err != nil {
		log.Printf("Failed to add attachment: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to add attachment", nil))
		return
	}

	c.JSON(http.StatusCreated, responses.NewSuccessResponse("Attachment added successfully", attachment))
}

// RemoveAttachment deletes one attachment row from a node.
func (h *TimelineHandler) RemoveAttachment(c *gin.Context) {
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

	node, _, ok := h.findNodeWithAccess(c, nodeID, currentUserID.(uuid.UUID), false)
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
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to remove attachment", nil))
		return
	}

	if err := h.db.Delete(&attachment).Error; err != nil {
		log.Printf("Failed to remove attachment: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to remove attachment", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Attachment removed successfully", nil))
}

// parseNodeDate accepts RFC3339 or plain YYYY-MM-DD.
func parseNodeDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
