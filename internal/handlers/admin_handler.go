package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nadil1995/notehive2/internal/audit"
	"github.com/nadil1995/notehive2/internal/dto"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/quota"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db        *gorm.DB
	recorder  *audit.Recorder
	startedAt time.Time
}

func NewAdminHandler(db *gorm.DB, recorder *audit.Recorder) *AdminHandler {
	return &AdminHandler{db: db, recorder: recorder, startedAt: time.Now()}
}

func adminID(c *gin.Context) uuid.UUID {
	id, _ := c.Get("user_id")
	return id.(uuid.UUID)
}

func (h *AdminHandler) findUser(c *gin.Context, param string) (*models.User, bool) {
	userID, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid user ID format", nil))
		return nil, false
	}

	var user models.User
	err = h.db.First(&user, "id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("User not found", nil))
		return nil, false
	}
	if err != nil {
		log.Printf("Database error when finding user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to retrieve user", nil))
		return nil, false
	}
	return &user, true
}

// ListUsers returns a paginated, filterable user listing.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := h.db.Model(&models.User{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?",
			pattern, pattern, pattern)
	}
	if plan := c.Query("plan"); plan != "" {
		query = query.Where("plan = ?", plan)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count users: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch users", nil))
		return
	}

	sortField := "created_at"
	switch c.Query("sort") {
	case "username":
		sortField = "username"
	case "email":
		sortField = "email"
	case "storage":
		sortField = "storage_used"
	}
	order := "DESC"
	if c.Query("order") == "asc" {
		order = "ASC"
	}

	var users []models.User
	if err := query.Order(sortField + " " + order).
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error; err != nil {
		log.Printf("Failed to list users: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch users", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewPagedResponse(users, page, limit, total))
}

// GetUser returns one user with ownership counts and plan details.
func (h *AdminHandler) GetUser(c *gin.Context) {
	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	var repoCount, nodeCount int64
	if err := h.db.Model(&models.Repository{}).Where("user_id = ?", user.ID).Count(&repoCount).Error; err != nil {
		log.Printf("Failed to count repositories: %v", err)
	}
	if err := h.db.Model(&models.TimelineNode{}).
		Joins("JOIN repositories ON repositories.id = timeline_nodes.repository_id").
		Where("repositories.user_id = ?", user.ID).
		Count(&nodeCount).Error; err != nil {
		log.Printf("Failed to count timeline nodes: %v", err)
	}

	percent := 0.0
	if user.StorageLimit > 0 {
		percent = float64(user.StorageUsed) / float64(user.StorageLimit) * 100
	}

	var plan models.Plan
	planDetails := interface{}(nil)
	if err := h.db.Where("name = ?", user.Plan).First(&plan).Error; err == nil {
		planDetails = plan
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"user":            user,
			"repositoryCount": repoCount,
			"nodeCount":       nodeCount,
			"storagePercent":  percent,
			"maxFileSize":     quota.MaxFileSize(user.Plan),
			"planDetails":     planDetails,
		},
	})
}

// UpdateUser edits displayName/email/isActive and records the change.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Validation failed", err.Error()))
		return
	}

	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	changes := map[string]interface{}{}
	if req.DisplayName != nil {
		changes["displayName"] = gin.H{"old": user.DisplayName, "new": *req.DisplayName}
		user.DisplayName = *req.DisplayName
	}
	if req.Email != nil && *req.Email != "" {
		email := *req.Email
		var count int64
		h.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, responses.NewErrorResponse("Email already in use", nil))
			return
		}
		changes["email"] = gin.H{"old": user.Email, "new": email}
		user.Email = email
	}
	if req.IsActive != nil {
		changes["isActive"] = gin.H{"old": user.IsActive, "new": *req.IsActive}
		user.IsActive = *req.IsActive
	}

	if err := h.db.Save(user).Error; err != nil {
		log.Printf("Failed to update user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update user", nil))
		return
	}

	h.recorder.Record(adminID(c), models.ActionUserUpdated, &user.ID, changes)

	c.JSON(http.StatusOK, responses.NewSuccessResponse("User updated successfully", user))
}

// ChangePlan switches the user to a plan row and copies its StorageLimit.
func (h *AdminHandler) ChangePlan(c *gin.Context) {
	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("planName is required", err.Error()))
		return
	}

	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	var plan models.Plan
	err := h.db.Where("name = ? AND is_active = ?", req.PlanName, true).First(&plan).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Unknown plan", gin.H{"planName": req.PlanName}))
		return
	}
	if err != nil {
		log.Printf("Failed to load plan: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to change plan", nil))
		return
	}

	oldPlan := user.Plan
	oldLimit := user.StorageLimit
	user.Plan = plan.Name
	user.StorageLimit = plan.StorageLimit

	if err := h.db.Save(user).Error; err != nil {
		log.Printf("Failed to change plan: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to change plan", nil))
		return
	}

	h.recorder.Record(adminID(c), models.ActionPlanChanged, &user.ID, map[string]interface{}{
		"oldPlan":         oldPlan,
		"newPlan":         plan.Name,
		"oldStorageLimit": oldLimit,
		"newStorageLimit": plan.StorageLimit,
	})

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Plan changed successfully", user))
}

// SuspendUser deactivates the account and revokes its refresh tokens.
func (h *AdminHandler) SuspendUser(c *gin.Context) {
	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	if user.ID == adminID(c) {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Cannot suspend your own account", nil))
		return
	}

	user.IsActive = false
	if err := h.db.Save(user).Error; err != nil {
		log.Printf("Failed to suspend user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to suspend user", nil))
		return
	}

	if err := h.db.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
		log.Printf("Failed to revoke refresh tokens: %v", err)
	}

	h.recorder.Record(adminID(c), models.ActionUserSuspended, &user.ID, map[string]interface{}{
		"suspended": true,
	})

	c.JSON(http.StatusOK, responses.NewSuccessResponse("User suspended successfully", user))
}

// UnsuspendUser reactivates the account.
func (h *AdminHandler) UnsuspendUser(c *gin.Context) {
	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	user.IsActive = true
	if err := h.db.Save(user).Error; err != nil {
		log.Printf("Failed to unsuspend user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to unsuspend user", nil))
		return
	}

	h.recorder.Record(adminID(c), models.ActionUserSuspended, &user.ID, map[string]interface{}{
		"suspended": false,
	})

	c.JSON(http.StatusOK, responses.NewSuccessResponse("User unsuspended successfully", user))
}

// AdjustStorage sets a custom storage limit for the user.
func (h *AdminHandler) AdjustStorage(c *gin.Context) {
	var req dto.AdjustStorageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("storageLimit must be a positive number", err.Error()))
		return
	}

	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	oldLimit := user.StorageLimit
	user.StorageLimit = req.StorageLimit

	if err := h.db.Save(user).Error; err != nil {
		log.Printf("Failed to adjust storage limit: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to adjust storage limit", nil))
		return
	}

	h.recorder.Record(adminID(c), models.ActionStorageAdjusted, &user.ID, map[string]interface{}{
		"oldLimit":   oldLimit,
		"newLimit":   req.StorageLimit,
		"difference": req.StorageLimit - oldLimit,
	})

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Storage limit adjusted", user))
}

// DeleteUser deactivates by default; ?permanent=true removes the user and
// everything they own in one transaction.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	user, ok := h.findUser(c, "userId")
	if !ok {
		return
	}

	if user.ID == adminID(c) {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Cannot delete your own account", nil))
		return
	}

	if c.Query("permanent") != "true" {
		user.IsActive = false
		if err := h.db.Save(user).Error; err != nil {
			log.Printf("Failed to deactivate user: %v", err)
			c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete user", nil))
			return
		}
		if err := h.db.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			log.Printf("Failed to revoke refresh tokens: %v", err)
		}

		h.recorder.Record(adminID(c), models.ActionUserDeleted, &user.ID, map[string]interface{}{
			"permanent": false,
		})

		c.JSON(http.StatusOK, responses.NewSuccessResponse("User deactivated", nil))
		return
	}

	var repoIDs []uuid.UUID
	if err := h.db.Model(&models.Repository{}).
		Where("user_id = ?", user.ID).
		Pluck("id", &repoIDs).Error; err != nil {
		log.Printf("Failed to list user repositories: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete user", nil))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, repoID := range repoIDs {
			if err := hardDeleteRepository(tx, repoID); err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", user.ID).Error
	})
	if err != nil {
		log.Printf("Failed to delete user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to delete user", nil))
		return
	}

	h.recorder.Record(adminID(c), models.ActionUserDeleted, &user.ID, map[string]interface{}{
		"permanent":           true,
		"repositoriesDeleted": len(repoIDs),
	})

	c.JSON(http.StatusOK, responses.NewSuccessResponse("User permanently deleted", gin.H{
		"repositoriesDeleted": len(repoIDs),
	}))
}

// UserAnalytics aggregates account totals.
func (h *AdminHandler) UserAnalytics(c *gin.Context) {
	var total, active, admins, newUsers int64
	h.db.Model(&models.User{}).Count(&total)
	h.db.Model(&models.User{}).Where("is_active = ?", true).Count(&active)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	h.db.Model(&models.User{}).Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).Count(&newUsers)

	type planCount struct {
		Plan  string `json:"plan"`
		Count int64  `json:"count"`
	}
	var byPlan []planCount
	if err := h.db.Model(&models.User{}).
		Select("plan, COUNT(*) AS count").
		Group("plan").
		Scan(&byPlan).Error; err != nil {
		log.Printf("Failed to aggregate users by plan: %v", err)
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"totalUsers":    total,
			"activeUsers":   active,
			"suspended":     total - active,
			"admins":        admins,
			"newLast30Days": newUsers,
			"byPlan":        byPlan,
		},
	})
}

// StorageAnalytics aggregates storage totals and the heaviest users.
func (h *AdminHandler) StorageAnalytics(c *gin.Context) {
	type totals struct {
		TotalUsed  int64 `json:"totalUsed"`
		TotalLimit int64 `json:"totalLimit"`
	}
	var t totals
	if err := h.db.Model(&models.User{}).
		Select("COALESCE(SUM(storage_used), 0) AS total_used, COALESCE(SUM(storage_limit), 0) AS total_limit").
		Scan(&t).Error; err != nil {
		log.Printf("Failed to aggregate storage totals: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to compute storage analytics", nil))
		return
	}

	type planUsage struct {
		Plan      string `json:"plan"`
		TotalUsed int64  `json:"totalUsed"`
		Users     int64  `json:"users"`
	}
	var byPlan []planUsage
	if err := h.db.Model(&models.User{}).
		Select("plan, COALESCE(SUM(storage_used), 0) AS total_used, COUNT(*) AS users").
		Group("plan").
		Scan(&byPlan).Error; err != nil {
		log.Printf("Failed to aggregate storage by plan: %v", err)
	}

	var topUsers []models.User
	if err := h.db.Order("storage_used DESC").Limit(10).Find(&topUsers).Error; err != nil {
		log.Printf("Failed to list top storage users: %v", err)
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"totalUsed":  t.TotalUsed,
			"totalLimit": t.TotalLimit,
			"byPlan":     byPlan,
			"topUsers":   topUsers,
		},
	})
}

// ActivityAnalytics reports 7-day creation and login activity.
func (h *AdminHandler) ActivityAnalytics(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -7)

	var newRepos, newNodes, activeLogins int64
	h.db.Model(&models.Repository{}).Where("created_at >= ?", since).Count(&newRepos)
	h.db.Model(&models.TimelineNode{}).Where("created_at >= ?", since).Count(&newNodes)
	h.db.Model(&models.User{}).Where("last_login >= ?", since).Count(&activeLogins)

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"periodDays":      7,
			"newRepositories": newRepos,
			"newNodes":        newNodes,
			"activeLogins":    activeLogins,
		},
	})
}

// ListAuditLogs returns the audit trail, filterable and paginated.
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	query := h.db.Model(&models.AuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if admin := c.Query("adminId"); admin != "" {
		id, err := uuid.Parse(admin)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid adminId format", nil))
			return
		}
		query = query.Where("admin_id = ?", id)
	}
	if target := c.Query("targetUser"); target != "" {
		id, err := uuid.Parse(target)
		if err != nil {
			c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid targetUser format", nil))
			return
		}
		query = query.Where("target_user = ?", id)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count audit logs: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch audit logs", nil))
		return
	}

	var logs []models.AuditLog
	if err := query.Order("timestamp DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error; err != nil {
		log.Printf("Failed to list audit logs: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to fetch audit logs", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewPagedResponse(logs, page, limit, total))
}

// SystemHealth reports process health and database reachability.
func (h *AdminHandler) SystemHealth(c *gin.Context) {
	dbStatus := "up"
	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"status":    "ok",
			"database":  dbStatus,
			"uptime":    time.Since(h.startedAt).String(),
			"timestamp": time.Now(),
		},
	})
}

// SystemStats reports table-level totals.
func (h *AdminHandler) SystemStats(c *gin.Context) {
	var users, repos, nodes, attachments, auditEntries int64
	h.db.Model(&models.User{}).Count(&users)
	h.db.Model(&models.Repository{}).Count(&repos)
	h.db.Model(&models.TimelineNode{}).Count(&nodes)
	h.db.Model(&models.Attachment{}).Count(&attachments)
	h.db.Model(&models.AuditLog{}).Count(&auditEntries)

	var storedBytes int64
	if err := h.db.Model(&models.Attachment{}).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&storedBytes).Error; err != nil {
		log.Printf("Failed to sum attachment bytes: %v", err)
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Data: gin.H{
			"users":        users,
			"repositories": repos,
			"nodes":        nodes,
			"attachments":  attachments,
			"auditEntries": auditEntries,
			"storedBytes":  storedBytes,
		},
	})
}
