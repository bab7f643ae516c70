package handlers

import (
	"net/http"
	"testing"

	"github.com/nadil1995/notehive2/internal/audit"
	"github.com/nadil1995/notehive2/internal/database"
	"github.com/nadil1995/notehive2/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAdminHandler(t *testing.T) (*AdminHandler, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	require.NoError(t, database.SeedPlans(db))
	return NewAdminHandler(db, audit.NewRecorder(db, nil)), db
}

func TestAdminPermanentDeleteCascades(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)
	victim := seedUser(t, db, models.RoleUser)

	// Two repositories with five nodes between them, plus attachments
	first := seedRepository(t, db, victim.ID, "first")
	second := seedRepository(t, db, victim.ID, "second")
	for i := 0; i < 3; i++ {
		node := seedNode(t, db, first.ID, "node")
		seedAttachment(t, db, node.ID, 10)
	}
	for i := 0; i < 2; i++ {
		seedNode(t, db, second.ID, "node")
	}

	param := gin.Param{Key: "userId", Value: victim.ID.String()}
	c, w := testRequest(t, "DELETE", "/api/admin/users/"+victim.ID.String()+"?permanent=true", admin.ID, nil, param)
	h.DeleteUser(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var users, repos, nodes, attachments int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Repository{}).Count(&repos)
	db.Model(&models.TimelineNode{}).Count(&nodes)
	db.Model(&models.Attachment{}).Count(&attachments)
	assert.Equal(t, int64(1), users) // only the admin remains
	assert.Zero(t, repos)
	assert.Zero(t, nodes)
	assert.Zero(t, attachments)

	// Exactly one audit entry, carrying the cascade size
	var entries []models.AuditLog
	require.NoError(t, db.Where("action = ?", models.ActionUserDeleted).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, admin.ID, entries[0].AdminID)
	require.NotNil(t, entries[0].TargetUser)
	assert.Equal(t, victim.ID, *entries[0].TargetUser)
	assert.Equal(t, float64(2), entries[0].Details["repositoriesDeleted"])
	assert.Equal(t, true, entries[0].Details["permanent"])
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)

	param := gin.Param{Key: "userId", Value: admin.ID.String()}
	c, w := testRequest(t, "DELETE", "/api/admin/users/"+admin.ID.String(), admin.ID, nil, param)
	h.DeleteUser(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePlanCopiesStorageLimit(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)
	user := seedUser(t, db, models.RoleUser)

	param := gin.Param{Key: "userId", Value: user.ID.String()}
	c, w := testRequest(t, "PUT", "/api/admin/users/"+user.ID.String()+"/plan", admin.ID, gin.H{
		"planName": models.PlanPro,
	}, param)
	h.ChangePlan(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, models.PlanPro, reloaded.Plan)

	var pro models.Plan
	require.NoError(t, db.First(&pro, "name = ?", models.PlanPro).Error)
	assert.Equal(t, pro.StorageLimit, reloaded.StorageLimit)

	var entries int64
	db.Model(&models.AuditLog{}).Where("action = ?", models.ActionPlanChanged).Count(&entries)
	assert.Equal(t, int64(1), entries)

	// Unknown plan name is rejected
	c, w = testRequest(t, "PUT", "/api/admin/users/"+user.ID.String()+"/plan", admin.ID, gin.H{
		"planName": "platinum",
	}, param)
	h.ChangePlan(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuspendRevokesSessions(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)
	user := seedUser(t, db, models.RoleUser)
	require.NoError(t, db.Create(&models.RefreshToken{
		ID: user.ID, UserID: user.ID, Token: "some-token",
	}).Error)

	param := gin.Param{Key: "userId", Value: user.ID.String()}
	c, w := testRequest(t, "POST", "/api/admin/users/"+user.ID.String()+"/suspend", admin.ID, nil, param)
	h.SuspendUser(c)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.False(t, reloaded.IsActive)

	var tokens int64
	db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Count(&tokens)
	assert.Zero(t, tokens)

	c, w = testRequest(t, "POST", "/api/admin/users/"+user.ID.String()+"/unsuspend", admin.ID, nil, param)
	h.UnsuspendUser(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.True(t, reloaded.IsActive)
}

func TestAdjustStorageAuditsDifference(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)
	user := seedUser(t, db, models.RoleUser)

	param := gin.Param{Key: "userId", Value: user.ID.String()}
	newLimit := int64(10 * 1024 * 1024 * 1024)
	c, w := testRequest(t, "PUT", "/api/admin/users/"+user.ID.String()+"/storage", admin.ID, gin.H{
		"storageLimit": newLimit,
	}, param)
	h.AdjustStorage(c)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "action = ?", models.ActionStorageAdjusted).Error)
	assert.Equal(t, float64(models.DefaultStorageLimit), entry.Details["oldLimit"])
	assert.Equal(t, float64(newLimit), entry.Details["newLimit"])
	assert.Equal(t, float64(newLimit-models.DefaultStorageLimit), entry.Details["difference"])
}

func TestListUsersPaginationAndSearch(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)
	for i := 0; i < 5; i++ {
		seedUser(t, db, models.RoleUser)
	}
	needle := seedUser(t, db, models.RoleUser)
	needle.DisplayName = "Findable Person"
	require.NoError(t, db.Save(needle).Error)

	c, w := testRequest(t, "GET", "/api/admin/users?page=1&limit=3", admin.ID, nil)
	h.ListUsers(c)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(7), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
	assert.Len(t, body["data"].([]interface{}), 3)

	c, w = testRequest(t, "GET", "/api/admin/users?search=findable", admin.ID, nil)
	h.ListUsers(c)
	body = decodeBody(t, w)
	assert.Len(t, body["data"].([]interface{}), 1)
}

func TestListAuditLogsFilters(t *testing.T) {
	h, db := newAdminHandler(t)
	admin := seedUser(t, db, models.RoleAdmin)
	user := seedUser(t, db, models.RoleUser)

	recorder := audit.NewRecorder(db, nil)
	recorder.Record(admin.ID, models.ActionUserSuspended, &user.ID, map[string]interface{}{"suspended": true})
	recorder.Record(admin.ID, models.ActionPlanChanged, &user.ID, map[string]interface{}{"newPlan": "pro"})

	c, w := testRequest(t, "GET", "/api/admin/audit-logs?action="+models.ActionPlanChanged, admin.ID, nil)
	h.ListAuditLogs(c)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["data"].([]interface{}), 1)

	c, w = testRequest(t, "GET", "/api/admin/audit-logs?targetUser="+user.ID.String(), admin.ID, nil)
	h.ListAuditLogs(c)
	body = decodeBody(t, w)
	assert.Len(t, body["data"].([]interface{}), 2)
}
