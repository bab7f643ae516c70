package handlers

import (
	"net/http"
	"testing"

	"github.com/nadil1995/notehive2/internal/database"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/quota"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStorageHandler(t *testing.T) (*StorageHandler, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	require.NoError(t, database.SeedPlans(db))
	return NewStorageHandler(db, quota.NewService(db)), db
}

func setUsage(t *testing.T, db *gorm.DB, user *models.User, used, limit int64) {
	t.Helper()
	require.NoError(t, db.Model(user).Updates(map[string]interface{}{
		"storage_used":  used,
		"storage_limit": limit,
	}).Error)
}

func TestGetUsageWarnings(t *testing.T) {
	h, db := newStorageHandler(t)
	user := seedUser(t, db, models.RoleUser)

	// Below 75%: no warning
	setUsage(t, db, user, 500, 1000)
	c, w := testRequest(t, "GET", "/api/storage/usage", user.ID, nil)
	h.GetUsage(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Empty(t, data["warning"])
	assert.Equal(t, float64(50), data["percentUsed"])
	assert.Equal(t, float64(500), data["remaining"])

	// 75% threshold
	setUsage(t, db, user, 750, 1000)
	c, w = testRequest(t, "GET", "/api/storage/usage", user.ID, nil)
	h.GetUsage(c)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Contains(t, data["warning"], "75%")

	// 90% threshold
	setUsage(t, db, user, 950, 1000)
	c, w = testRequest(t, "GET", "/api/storage/usage", user.ID, nil)
	h.GetUsage(c)
	data = decodeBody(t, w)["data"].(map[string]interface{})
	assert.Contains(t, data["warning"], "almost full")
}

func TestCheckUploadRejectsNonPositiveSize(t *testing.T) {
	h, db := newStorageHandler(t)
	user := seedUser(t, db, models.RoleUser)

	for _, size := range []int64{0, -10} {
		c, w := testRequest(t, "POST", "/api/storage/check", user.ID, gin.H{
			"fileName": "x.pdf",
			"fileSize": size,
		})
		h.CheckUpload(c)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestUpdateUsageOverflow(t *testing.T) {
	h, db := newStorageHandler(t)
	user := seedUser(t, db, models.RoleUser)
	setUsage(t, db, user, 900, 1000)

	c, w := testRequest(t, "POST", "/api/storage/update", user.ID, gin.H{
		"fileName": "big.bin",
		"fileSize": 150,
	})
	h.UpdateUsage(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	details := body["details"].(map[string]interface{})
	assert.Equal(t, float64(50), details["wouldExceedBy"])

	// Counter unchanged after the rejection
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, int64(900), reloaded.StorageUsed)

	// A fitting commit succeeds
	c, w = testRequest(t, "POST", "/api/storage/update", user.ID, gin.H{
		"fileName": "small.bin",
		"fileSize": 100,
	})
	h.UpdateUsage(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, int64(1000), reloaded.StorageUsed)
}

func TestGetBreakdown(t *testing.T) {
	h, db := newStorageHandler(t)
	user := seedUser(t, db, models.RoleUser)
	setUsage(t, db, user, 300, 1000)

	repo := seedRepository(t, db, user.ID, "docs")
	node := seedNode(t, db, repo.ID, "entry")
	seedAttachment(t, db, node.ID, 300)

	c, w := testRequest(t, "GET", "/api/storage/breakdown", user.ID, nil)
	h.GetBreakdown(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(300), data["totalUsed"])
	repos := data["repositories"].([]interface{})
	require.Len(t, repos, 1)
	assert.Equal(t, float64(100), repos[0].(map[string]interface{})["percentage"])
}

func TestGetPlanCatalog(t *testing.T) {
	h, db := newStorageHandler(t)
	user := seedUser(t, db, models.RoleUser)

	c, w := testRequest(t, "GET", "/api/storage/plan", user.ID, nil)
	h.GetPlan(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, models.PlanFree, data["currentPlan"])
	plans := data["plans"].([]interface{})
	assert.Len(t, plans, 3)

	// Catalog is ordered by storage limit ascending
	first := plans[0].(map[string]interface{})
	assert.Equal(t, models.PlanFree, first["name"])
}
