package quota

import (
	"testing"
	"time"

	"github.com/nadil1995/notehive2/internal/database"
	"github.com/nadil1995/notehive2/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, used, limit int64) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "quota-" + uuid.NewString()[:8],
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Plan:         models.PlanFree,
		StorageUsed:  used,
		StorageLimit: limit,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCheckUploadShortfall(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	user := seedUser(t, db, 900, 1000)

	result, err := svc.CheckUpload(user.ID, 150)
	require.NoError(t, err)
	assert.False(t, result.CanUpload)
	assert.Equal(t, int64(900), result.CurrentUsage)
	assert.Equal(t, int64(1000), result.Limit)
	assert.Equal(t, int64(1050), result.WouldBeTotal)
	assert.Equal(t, int64(50), result.SpaceNeeded)

	result, err = svc.CheckUpload(user.ID, 50)
	require.NoError(t, err)
	assert.True(t, result.CanUpload)
	assert.Equal(t, int64(0), result.SpaceNeeded)
}

func TestCommitUploadRespectsCeiling(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	user := seedUser(t, db, 900, 1000)

	updated, err := svc.CommitUpload(user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), updated.StorageUsed)

	// Counter is at the limit now; any further commit must be rejected and
	// leave the counter untouched.
	updated, err = svc.CommitUpload(user.ID, 1)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int64(1000), updated.StorageUsed)
}

func TestReleaseFloorsAtZero(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	user := seedUser(t, db, 100, 1000)

	require.NoError(t, svc.Release(user.ID, 40))
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, int64(60), reloaded.StorageUsed)

	require.NoError(t, svc.Release(user.ID, 500))
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, int64(0), reloaded.StorageUsed)
}

func TestMaxFileSizeTable(t *testing.T) {
	assert.Equal(t, int64(100*1024*1024), MaxFileSize(models.PlanFree))
	assert.Equal(t, int64(500*1024*1024), MaxFileSize(models.PlanPro))
	assert.Equal(t, int64(2*1024*1024*1024), MaxFileSize(models.PlanEnterprise))
	assert.Equal(t, int64(100*1024*1024), MaxFileSize("unknown"))
}

func TestCheckFileSize(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	assert.NoError(t, svc.CheckFileSize(models.PlanFree, 100*1024*1024))
	assert.ErrorIs(t, svc.CheckFileSize(models.PlanFree, 100*1024*1024+1), ErrFileTooLarge)
}

func TestBreakdownOrderingAndPercentages(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)
	user := seedUser(t, db, 1000, 10000)

	small := models.Repository{ID: uuid.New(), UserID: user.ID, Name: "small", Color: "#3B82F6"}
	large := models.Repository{ID: uuid.New(), UserID: user.ID, Name: "large", Color: "#3B82F6"}
	require.NoError(t, db.Create(&small).Error)
	require.NoError(t, db.Create(&large).Error)

	smallNode := models.TimelineNode{ID: uuid.New(), RepositoryID: small.ID, Title: "a", Date: time.Now(), Color: "#FFFFFF"}
	largeNode := models.TimelineNode{ID: uuid.New(), RepositoryID: large.ID, Title: "b", Date: time.Now(), Color: "#FFFFFF"}
	require.NoError(t, db.Create(&smallNode).Error)
	require.NoError(t, db.Create(&largeNode).Error)

	require.NoError(t, db.Create(&models.Attachment{
		ID: uuid.New(), NodeID: smallNode.ID, Filename: "a.pdf", FileType: models.FileTypePDF, FileSize: 250,
	}).Error)
	require.NoError(t, db.Create(&models.Attachment{
		ID: uuid.New(), NodeID: largeNode.ID, Filename: "b.pdf", FileType: models.FileTypePDF, FileSize: 500,
	}).Error)
	require.NoError(t, db.Create(&models.Attachment{
		ID: uuid.New(), NodeID: largeNode.ID, Filename: "c.pdf", FileType: models.FileTypePDF, FileSize: 250,
	}).Error)

	rows, total, err := svc.Breakdown(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)
	require.Len(t, rows, 2)

	assert.Equal(t, "large", rows[0].RepositoryName)
	assert.Equal(t, int64(750), rows[0].StorageUsed)
	assert.Equal(t, int64(2), rows[0].FileCount)
	assert.Equal(t, 75, rows[0].Percentage)

	assert.Equal(t, "small", rows[1].RepositoryName)
	assert.Equal(t, int64(250), rows[1].StorageUsed)
	assert.Equal(t, 25, rows[1].Percentage)
}
