package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nadil1995/notehive2/internal/database"
	"github.com/nadil1995/notehive2/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "user-" + uuid.NewString()[:8],
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Plan:         models.PlanFree,
		StorageLimit: models.DefaultStorageLimit,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedRepository(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *models.Repository {
	t.Helper()
	repo := &models.Repository{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
		Color:  "#3B82F6",
	}
	require.NoError(t, db.Create(repo).Error)
	return repo
}

func seedNode(t *testing.T, db *gorm.DB, repoID uuid.UUID, title string) *models.TimelineNode {
	t.Helper()
	node := &models.TimelineNode{
		ID:           uuid.New(),
		RepositoryID: repoID,
		Title:        title,
		Date:         time.Now(),
		Tags:         []string{},
		Color:        "#FFFFFF",
	}
	require.NoError(t, db.Create(node).Error)
	return node
}

func seedAttachment(t *testing.T, db *gorm.DB, nodeID uuid.UUID, size int64) *models.Attachment {
	t.Helper()
	attachment := &models.Attachment{
		ID:         uuid.New(),
		NodeID:     nodeID,
		Filename:   "file.pdf",
		FileType:   models.FileTypePDF,
		FileSize:   size,
		StorageKey: "key/" + uuid.NewString(),
		UploadedAt: time.Now(),
	}
	require.NoError(t, db.Create(attachment).Error)
	return attachment
}

// testRequest builds a gin context carrying an authenticated user, an
// optional JSON body and path params, plus the recorder to inspect.
func testRequest(t *testing.T, method, path string, userID uuid.UUID, body interface{}, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	c.Params = params
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
