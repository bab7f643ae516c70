package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadil1995/notehive2/internal/audit"
	"github.com/nadil1995/notehive2/internal/auth"
	"github.com/nadil1995/notehive2/internal/database"
	"github.com/nadil1995/notehive2/internal/handlers"
	"github.com/nadil1995/notehive2/internal/quota"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestEngine wires the full route tree against an in-memory database,
// so requests here pass through the real middleware chain.
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedPlans(db))

	tokens := auth.NewTokenManager("test-access", "test-refresh")
	quotaService := quota.NewService(db)
	recorder := audit.NewRecorder(db, nil)

	r := gin.New()
	SetupRouter(r, tokens, nil, Handlers{
		Auth:       handlers.NewAuthHandler(db, tokens),
		Repository: handlers.NewRepositoryHandler(db, nil, nil),
		Timeline:   handlers.NewTimelineHandler(db, nil),
		Storage:    handlers.NewStorageHandler(db, quotaService),
		Upload:     handlers.NewUploadHandler(db, quotaService, nil),
		Admin:      handlers.NewAdminHandler(db, recorder),
		Note:       handlers.NewNoteHandler(db, nil),
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthRoute(t *testing.T) {
	r := newTestEngine(t)

	w := doJSON(t, r, "GET", "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["uptime"])
}

func TestLogoutOverTheWire(t *testing.T) {
	r := newTestEngine(t)

	w := doJSON(t, r, "POST", "/api/auth/register", "", gin.H{
		"username": "wirecheck",
		"email":    "wirecheck@example.com",
		"password": "Str0ng!Pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered struct {
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Tokens.AccessToken)
	require.NotEmpty(t, registered.Tokens.RefreshToken)

	// Without a bearer token the route is rejected up front
	w = doJSON(t, r, "POST", "/api/auth/logout", "", gin.H{
		"refreshToken": registered.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// With a valid access token the session is removed
	w = doJSON(t, r, "POST", "/api/auth/logout", registered.Tokens.AccessToken, gin.H{
		"refreshToken": registered.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The refresh token no longer works afterwards
	w = doJSON(t, r, "POST", "/api/auth/refresh", "", gin.H{
		"refreshToken": registered.Tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestEngine(t)

	for _, path := range []string{
		"/api/repositories",
		"/api/timeline",
		"/api/storage/usage",
		"/api/auth/me",
	} {
		w := doJSON(t, r, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
