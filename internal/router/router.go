package router

import (
	"net/http"
	"time"

	"github.com/nadil1995/notehive2/internal/auth"
	"github.com/nadil1995/notehive2/internal/handlers"
	"github.com/nadil1995/notehive2/internal/middleware"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/internal/redis"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// Handlers bundles everything the route tree needs.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Repository *handlers.RepositoryHandler
	Timeline   *handlers.TimelineHandler
	Storage    *handlers.StorageHandler
	Upload     *handlers.UploadHandler
	Admin      *handlers.AdminHandler
	Note       *handlers.NoteHandler
}

func SetupRouter(router *gin.Engine, tokens *auth.TokenManager, cache *redis.Service, h Handlers) {
	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now(),
			"uptime":    time.Since(startedAt).String(),
		})
	})

	AuthRoutes(api, h.Auth, tokens, cache)
	NoteRoutes(api, h.Note)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	RepositoryRoutes(protected, h.Repository)
	TimelineRoutes(protected, h.Timeline)
	StorageRoutes(protected, h.Storage)
	UploadRoutes(protected, h.Upload)

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	AdminRoutes(admin, h.Admin)
}
