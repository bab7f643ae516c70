package router

import (
	"github.com/nadil1995/notehive2/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RepositoryRoutes defines routes for repository management
func RepositoryRoutes(rg *gin.RouterGroup, repositoryHandler *handlers.RepositoryHandler) {
	repositories := rg.Group("/repositories")
	{
		repositories.POST("", repositoryHandler.CreateRepository)
		repositories.GET("", repositoryHandler.ListRepositories)
		repositories.GET("/:repositoryId", repositoryHandler.GetRepository)
		repositories.PUT("/:repositoryId", repositoryHandler.UpdateRepository)
		repositories.DELETE("/:repositoryId", repositoryHandler.DeleteRepository)
		repositories.POST("/:repositoryId/restore", repositoryHandler.RestoreRepository)

		// Nested timeline listing
		repositories.GET("/:repositoryId/timeline", repositoryHandler.GetRepositoryTimeline)
	}
}
