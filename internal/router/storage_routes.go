package router

import (
	"github.com/nadil1995/notehive2/internal/handlers"

	"github.com/gin-gonic/gin"
)

// StorageRoutes defines routes for quota inspection and accounting
func StorageRoutes(rg *gin.RouterGroup, storageHandler *handlers.StorageHandler) {
	storage := rg.Group("/storage")
	{
		storage.GET("/usage", storageHandler.GetUsage)
		storage.GET("/breakdown", storageHandler.GetBreakdown)
		storage.POST("/check", storageHandler.CheckUpload)
		storage.POST("/update", storageHandler.UpdateUsage)
		storage.GET("/plan", storageHandler.GetPlan)
	}
}

// UploadRoutes defines routes for file uploads and download URLs
func UploadRoutes(rg *gin.RouterGroup, uploadHandler *handlers.UploadHandler) {
	uploads := rg.Group("/uploads")
	{
		uploads.POST("/:nodeId", uploadHandler.Upload)
		uploads.POST("/check", uploadHandler.Check)
		uploads.GET("/generate-url/:nodeId/:attachmentId", uploadHandler.GenerateURL)
	}
}
