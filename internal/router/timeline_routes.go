package router

import (
	"github.com/nadil1995/notehive2/internal/handlers"

	"github.com/gin-gonic/gin"
)

// TimelineRoutes defines routes for timeline nodes and their attachments
func TimelineRoutes(rg *gin.RouterGroup, timelineHandler *handlers.TimelineHandler) {
	timeline := rg.Group("/timeline")
	{
		timeline.POST("", timelineHandler.CreateNode)
		timeline.GET("", timelineHandler.ListNodes)
		timeline.GET("/search", timelineHandler.SearchNodes)
		timeline.GET("/:nodeId", timelineHandler.GetNode)
		timeline.PUT("/:nodeId", timelineHandler.UpdateNode)
		timeline.DELETE("/:nodeId", timelineHandler.DeleteNode)

		timeline.GET("/:nodeId/attachments", timelineHandler.ListAttachments)
		timeline.POST("/:nodeId/attachments", timelineHandler.AddAttachment)
		timeline.DELETE("/:nodeId/attachments/:attachmentId", timelineHandler.RemoveAttachment)
	}
}
