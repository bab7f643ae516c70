package router

import (
	"github.com/nadil1995/notehive2/internal/handlers"

	"github.com/gin-gonic/gin"
)

// AdminRoutes defines routes for user administration and analytics.
// The caller mounts these behind the admin role gate.
func AdminRoutes(rg *gin.RouterGroup, adminHandler *handlers.AdminHandler) {
	users := rg.Group("/users")
	{
		users.GET("", adminHandler.ListUsers)
		users.GET("/:userId", adminHandler.GetUser)
		users.PUT("/:userId", adminHandler.UpdateUser)
		users.PUT("/:userId/plan", adminHandler.ChangePlan)
		users.POST("/:userId/suspend", adminHandler.SuspendUser)
		users.POST("/:userId/unsuspend", adminHandler.UnsuspendUser)
		users.PUT("/:userId/storage", adminHandler.AdjustStorage)
		users.DELETE("/:userId", adminHandler.DeleteUser)
	}

	analytics := rg.Group("/analytics")
	{
		analytics.GET("/users", adminHandler.UserAnalytics)
		analytics.GET("/storage", adminHandler.StorageAnalytics)
		analytics.GET("/activity", adminHandler.ActivityAnalytics)
	}

	rg.GET("/audit-logs", adminHandler.ListAuditLogs)

	system := rg.Group("/system")
	{
		system.GET("/health", adminHandler.SystemHealth)
		system.GET("/stats", adminHandler.SystemStats)
	}
}
