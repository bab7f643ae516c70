package router

import (
	"time"

	"github.com/nadil1995/notehive2/internal/auth"
	"github.com/nadil1995/notehive2/internal/handlers"
	"github.com/nadil1995/notehive2/internal/middleware"
	"github.com/nadil1995/notehive2/internal/redis"

	"github.com/gin-gonic/gin"
)

// AuthRoutes defines routes for registration, login and session management
func AuthRoutes(rg *gin.RouterGroup, authHandler *handlers.AuthHandler, tokens *auth.TokenManager, cache *redis.Service) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register",
			middleware.RateLimit(cache, "register", 3, time.Hour,
				"Too many accounts created from this IP, please try again later"),
			authHandler.Register)
		authGroup.POST("/login",
			middleware.RateLimit(cache, "login", 5, 15*time.Minute,
				"Too many login attempts, please try again later"),
			authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)

		authed := middleware.AuthMiddleware(tokens)
		authGroup.POST("/logout", authed, authHandler.Logout)
		authGroup.GET("/me", authed, authHandler.Me)
		authGroup.PUT("/profile", authed, authHandler.UpdateProfile)
		authGroup.PUT("/change-password", authed, authHandler.ChangePassword)
	}
}
