package middleware

import (
	"net/http"
	"strings"

	"github.com/nadil1995/notehive2/internal/auth"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer access token and stores its claims on
// the context. Any verification failure is reported uniformly.
func AuthMiddleware(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("No authorization header provided", nil))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := tm.ParseAccessToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Invalid or expired token", nil))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group on the role claim set by AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("User not authenticated", nil))
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, responses.NewErrorResponse("Insufficient permissions", nil))
		c.Abort()
	}
}
