package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/nadil1995/notehive2/internal/auth"
	"github.com/nadil1995/notehive2/internal/dto"
	"github.com/nadil1995/notehive2/internal/models"
	"github.com/nadil1995/notehive2/pkg/responses"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.TokenManager
}

func NewAuthHandler(db *gorm.DB, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Register creates a new account and issues an access/refresh token pair.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	// Normalize before validating: mixed-case addresses are valid input and
	// are stored lowercase.
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Username, email, and password are required", err.Error()))
		return
	}

	if policyErrors := auth.ValidatePasswordStrength(req.Password); len(policyErrors) > 0 {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Password does not meet requirements", policyErrors))
		return
	}

	email := req.Email

	var existing models.User
	err := h.db.Where("email = ? OR username = ?", email, req.Username).First(&existing).Error
	if err == nil {
		msg := "Username already taken"
		if existing.Email == email {
			msg = "Email already in use"
		}
		c.JSON(http.StatusConflict, responses.NewErrorResponse(msg, nil))
		return
	}
	if err != gorm.ErrRecordNotFound {
		log.Printf("Database error during registration: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", nil))
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", nil))
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Role:         models.RoleUser,
		Plan:         models.PlanFree,
		StorageLimit: models.DefaultStorageLimit,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		log.Printf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", nil))
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(&user)
	if err != nil {
		log.Printf("Failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", nil))
		return
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(&user)
	if err != nil {
		log.Printf("Failed to sign refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", nil))
		return
	}

	if err := h.storeRefreshToken(user.ID, refreshToken); err != nil {
		log.Printf("Failed to persist refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Registration failed", nil))
		return
	}

	c.JSON(http.StatusCreated, responses.APIResponse{
		Success: true,
		Message: "User registered successfully",
		Data: gin.H{
			"userId":      user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"displayName": user.DisplayName,
			"plan":        user.Plan,
		},
		Tokens: tokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
	})
}

// Login authenticates by email and password. Unknown email and wrong
// password produce the same message so accounts cannot be enumerated.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Email and password are required", err.Error()))
		return
	}

	var user models.User
	err := h.db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Invalid email or password", nil))
		return
	}
	if err != nil {
		log.Printf("Database error during login: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Login failed", nil))
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, responses.NewErrorResponse("Account has been suspended", nil))
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Invalid email or password", nil))
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(&user)
	if err != nil {
		log.Printf("Failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Login failed", nil))
		return
	}
	refreshToken, err := h.tokens.GenerateRefreshToken(&user)
	if err != nil {
		log.Printf("Failed to sign refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Login failed", nil))
		return
	}

	if err := h.storeRefreshToken(user.ID, refreshToken); err != nil {
		log.Printf("Failed to persist refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Login failed", nil))
		return
	}

	now := time.Now()
	user.LastLogin = &now
	if err := h.db.Model(&user).Update("last_login", now).Error; err != nil {
		log.Printf("Failed to record last login: %v", err)
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: gin.H{
			"userId":       user.ID,
			"username":     user.Username,
			"email":        user.Email,
			"displayName":  user.DisplayName,
			"role":         user.Role,
			"plan":         user.Plan,
			"storageUsed":  user.StorageUsed,
			"storageLimit": user.StorageLimit,
		},
		Tokens: tokenPair{AccessToken: accessToken, RefreshToken: refreshToken},
	})
}

// storeRefreshToken appends a token row and evicts the oldest entries beyond
// the per-user cap.
func (h *AuthHandler) storeRefreshToken(userID uuid.UUID, token string) error {
	return h.db.Transaction(func(tx *gorm.DB) error {
		row := models.RefreshToken{
			ID:     uuid.New(),
			UserID: userID,
			Token:  token,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		var tokens []models.RefreshToken
		if err := tx.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&tokens).Error; err != nil {
			return err
		}
		if len(tokens) > models.MaxRefreshTokens {
			for _, stale := range tokens[models.MaxRefreshTokens:] {
				if err := tx.Delete(&models.RefreshToken{}, "id = ?", stale.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Refresh issues a new access token. Refresh tokens are not rotated on use.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Refresh token is required", nil))
		return
	}

	claims, err := h.tokens.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Invalid or expired refresh token", nil))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, responses.NewErrorResponse("User not found", nil))
			return
		}
		log.Printf("Database error during refresh: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Token refresh failed", nil))
		return
	}

	var count int64
	if err := h.db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND token = ?", user.ID, req.RefreshToken).
		Count(&count).Error; err != nil {
		log.Printf("Database error during refresh: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Token refresh failed", nil))
		return
	}
	if count == 0 {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Refresh token not found in user session", nil))
		return
	}

	accessToken, err := h.tokens.GenerateAccessToken(&user)
	if err != nil {
		log.Printf("Failed to sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Token refresh failed", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{
		Success: true,
		Message: "Token refreshed successfully",
		Tokens:  tokenPair{AccessToken: accessToken},
	})
}

// Logout removes the given refresh token from the caller's session list.
// Idempotent: removing an absent token still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Refresh token is required", nil))
		return
	}

	if err := h.db.Where("user_id = ? AND token = ?", currentUserID, req.RefreshToken).
		Delete(&models.RefreshToken{}).Error; err != nil {
		log.Printf("Failed to delete refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Logout failed", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Logout successful", nil))
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, responses.NewErrorResponse("User not found", nil))
			return
		}
		log.Printf("Failed to load user profile: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to retrieve user profile", nil))
		return
	}

	c.JSON(http.StatusOK, responses.APIResponse{Success: true, Data: user})
}

// UpdateProfile changes displayName and/or profileImage.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, responses.NewErrorResponse("User not found", nil))
			return
		}
		log.Printf("Failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update profile", nil))
		return
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.ProfileImage != "" {
		user.ProfileImage = req.ProfileImage
	}

	if err := h.db.Save(&user).Error; err != nil {
		log.Printf("Failed to update profile: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to update profile", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Profile updated successfully", user))
}

// ChangePassword verifies the current password, stores a new hash and
// revokes every outstanding refresh token.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	currentUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Authentication required", nil))
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Invalid request format", err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("Current password and new password are required", err.Error()))
		return
	}

	if policyErrors := auth.ValidatePasswordStrength(req.NewPassword); len(policyErrors) > 0 {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("New password does not meet requirements", policyErrors))
		return
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", currentUserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, responses.NewErrorResponse("User not found", nil))
			return
		}
		log.Printf("Failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to change password", nil))
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		c.JSON(http.StatusUnauthorized, responses.NewErrorResponse("Current password is incorrect", nil))
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to change password", nil))
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password_hash", newHash).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.RefreshToken{}).Error
	})
	if err != nil {
		log.Printf("Failed to change password: %v", err)
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("Failed to change password", nil))
		return
	}

	c.JSON(http.StatusOK, responses.NewSuccessResponse("Password changed successfully. Please login again.", nil))
}
