package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/middleware"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/utils"
)

type AuthController struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := a.DB.Where("LOWER(email) = ?", email).First(&user).Error; err != nil {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.Active || !utils.CheckPassword(user.Password, req.Password) {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := middleware.IssueToken(user, a.JWTSecret, a.TokenTTL)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("failed to sign token", "err", err)
		fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(a.TokenTTL.Seconds()),
		"user":         user,
	})
}

func (a *AuthController) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// VerifyToken answers 200 for a token that still authenticates. The auth
// middleware has already rejected anything else.
func (a *AuthController) VerifyToken(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"valid": true, "data": user})
}

// Logout is stateless: the client discards its token.
func (a *AuthController) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
