package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/middleware"
	"github.com/zaqqye/salon_backoffice/internal/models"
	"github.com/zaqqye/salon_backoffice/internal/utils"
)

// UserController manages back-office operator accounts. Admin only.
type UserController struct {
	DB     *gorm.DB
	Events Publisher
}

type createUserRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	Active   *bool  `json:"active"`
}

type updateUserRequest struct {
	FullName *string         `json:"full_name"`
	Email    *string         `json:"email" binding:"omitempty,email"`
	Password *models.FlexibleString `json:"password"`
	Role     *string         `json:"role"`
	Active   *bool           `json:"active"`
}

func (uc *UserController) ListUsers(c *gin.Context) {
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"email":      "email",
		"role":       "role",
		"active":     "active",
	}
	q := parseListQuery(c, allowedSorts, "created_at", "DESC")

	base := search(uc.DB.Model(&models.User{}), q.Q, "full_name", "email")
	if role := strings.TrimSpace(strings.ToLower(c.Query("role"))); role != "" {
		if !IsValidRole(role) {
			failField(c, http.StatusBadRequest, "role", "invalid role")
			return
		}
		base = base.Where("role = ?", role)
	}
	base, ok := activeFilter(c, base)
	if !ok {
		failField(c, http.StatusBadRequest, "active", "invalid active value")
		return
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		storeFailed(c, err, "user")
		return
	}
	var users []models.User
	if err := q.page(base).Find(&users).Error; err != nil {
		storeFailed(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users, "meta": q.meta(total)})
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleManager
	}
	if !IsValidRole(role) {
		failField(c, http.StatusBadRequest, "role", "invalid role")
		return
	}
	pw, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, utils.ErrWeakPassword) {
			failField(c, http.StatusBadRequest, "password", err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: pw,
		Role:     role,
		Active:   activeOr(req.Active, true),
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		storeFailed(c, err, "user", "email")
		return
	}
	publish(uc.Events, models.ResourceUsers, models.ActionCreated, user.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "created", "data": user})
}

func (uc *UserController) GetUser(c *gin.Context) {
	var u models.User
	if err := uc.DB.Where("id = ?", c.Param("id")).First(&u).Error; err != nil {
		storeFailed(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": u})
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	var u models.User
	if err := uc.DB.Where("id = ?", c.Param("id")).First(&u).Error; err != nil {
		storeFailed(c, err, "user")
		return
	}
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Role != nil {
		if !IsValidRole(*req.Role) {
			failField(c, http.StatusBadRequest, "role", "invalid role")
			return
		}
		u.Role = *req.Role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}
	if req.Password != nil {
		if raw := strings.TrimSpace(req.Password.String()); raw != "" {
			pw, err := utils.HashPassword(raw)
			if err != nil {
				failField(c, http.StatusBadRequest, "password", err.Error())
				return
			}
			u.Password = pw
		}
	}
	if me, ok := middleware.CurrentUser(c); ok && me.ID == u.ID && (!u.Active || u.Role != models.RoleAdmin) {
		fail(c, http.StatusBadRequest, "you cannot deactivate or demote your own account")
		return
	}

	if err := uc.DB.Save(&u).Error; err != nil {
		storeFailed(c, err, "user", "email")
		return
	}
	publish(uc.Events, models.ResourceUsers, models.ActionUpdated, u.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": u})
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	if me, ok := middleware.CurrentUser(c); ok && me.ID == c.Param("id") {
		fail(c, http.StatusBadRequest, "you cannot delete your own account")
		return
	}
	deleteByID[models.User](c, uc.DB, uc.Events, models.ResourceUsers, "user")
}
