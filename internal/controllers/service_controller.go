package controllers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

type ServiceController struct {
	DB     *gorm.DB
	Events Publisher
}

type serviceRequest struct {
	Name        string          `json:"name" binding:"required,max=120"`
	Description string          `json:"description"`
	Duration    int             `json:"duration" binding:"gt=0"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" binding:"required,oneof=Hair Nails Skin Massage Other"`
	Gender      string          `json:"gender" binding:"omitempty,oneof=male female unisex"`
	Active      *bool           `json:"active"`
}

func (r serviceRequest) apply(s *models.Service) {
	s.Name = strings.TrimSpace(r.Name)
	s.Description = strings.TrimSpace(r.Description)
	s.Duration = r.Duration
	s.Price = r.Price
	s.Category = r.Category
	s.Gender = r.Gender
	if s.Gender == "" {
		s.Gender = "unisex"
	}
	s.Active = activeOr(r.Active, s.Active)
}

func (sc *ServiceController) ListServices(c *gin.Context) {
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"name":       "name",
		"price":      "price",
		"duration":   "duration",
		"category":   "category",
	}
	q := parseListQuery(c, allowedSorts, "created_at", "DESC")

	base := search(sc.DB.Model(&models.Service{}), q.Q, "name", "description")
	if cat := strings.TrimSpace(c.Query("category")); cat != "" {
		if !slices.Contains(models.ServiceCategories, cat) {
			failField(c, http.StatusBadRequest, "category", "invalid category")
			return
		}
		base = base.Where("category = ?", cat)
	}
	if gender := strings.TrimSpace(strings.ToLower(c.Query("gender"))); gender != "" {
		base = base.Where("gender = ?", gender)
	}
	base, ok := activeFilter(c, base)
	if !ok {
		failField(c, http.StatusBadRequest, "active", "invalid active value")
		return
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		storeFailed(c, err, "service")
		return
	}
	var services []models.Service
	if err := q.page(base).Find(&services).Error; err != nil {
		storeFailed(c, err, "service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": services, "meta": q.meta(total)})
}

func (sc *ServiceController) CreateService(c *gin.Context) {
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price.IsNegative() {
		failField(c, http.StatusBadRequest, "price", "price must be at least 0")
		return
	}
	svc := models.Service{Active: true}
	req.apply(&svc)
	if err := sc.DB.Create(&svc).Error; err != nil {
		storeFailed(c, err, "service", "name")
		return
	}
	publish(sc.Events, models.ResourceServices, models.ActionCreated, svc.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "created", "data": svc})
}

func (sc *ServiceController) GetService(c *gin.Context) {
	var svc models.Service
	if err := sc.DB.Where("id = ?", c.Param("id")).First(&svc).Error; err != nil {
		storeFailed(c, err, "service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": svc})
}

// UpdateService also refreshes the price and duration snapshot held by
// combos that bundle the service.
func (sc *ServiceController) UpdateService(c *gin.Context) {
	var svc models.Service
	if err := sc.DB.Where("id = ?", c.Param("id")).First(&svc).Error; err != nil {
		storeFailed(c, err, "service")
		return
	}
	var req serviceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price.IsNegative() {
		failField(c, http.StatusBadRequest, "price", "price must be at least 0")
		return
	}
	req.apply(&svc)

	var comboIDs []string
	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&svc).Error; err != nil {
			return err
		}
		var err error
		comboIDs, err = refreshCombosFor(tx, svc)
		return err
	})
	if err != nil {
		storeFailed(c, err, "service", "name")
		return
	}
	publish(sc.Events, models.ResourceServices, models.ActionUpdated, svc.ID)
	for _, id := range comboIDs {
		publish(sc.Events, models.ResourceCombos, models.ActionUpdated, id)
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": svc})
}

func (sc *ServiceController) SetServiceStatus(c *gin.Context) {
	setActive[models.Service](c, sc.DB, sc.Events, models.ResourceServices, "service")
}

// DeleteService refuses while a combo still bundles the service.
func (sc *ServiceController) DeleteService(c *gin.Context) {
	var inUse int64
	if err := sc.DB.Model(&models.ComboItem{}).Where("service_id = ?", c.Param("id")).Count(&inUse).Error; err != nil {
		storeFailed(c, err, "service")
		return
	}
	if inUse > 0 {
		fail(c, http.StatusConflict, "service is part of a combo, remove it from the combo first")
		return
	}
	deleteByID[models.Service](c, sc.DB, sc.Events, models.ResourceServices, "service")
}
