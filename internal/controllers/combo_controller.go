package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

type ComboController struct {
	DB     *gorm.DB
	Events Publisher
}

type comboLine struct {
	ServiceID models.FlexibleString `json:"service_id" binding:"required"`
	Sequence  int            `json:"sequence"`
}

type comboRequest struct {
	Name        string      `json:"name" binding:"required,max=120"`
	Description string      `json:"description"`
	Gender      string      `json:"gender" binding:"required,oneof=male female"`
	Services    []comboLine `json:"services" binding:"required,min=1,dive"`
	Discount    int         `json:"discount" binding:"gte=0,lte=100"`
	Active      *bool       `json:"active"`
}

var errUnknownService = errors.New("unknown service")

// resolveServices loads every referenced service. The returned slice is in
// request order.
func resolveServices(db *gorm.DB, ids []string) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []models.Service
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]models.Service, len(found))
	for _, s := range found {
		byID[s.ID] = s
	}
	out := make([]models.Service, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, errUnknownService
		}
		out = append(out, s)
	}
	return out, nil
}

// build resolves the request against the catalog into combo.
func (r comboRequest) build(db *gorm.DB, combo *models.Combo) error {
	ids := make([]string, 0, len(r.Services))
	for _, l := range r.Services {
		ids = append(ids, l.ServiceID.String())
	}
	services, err := resolveServices(db, ids)
	if err != nil {
		return err
	}
	combo.Name = strings.TrimSpace(r.Name)
	combo.Description = strings.TrimSpace(r.Description)
	combo.Gender = r.Gender
	combo.Discount = r.Discount
	combo.Active = activeOr(r.Active, combo.Active)
	combo.Items = make([]models.ComboItem, 0, len(services))
	for i, s := range services {
		seq := r.Services[i].Sequence
		if seq <= 0 {
			seq = i + 1
		}
		combo.Items = append(combo.Items, models.ComboItem{
			ComboID:   combo.ID,
			ServiceID: s.ID,
			Name:      s.Name,
			Price:     s.Price,
			Duration:  s.Duration,
			Sequence:  seq,
		})
	}
	combo.Recalculate()
	return nil
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("sequence") })
}

func (cc *ComboController) ListCombos(c *gin.Context) {
	allowedSorts := map[string]string{
		"created_at":     "created_at",
		"name":           "name",
		"total_price":    "total_price",
		"total_duration": "total_duration",
		"discount":       "discount",
	}
	q := parseListQuery(c, allowedSorts, "created_at", "DESC")

	base := search(cc.DB.Model(&models.Combo{}), q.Q, "name", "description")
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
		storeFailed(c, err, "combo")
		return
	}
	var combos []models.Combo
	if err := withItems(q.page(base)).Find(&combos).Error; err != nil {
		storeFailed(c, err, "combo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": combos, "meta": q.meta(total)})
}

func (cc *ComboController) CreateCombo(c *gin.Context) {
	var req comboRequest
	if !bindJSON(c, &req) {
		return
	}
	combo := models.Combo{Active: true}
	if err := req.build(cc.DB, &combo); err != nil {
		cc.buildFailed(c, err)
		return
	}
	if err := cc.DB.Create(&combo).Error; err != nil {
		storeFailed(c, err, "combo", "name")
		return
	}
	publish(cc.Events, models.ResourceCombos, models.ActionCreated, combo.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "created", "data": combo})
}

func (cc *ComboController) GetCombo(c *gin.Context) {
	var combo models.Combo
	if err := withItems(cc.DB).Where("id = ?", c.Param("id")).First(&combo).Error; err != nil {
		storeFailed(c, err, "combo")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": combo})
}

// UpdateCombo replaces the bundled services wholesale.
func (cc *ComboController) UpdateCombo(c *gin.Context) {
	var combo models.Combo
	if err := cc.DB.Where("id = ?", c.Param("id")).First(&combo).Error; err != nil {
		storeFailed(c, err, "combo")
		return
	}
	var req comboRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.build(cc.DB, &combo); err != nil {
		cc.buildFailed(c, err)
		return
	}
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combo_id = ?", combo.ID).Delete(&models.ComboItem{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Items").Save(&combo).Error; err != nil {
			return err
		}
		return tx.Create(&combo.Items).Error
	})
	if err != nil {
		storeFailed(c, err, "combo", "name")
		return
	}
	publish(cc.Events, models.ResourceCombos, models.ActionUpdated, combo.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": combo})
}

func (cc *ComboController) SetComboStatus(c *gin.Context) {
	setActive[models.Combo](c, cc.DB, cc.Events, models.ResourceCombos, "combo", "Items")
}

func (cc *ComboController) DeleteCombo(c *gin.Context) {
	id := c.Param("id")
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combo_id = ?", id).Delete(&models.ComboItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Combo{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		storeFailed(c, err, "combo")
		return
	}
	publish(cc.Events, models.ResourceCombos, models.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (cc *ComboController) buildFailed(c *gin.Context, err error) {
	if errors.Is(err, errUnknownService) {
		failField(c, http.StatusBadRequest, "services", "one or more services do not exist")
		return
	}
	storeFailed(c, err, "combo")
}

// refreshCombosFor copies the service's current name, price and duration
// into every combo line referencing it and recalculates those combos.
func refreshCombosFor(tx *gorm.DB, svc models.Service) ([]string, error) {
	var comboIDs []string
	if err := tx.Model(&models.ComboItem{}).Where("service_id = ?", svc.ID).
		Distinct().Pluck("combo_id", &comboIDs).Error; err != nil {
		return nil, err
	}
	if len(comboIDs) == 0 {
		return nil, nil
	}
	if err := tx.Model(&models.ComboItem{}).Where("service_id = ?", svc.ID).Updates(map[string]any{
		"name":     svc.Name,
		"price":    svc.Price,
		"duration": svc.Duration,
	}).Error; err != nil {
		return nil, err
	}
	var combos []models.Combo
	if err := withItems(tx).Where("id IN ?", comboIDs).Find(&combos).Error; err != nil {
		return nil, err
	}
	for i := range combos {
		combos[i].Recalculate()
		if err := tx.Model(&combos[i]).Updates(map[string]any{
			"total_price":    combos[i].TotalPrice,
			"total_duration": combos[i].TotalDuration,
		}).Error; err != nil {
			return nil, err
		}
	}
	return comboIDs, nil
}
