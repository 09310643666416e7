package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

type AppointmentController struct {
	DB     *gorm.DB
	Events Publisher
	// Now is replaceable in tests.
	Now func() time.Time
}

func (ac *AppointmentController) now() time.Time {
	if ac.Now != nil {
		return ac.Now()
	}
	return time.Now()
}

type appointmentLine struct {
	ServiceID models.FlexibleString `json:"service_id" binding:"required"`
}

type appointmentRequest struct {
	CustomerName    string            `json:"customer_name" binding:"required,max=120"`
	CustomerPhone   models.FlexibleString    `json:"customer_phone" binding:"required,numeric,len=10"`
	AppointmentDate models.FlexibleTime      `json:"appointment_date"`
	TimeSlot        string            `json:"time_slot" binding:"required,len=5"`
	Services        []appointmentLine `json:"services" binding:"dive"`
	ComboID         *string           `json:"combo_id"`
	Status          string            `json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled rescheduled"`
	Notes           string            `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed completed cancelled rescheduled"`
}

type rescheduleRequest struct {
	AppointmentDate models.FlexibleTime `json:"appointment_date"`
	TimeSlot        string       `json:"time_slot" binding:"required,len=5"`
}

var errUnknownCombo = errors.New("unknown combo")

// build prices the appointment from the catalog: the selected services at
// their current price plus the combo's discounted total.
func (r appointmentRequest) build(db *gorm.DB, a *models.Appointment) error {
	ids := make([]string, 0, len(r.Services))
	for _, l := range r.Services {
		ids = append(ids, l.ServiceID.String())
	}
	services, err := resolveServices(db, ids)
	if err != nil {
		return err
	}
	a.CustomerName = strings.TrimSpace(r.CustomerName)
	a.CustomerPhone = r.CustomerPhone.String()
	a.AppointmentDate = r.AppointmentDate.Day()
	a.TimeSlot = r.TimeSlot
	a.Notes = strings.TrimSpace(r.Notes)
	if r.Status != "" {
		a.Status = r.Status
	}
	a.Services = make([]models.AppointmentService, 0, len(services))
	total := decimal.Zero
	for _, s := range services {
		a.Services = append(a.Services, models.AppointmentService{
			AppointmentID: a.ID,
			ServiceID:     s.ID,
			Name:          s.Name,
			Price:         s.Price,
		})
		total = total.Add(s.Price)
	}
	a.ComboID, a.ComboName = nil, ""
	if r.ComboID != nil && strings.TrimSpace(*r.ComboID) != "" {
		var combo models.Combo
		if err := db.Where("id = ?", strings.TrimSpace(*r.ComboID)).First(&combo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errUnknownCombo
			}
			return err
		}
		a.ComboID = &combo.ID
		a.ComboName = combo.Name
		total = total.Add(combo.TotalPrice)
	}
	a.Total = total
	return nil
}

func (r appointmentRequest) check(c *gin.Context) bool {
	if !r.AppointmentDate.Set() {
		failField(c, http.StatusBadRequest, "appointment_date", "appointment_date is required")
		return false
	}
	if !validSlot(r.TimeSlot) {
		failField(c, http.StatusBadRequest, "time_slot", "time_slot must be a time of day as HH:MM")
		return false
	}
	if len(r.Services) == 0 && (r.ComboID == nil || strings.TrimSpace(*r.ComboID) == "") {
		failField(c, http.StatusBadRequest, "services", "select at least one service or a combo")
		return false
	}
	return true
}

func validSlot(s string) bool {
	t, err := time.Parse("15:04", s)
	return err == nil && t.Format("15:04") == s
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Services", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })
}

func (ac *AppointmentController) ListAppointments(c *gin.Context) {
	allowedSorts := map[string]string{
		"created_at":       "created_at",
		"appointment_date": "appointment_date",
		"time_slot":        "time_slot",
		"total":            "total",
		"customer_name":    "customer_name",
	}
	q := parseListQuery(c, allowedSorts, "created_at", "DESC")

	base := search(ac.DB.Model(&models.Appointment{}), q.Q, "customer_name", "customer_phone")
	if v := strings.TrimSpace(c.Query("date")); v != "" {
		day, err := parseDay("date", v)
		if err != nil {
			failField(c, http.StatusBadRequest, "date", err.Error())
			return
		}
		base = base.Where("appointment_date >= ? AND appointment_date < ?", day, day.AddDate(0, 0, 1))
	}
	if status := strings.TrimSpace(strings.ToLower(c.Query("status"))); status != "" {
		if !models.IsAppointmentStatus(status) {
			failField(c, http.StatusBadRequest, "status", "invalid status")
			return
		}
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	var items []models.Appointment
	if err := withLines(q.page(base)).Find(&items).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "meta": q.meta(total)})
}

// Today lists the current day's appointments in slot order.
func (ac *AppointmentController) Today(c *gin.Context) {
	day := models.DayOf(ac.now())
	var items []models.Appointment
	if err := withLines(ac.DB).
		Where("appointment_date >= ? AND appointment_date < ?", day, day.AddDate(0, 0, 1)).
		Order("time_slot ASC").Find(&items).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "meta": gin.H{"total": len(items), "date": day.Format(models.DateLayout)}})
}

func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	var req appointmentRequest
	if !bindJSON(c, &req) || !req.check(c) {
		return
	}
	appt := models.Appointment{Status: models.StatusPending}
	if err := req.build(ac.DB, &appt); err != nil {
		ac.buildFailed(c, err)
		return
	}
	if err := ac.DB.Create(&appt).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	publish(ac.Events, models.ResourceAppointments, models.ActionCreated, appt.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "created", "data": appt})
}

func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	var appt models.Appointment
	if err := withLines(ac.DB).Where("id = ?", c.Param("id")).First(&appt).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": appt})
}

func (ac *AppointmentController) UpdateAppointment(c *gin.Context) {
	var appt models.Appointment
	if err := ac.DB.Where("id = ?", c.Param("id")).First(&appt).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	var req appointmentRequest
	if !bindJSON(c, &req) || !req.check(c) {
		return
	}
	if err := req.build(ac.DB, &appt); err != nil {
		ac.buildFailed(c, err)
		return
	}
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", appt.ID).Delete(&models.AppointmentService{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Services").Save(&appt).Error; err != nil {
			return err
		}
		if len(appt.Services) == 0 {
			return nil
		}
		return tx.Create(&appt.Services).Error
	})
	if err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	publish(ac.Events, models.ResourceAppointments, models.ActionUpdated, appt.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": appt})
}

func (ac *AppointmentController) SetAppointmentStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	ac.patch(c, map[string]any{"status": req.Status}, models.ActionStatus)
}

// Reschedule moves the appointment and marks it rescheduled.
func (ac *AppointmentController) Reschedule(c *gin.Context) {
	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.AppointmentDate.Set() {
		failField(c, http.StatusBadRequest, "appointment_date", "appointment_date is required")
		return
	}
	if !validSlot(req.TimeSlot) {
		failField(c, http.StatusBadRequest, "time_slot", "time_slot must be a time of day as HH:MM")
		return
	}
	ac.patch(c, map[string]any{
		"appointment_date": req.AppointmentDate.Day(),
		"time_slot":        req.TimeSlot,
		"status":           models.StatusRescheduled,
	}, models.ActionUpdated)
}

func (ac *AppointmentController) patch(c *gin.Context, changes map[string]any, action string) {
	var appt models.Appointment
	if err := ac.DB.Where("id = ?", c.Param("id")).First(&appt).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	if err := ac.DB.Model(&appt).Updates(changes).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	if err := withLines(ac.DB).Where("id = ?", appt.ID).First(&appt).Error; err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	publish(ac.Events, models.ResourceAppointments, action, appt.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": appt})
}

func (ac *AppointmentController) DeleteAppointment(c *gin.Context) {
	id := c.Param("id")
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("appointment_id = ?", id).Delete(&models.AppointmentService{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Appointment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		storeFailed(c, err, "appointment")
		return
	}
	publish(ac.Events, models.ResourceAppointments, models.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (ac *AppointmentController) buildFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnknownService):
		failField(c, http.StatusBadRequest, "services", "one or more services do not exist")
	case errors.Is(err, errUnknownCombo):
		failField(c, http.StatusBadRequest, "combo_id", "combo does not exist")
	default:
		storeFailed(c, err, "appointment")
	}
}
