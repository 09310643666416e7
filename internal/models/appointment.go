package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

var AppointmentStatuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRescheduled}

// DateLayout is the wire format of calendar dates (appointment day, attendance day).
const DateLayout = "2006-01-02"

type Appointment struct {
	ID              string               `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerName    string               `gorm:"size:120" json:"customer_name"`
	CustomerPhone   string               `gorm:"size:20;index" json:"customer_phone"`
	AppointmentDate time.Time            `gorm:"index" json:"appointment_date"`
	TimeSlot        string               `gorm:"size:5" json:"time_slot"`
	Status          string               `gorm:"size:16;index" json:"status"`
	Services        []AppointmentService `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"services"`
	ComboID         *string              `gorm:"type:uuid" json:"combo_id,omitempty"`
	ComboName       string               `json:"combo_name,omitempty"`
	Total           decimal.Decimal      `gorm:"type:numeric(12,2)" json:"total"`
	Notes           string               `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

type AppointmentService struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	AppointmentID string          `gorm:"type:uuid;index" json:"-"`
	ServiceID     string          `gorm:"type:uuid" json:"service_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

func IsAppointmentStatus(s string) bool {
	for _, v := range AppointmentStatuses {
		if v == s {
			return true
		}
	}
	return false
}
