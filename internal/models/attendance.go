package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLeave   = "leave"
	AttendanceHoliday = "holiday"
)

var AttendanceStatuses = []string{AttendancePresent, AttendanceAbsent, AttendanceLeave, AttendanceHoliday}

// Attendance is one staff member's record for one calendar day.
// StaffName is denormalized for listings and never persisted.
type Attendance struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	StaffID   string     `gorm:"type:uuid;uniqueIndex:uniq_staff_day" json:"staff_id"`
	Staff     *Staff     `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"staff,omitempty"`
	StaffName string     `gorm:"-" json:"staff_name"`
	Date      time.Time  `gorm:"uniqueIndex:uniq_staff_day" json:"date"`
	CheckIn   *time.Time `json:"check_in,omitempty"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
	Status    string     `gorm:"size:16;index" json:"status"`
	Notes     string     `gorm:"type:text" json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// HoursWorked is zero unless both check-in and check-out are present.
func (a Attendance) HoursWorked() float64 {
	if a.CheckIn == nil || a.CheckOut == nil || a.CheckOut.Before(*a.CheckIn) {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn).Hours()
}

type Holiday struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"uniqueIndex" json:"date"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceSummary aggregates a staff member's records over a date range.
type AttendanceSummary struct {
	StaffID     string  `json:"staff_id"`
	StaffName   string  `json:"staff_name"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Present     int     `json:"present"`
	Absent      int     `json:"absent"`
	Leave       int     `json:"leave"`
	Holidays    int     `json:"holidays"`
	HoursWorked float64 `json:"hours_worked"`
}

// DayOf truncates t to its calendar day in UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
