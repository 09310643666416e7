package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var StaffRoles = []string{"Barber", "Stylist", "Receptionist", "Manager"}

var StaffGenders = []string{"Male", "Female", "Other"}

type Staff struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string          `gorm:"size:120;not null" json:"name"`
	Phone     string          `gorm:"size:20;uniqueIndex" json:"phone"`
	Aadhaar   string          `gorm:"size:12;uniqueIndex" json:"aadhaar"`
	DOB       time.Time       `json:"dob"`
	Gender    string          `gorm:"size:16" json:"gender"`
	Address   string          `gorm:"type:text" json:"address"`
	Salary    decimal.Decimal `gorm:"type:numeric(12,2)" json:"salary"`
	Role      string          `gorm:"size:32;index" json:"role"`
	Active    bool            `gorm:"index" json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
