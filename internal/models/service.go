package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ServiceCategories = []string{"Hair", "Nails", "Skin", "Massage", "Other"}

// Service is a bookable salon service. Duration is in minutes.
type Service struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"size:120;uniqueIndex" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Duration    int             `json:"duration"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Category    string          `gorm:"size:32;index" json:"category"`
	Gender      string          `gorm:"size:16" json:"gender"`
	Active      bool            `gorm:"index" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
